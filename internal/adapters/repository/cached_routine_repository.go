package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.RoutineRepository = (*CachedRoutineRepository)(nil)

const routineListTTL = 30 * time.Minute

// CachedRoutineRepository keeps each user's active routine list in Redis.
// Every write through it drops the user's key.
type CachedRoutineRepository struct {
	next  domain.RoutineRepository
	cache *redis.Client
}

func NewCachedRoutineRepository(next domain.RoutineRepository, cache *redis.Client) *CachedRoutineRepository {
	return &CachedRoutineRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedRoutineRepository) cacheKey(userID string) string {
	return fmt.Sprintf("routines:%s", userID)
}

func (r *CachedRoutineRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate routines for user %s: %v", userID, err)
	}
}

func (r *CachedRoutineRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Routine, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		var routines []*domain.Routine
		if err := json.Unmarshal(val, &routines); err == nil {
			return routines, nil
		}

		log.Printf("[CACHE] Corrupted routine list for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	routines, err := r.next.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(routines); err == nil {
		if setErr := r.cache.Set(ctx, key, data, routineListTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return routines, nil
}

func (r *CachedRoutineRepository) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedRoutineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	if err := r.next.Create(ctx, routine); err != nil {
		return err
	}
	r.invalidate(ctx, routine.UserID)
	return nil
}

func (r *CachedRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	if err := r.next.Update(ctx, routine); err != nil {
		return err
	}
	r.invalidate(ctx, routine.UserID)
	return nil
}

func (r *CachedRoutineRepository) Deactivate(ctx context.Context, id string) error {
	routine, err := r.next.GetByID(ctx, id)
	if err == nil && routine != nil {
		defer r.invalidate(ctx, routine.UserID)
	}

	return r.next.Deactivate(ctx, id)
}

func (r *CachedRoutineRepository) Reorder(ctx context.Context, userID string, order []domain.RoutineOrder) error {
	if err := r.next.Reorder(ctx, userID, order); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}
