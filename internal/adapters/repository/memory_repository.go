package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

var (
	_ domain.RoutineRepository    = (*InMemoryRoutineRepository)(nil)
	_ domain.RoutineLogRepository = (*InMemoryRoutineLogRepository)(nil)
	_ domain.UserRepository       = (*InMemoryUserRepository)(nil)
)

type InMemoryRoutineRepository struct {
	store map[string]*domain.Routine

	mu sync.RWMutex
}

func NewInMemoryRoutineRepository() *InMemoryRoutineRepository {
	return &InMemoryRoutineRepository{
		store: make(map[string]*domain.Routine),
	}
}

func cloneRoutine(r *domain.Routine) *domain.Routine {
	c := *r
	if r.ReminderTime != nil {
		rem := *r.ReminderTime
		c.ReminderTime = &rem
	}
	return &c
}

func (r *InMemoryRoutineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[routine.ID] = cloneRoutine(routine)
	return nil
}

func (r *InMemoryRoutineRepository) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routine, ok := r.store[id]
	if !ok || !routine.IsActive {
		return nil, domain.ErrRoutineNotFound
	}
	return cloneRoutine(routine), nil
}

func (r *InMemoryRoutineRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Routine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routines := []*domain.Routine{}
	for _, rt := range r.store {
		if rt.UserID == userID && rt.IsActive {
			routines = append(routines, cloneRoutine(rt))
		}
	}

	sort.Slice(routines, func(i, j int) bool {
		if routines[i].SortOrder != routines[j].SortOrder {
			return routines[i].SortOrder < routines[j].SortOrder
		}
		return routines[i].CreatedAt.Before(routines[j].CreatedAt)
	})

	return routines, nil
}

func (r *InMemoryRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[routine.ID]
	if !ok || !existing.IsActive {
		return domain.ErrRoutineNotFound
	}

	r.store[routine.ID] = cloneRoutine(routine)
	return nil
}

func (r *InMemoryRoutineRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	routine, ok := r.store[id]
	if !ok || !routine.IsActive {
		return domain.ErrRoutineNotFound
	}

	routine.Deactivate()
	return nil
}

func (r *InMemoryRoutineRepository) Reorder(ctx context.Context, userID string, order []domain.RoutineOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range order {
		routine, ok := r.store[o.ID]
		if !ok || routine.UserID != userID || !routine.IsActive {
			return domain.ErrRoutineNotFound
		}
	}

	now := time.Now().UTC()
	for _, o := range order {
		r.store[o.ID].SortOrder = o.SortOrder
		r.store[o.ID].UpdatedAt = now
	}
	return nil
}

// isActive reports whether the routine exists and is active. Missing ids
// count as active so logs loaded without their routine are still listed.
func (r *InMemoryRoutineRepository) isActive(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routine, ok := r.store[id]
	return !ok || routine.IsActive
}

type InMemoryRoutineLogRepository struct {
	store    map[string]domain.RoutineLog
	routines *InMemoryRoutineRepository

	mu sync.RWMutex
}

// NewInMemoryRoutineLogRepository hides logs of deactivated routines when
// routines is set, like the postgres repository does.
func NewInMemoryRoutineLogRepository(routines *InMemoryRoutineRepository) *InMemoryRoutineLogRepository {
	return &InMemoryRoutineLogRepository{
		store:    make(map[string]domain.RoutineLog),
		routines: routines,
	}
}

func (r *InMemoryRoutineLogRepository) Create(ctx context.Context, entry *domain.RoutineLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.store {
		if l.RoutineID == entry.RoutineID && l.LogDay.Equal(entry.LogDay) {
			return domain.ErrAlreadyCompleted
		}
	}

	r.store[entry.ID] = *entry
	return nil
}

func (r *InMemoryRoutineLogRepository) GetByID(ctx context.Context, id string) (*domain.RoutineLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.store[id]
	if !ok {
		return nil, domain.ErrLogNotFound
	}
	return &entry, nil
}

func (r *InMemoryRoutineLogRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.store[id]
	if !ok || entry.UserID != userID {
		return domain.ErrLogNotFound
	}

	delete(r.store, id)
	return nil
}

func (r *InMemoryRoutineLogRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]domain.RoutineLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []domain.RoutineLog{}
	for _, l := range r.store {
		if l.UserID != userID || l.CompletedAt.Before(from) || l.CompletedAt.After(to) {
			continue
		}
		if r.routines != nil && !r.routines.isActive(l.RoutineID) {
			continue
		}
		entries = append(entries, l)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CompletedAt.Before(entries[j].CompletedAt)
	})

	return entries, nil
}

type InMemoryUserRepository struct {
	byID map[string]domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID: make(map[string]domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}

	r.byID[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}
