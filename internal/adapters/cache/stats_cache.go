package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/services"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/workers"
)

var (
	_ services.StatsCache  = (*RedisStatsCache)(nil)
	_ workers.ProfileCache = (*RedisStatsCache)(nil)
)

const DefaultStatsTTL = 10 * time.Minute

// RedisStatsCache keeps one hash per user. Each field is a timezone and
// calendar day pair, so a profile computed for yesterday or another zone is
// never served. Dropping the hash clears every variant at once.
type RedisStatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatsCache(rdb *redis.Client, ttl time.Duration) *RedisStatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &RedisStatsCache{rdb: rdb, ttl: ttl}
}

func profileKey(userID string) string {
	return fmt.Sprintf("stats:profile:%s", userID)
}

func profileField(timezone, day string) string {
	return timezone + "|" + day
}

func (c *RedisStatsCache) GetProfile(ctx context.Context, userID, timezone, day string) (*domain.ProfileStats, error) {
	raw, err := c.rdb.HGet(ctx, profileKey(userID), profileField(timezone, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stats cache: get: %w", err)
	}

	var stats domain.ProfileStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		log.Printf("[CACHE] Corrupted profile for user %s, cleaning up key", userID)
		c.rdb.HDel(ctx, profileKey(userID), profileField(timezone, day))
		return nil, nil
	}
	return &stats, nil
}

func (c *RedisStatsCache) SetProfile(ctx context.Context, userID, timezone string, stats *domain.ProfileStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache: encode: %w", err)
	}

	key := profileKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, profileField(timezone, stats.GeneratedFor), data)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("stats cache: set: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) InvalidateProfile(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, profileKey(userID)).Err(); err != nil {
		return fmt.Errorf("stats cache: invalidate: %w", err)
	}
	return nil
}
