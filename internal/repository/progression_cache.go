package repository

import (
	"context"
	"fmt"
	"time"

	"zelia-app/internal/models"
	"zelia-app/internal/utils"
)

type ProgressionCache struct {
	redis *utils.RedisClient
	ttl   time.Duration
}

func NewProgressionCache(redis *utils.RedisClient, ttl time.Duration) *ProgressionCache {
	return &ProgressionCache{redis: redis, ttl: ttl}
}

func progressionKey(userID string) string {
	return fmt.Sprintf("progression:%s", userID)
}

// Get returns utils.ErrCacheMiss when nothing is cached for userID.
func (c *ProgressionCache) Get(ctx context.Context, userID string) (models.Progression, error) {
	var p models.Progression
	if err := c.redis.Get(ctx, progressionKey(userID), &p); err != nil {
		return models.Progression{}, err
	}
	return p, nil
}

// Add fills the slot for userID unless a newer save already did.
func (c *ProgressionCache) Add(ctx context.Context, userID string, p models.Progression) error {
	return c.redis.SetNX(ctx, progressionKey(userID), p, c.ttl)
}

func (c *ProgressionCache) Set(ctx context.Context, userID string, p models.Progression) error {
	return c.redis.Set(ctx, progressionKey(userID), p, c.ttl)
}

func (c *ProgressionCache) Invalidate(ctx context.Context, userID string) error {
	return c.redis.Delete(ctx, progressionKey(userID))
}
