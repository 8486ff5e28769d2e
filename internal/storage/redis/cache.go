package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smle-dev/smle/internal/domain/model"
	repo "github.com/smle-dev/smle/internal/domain/repository"
	"github.com/smle-dev/smle/pkg/keybuilder"
)

// Ensure RunCache implements the interface
var _ repo.RunCache = (*RunCache)(nil)

// RunCache implements the domain.RunCache interface using the standard
// go-redis client.
type RunCache struct {
	redis  *goredis.Client
	logger zerolog.Logger
}

// NewRunCache creates a new instance of the RunCache.
func NewRunCache(logger *zerolog.Logger, redis *goredis.Client) *RunCache {
	return &RunCache{
		redis:  redis,
		logger: logger.With().Str("layer", "redis_cache").Logger(),
	}
}

// Get retrieves a run from the cache.
func (c *RunCache) Get(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	key := keybuilder.RedisRunKeyBuild(id)
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.logger.Info().Str("key", key).Str("cache", "miss").Msg("run not found in cache")
			return nil, repo.ErrNotFound
		}
		c.logger.Error().Err(err).Str("key", key).Msg("failed to get key from redis")
		return nil, err
	}

	var run model.Run
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to unmarshal run from cache")
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	c.logger.Info().Str("key", key).Str("cache", "hit").Msg("run found in cache")
	return &run, nil
}

// Set adds a run to the cache for a specified duration.
func (c *RunCache) Set(ctx context.Context, r *model.Run, expiration time.Duration) error {
	key := keybuilder.RedisRunKeyBuild(r.ID)
	rBytes, err := json.Marshal(r)
	if err != nil {
		c.logger.Error().Err(err).Stringer("id", r.ID).Msg("failed to marshal run for cache")
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := c.redis.Set(ctx, key, rBytes, expiration).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to set key in redis")
		return err
	}

	c.logger.Info().Str("key", key).Msg("run successfully set in cache")
	return nil
}

// Delete removes a run from the cache.
func (c *RunCache) Delete(ctx context.Context, id uuid.UUID) error {
	key := keybuilder.RedisRunKeyBuild(id)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to delete key from redis")
		return err
	}

	c.logger.Info().Str("key", key).Msg("successfully deleted key from redis")
	return nil
}
