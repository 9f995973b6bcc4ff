// Package cache provides a Redis read-through layer in front of a catalog store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"examreg/internal/lookup/models"
)

// Source is the catalog store behind the cache.
type Source interface {
	ListByType(ctx context.Context, typeID models.TypeID) ([]models.Entry, error)
}

const keyPrefix = "examreg:lookup:"

// RedisCache serves ListByType from Redis and falls through to the source on a
// miss. A Redis failure is logged and treated as a miss so the cache never
// makes the catalog less available than its store.
type RedisCache struct {
	client redis.Cmdable
	source Source
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client redis.Cmdable, source Source, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, source: source, ttl: ttl, logger: logger}
}

func (c *RedisCache) ListByType(ctx context.Context, typeID models.TypeID) ([]models.Entry, error) {
	key := cacheKey(typeID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entries []models.Entry
		if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
			return entries, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt lookup cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "lookup cache read failed", "key", key, "error", err)
	}

	entries, err := c.source.ListByType(ctx, typeID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode lookup entries: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "lookup cache write failed", "key", key, "error", err)
	}
	return entries, nil
}

// Invalidate drops the cached list for typeID, used after catalog edits.
func (c *RedisCache) Invalidate(ctx context.Context, typeID models.TypeID) error {
	return c.client.Del(ctx, cacheKey(typeID)).Err()
}

func cacheKey(typeID models.TypeID) string {
	return fmt.Sprintf("%s%d", keyPrefix, typeID)
}
