package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache is a small JSON cache with version-keyed invalidation: list
// endpoints key their entries under a data version that writers bump,
// so stale entries are never read, only expired.
type Cache struct {
	client *redis.Client
}

// NewCache connects to Redis. If Redis is unreachable the cache degrades to
// a no-op so the service keeps running without it.
func NewCache(addr string) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Warn().Err(err).Msg("Redis not available. Running without cache.")
		return &Cache{client: nil}
	}

	log.Info().Msg("Redis connected successfully.")
	return &Cache{client: client}
}

// Get unmarshals the cached value into dest, reporting whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetVersion returns the current data version for a version key, 0 if unset.
func (c *Cache) GetVersion(ctx context.Context, key string) int64 {
	if c == nil || c.client == nil {
		return 0
	}

	v, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion bumps the data version, invalidating every cache entry
// keyed under the previous version.
func (c *Cache) IncrementVersion(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Incr(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to bump cache version")
	}
}

func (c *Cache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}
