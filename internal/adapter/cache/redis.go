// internal/adapter/cache/redis.go

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"

	"creatorpulse/internal/domain/insight"
)

// DefaultKeyPrefix namespaces recommendation keys in Redis
const DefaultKeyPrefix = "creatorpulse:recommendations:"

// RedisCache stores recommendations in Redis with a TTL per key
type RedisCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewRedisCache creates a new Redis-backed cache
func NewRedisCache(client goredis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get returns the cached recommendation for key
func (c *RedisCache) Get(ctx context.Context, key string) (*insight.Recommendation, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("key %q: %w", key, insight.ErrCacheMiss)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading recommendation: %w", err)
	}

	var rec insight.Recommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("error unmarshaling recommendation: %w", err)
	}

	return &rec, nil
}

// Set stores a recommendation under key for ttl
func (c *RedisCache) Set(ctx context.Context, key string, rec insight.Recommendation, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s", ttl)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error marshaling recommendation: %w", err)
	}

	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("error writing recommendation: %w", err)
	}

	return nil
}

// Clear removes whatever is stored under key
func (c *RedisCache) Clear(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("error deleting recommendation: %w", err)
	}
	return nil
}
