package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements shared caching backed by a Redis instance,
// letting parallel evaluation runs reuse each other's query results
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(addr string, db int, ttl time.Duration) *RedisCache {
	if addr == "" {
		addr = "localhost:6379"
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		ttl: ttl,
	}
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(key string) ([]byte, bool) {
	val, err := c.client.Get(context.Background(), key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores a value in Redis with the given TTL
func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	return c.client.Set(context.Background(), key, value, ttl).Err()
}

// Delete removes a value from Redis
func (c *RedisCache) Delete(key string) error {
	return c.client.Del(context.Background(), key).Err()
}

// Clear removes all graphgate keys from the configured database
func (c *RedisCache) Clear() error {
	ctx := context.Background()
	iter := c.client.Scan(ctx, 0, "graphgate:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close releases the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
