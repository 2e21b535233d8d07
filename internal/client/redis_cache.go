package client

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores pages in Redis, falling back to an in-memory cache
// when Redis is unavailable.
type RedisCache struct {
	rdb *redis.Client
	mem *MemoryCache
}

// NewRedisCache creates a new RedisCache instance and pings the server.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{
		rdb: rdb,
		mem: NewMemoryCache(),
	}, nil
}

func cacheKey(key string) string { return "page:" + key }

// Get returns the cached value from Redis, or from the memory fallback.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.rdb.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		return r.mem.Get(ctx, key)
	}
	return value, true
}

// Set stores a value with the given TTL in both Redis and the fallback.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.rdb.Set(ctx, cacheKey(key), value, ttl).Err(); err != nil {
		r.mem.Set(ctx, key, value, ttl)
		return
	}
	r.mem.Set(ctx, key, value, ttl)
}

// Delete drops a cached value from both Redis and the fallback.
func (r *RedisCache) Delete(ctx context.Context, key string) {
	r.rdb.Del(ctx, cacheKey(key))
	r.mem.Delete(ctx, key)
}

// Close shuts down both Redis and the memory fallback.
func (r *RedisCache) Close() error {
	r.mem.Close()
	return r.rdb.Close()
}

// Health checks Redis connection health.
func (r *RedisCache) Health(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
