package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores JSON-encoded values. Get reports false on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache namespaces every key as "<prefix>:<key>".
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Key returns the redis key stored for key.
func (c *RedisCache) Key(key string) string {
	return c.prefix + key
}

// NewRedisClient connects and pings so misconfiguration fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// stale shape after a deploy; treat as a miss
		_ = c.client.Del(ctx, c.Key(key)).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(key), raw, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.Key(k)
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// Noop is used when redis is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (Noop) Del(context.Context, ...string) error { return nil }
