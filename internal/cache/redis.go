package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares entries across processes. Redis enforces the TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttlOr(ttl, DefaultTTL),
	}
}

func (c *RedisCache) Get(ctx context.Context, providerID string, input interface{}) (json.RawMessage, bool, error) {
	key, err := Key(c.prefix, providerID, input)
	if err != nil {
		return nil, false, err
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}
	return json.RawMessage(val), true, nil
}

func (c *RedisCache) Put(ctx context.Context, providerID string, input interface{}, value json.RawMessage, ttl time.Duration) error {
	key, err := Key(c.prefix, providerID, input)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, string(value), ttlOr(ttl, c.ttl)).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}
