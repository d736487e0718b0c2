package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyCache maps idempotency keys to tracking ids so replays
// skip the order store.
type RedisIdempotencyCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisIdempotencyCache(client *redis.Client, ttl time.Duration) *RedisIdempotencyCache {
	return &RedisIdempotencyCache{Client: client, TTL: ttl}
}

func (c *RedisIdempotencyCache) Key(idempotencyKey string) string {
	return "idem:" + idempotencyKey
}

func (c *RedisIdempotencyCache) Lookup(ctx context.Context, idempotencyKey string) (string, bool, error) {
	trackingID, err := c.Client.Get(ctx, c.Key(idempotencyKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return trackingID, true, nil
}

func (c *RedisIdempotencyCache) Remember(ctx context.Context, idempotencyKey, trackingID string) error {
	return c.Client.Set(ctx, c.Key(idempotencyKey), trackingID, c.TTL).Err()
}
