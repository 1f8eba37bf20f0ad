package ogimage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "og:image:"

// RedisCache stores fetch results in redis for ttl.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, pageURL string) (string, bool, error) {
	if c == nil || c.client == nil {
		// No-op when redis is not configured
		return "", false, nil
	}
	value, err := c.client.Get(ctx, keyPrefix+pageURL).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, pageURL, imageURL string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, keyPrefix+pageURL, imageURL, c.ttl).Err()
}
