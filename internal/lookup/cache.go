package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache stores lookup results as JSON values with a TTL, so
// repeat validations of the same player ID skip the upstream call.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*PlayerInfo, error) {
	raw, err := c.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lookup result from Redis: %w", err)
	}

	var info PlayerInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached lookup result: %w", err)
	}
	return &info, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, info PlayerInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal lookup result: %w", err)
	}
	return c.Client.Set(ctx, key, raw, c.TTL).Err()
}
