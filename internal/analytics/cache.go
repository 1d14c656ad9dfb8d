package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryCache caches computed dashboard summaries so many viewers do
// not recompute the same reduction.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*Summary, error)
	Set(ctx context.Context, key string, s *Summary) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache wraps a Redis client. A short TTL keeps dashboards
// near-real-time while absorbing viewer fan-out.
func NewSummaryCache(client *redis.Client) SummaryCache {
	return &redisCache{client: client, ttl: 5 * time.Minute}
}

func cacheKey(key string) string { return fmt.Sprintf("dashboard:%s:summary", key) }

func (c *redisCache) Get(ctx context.Context, key string) (*Summary, error) {
	data, err := c.client.Get(ctx, cacheKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *redisCache) Set(ctx context.Context, key string, s *Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(key), data, c.ttl).Err()
}
