package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCache keeps rendered dashboard summaries in Redis for a short TTL
// so repeated dashboard loads do not re-walk every ticket.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache wraps a Redis client. A nil client disables caching.
func NewReportCache(r *Redis, ttl time.Duration) *ReportCache {
	if r == nil || r.Client == nil || ttl <= 0 {
		return &ReportCache{}
	}
	return &ReportCache{client: r.Client, ttl: ttl}
}

// Get loads a cached value into dest. Returns false on miss or when the
// cache is disabled.
func (c *ReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value under key for the configured TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops cached entries, called after ticket mutations.
func (c *ReportCache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
