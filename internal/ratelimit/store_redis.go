package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements CounterStore with fixed-window INCR counters shared
// across instances. Window boundaries are aligned to the window size, which
// admits brief bursts across a boundary; that is within the policy's
// eventual-consistency allowance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a CounterStore on the given client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Allow increments the current window's counter and compares it to the limit.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)
	windowKey := fmt.Sprintf("%s:%d", key, windowStart.Unix())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.ExpireNX(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit incr: %w", err)
	}

	count := int(incr.Val())
	if count > limit {
		retryAfter := int(time.Until(resetAt).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		return &Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter,
		}, nil
	}

	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   resetAt,
	}, nil
}
