// Package ratelimit bounds request throughput per credential under the
// single named hub-api policy (60 requests per rolling minute by default).
//
// Counters are an injectable CounterStore so the in-memory sliding window
// can be swapped for the Redis-backed counters in distributed deployments
// without touching endpoint logic. Counters are allowed to be eventually
// consistent; minor overcounting under extreme concurrency is acceptable.
package ratelimit

import (
	"context"
	"strings"
	"time"
)

// PolicyName identifies the hub API throttle in keys and logs.
const PolicyName = "hub-api"

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// CounterStore tracks request counts per key with expiry.
type CounterStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Limiter applies the hub-api policy over a CounterStore.
type Limiter struct {
	store  CounterStore
	limit  int
	window time.Duration
}

// NewLimiter creates a Limiter with the given policy bounds.
func NewLimiter(store CounterStore, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Check consumes one request from the bucket identified by key.
func (l *Limiter) Check(ctx context.Context, key string) (*Result, error) {
	return l.store.Allow(ctx, "rl:"+PolicyName+":"+sanitizeKeySegment(key), l.limit, l.window)
}

// sanitizeKeySegment escapes the delimiter in caller-controlled identifiers
// so they cannot collide with adjacent buckets.
func sanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
