package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore implements CounterStore with an exact sliding window per
// key. Single-process only; distributed deployments use RedisStore. Idle
// buckets are swept out periodically so the map does not grow with every
// credential ever seen.
type InMemoryStore struct {
	mu        sync.Mutex
	buckets   map[string]*slidingWindow
	lastSweep time.Time
}

// slidingWindow tracks request timestamps inside the window.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// NewInMemoryStore creates an empty in-memory counter store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		buckets:   make(map[string]*slidingWindow),
		lastSweep: time.Now(),
	}
}

// Allow checks whether one more request fits in the window and records it.
func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastSweep) > window {
		s.sweep(now)
	}

	sw := s.buckets[key]
	if sw == nil {
		sw = &slidingWindow{window: window}
		s.buckets[key] = sw
	}
	sw.cleanup(now)

	if len(sw.timestamps) >= limit {
		oldest := sw.timestamps[0]
		resetAt := oldest.Add(window)
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

	sw.timestamps = append(sw.timestamps, now)
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// sweep drops buckets whose every timestamp fell out of their window.
// Callers must hold s.mu.
func (s *InMemoryStore) sweep(now time.Time) {
	for key, sw := range s.buckets {
		sw.cleanup(now)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
		}
	}
	s.lastSweep = now
}

// cleanup drops timestamps that fell out of the window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
