package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"hubgate/internal/hub/event"
	"hubgate/internal/hub/eventid"
)

// MemoryStore is the in-memory EventStore. Events are kept sorted by
// (occurred_at, id) so scans are a single ordered walk. Suitable for
// development and tests; production deployments use PostgresStore.
type MemoryStore struct {
	mu     sync.RWMutex
	events []event.Event
	byID   map[string]struct{}
	ids    eventid.Generator
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store using the given ID
// generator.
func NewMemoryStore(ids eventid.Generator) *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]struct{}),
		ids:  ids,
		now:  time.Now,
	}
}

// Append assigns ID and CreatedAt and inserts the event at its ordered
// position. The insert happens under one lock acquisition, so readers see
// either the whole event or nothing.
func (s *MemoryStore) Append(_ context.Context, e event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if e.ID == "" {
		id, err := s.ids.Next(now)
		if err != nil {
			return event.Event{}, err
		}
		e.ID = id
	}
	if _, exists := s.byID[e.ID]; exists {
		return event.Event{}, ErrDuplicateID
	}
	e.CreatedAt = now

	idx := sort.Search(len(s.events), func(i int) bool {
		return !less(s.events[i], e)
	})
	s.events = append(s.events, event.Event{})
	copy(s.events[idx+1:], s.events[idx:])
	s.events[idx] = e
	s.byID[e.ID] = struct{}{}

	return e, nil
}

// Scan walks the ordered slice and returns up to limit matching events.
func (s *MemoryStore) Scan(_ context.Context, filter ScanFilter, limit int) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.Event, 0, limit)
	for _, e := range s.events {
		if len(out) == limit {
			break
		}
		if filter.Since != nil && e.OccurredAt.Before(*filter.Since) {
			continue
		}
		if filter.AfterID != "" && e.ID <= filter.AfterID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// less orders events by occurred_at ascending with id as the tie-break.
// occurred_at is producer-supplied and not unique, so the tie-break is what
// keeps pagination stable.
func less(a, b event.Event) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.Before(b.OccurredAt)
	}
	return a.ID < b.ID
}
