package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"hubgate/internal/hub/event"
)

// seqGenerator hands out deterministic, lexicographically increasing ids so
// ordering assertions don't depend on wall-clock entropy.
type seqGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqGenerator) Next(time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%026d", g.n), nil
}

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
	base  time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore(&seqGenerator{})
	s.ctx = context.Background()
	s.base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) appendAt(occurredAt time.Time) event.Event {
	stored, err := s.store.Append(s.ctx, event.Event{
		Type:       event.TypeAgentHeartbeat,
		Version:    1,
		Source:     "energyapp",
		Payload:    map[string]any{},
		OccurredAt: occurredAt,
	})
	s.Require().NoError(err)
	return stored
}

func (s *MemoryStoreSuite) TestAppendAssignsIDAndCreatedAt() {
	stored := s.appendAt(s.base)
	s.NotEmpty(stored.ID)
	s.False(stored.CreatedAt.IsZero())
}

func (s *MemoryStoreSuite) TestAppendRejectsDuplicateID() {
	stored := s.appendAt(s.base)

	_, err := s.store.Append(s.ctx, event.Event{
		ID:         stored.ID,
		Type:       event.TypeAgentHeartbeat,
		Version:    1,
		Source:     "energyapp",
		OccurredAt: s.base,
	})
	s.Require().ErrorIs(err, ErrDuplicateID)

	// The failed append must not be observable.
	events, err := s.store.Scan(s.ctx, ScanFilter{}, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *MemoryStoreSuite) TestScanOrdersByOccurredAtThenID() {
	// Append out of occurrence order; ids are assigned in append order.
	e3 := s.appendAt(s.base.Add(2 * time.Hour))
	e1 := s.appendAt(s.base)
	e2 := s.appendAt(s.base.Add(time.Hour))

	events, err := s.store.Scan(s.ctx, ScanFilter{}, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(e1.ID, events[0].ID)
	s.Equal(e2.ID, events[1].ID)
	s.Equal(e3.ID, events[2].ID)
}

func (s *MemoryStoreSuite) TestScanBreaksTiesByID() {
	// All three share one occurred_at; id order decides.
	a := s.appendAt(s.base)
	b := s.appendAt(s.base)
	c := s.appendAt(s.base)

	events, err := s.store.Scan(s.ctx, ScanFilter{}, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal([]string{a.ID, b.ID, c.ID}, []string{events[0].ID, events[1].ID, events[2].ID})
}

func (s *MemoryStoreSuite) TestScanSinceFilter() {
	s.appendAt(s.base)
	kept := s.appendAt(s.base.Add(time.Hour))

	since := s.base.Add(30 * time.Minute)
	events, err := s.store.Scan(s.ctx, ScanFilter{Since: &since}, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(kept.ID, events[0].ID)

	// since is inclusive.
	since = s.base.Add(time.Hour)
	events, err = s.store.Scan(s.ctx, ScanFilter{Since: &since}, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *MemoryStoreSuite) TestScanAfterIDIsExclusive() {
	a := s.appendAt(s.base)
	b := s.appendAt(s.base)
	c := s.appendAt(s.base)

	events, err := s.store.Scan(s.ctx, ScanFilter{AfterID: a.ID}, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(b.ID, events[0].ID)
	s.Equal(c.ID, events[1].ID)

	events, err = s.store.Scan(s.ctx, ScanFilter{AfterID: c.ID}, 10)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *MemoryStoreSuite) TestScanCombinedFilters() {
	s.appendAt(s.base) // before since
	b := s.appendAt(s.base.Add(time.Hour))
	c := s.appendAt(s.base.Add(time.Hour))

	since := s.base.Add(time.Hour)
	events, err := s.store.Scan(s.ctx, ScanFilter{Since: &since, AfterID: b.ID}, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(c.ID, events[0].ID)
}

func (s *MemoryStoreSuite) TestScanHonorsLimit() {
	for i := 0; i < 5; i++ {
		s.appendAt(s.base)
	}
	events, err := s.store.Scan(s.ctx, ScanFilter{}, 3)
	s.Require().NoError(err)
	s.Len(events, 3)
}

func (s *MemoryStoreSuite) TestAppendIsVisibleToSubsequentScan() {
	stored := s.appendAt(s.base)
	events, err := s.store.Scan(s.ctx, ScanFilter{}, 1)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(stored.ID, events[0].ID)
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	st := NewMemoryStore(&seqGenerator{})
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := st.Append(ctx, event.Event{
				Type:       event.TypeMetricReported,
				Version:    1,
				Source:     "energyapp",
				OccurredAt: base.Add(time.Duration(i%10) * time.Second),
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	events, err := st.Scan(ctx, ScanFilter{}, 100)
	require.NoError(t, err)
	require.Len(t, events, 50)
	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		ordered := prev.OccurredAt.Before(cur.OccurredAt) ||
			(prev.OccurredAt.Equal(cur.OccurredAt) && prev.ID < cur.ID)
		require.True(t, ordered, "events %d and %d out of order", i-1, i)
	}
}
