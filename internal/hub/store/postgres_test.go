package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hubgate/internal/hub/event"
	"hubgate/internal/hub/eventid"
)

// newPostgresStore connects to the database named by HUB_TEST_POSTGRES_DSN,
// skipping when none is provided. The hub_events migration must have been
// applied.
func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("HUB_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HUB_TEST_POSTGRES_DSN not set")
	}

	pool, err := Connect(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "TRUNCATE hub_events")
		pool.Close()
	})

	_, err = pool.Exec(context.Background(), "TRUNCATE hub_events")
	require.NoError(t, err)

	return NewPostgresStore(pool, eventid.NewMonotonic())
}

func TestPostgresAppendAndScan(t *testing.T) {
	st := newPostgresStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	stored, err := st.Append(ctx, event.Event{
		Type:       event.TypeAgentHeartbeat,
		Version:    1,
		Source:     "energyapp",
		Payload:    map[string]any{"load": 0.5},
		OccurredAt: base,
	})
	require.NoError(t, err)
	require.Len(t, stored.ID, eventid.Length)
	require.False(t, stored.CreatedAt.IsZero())

	events, err := st.Scan(ctx, ScanFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, stored.ID, events[0].ID)
	require.Equal(t, event.TypeAgentHeartbeat, events[0].Type)
	require.Equal(t, map[string]any{"load": 0.5}, events[0].Payload)
	require.True(t, events[0].OccurredAt.Equal(base))
}

func TestPostgresAppendRejectsDuplicateID(t *testing.T) {
	st := newPostgresStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	stored, err := st.Append(ctx, event.Event{
		Type:       event.TypeAgentHeartbeat,
		Version:    1,
		Source:     "energyapp",
		OccurredAt: base,
	})
	require.NoError(t, err)

	_, err = st.Append(ctx, event.Event{
		ID:         stored.ID,
		Type:       event.TypeAgentHeartbeat,
		Version:    1,
		Source:     "energyapp",
		OccurredAt: base,
	})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestPostgresScanOrderingAndFilters(t *testing.T) {
	st := newPostgresStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		stored, err := st.Append(ctx, event.Event{
			Type:       event.TypeMetricReported,
			Version:    1,
			Source:     "energyapp",
			OccurredAt: base.Add(offset),
		})
		require.NoError(t, err)
		ids = append(ids, stored.ID)
	}

	// Ordered by occurred_at regardless of append order.
	events, err := st.Scan(ctx, ScanFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, ids[1], events[0].ID)
	require.Equal(t, ids[2], events[1].ID)
	require.Equal(t, ids[0], events[2].ID)

	since := base.Add(time.Hour)
	events, err = st.Scan(ctx, ScanFilter{Since: &since}, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	events, err = st.Scan(ctx, ScanFilter{AfterID: ids[1]}, 10)
	require.NoError(t, err)
	for _, e := range events {
		require.Greater(t, e.ID, ids[1])
	}
}
