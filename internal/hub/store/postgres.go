package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hubgate/internal/hub/event"
	"hubgate/internal/hub/eventid"
)

// PostgresStore is the durable EventStore backed by the hub_events table
// (see migrations/001_create_hub_events.sql). Appends are single-row inserts,
// so atomicity and reader isolation come from Postgres itself.
type PostgresStore struct {
	pool *pgxpool.Pool
	ids  eventid.Generator
	now  func() time.Time
}

// NewPostgresStore creates an EventStore on the given pool.
func NewPostgresStore(pool *pgxpool.Pool, ids eventid.Generator) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		ids:  ids,
		now:  time.Now,
	}
}

// Connect opens a pgx pool for the event store.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// uniqueViolation is the Postgres error code for duplicate primary keys.
const uniqueViolation = "23505"

// Append assigns ID and CreatedAt and inserts the event.
func (s *PostgresStore) Append(ctx context.Context, e event.Event) (event.Event, error) {
	now := s.now().UTC()
	if e.ID == "" {
		id, err := s.ids.Next(now)
		if err != nil {
			return event.Event{}, err
		}
		e.ID = id
	}
	e.CreatedAt = now

	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("marshal payload: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO hub_events (id, type, version, source, payload, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, string(e.Type), e.Version, e.Source, payloadJSON, e.OccurredAt.UTC(), e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return event.Event{}, ErrDuplicateID
		}
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return e, nil
}

// Scan returns up to limit events ordered by (occurred_at, id) ascending.
func (s *PostgresStore) Scan(ctx context.Context, filter ScanFilter, limit int) ([]event.Event, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, type, version, source, payload, occurred_at, created_at
		FROM hub_events
	`)

	var conds []string
	var args []any
	if filter.Since != nil {
		args = append(args, filter.Since.UTC())
		conds = append(conds, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if filter.AfterID != "" {
		args = append(args, filter.AfterID)
		conds = append(conds, fmt.Sprintf("id > $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY occurred_at, id LIMIT $%d", len(args)))

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	defer rows.Close()

	out := make([]event.Event, 0, limit)
	for rows.Next() {
		var (
			e           event.Event
			eventType   string
			payloadJSON []byte
		)
		if err := rows.Scan(&e.ID, &eventType, &e.Version, &e.Source, &payloadJSON, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Type = event.Type(eventType)
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		if e.Payload == nil {
			e.Payload = map[string]any{}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return out, nil
}
