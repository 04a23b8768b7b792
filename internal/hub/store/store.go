// Package store provides durable append and ordered range-reads for the hub
// event stream.
//
// Stores are interface-driven so the service layer stays testable and the
// in-memory and Postgres implementations are interchangeable. The contract is
// append-only: nothing here updates or deletes an event.
package store

import (
	"context"
	"errors"
	"time"

	"hubgate/internal/hub/event"
)

// ErrDuplicateID is returned when an append collides with an existing event
// identifier. This is a server fault, not a client error.
var ErrDuplicateID = errors.New("event store: duplicate event id")

// ScanFilter restricts a range read. Both filters may be combined; AfterID is
// an exclusive lower bound applied under the same (occurred_at, id) ordering
// the scan returns.
type ScanFilter struct {
	Since   *time.Time
	AfterID string
}

// EventStore is the single shared mutable resource of the hub.
//
// Append assigns the event's ID (unless pre-assigned) and CreatedAt, and
// persists all fields atomically; a partially written event is never visible
// to Scan. Scan returns up to limit events ordered by (occurred_at ASC,
// id ASC). Reads never block appends and vice versa; an event appended before
// a Scan call is visible to it.
type EventStore interface {
	Append(ctx context.Context, e event.Event) (event.Event, error)
	Scan(ctx context.Context, filter ScanFilter, limit int) ([]event.Event, error)
}
