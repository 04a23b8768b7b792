// Package service implements the hub use cases: validated ingestion on
// behalf of an authenticated producer, and the cursor-paginated stream view
// for consumers. Scope checks and producer identity binding live here so the
// HTTP layer stays thin.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hubgate/internal/hub/event"
	"hubgate/internal/hub/store"
	"hubgate/internal/platform/metrics"
	"hubgate/internal/token"
	"hubgate/pkg/apierrors"
)

// DefaultLimit and MaxLimit bound the page size of the query endpoint.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Service holds the hub's use cases.
type Service struct {
	store   store.EventStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates the hub service.
func New(st store.EventStore, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Ingest validates one event-creation request and appends it to the stream.
// Returns the fully assigned record. Order of checks: write scope, field
// validation, identity binding, then the append; no invalid event is ever
// persisted.
func (s *Service) Ingest(ctx context.Context, tok *token.Token, in event.Input) (event.Event, error) {
	if !tok.Can(token.ScopeWrite) {
		s.metrics.EventsRejected.WithLabelValues("insufficient_scope").Inc()
		s.logger.WarnContext(ctx, "event rejected - missing hub:write scope",
			"token_name", tok.Name,
		)
		return event.Event{}, apierrors.New(apierrors.CodeInsufficientScope, "Token requires hub:write scope")
	}

	ev, err := event.New(in, s.now())
	if err != nil {
		s.metrics.EventsRejected.WithLabelValues("validation").Inc()
		return event.Event{}, err
	}

	// The producer identity claimed by the event must match the identity
	// bound to the credential. Tokens without a derivable identity skip the
	// check.
	if expected := tok.Identity(); expected != "" && ev.Source != expected {
		s.metrics.EventsRejected.WithLabelValues("source_mismatch").Inc()
		s.logger.WarnContext(ctx, "event rejected - source does not match token identity",
			"source", ev.Source,
			"token_name", tok.Name,
		)
		return event.Event{}, apierrors.New(apierrors.CodeSourceMismatch,
			fmt.Sprintf("Source '%s' does not match token identity '%s'", ev.Source, expected))
	}

	stored, err := s.store.Append(ctx, ev)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to append event", "error", err)
		return event.Event{}, apierrors.New(apierrors.CodeInternal, "failed to persist event")
	}

	s.metrics.EventsIngested.WithLabelValues(string(stored.Type)).Inc()
	return stored, nil
}

// ListQuery is a validated read request. Limit is already within
// [1, MaxLimit]; Cursor, when set, is a well-formed event ID.
type ListQuery struct {
	Since  *time.Time
	Cursor string
	Limit  int
}

// Page is one page of the stream plus the cursor for the next call.
type Page struct {
	Events     []event.Event
	NextCursor string
	HasMore    bool
}

// List returns an ordered page of the stream. It requests one record beyond
// the page size to detect whether more data exists without a count query;
// NextCursor is always the ID of the last returned record, so passing it
// back resumes exactly after that record under the (occurred_at, id) order.
//
// A late-arriving event backdated before an already-delivered page will not
// be seen by consumers whose cursor has advanced past it; the stream trades
// that away to stay append-only rather than reject backdated producers.
func (s *Service) List(ctx context.Context, tok *token.Token, q ListQuery) (Page, error) {
	if !tok.Can(token.ScopeRead) {
		s.logger.WarnContext(ctx, "event list rejected - missing hub:read scope",
			"token_name", tok.Name,
		)
		return Page{}, apierrors.New(apierrors.CodeInsufficientScope, "Token requires hub:read scope")
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	events, err := s.store.Scan(ctx, store.ScanFilter{Since: q.Since, AfterID: q.Cursor}, limit+1)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to scan events", "error", err)
		return Page{}, apierrors.New(apierrors.CodeInternal, "failed to read events")
	}

	page := Page{Events: events}
	if len(events) > limit {
		page.Events = events[:limit]
		page.HasMore = true
		page.NextCursor = events[limit-1].ID
	}

	s.metrics.PagesServed.Inc()
	return page, nil
}
