package handler

import (
	"net/http"
	"strconv"
	"time"

	"hubgate/internal/hub/event"
	"hubgate/internal/hub/eventid"
	"hubgate/internal/hub/service"
	"hubgate/pkg/apierrors"
)

// createEventRequest is the POST /v1/hub/events body.
type createEventRequest struct {
	Type       string         `json:"type"`
	Source     string         `json:"source"`
	OccurredAt string         `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
	Version    *int           `json:"version"`
}

// toInput parses the producer-supplied timestamp; the rest of the field
// validation happens in the event model.
func (r createEventRequest) toInput() (event.Input, error) {
	in := event.Input{
		Type:    r.Type,
		Source:  r.Source,
		Payload: r.Payload,
		Version: r.Version,
	}

	if r.OccurredAt != "" {
		occurredAt, err := time.Parse(time.RFC3339, r.OccurredAt)
		if err != nil {
			return event.Input{}, apierrors.NewValidation(map[string][]string{
				"occurred_at": {"The occurred_at is not a valid date."},
			})
		}
		in.OccurredAt = occurredAt
	}

	return in, nil
}

// parseListQuery validates the GET /v1/hub/events query parameters:
// since (RFC3339), cursor (well-formed 26-char event ID), limit (default 50,
// within [1, 200]).
func parseListQuery(r *http.Request) (service.ListQuery, error) {
	fields := map[string][]string{}
	query := service.ListQuery{Limit: service.DefaultLimit}
	params := r.URL.Query()

	if raw := params.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fields["since"] = append(fields["since"], "The since is not a valid date.")
		} else {
			query.Since = &since
		}
	}

	if cursor := params.Get("cursor"); cursor != "" {
		if !eventid.Valid(cursor) {
			fields["cursor"] = append(fields["cursor"], "The cursor must be a valid event id.")
		} else {
			query.Cursor = cursor
		}
	}

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > service.MaxLimit {
			fields["limit"] = append(fields["limit"], "The limit must be between 1 and 200.")
		} else {
			query.Limit = limit
		}
	}

	if len(fields) > 0 {
		return service.ListQuery{}, apierrors.NewValidation(fields)
	}
	return query, nil
}
