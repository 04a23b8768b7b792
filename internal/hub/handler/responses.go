package handler

import (
	"time"

	"hubgate/internal/hub/event"
	"hubgate/internal/hub/service"
	"hubgate/internal/platform/config"
)

type infoResponse struct {
	Name          string `json:"name"`
	Env           string `json:"env"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Time          string `json:"time"`
}

type heartbeatResponse struct {
	OK bool   `json:"ok"`
	At string `json:"at"`
}

type sourcesResponse struct {
	Data []config.Source `json:"data"`
}

// eventDTO is the read-side representation of a stream event.
type eventDTO struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Version    int            `json:"version"`
	Source     string         `json:"source"`
	OccurredAt *string        `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

type listEventsResponse struct {
	Data       []eventDTO `json:"data"`
	NextCursor *string    `json:"next_cursor"`
	HasMore    bool       `json:"has_more"`
}

// createEventResponse echoes the assigned record to the producer.
type createEventResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Source     string `json:"source"`
	OccurredAt string `json:"occurred_at"`
	CreatedAt  string `json:"created_at"`
}

func toEventDTO(e event.Event) eventDTO {
	dto := eventDTO{
		ID:      e.ID,
		Type:    string(e.Type),
		Version: e.Version,
		Source:  e.Source,
		Payload: e.Payload,
	}
	if dto.Payload == nil {
		dto.Payload = map[string]any{}
	}
	if !e.OccurredAt.IsZero() {
		s := e.OccurredAt.UTC().Format(time.RFC3339)
		dto.OccurredAt = &s
	}
	return dto
}

func toListResponse(page service.Page) listEventsResponse {
	resp := listEventsResponse{
		Data:    make([]eventDTO, 0, len(page.Events)),
		HasMore: page.HasMore,
	}
	for _, e := range page.Events {
		resp.Data = append(resp.Data, toEventDTO(e))
	}
	if page.NextCursor != "" {
		cursor := page.NextCursor
		resp.NextCursor = &cursor
	}
	return resp
}

func toCreateResponse(e event.Event) createEventResponse {
	return createEventResponse{
		ID:         e.ID,
		Type:       string(e.Type),
		Source:     e.Source,
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
