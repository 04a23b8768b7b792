// Package event defines the canonical shape of a hub event and its
// validation rules. Validation is pure: no event reaches the store without
// passing it, and nothing here touches I/O.
package event

import (
	"fmt"
	"time"

	"hubgate/pkg/apierrors"
)

// Type is the closed enumeration of event kinds the hub accepts.
type Type string

const (
	TypeAppRegistered       Type = "AppRegistered"
	TypeAgentHeartbeat      Type = "AgentHeartbeat"
	TypeInteractionDetected Type = "InteractionDetected"
	TypeMetricReported      Type = "MetricReported"
	TypeErrorReported       Type = "ErrorReported"
	TypeSecuritySignal      Type = "SecuritySignal"
	TypeDeploySignal        Type = "DeploySignal"
)

var knownTypes = map[Type]struct{}{
	TypeAppRegistered:       {},
	TypeAgentHeartbeat:      {},
	TypeInteractionDetected: {},
	TypeMetricReported:      {},
	TypeErrorReported:       {},
	TypeSecuritySignal:      {},
	TypeDeploySignal:        {},
}

// ParseType maps an external string to an event type. Unknown values fail
// with an explicit error rather than an implicit catch-all.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if _, ok := knownTypes[t]; !ok {
		return "", fmt.Errorf("invalid event type %q", s)
	}
	return t, nil
}

const (
	// MaxSourceLength bounds the producer identity string.
	MaxSourceLength = 100
	// MaxFutureSkew is the fixed clock skew tolerance for occurred_at.
	MaxFutureSkew = 5 * time.Minute
	// MinVersion and MaxVersion bound the payload schema version.
	MinVersion = 1
	MaxVersion = 255
)

// Event is one immutable record in the append-only stream. ID and CreatedAt
// are assigned by the store at append time.
type Event struct {
	ID         string
	Type       Type
	Version    int
	Source     string
	Payload    map[string]any
	OccurredAt time.Time
	CreatedAt  time.Time
}

// Input carries the producer-supplied fields of an event-creation request.
// A nil Version defaults to 1; a nil payload becomes an empty document.
type Input struct {
	Type       string
	Source     string
	OccurredAt time.Time
	Payload    map[string]any
	Version    *int
}

// New validates an Input against the taxonomy and field rules and returns
// the event to append. now is the ingestion clock, injected so the future
// timestamp bound is testable. All field failures are collected into a single
// validation error.
func New(in Input, now time.Time) (Event, error) {
	fields := map[string][]string{}

	eventType, err := ParseType(in.Type)
	if err != nil {
		fields["type"] = append(fields["type"], "The selected type is invalid.")
	}

	if in.Source == "" {
		fields["source"] = append(fields["source"], "The source field is required.")
	} else if len(in.Source) > MaxSourceLength {
		fields["source"] = append(fields["source"], fmt.Sprintf("The source may not be greater than %d characters.", MaxSourceLength))
	}

	if in.OccurredAt.IsZero() {
		fields["occurred_at"] = append(fields["occurred_at"], "The occurred_at field is required.")
	} else if in.OccurredAt.After(now.Add(MaxFutureSkew)) {
		fields["occurred_at"] = append(fields["occurred_at"], "The occurred_at may not be in the future.")
	}

	version := MinVersion
	if in.Version != nil {
		version = *in.Version
		if version < MinVersion || version > MaxVersion {
			fields["version"] = append(fields["version"], fmt.Sprintf("The version must be between %d and %d.", MinVersion, MaxVersion))
		}
	}

	if len(fields) > 0 {
		return Event{}, apierrors.NewValidation(fields)
	}

	payload := in.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	return Event{
		Type:       eventType,
		Version:    version,
		Source:     in.Source,
		Payload:    payload,
		OccurredAt: in.OccurredAt,
	}, nil
}
