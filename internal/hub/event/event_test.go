package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hubgate/pkg/apierrors"
)

func validInput(now time.Time) Input {
	return Input{
		Type:       "AgentHeartbeat",
		Source:     "energyapp",
		OccurredAt: now,
	}
}

func TestNewAcceptsValidInput(t *testing.T) {
	now := time.Now()
	ev, err := New(validInput(now), now)
	require.NoError(t, err)
	require.Equal(t, TypeAgentHeartbeat, ev.Type)
	require.Equal(t, "energyapp", ev.Source)
	require.Equal(t, 1, ev.Version, "version defaults to 1")
	require.NotNil(t, ev.Payload, "nil payload becomes an empty document")
	require.Empty(t, ev.Payload)
	require.Empty(t, ev.ID, "id is assigned by the store, not validation")
}

func TestNewRejectsUnknownType(t *testing.T) {
	now := time.Now()
	in := validInput(now)
	in.Type = "SomethingElse"

	_, err := New(in, now)
	require.True(t, apierrors.Is(err, apierrors.CodeValidation))
	require.Contains(t, apierrors.From(err).Fields, "type")
}

func TestNewVersionBounds(t *testing.T) {
	now := time.Now()

	for _, version := range []int{0, -1, 256} {
		in := validInput(now)
		in.Version = &version
		_, err := New(in, now)
		require.True(t, apierrors.Is(err, apierrors.CodeValidation), "version %d must be rejected", version)
		require.Contains(t, apierrors.From(err).Fields, "version")
	}

	for _, version := range []int{1, 255} {
		in := validInput(now)
		in.Version = &version
		ev, err := New(in, now)
		require.NoError(t, err)
		require.Equal(t, version, ev.Version)
	}
}

func TestNewFutureTimestampBound(t *testing.T) {
	now := time.Now()

	in := validInput(now)
	in.OccurredAt = now.Add(6 * time.Minute)
	_, err := New(in, now)
	require.True(t, apierrors.Is(err, apierrors.CodeValidation))
	require.Contains(t, apierrors.From(err).Fields, "occurred_at")

	in.OccurredAt = now.Add(4 * time.Minute)
	_, err = New(in, now)
	require.NoError(t, err, "4 minutes of clock skew is within tolerance")
}

func TestNewSourceBounds(t *testing.T) {
	now := time.Now()

	in := validInput(now)
	in.Source = ""
	_, err := New(in, now)
	require.True(t, apierrors.Is(err, apierrors.CodeValidation))
	require.Contains(t, apierrors.From(err).Fields, "source")

	long := make([]byte, MaxSourceLength+1)
	for i := range long {
		long[i] = 'a'
	}
	in.Source = string(long)
	_, err = New(in, now)
	require.True(t, apierrors.Is(err, apierrors.CodeValidation))
	require.Contains(t, apierrors.From(err).Fields, "source")
}

func TestNewCollectsAllFieldErrors(t *testing.T) {
	now := time.Now()
	version := 300
	_, err := New(Input{Type: "Nope", Version: &version}, now)

	require.True(t, apierrors.Is(err, apierrors.CodeValidation))
	fields := apierrors.From(err).Fields
	require.Contains(t, fields, "type")
	require.Contains(t, fields, "source")
	require.Contains(t, fields, "occurred_at")
	require.Contains(t, fields, "version")
}

func TestParseType(t *testing.T) {
	for _, name := range []string{
		"AppRegistered", "AgentHeartbeat", "InteractionDetected",
		"MetricReported", "ErrorReported", "SecuritySignal", "DeploySignal",
	} {
		parsed, err := ParseType(name)
		require.NoError(t, err)
		require.Equal(t, Type(name), parsed)
	}

	_, err := ParseType("agentheartbeat")
	require.Error(t, err, "type matching is case sensitive")
}
