// Package eventid generates the time-ordered identifiers assigned to stream
// events.
//
// IDs are 26-character Crockford base32 ULIDs: 48 bits of millisecond
// timestamp followed by 80 bits of entropy, so lexicographic order tracks
// assignment time. The generator keeps per-process monotonicity: within one
// millisecond the entropy is strictly increasing, and if the system clock
// regresses the generator pins to the last seen millisecond rather than
// going backwards.
package eventid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Length is the canonical encoded ID length.
const Length = 26

// Generator produces unique, time-ordered event identifiers.
type Generator interface {
	Next(now time.Time) (string, error)
}

// Monotonic is the production Generator. Safe for concurrent use.
type Monotonic struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	lastMs  uint64
}

// NewMonotonic creates a Generator backed by crypto/rand entropy.
func NewMonotonic() *Monotonic {
	return &Monotonic{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Next returns a fresh ID that sorts after every ID previously returned by
// this generator.
func (g *Monotonic) Next(now time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(now.UTC())
	if ms < g.lastMs {
		ms = g.lastMs
	}
	g.lastMs = ms

	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Valid reports whether s is a well-formed event identifier.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	_, err := ulid.ParseStrict(s)
	return err == nil
}
