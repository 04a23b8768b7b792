// Package token models the scoped credentials agents and consumers present
// to the hub, and provides the JWT service that issues and validates them.
package token

import "strings"

// Hub scopes.
const (
	ScopeRead  = "hub:read"
	ScopeWrite = "hub:write"
)

// Token is an authenticated credential. Name follows the agent naming
// convention "<source>-<environment>", e.g. "energyapp-prod".
type Token struct {
	ID     string
	Name   string
	UserID string
	Scopes []string
}

// Can reports whether the token carries the named scope.
func (t *Token) Can(scope string) bool {
	for _, s := range t.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Identity returns the producer identity bound to this token: the part of
// the token name before the first '-'. Returns "" when the token has no name,
// in which case no identity is derivable and source binding is skipped.
func (t *Token) Identity() string {
	if t.Name == "" {
		return ""
	}
	identity, _, _ := strings.Cut(t.Name, "-")
	return identity
}
