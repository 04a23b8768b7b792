package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hubgate/pkg/apierrors"
)

const testKey = "test-signing-key"

func TestIssueAndValidateRoundTrip(t *testing.T) {
	svc := NewJWTService(testKey, "hubgate")

	signed, err := svc.Issue("energyapp-prod", "user-1", []string{ScopeWrite}, time.Hour)
	require.NoError(t, err)

	tok, err := svc.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "energyapp-prod", tok.Name)
	require.Equal(t, "user-1", tok.UserID)
	require.NotEmpty(t, tok.ID)
	require.True(t, tok.Can(ScopeWrite))
	require.False(t, tok.Can(ScopeRead))
}

func TestIssueWithoutExpiry(t *testing.T) {
	svc := NewJWTService(testKey, "hubgate")

	signed, err := svc.Issue("energyapp-prod", "", []string{ScopeWrite}, 0)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.NoError(t, err, "agent tokens without expiry stay valid")
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService(testKey, "hubgate")

	signed, err := svc.Issue("energyapp-prod", "", []string{ScopeWrite}, -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.True(t, apierrors.Is(err, apierrors.CodeUnauthorized))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	svc := NewJWTService(testKey, "hubgate")
	other := NewJWTService("different-key", "hubgate")

	signed, err := other.Issue("energyapp-prod", "", []string{ScopeWrite}, time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.True(t, apierrors.Is(err, apierrors.CodeUnauthorized))
}

func TestValidateRejectsForeignIssuer(t *testing.T) {
	svc := NewJWTService(testKey, "hubgate")
	other := NewJWTService(testKey, "somewhere-else")

	signed, err := other.Issue("energyapp-prod", "", []string{ScopeWrite}, time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.True(t, apierrors.Is(err, apierrors.CodeUnauthorized),
		"same key under another issuer must not validate")
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService(testKey, "hubgate")
	_, err := svc.Validate("not-a-token")
	require.True(t, apierrors.Is(err, apierrors.CodeUnauthorized))
}

func TestIdentity(t *testing.T) {
	cases := map[string]string{
		"energyapp-prod":  "energyapp",
		"mailcow-staging": "mailcow",
		"supervisor-prod": "supervisor",
		"energyapp":       "energyapp",
		"a-b-c":           "a",
		"":                "",
	}
	for name, want := range cases {
		tok := &Token{Name: name}
		require.Equal(t, want, tok.Identity(), "token name %q", name)
	}
}
