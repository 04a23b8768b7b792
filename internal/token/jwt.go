package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hubgate/pkg/apierrors"
)

// Claims are the JWT claims carried by agent bearer tokens.
type Claims struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HMAC-signed agent tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Issue mints a token for an agent. expiresIn of zero issues a token without
// an expiry (long-lived agent credentials); any other value sets the expiry
// relative to now.
func (s *JWTService) Issue(name, userID string, scopes []string, expiresIn time.Duration) (string, error) {
	claims := Claims{
		Name:   name,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   s.issuer,
			ID:       uuid.NewString(),
		},
	}
	if expiresIn != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(expiresIn))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Validate parses and verifies a bearer token, returning its credential.
func (s *JWTService) Validate(tokenString string) (*Token, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierrors.New(apierrors.CodeUnauthorized, "token has expired")
		}
		return nil, apierrors.New(apierrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apierrors.New(apierrors.CodeUnauthorized, "invalid token claims")
	}

	return &Token{
		ID:     claims.ID,
		Name:   claims.Name,
		UserID: claims.Subject,
		Scopes: claims.Scopes,
	}, nil
}
