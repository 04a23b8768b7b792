package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"hubgate/internal/token"
)

// TokenValidator validates bearer tokens presented by agents and consumers.
type TokenValidator interface {
	Validate(tokenString string) (*token.Token, error)
}

type contextKeyToken struct{}

// GetToken retrieves the authenticated credential from the context, or nil
// if the request did not pass through RequireAuth.
func GetToken(ctx context.Context) *token.Token {
	if tok, ok := ctx.Value(contextKeyToken{}).(*token.Token); ok {
		return tok
	}
	return nil
}

// WithToken injects a credential into a context for tests that skip the HTTP
// middleware chain.
func WithToken(ctx context.Context, tok *token.Token) context.Context {
	return context.WithValue(ctx, contextKeyToken{}, tok)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// validated credential in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			const bearerPrefix = "Bearer "
			raw, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			tok, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithToken(ctx, tok)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
