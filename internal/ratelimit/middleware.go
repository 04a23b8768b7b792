package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"hubgate/internal/platform/metrics"
	"hubgate/internal/platform/middleware"
	"hubgate/pkg/httputil"
)

// Middleware enforces the hub-api policy before any endpoint logic runs.
// Requests are keyed by token ID, falling back to the token's user, then the
// client network address. A store failure fails open: throttling protects
// the store, it must not take the API down with it.
func Middleware(limiter *Limiter, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := middleware.GetClientIP(ctx)
			if tok := middleware.GetToken(ctx); tok != nil {
				switch {
				case tok.ID != "":
					key = tok.ID
				case tok.UserID != "":
					key = tok.UserID
				}
			}

			result, err := limiter.Check(ctx, key)
			if err != nil {
				logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"request_id", middleware.GetRequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.RateLimited.Inc()
				logger.WarnContext(ctx, "rate limit exceeded",
					"policy", PolicyName,
					"request_id", middleware.GetRequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, rateLimitExceededResponse{
					Error:      "rate_limit_exceeded",
					Message:    "Too many requests. Please try again later.",
					RetryAfter: result.RetryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type rateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
