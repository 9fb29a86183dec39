// Package middleware holds HTTP middleware shared by the page and API routes.
package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// RateLimiter caps the request rate of the routes it wraps with a single
// token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Handler rejects requests over the limit with 429 and an RFC 7807 body.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}

		rl.logger.WarnContext(r.Context(), "rate limit exceeded",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
		)
		w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, map[string]any{
			"type":     "about:blank",
			"title":    http.StatusText(http.StatusTooManyRequests),
			"status":   http.StatusTooManyRequests,
			"detail":   "Too many uploads, please retry shortly.",
			"instance": r.URL.Path,
			"trace_id": chimw.GetReqID(r.Context()),
		})
	})
}

// retryAfter is the wait in whole seconds until the next token, at least 1.
func (rl *RateLimiter) retryAfter() int {
	return max(1, int(math.Ceil(1/float64(rl.limiter.Limit()))))
}
