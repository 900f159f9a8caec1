package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/backend-presupuesto/internal/common"
)

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Limiter Limiter
	Config  Config
	OnError func(error)
}

// Middleware rejects requests over the limit with 429 RATE_LIMITED. Limiter
// failures fail open and are reported through OnError. An empty key skips limiting.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Config.Key == nil || h.Limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := h.Config.Key(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), key, h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Config.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
		if allowed {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := int(math.Ceil(time.Until(resetAt).Seconds()))
		retryAfter = max(retryAfter, 0)
		headers.Set("Retry-After", strconv.Itoa(retryAfter))
		common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests",
			map[string]int{"retryAfterSeconds": retryAfter})
	})
}

// ByClientIP keys requests by the caller's address.
func ByClientIP(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		return prefix + common.ClientIP(r)
	}
}

// ByUser keys requests by the authenticated user, falling back to the client address.
func ByUser(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		if id, ok := common.UserID(r.Context()); ok && id != "" {
			return prefix + "user:" + id
		}
		return prefix + "ip:" + common.ClientIP(r)
	}
}
