package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"metapanel/pkg/platform/httputil"
)

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"error_description"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware limits requests by the key that keyFunc extracts. Requests with
// an empty key pass through unlimited.
func Middleware(limiter *Window, keyFunc func(*http.Request) string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			result := limiter.Allow(key)
			addRateLimitHeaders(w, result)
			if !result.Allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded", "key", key, "limit", result.Limit)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result Result) {
	retry := int(math.Ceil(result.RetryAfter.Seconds()))
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "too many metadata events for this session",
		RetryAfter: retry,
	})
}
