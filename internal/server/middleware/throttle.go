package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// Throttle is a coarse, endpoint-wide token bucket in front of the contact
// route. It sheds floods before the per-identifier windows are consulted;
// the fine-grained per-IP and per-email limits live in the gatekeeper.
func Throttle(rps float64, burst int) func(next http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(1))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":      "Too many requests. Please try again later.",
					"retryAfter": 1,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
