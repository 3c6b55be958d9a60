package mw

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// DefaultRequestsPerMinute applies when the config leaves the limit unset.
const DefaultRequestsPerMinute = 600

// RateLimitByIP returns a Chi middleware that rate limits by client IP.
// A non-positive limit disables rate limiting.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}
