// Package debounce collapses bursts of calls into the first one.
package debounce

import (
	"time"

	"golang.org/x/time/rate"
)

// Leading runs the first call of a burst immediately and drops every other
// call that arrives within the window after it. It is a token bucket holding
// a single token that refills once per window.
type Leading struct {
	limiter *rate.Limiter
	now     func() time.Time
}

// NewLeading returns a debouncer with the given window. A zero window lets every call through.
func NewLeading(window time.Duration) *Leading {
	limit := rate.Inf
	if window > 0 {
		limit = rate.Every(window)
	}
	return &Leading{limiter: rate.NewLimiter(limit, 1), now: time.Now}
}

// Allow reports whether a call arriving now should run, and if so starts a new window.
// Dropped calls do not push the window out.
func (l *Leading) Allow() bool {
	return l.limiter.AllowN(l.now(), 1)
}

// Do runs fn unless a call was let through within the window. It reports
// whether fn ran. fn runs on the caller's goroutine.
func (l *Leading) Do(fn func()) bool {
	if !l.Allow() {
		return false
	}
	fn()
	return true
}
