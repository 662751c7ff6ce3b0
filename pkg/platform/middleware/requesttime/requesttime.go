// Package requesttime pins one "now" per request so date validation, scoring
// and audit timestamps agree within a single command.
package requesttime

import (
	"net/http"
	"time"

	"caslkey/pkg/requestcontext"
)

// Middleware stamps each request with time.Now.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock stamps each request with now(). A nil clock means time.Now.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), now())))
		})
	}
}
