// Package ratelimit throttles session creation per client IP with a sliding
// window.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	dErrors "caslkey/pkg/domain-errors"
	"caslkey/pkg/platform/httputil"
	"caslkey/pkg/requestcontext"
)

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store counts requests per key within a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Limiter is HTTP middleware over a Store.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Limiter)

func WithLogger(l *slog.Logger) Option {
	return func(lim *Limiter) { lim.logger = l }
}

// WithKeyPrefix namespaces keys so several limiters can share one store.
func WithKeyPrefix(p string) Option {
	return func(lim *Limiter) { lim.prefix = p }
}

func New(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		prefix: "rl:",
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PerIP rejects requests beyond the limit for the client IP with 429. A
// non-positive limit disables the check. Store failures let the request
// through.
func (l *Limiter) PerIP(next http.Handler) http.Handler {
	if l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		result, err := l.store.Allow(ctx, l.prefix+ip, l.limit, l.window)
		if err != nil {
			l.logger.ErrorContext(ctx, "rate limit check failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if !result.Allowed {
			retryAfter := max(int(result.ResetAt.Sub(l.now()).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			l.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"path", r.URL.Path,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
