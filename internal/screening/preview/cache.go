// Package preview memoizes the guest-facing trust preview.
//
// The key holds only the inputs that usually move the preview, so the map
// stays tiny and needs no eviction. Anything outside the key is picked up by
// an explicit Refresh.
package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"caslkey/internal/screening/metrics"
	"caslkey/internal/screening/models"
	"caslkey/internal/screening/scoring"
)

// Key is the memoization key.
type Key struct {
	TravelingNearHome        bool
	TotalGuests              int
	UsedSTRBefore            bool
	HasBackgroundCheckStatus bool
}

// KeyFor derives the cache key for a snapshot and its facts.
func KeyFor(s models.FormSnapshot, facts models.VerificationFacts) Key {
	return Key{
		TravelingNearHome:        s.TravelingNearHome,
		TotalGuests:              s.TotalGuests,
		UsedSTRBefore:            s.UsedSTRBefore,
		HasBackgroundCheckStatus: facts.HasBackgroundCheckStatus(),
	}
}

// ComputeFunc produces a preview on a cache miss.
type ComputeFunc func(s models.FormSnapshot, facts models.VerificationFacts, now time.Time) models.TrustPreview

// Persister keeps the latest preview across reloads.
type Persister interface {
	SavePreview(ctx context.Context, p models.TrustPreview) error
	ClearPreview(ctx context.Context) error
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*models.TrustPreview
	latest  *models.TrustPreview

	compute   ComputeFunc
	persister Persister
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*Cache)

func WithCompute(fn ComputeFunc) Option {
	return func(c *Cache) { c.compute = fn }
}

func WithPersister(p Persister) Option {
	return func(c *Cache) { c.persister = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// New creates a cache that computes through scoring.Preview unless
// overridden.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[Key]*models.TrustPreview),
		compute: scoring.Preview,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached preview for the snapshot's key, computing and
// persisting it on a miss. Hits return the same pointer.
func (c *Cache) Get(ctx context.Context, s models.FormSnapshot, facts models.VerificationFacts, now time.Time) *models.TrustPreview {
	key := KeyFor(s, facts)

	c.mu.Lock()
	if p, ok := c.entries[key]; ok {
		c.latest = p
		c.mu.Unlock()
		c.metrics.IncrementPreviewCache("hit")
		return p
	}
	c.mu.Unlock()

	c.metrics.IncrementPreviewCache("miss")
	return c.store(ctx, key, s, facts, now)
}

// Refresh recomputes the preview for the snapshot's key even when an entry
// exists. Used after a fact the key does not capture changes.
func (c *Cache) Refresh(ctx context.Context, s models.FormSnapshot, facts models.VerificationFacts, now time.Time) *models.TrustPreview {
	c.metrics.IncrementPreviewCache("refresh")
	return c.store(ctx, KeyFor(s, facts), s, facts, now)
}

func (c *Cache) store(ctx context.Context, key Key, s models.FormSnapshot, facts models.VerificationFacts, now time.Time) *models.TrustPreview {
	computed := c.compute(s, facts, now)
	p := &computed

	c.mu.Lock()
	c.entries[key] = p
	c.latest = p
	c.mu.Unlock()

	if c.persister != nil {
		if err := c.persister.SavePreview(ctx, computed); err != nil {
			c.logger.WarnContext(ctx, "failed to persist trust preview", "error", err)
		}
	}
	return p
}

// Latest returns the most recently served preview, or nil.
func (c *Cache) Latest() *models.TrustPreview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Seed installs a previously persisted preview as the latest value without
// recomputing it.
func (c *Cache) Seed(p models.TrustPreview) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = &p
}

// Clear drops every entry and the persisted copy.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	clear(c.entries)
	c.latest = nil
	c.mu.Unlock()

	if c.persister != nil {
		return c.persister.ClearPreview(ctx)
	}
	return nil
}

// Len reports the number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
