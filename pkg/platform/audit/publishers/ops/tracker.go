// Package ops provides a fire-and-forget tracker for workflow navigation
// events. Events are sampled, buffered and written by one background worker;
// an open circuit drops them without touching the store.
package ops

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/circuit"
)

const defaultBufferSize = 1024

// Tracker emits ops events without blocking the caller.
type Tracker struct {
	store   audit.Store
	sampler *Sampler
	breaker *circuit.Breaker
	metrics *Metrics
	logger  *slog.Logger

	bufferSize int
	events     chan audit.OpsEvent
	wg         sync.WaitGroup
	closeOnce  sync.Once
	mu         sync.RWMutex
	closed     bool
}

type Option func(*Tracker)

func WithSampler(s *Sampler) Option {
	return func(t *Tracker) { t.sampler = s }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(t *Tracker) { t.breaker = b }
}

func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func WithBufferSize(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.bufferSize = n
		}
	}
}

// New starts a tracker and its worker. Call Close to drain.
func New(store audit.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:      store,
		sampler:    NewSampler(1, nil),
		breaker:    circuit.New("audit-ops", circuit.WithCooldown(time.Minute)),
		logger:     slog.Default(),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.events = make(chan audit.OpsEvent, t.bufferSize)

	t.wg.Add(1)
	go t.run()
	return t
}

// Track enqueues event. It never blocks and never fails the caller.
func (t *Tracker) Track(_ context.Context, event audit.OpsEvent) {
	if !t.sampler.Keep(event.Action) {
		t.metrics.IncSampled()
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.events <- event:
	default:
		t.metrics.IncDropped()
	}
}

func (t *Tracker) run() {
	defer t.wg.Done()
	for event := range t.events {
		t.persist(event)
	}
}

func (t *Tracker) persist(event audit.OpsEvent) {
	if !t.breaker.Allow() {
		t.metrics.IncCircuitBreakerDropped()
		return
	}
	// Detached from any request: the event outlives it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := t.store.Append(ctx, event.ToEvent()); err != nil {
		t.metrics.IncPersistFailures()
		if _, change := t.breaker.RecordFailure(); change.Opened {
			t.metrics.SetCircuitBreakerState(true)
			t.logger.Warn("ops audit circuit opened", "error", err)
		}
		return
	}
	if _, change := t.breaker.RecordSuccess(); change.Closed {
		t.metrics.SetCircuitBreakerState(false)
	}
	t.metrics.IncTracked()
}

// Close stops accepting events and waits for the buffer to drain.
func (t *Tracker) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.events)
		t.mu.Unlock()
		t.wg.Wait()
	})
	return nil
}
