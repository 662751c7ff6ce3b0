// Package security buffers session access violations and flushes them to the
// audit store in batches. Emission never blocks a request.
package security

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "caslkey/pkg/platform/audit"
)

const (
	defaultFlushInterval = time.Second
	defaultBatchSize     = 100
)

type Publisher struct {
	store         audit.Store
	queue         *eventQueue
	logger        *slog.Logger
	flushInterval time.Duration
	batchSize     int

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type Option func(*Publisher)

func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithCapacity(n int) Option {
	return func(p *Publisher) { p.queue = newEventQueue(n) }
}

// New starts a publisher with a background flush loop.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:         store,
		queue:         newEventQueue(0),
		logger:        slog.Default(),
		flushInterval: defaultFlushInterval,
		batchSize:     defaultBatchSize,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.loop()
	return p
}

// Emit buffers event. When the buffer is full the oldest event is dropped.
func (p *Publisher) Emit(_ context.Context, event audit.SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Severity == "" {
		event.Severity = audit.SeverityWarning
	}
	p.queue.push(event)
}

func (p *Publisher) loop() {
	defer close(p.done)
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.flush()
		case <-p.stop:
			p.flush()
			return
		}
	}
}

func (p *Publisher) flush() {
	for {
		batch := p.queue.take(p.batchSize)
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		for _, event := range batch {
			if err := p.store.Append(ctx, event.ToEvent()); err != nil {
				p.logger.Error("failed to persist security audit event",
					"action", event.Action,
					"session_id", event.SessionID,
					"error", err,
				)
			}
		}
		cancel()
	}
}

// Dropped reports how many events were overwritten before being flushed.
func (p *Publisher) Dropped() int64 {
	return p.queue.droppedCount()
}

// Close flushes the remaining events and stops the loop.
func (p *Publisher) Close() error {
	p.stopOnce.Do(func() {
		close(p.stop)
		<-p.done
	})
	return nil
}
