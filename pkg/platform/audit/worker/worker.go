// Package worker relays audit outbox entries to Kafka.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/audit/store/postgres"
)

// Outbox is the relay's view of the outbox table.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]postgres.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Producer publishes one record.
type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Topics maps each audit category to its Kafka topic.
type Topics map[audit.EventCategory]string

// DefaultTopics are used when none are configured.
func DefaultTopics() Topics {
	return Topics{
		audit.CategoryCompliance: "caslkey.audit.compliance",
		audit.CategorySecurity:   "caslkey.audit.security",
		audit.CategoryOperations: "caslkey.audit.ops",
	}
}

// Relay moves outbox entries to Kafka in batches. Entries are marked
// published in the same transaction that locked them, so a crash between
// publish and commit re-sends rather than loses them.
type Relay struct {
	outbox    Outbox
	producer  Producer
	tx        Transactor
	topics    Topics
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batchSize = n }
}

func WithTopics(t Topics) Option {
	return func(r *Relay) { r.topics = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) { r.logger = l }
}

func NewRelay(outbox Outbox, producer Producer, tx Transactor, opts ...Option) *Relay {
	r := &Relay{
		outbox:    outbox,
		producer:  producer,
		tx:        tx,
		topics:    DefaultTopics(),
		interval:  time.Second,
		batchSize: 100,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil {
				r.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	relayed := 0
	err := r.tx.InTx(ctx, func(ctx context.Context) error {
		entries, err := r.outbox.FetchPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		published := make([]uuid.UUID, 0, len(entries))
		for _, entry := range entries {
			topic := r.topics[audit.AuditEvent(entry.EventType).Category()]
			if err := r.producer.Publish(ctx, topic, []byte(entry.AggregateID), entry.Payload); err != nil {
				// keep what made it; the rest stays pending
				break
			}
			published = append(published, entry.ID)
		}
		relayed = len(published)
		return r.outbox.MarkPublished(ctx, published)
	})
	return relayed, err
}
