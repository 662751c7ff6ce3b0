// Package compliance records the screening actions a host or regulator may
// later ask about: identity checks, artifacts, verification outcomes and the
// final submission. Writes are synchronous and fail closed, so a step whose
// record cannot be stored must not take effect.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "caslkey/pkg/platform/audit"
)

// Publisher writes compliance events straight to the audit store, which is
// the outbox in production.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// outcomeRequired lists the actions that are meaningless without a
// recorded outcome.
var outcomeRequired = map[audit.AuditEvent]bool{
	audit.EventVerificationCompleted: true,
	audit.EventScreeningSubmitted:    true,
}

// Emit stores event and returns only once it is durable.
func (p *Publisher) Emit(ctx context.Context, event audit.ComplianceEvent) error {
	if err := check(event); err != nil {
		return err
	}
	start := p.now()
	if event.Timestamp.IsZero() {
		event.Timestamp = start
	}

	if err := p.store.Append(ctx, event.ToEvent()); err != nil {
		p.metrics.IncPersistFailures()
		p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
			"action", event.Action,
			"session_id", event.SessionID,
			"error", err,
		)
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	p.metrics.ObservePersistDuration(p.now().Sub(start).Seconds())
	p.metrics.IncEventsEmitted()
	return nil
}

func check(event audit.ComplianceEvent) error {
	switch {
	case event.SessionID.IsNil():
		return fmt.Errorf("compliance event requires SessionID")
	case event.Action == "":
		return fmt.Errorf("compliance event requires Action")
	case event.Action.Category() != audit.CategoryCompliance:
		return fmt.Errorf("%s is not a compliance action", event.Action)
	case outcomeRequired[event.Action] && event.Decision == "":
		return fmt.Errorf("%s requires a decision", event.Action)
	}
	return nil
}

// Close exists for symmetry with the buffered publishers.
func (p *Publisher) Close() error {
	return nil
}
