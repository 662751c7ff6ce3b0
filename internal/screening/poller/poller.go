// Package poller drives out-of-band verification checks from PROCESSING to a
// terminal status.
//
// Each method has at most one loop. A loop checks the status at a fixed
// interval, reports the first terminal status to the Sink and stops. A
// transport failure also stops the loop; the last known status is kept and
// the failure is reported as a *PollingError. Loops run on a context detached
// from the caller's request and are cancelled by Stop, StopAll or Start on the
// same method. Sinks receive the loop context and must drop the callback when
// it is already cancelled.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"caslkey/internal/screening/metrics"
	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
	dErrors "caslkey/pkg/domain-errors"
)

// DefaultInterval is the pause between two status checks.
const DefaultInterval = 3000 * time.Millisecond

// StatusChecker is the part of the verification service the poller needs.
type StatusChecker interface {
	GetStatus(ctx context.Context, method id.VerificationMethod, caslKeyID id.CaslKeyID) (ports.StatusReport, error)
}

// Sink receives the outcome of a loop. Exactly one of the two methods is
// called per loop, and only if the loop was not cancelled first.
type Sink interface {
	StatusResolved(ctx context.Context, report ports.StatusReport)
	PollFailed(ctx context.Context, err *PollingError)
}

// PollingError is a check failure that stopped a loop.
type PollingError struct {
	Method     id.VerificationMethod
	LastStatus models.VerificationStatus
	Err        error
}

func (e *PollingError) Error() string {
	return fmt.Sprintf("polling %s stopped at %s: %v", e.Method, e.LastStatus, e.Err)
}

func (e *PollingError) Unwrap() error {
	return e.Err
}

// UserMessage is the guest-facing description of the failure.
func (e *PollingError) UserMessage() string {
	return fmt.Sprintf("we could not check your %s verification, please try again", e.Method)
}

// AsDomainError renders the failure as a retryable coded error.
func (e *PollingError) AsDomainError() error {
	return dErrors.Wrap(e, dErrors.CodePollingFailed, e.UserMessage())
}

type loop struct {
	cancel context.CancelFunc
}

// Poller supervises one loop per verification method.
type Poller struct {
	checker  StatusChecker
	sink     Sink
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer

	mu       sync.Mutex
	loops    map[id.VerificationMethod]*loop
	statuses map[id.VerificationMethod]models.VerificationStatus
	wg       sync.WaitGroup
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

func New(checker StatusChecker, sink Sink, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		sink:     sink,
		interval: DefaultInterval,
		logger:   slog.Default(),
		tracer:   otel.Tracer("caslkey/poller"),
		loops:    make(map[id.VerificationMethod]*loop),
		statuses: make(map[id.VerificationMethod]models.VerificationStatus),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling method at the given status, replacing any running
// loop for the same method. A status that is not pollable is recorded and no
// loop is started.
func (p *Poller) Start(ctx context.Context, method id.VerificationMethod, caslKeyID id.CaslKeyID, status models.VerificationStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked(method)
	p.statuses[method] = status
	if !status.IsPollable() {
		return
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l := &loop{cancel: cancel}
	p.loops[method] = l
	p.metrics.PollStarted()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(loopCtx, l, method, caslKeyID)
	}()
}

// Stop cancels the loop for method, if any. It does not wait for the loop
// goroutine, so it is safe to call while holding a lock the sink takes.
func (p *Poller) Stop(method id.VerificationMethod) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked(method)
}

// StopAll cancels every loop.
func (p *Poller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for method := range p.loops {
		p.stopLocked(method)
	}
}

// Reset cancels every loop and forgets every known status.
func (p *Poller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for method := range p.loops {
		p.stopLocked(method)
	}
	clear(p.statuses)
}

func (p *Poller) stopLocked(method id.VerificationMethod) {
	l, ok := p.loops[method]
	if !ok {
		return
	}
	l.cancel()
	delete(p.loops, method)
	p.metrics.PollStopped()
}

// Status returns the last known status of method.
func (p *Poller) Status(method id.VerificationMethod) models.VerificationStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.statuses[method]; ok {
		return st
	}
	return models.StatusNotSubmitted
}

// Active reports whether a loop is running for method.
func (p *Poller) Active(method id.VerificationMethod) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.loops[method]
	return ok
}

// ActiveCount returns the number of running loops.
func (p *Poller) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loops)
}

// Wait blocks until every loop goroutine has returned.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context, l *loop, method id.VerificationMethod, caslKeyID id.CaslKeyID) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		report, err := p.check(ctx, method, caslKeyID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			last := p.Status(method)
			p.metrics.IncrementPollOutcome(string(method), "failed")
			p.logger.WarnContext(ctx, "verification polling stopped",
				"method", method,
				"last_status", last,
				"category", ports.CategoryOf(err),
			)
			p.sink.PollFailed(ctx, &PollingError{Method: method, LastStatus: last, Err: err})
			p.retire(l, method)
			return
		}

		p.record(l, method, report.Status)
		if !report.Status.IsTerminal() {
			continue
		}

		p.metrics.IncrementPollOutcome(string(method), string(report.Status))
		p.logger.InfoContext(ctx, "verification resolved", "method", method, "status", report.Status)
		p.sink.StatusResolved(ctx, report)
		p.retire(l, method)
		return
	}
}

// check performs one status call. An expired collaborator session is retried
// once before it counts as a failure.
func (p *Poller) check(ctx context.Context, method id.VerificationMethod, caslKeyID id.CaslKeyID) (ports.StatusReport, error) {
	ctx, span := p.tracer.Start(ctx, "Poller.check", trace.WithAttributes(
		attribute.String("method", string(method)),
	))
	defer span.End()

	report, err := p.checker.GetStatus(ctx, method, caslKeyID)
	if err != nil && ports.IsSessionFailure(err) && ctx.Err() == nil {
		span.AddEvent("retry after session failure")
		report, err = p.checker.GetStatus(ctx, method, caslKeyID)
	}
	if err == nil && report.Status == "" {
		err = ports.NewTransportError(ports.ErrorBadResponse, "verification", "status", "empty status", nil)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return ports.StatusReport{}, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "status check failed")
		p.metrics.IncrementPollCheck(string(method), "error")
		return ports.StatusReport{}, err
	}

	if report.Method == "" {
		report.Method = method
	}
	span.SetAttributes(attribute.String("status", string(report.Status)))
	p.metrics.IncrementPollCheck(string(method), string(report.Status))
	return report, nil
}

// record stores a non-terminal status if l is still the current loop.
func (p *Poller) record(l *loop, method id.VerificationMethod, status models.VerificationStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loops[method] == l {
		p.statuses[method] = status
	}
}

// retire removes l once its outcome was delivered. The loop stays
// registered until then so that Stop can still cancel a pending delivery.
func (p *Poller) retire(l *loop, method id.VerificationMethod) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l.cancel()
	if p.loops[method] != l {
		return
	}
	delete(p.loops, method)
	p.metrics.PollStopped()
}
