// Package service owns the live guest sessions. Each session is one
// workflow instance addressed by its session ID and bound to a client by a
// signed session token.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"caslkey/internal/screening/metrics"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/workflow"
	id "caslkey/pkg/domain"
	dErrors "caslkey/pkg/domain-errors"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/requestcontext"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(sessionID id.SessionID, device string) (string, time.Time, error)
}

// Config tunes the workflows the service creates.
type Config struct {
	PollInterval  time.Duration
	DebounceDelay time.Duration
	// IdleTimeout closes sessions that saw no command for this long. Zero
	// disables the sweep.
	IdleTimeout time.Duration
}

// Started is the result of opening or resuming a session.
type Started struct {
	SessionID id.SessionID  `json:"session_id"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Resumed   bool          `json:"resumed"`
	View      workflow.View `json:"view"`
}

type entry struct {
	wf       *workflow.Workflow
	lastSeen time.Time
}

// Service is the session registry. It is safe for concurrent use.
type Service struct {
	identity     ports.IdentityService
	verification ports.VerificationService
	sink         ports.SubmissionSink
	drafts       ports.DraftStore
	tokens       TokenIssuer
	compliance   workflow.ComplianceEmitter
	ops          workflow.OpsTracker
	metrics      *metrics.Metrics
	logger       *slog.Logger
	cfg          Config
	now          func() time.Time

	mu       sync.Mutex
	sessions map[id.SessionID]*entry
	closed   bool
}

type Option func(*Service)

func WithDraftStore(s ports.DraftStore) Option {
	return func(svc *Service) {
		svc.drafts = s
	}
}

func WithCompliance(c workflow.ComplianceEmitter) Option {
	return func(svc *Service) {
		svc.compliance = c
	}
}

func WithOpsTracker(t workflow.OpsTracker) Option {
	return func(svc *Service) {
		svc.ops = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) {
		svc.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		svc.logger = l
	}
}

func WithConfig(cfg Config) Option {
	return func(svc *Service) {
		svc.cfg = cfg
	}
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		svc.now = now
	}
}

func New(
	identity ports.IdentityService,
	verification ports.VerificationService,
	sink ports.SubmissionSink,
	tokens TokenIssuer,
	opts ...Option,
) *Service {
	s := &Service{
		identity:     identity,
		verification: verification,
		sink:         sink,
		tokens:       tokens,
		logger:       slog.Default(),
		now:          time.Now,
		sessions:     make(map[id.SessionID]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errShuttingDown = dErrors.New(dErrors.CodeUnavailable, "service is shutting down")

// Start opens a session. When resume names a session, the live workflow is
// reused or its persisted draft is restored; an unknown resume ID starts a
// fresh session instead.
func (s *Service) Start(ctx context.Context, resume *id.SessionID) (*Started, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errShuttingDown
	}

	if resume != nil {
		if e, ok := s.sessions[*resume]; ok {
			e.lastSeen = s.now()
			return s.issueLocked(ctx, e.wf, true)
		}
		if s.drafts != nil {
			wf := s.newWorkflow(*resume)
			restored, err := wf.Restore(ctx)
			if err != nil {
				return nil, err
			}
			if restored {
				s.registerLocked(ctx, wf)
				return s.issueLocked(ctx, wf, true)
			}
		}
	}

	wf := s.newWorkflow(id.NewSessionID())
	s.registerLocked(ctx, wf)
	return s.issueLocked(ctx, wf, false)
}

func (s *Service) newWorkflow(sessionID id.SessionID) *workflow.Workflow {
	opts := []workflow.Option{
		workflow.WithMetrics(s.metrics),
		workflow.WithLogger(s.logger),
		workflow.WithClock(s.now),
	}
	if s.drafts != nil {
		opts = append(opts, workflow.WithDraftStore(s.drafts))
	}
	if s.compliance != nil {
		opts = append(opts, workflow.WithCompliance(s.compliance))
	}
	if s.ops != nil {
		opts = append(opts, workflow.WithOpsTracker(s.ops))
	}
	if s.cfg.PollInterval > 0 {
		opts = append(opts, workflow.WithPollInterval(s.cfg.PollInterval))
	}
	if s.cfg.DebounceDelay > 0 {
		opts = append(opts, workflow.WithDebounceDelay(s.cfg.DebounceDelay))
	}
	return workflow.New(sessionID, s.identity, s.verification, s.sink, opts...)
}

func (s *Service) registerLocked(ctx context.Context, wf *workflow.Workflow) {
	s.sessions[wf.SessionID()] = &entry{wf: wf, lastSeen: s.now()}
	s.metrics.SessionOpened()
	if s.ops != nil {
		s.ops.Track(ctx, audit.OpsEvent{
			SessionID: wf.SessionID(),
			Action:    audit.EventSessionStarted,
			Device:    requestcontext.Device(ctx),
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	s.logger.InfoContext(ctx, "session started", "session_id", wf.SessionID())
}

func (s *Service) issueLocked(ctx context.Context, wf *workflow.Workflow, resumed bool) (*Started, error) {
	token, expiresAt, err := s.tokens.Issue(wf.SessionID(), requestcontext.Device(ctx))
	if err != nil {
		return nil, err
	}
	return &Started{
		SessionID: wf.SessionID(),
		Token:     token,
		ExpiresAt: expiresAt,
		Resumed:   resumed,
		View:      wf.View(ctx),
	}, nil
}

// Get returns the live workflow for sessionID.
func (s *Service) Get(_ context.Context, sessionID id.SessionID) (*workflow.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	e.lastSeen = s.now()
	return e.wf, nil
}

// Close ends a session. The persisted draft is kept for a later resume.
func (s *Service) Close(ctx context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "session not found")
	}

	e.wf.Close(ctx)
	s.metrics.SessionClosed()
	s.logger.InfoContext(ctx, "session closed", "session_id", sessionID)
	return nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SweepIdle closes sessions idle for longer than the configured timeout and
// returns how many were closed.
func (s *Service) SweepIdle(ctx context.Context) int {
	if s.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.IdleTimeout)

	s.mu.Lock()
	var idle []*entry
	for sid, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e)
			delete(s.sessions, sid)
		}
	}
	s.mu.Unlock()

	for _, e := range idle {
		e.wf.Close(ctx)
		s.metrics.SessionClosed()
	}
	if len(idle) > 0 {
		s.logger.InfoContext(ctx, "idle sessions closed", "count", len(idle))
	}
	return len(idle)
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if s.cfg.IdleTimeout <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepIdle(ctx)
		}
	}
}

// Shutdown closes every session and waits for their poll loops to exit or
// for ctx to expire. New sessions are refused afterwards.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[id.SessionID]*entry)
	s.mu.Unlock()

	var g errgroup.Group
	for _, e := range sessions {
		g.Go(func() error {
			e.wf.Close(ctx)
			e.wf.Wait()
			s.metrics.SessionClosed()
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		s.logger.InfoContext(ctx, "sessions drained", "count", len(sessions))
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
