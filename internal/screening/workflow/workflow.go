// Package workflow is the per-session screening state machine.
//
// A Workflow walks a guest through four steps (identity, booking, stay
// intent, agreements), gates each forward move on validation, calls the
// identity and verification collaborators, keeps the trust preview fresh and
// hands the final record to the submission sink. Every command holds the
// workflow lock for its whole duration, collaborator calls included, so
// commands on one session never interleave. Poll results and debounced field
// checks take the same lock and are dropped when a Reset or Close has
// superseded them.
package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"caslkey/internal/screening/metrics"
	"caslkey/internal/screening/models"
	"caslkey/internal/screening/poller"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/preview"
	"caslkey/internal/screening/validation"
	id "caslkey/pkg/domain"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/debounce"
	"caslkey/pkg/requestcontext"
)

// DefaultDebounceDelay is the quiet period before a free-text field is
// validated.
const DefaultDebounceDelay = 300 * time.Millisecond

// ComplianceEmitter persists compliance audit events. A failed emit fails
// the command that caused it.
type ComplianceEmitter interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// OpsTracker records navigation events without blocking.
type OpsTracker interface {
	Track(ctx context.Context, event audit.OpsEvent)
}

// Workflow is one guest's screening attempt. It is safe for concurrent use.
type Workflow struct {
	sessionID    id.SessionID
	identity     ports.IdentityService
	verification ports.VerificationService
	sink         ports.SubmissionSink
	drafts       ports.DraftStore
	compliance   ComplianceEmitter
	ops          OpsTracker
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	clock        func() time.Time

	pollInterval  time.Duration
	debounceDelay time.Duration

	cache    *preview.Cache
	poller   *poller.Poller
	debounce *debounce.Group

	mu         sync.Mutex
	step       int
	snapshot   models.FormSnapshot
	facts      models.VerificationFacts
	errors     models.FieldErrors
	touched    map[models.Field]bool
	pollErrors map[id.VerificationMethod]string
	submission *models.Submission
	// epoch is bumped whenever the step changes and by Reset and Close;
	// debounced checks scheduled under an older epoch are dropped.
	epoch  uint64
	closed bool
}

type Option func(*Workflow)

func WithDraftStore(s ports.DraftStore) Option {
	return func(w *Workflow) { w.drafts = s }
}

func WithCompliance(c ComplianceEmitter) Option {
	return func(w *Workflow) { w.compliance = c }
}

func WithOpsTracker(t OpsTracker) Option {
	return func(w *Workflow) { w.ops = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithClock sets the time source for poll results and debounced checks.
// Commands read the request time from their context.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.clock = now }
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithDebounceDelay(d time.Duration) Option {
	return func(w *Workflow) {
		if d > 0 {
			w.debounceDelay = d
		}
	}
}

// New creates a workflow at step 0 with a default snapshot.
func New(
	sessionID id.SessionID,
	identity ports.IdentityService,
	verification ports.VerificationService,
	sink ports.SubmissionSink,
	opts ...Option,
) *Workflow {
	w := &Workflow{
		sessionID:     sessionID,
		identity:      identity,
		verification:  verification,
		sink:          sink,
		logger:        slog.Default(),
		tracer:        otel.Tracer("caslkey/workflow"),
		clock:         time.Now,
		pollInterval:  poller.DefaultInterval,
		debounceDelay: DefaultDebounceDelay,
		snapshot:      models.DefaultFormSnapshot(),
		facts:         models.EmptyFacts(),
		errors:        models.FieldErrors{},
		touched:       make(map[models.Field]bool),
		pollErrors:    make(map[id.VerificationMethod]string),
	}
	for _, opt := range opts {
		opt(w)
	}

	cacheOpts := []preview.Option{preview.WithMetrics(w.metrics), preview.WithLogger(w.logger)}
	if w.drafts != nil {
		cacheOpts = append(cacheOpts, preview.WithPersister(&previewPersister{store: w.drafts, sessionID: sessionID}))
	}
	w.cache = preview.New(cacheOpts...)
	w.poller = poller.New(verification, &pollSink{w: w},
		poller.WithInterval(w.pollInterval),
		poller.WithMetrics(w.metrics),
		poller.WithLogger(w.logger),
	)
	w.debounce = debounce.NewGroup(w.debounceDelay)
	return w
}

func (w *Workflow) SessionID() id.SessionID {
	return w.sessionID
}

// View is a consistent copy of everything a guest-facing client renders.
type View struct {
	SessionID  id.SessionID                         `json:"session_id"`
	State      models.WorkflowState                 `json:"state"`
	Snapshot   models.FormSnapshot                  `json:"snapshot"`
	Facts      models.VerificationFacts             `json:"facts"`
	Preview    *models.TrustPreview                 `json:"preview,omitempty"`
	Submission *models.Submission                   `json:"submission,omitempty"`
	Statuses   map[string]models.VerificationStatus `json:"statuses"`
}

// State returns the current step, the visible errors and whether the
// current step would pass validation right now.
func (w *Workflow) State(ctx context.Context) models.WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked(w.nowFrom(ctx))
}

// View returns a copy of the state, the snapshot, the facts and the latest
// preview.
func (w *Workflow) View(ctx context.Context) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		SessionID:  w.sessionID,
		State:      w.stateLocked(w.nowFrom(ctx)),
		Snapshot:   w.snapshot.Clone(),
		Facts:      w.facts.Clone(),
		Preview:    w.cache.Latest(),
		Submission: w.submission,
		Statuses:   make(map[string]models.VerificationStatus),
	}
	for _, m := range []id.VerificationMethod{id.MethodID, id.MethodPhone, id.MethodSocial, id.MethodBackgroundCheck} {
		v.Statuses[string(m)] = w.facts.MethodStatus(m)
	}
	return v
}

func (w *Workflow) stateLocked(now time.Time) models.WorkflowState {
	state := models.WorkflowState{
		CurrentStep: w.step,
		Errors:      make(models.FieldErrors, len(w.errors)),
		Submitted:   w.submission != nil,
	}
	for f, msg := range w.errors {
		state.Errors[f] = msg
	}
	if !state.Submitted {
		state.IsValid = len(validation.Validate(w.snapshot, w.step, w.envLocked(now))) == 0
	}
	if len(w.pollErrors) > 0 {
		state.PollErrors = make(map[id.VerificationMethod]string, len(w.pollErrors))
		for m, msg := range w.pollErrors {
			state.PollErrors[m] = msg
		}
	}
	return state
}

func (w *Workflow) envLocked(now time.Time) validation.Env {
	return validation.Env{Facts: w.facts, Now: now}
}

// nowFrom returns the request time pinned in ctx, or the workflow clock.
func (w *Workflow) nowFrom(ctx context.Context) time.Time {
	if t, ok := requestcontext.RequestTime(ctx); ok {
		return t
	}
	return w.clock()
}
