package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the screening workflow.
// All methods are safe on a nil receiver so tests can skip instrumentation.
type Metrics struct {
	// Advance attempts by step and outcome (advanced, rejected, failed, submitted)
	Advances *prometheus.CounterVec

	// Retreats and resets
	Navigation *prometheus.CounterVec

	// Submissions by trust level
	Submissions *prometheus.CounterVec

	// Status checks by method and returned status
	PollChecks *prometheus.CounterVec

	// Poll loops that ended, by method and outcome (terminal status or "failed")
	PollOutcomes *prometheus.CounterVec

	// Running poll loops
	ActivePolls prometheus.Gauge

	// Preview cache lookups by result (hit, miss, refresh)
	PreviewCache *prometheus.CounterVec

	// Collaborator call latency by collaborator and operation
	CollaboratorLatency *prometheus.HistogramVec

	// Collaborator failures by collaborator and error category
	CollaboratorErrors *prometheus.CounterVec

	// Open guest sessions
	ActiveSessions prometheus.Gauge
}

// New registers the screening metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the screening metrics with reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Advances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caslkey_workflow_advances_total",
			Help: "Workflow advance attempts by step and outcome",
		}, []string{"step", "outcome"}),

		Navigation: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caslkey_workflow_navigation_total",
			Help: "Workflow retreats and resets",
		}, []string{"action"}),

		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caslkey_submissions_total",
			Help: "Completed submissions by trust level",
		}, []string{"trust_level"}),

		PollChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caslkey_poll_checks_total",
			Help: "Verification status checks by method and status",
		}, []string{"method", "status"}),

		PollOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caslkey_poll_outcomes_total",
			Help: "Finished poll loops by method and outcome",
		}, []string{"method", "outcome"}),

		ActivePolls: factory.NewGauge(prometheus.GaugeOpts{
			Name: "caslkey_poll_loops_active",
			Help: "Currently running verification poll loops",
		}),

		PreviewCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caslkey_preview_cache_total",
			Help: "Trust preview cache lookups by result",
		}, []string{"result"}),

		CollaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "caslkey_collaborator_duration_seconds",
			Help:    "Duration of identity, verification and submission calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"collaborator", "operation"}),

		CollaboratorErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caslkey_collaborator_errors_total",
			Help: "Collaborator failures by collaborator and category",
		}, []string{"collaborator", "category"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "caslkey_sessions_active",
			Help: "Open guest screening sessions",
		}),
	}
}

func (m *Metrics) IncrementAdvance(step int, outcome string) {
	if m != nil {
		m.Advances.WithLabelValues(stepLabel(step), outcome).Inc()
	}
}

func (m *Metrics) IncrementNavigation(action string) {
	if m != nil {
		m.Navigation.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) IncrementSubmission(trustLevel string) {
	if m != nil {
		m.Submissions.WithLabelValues(trustLevel).Inc()
	}
}

func (m *Metrics) IncrementPollCheck(method, status string) {
	if m != nil {
		m.PollChecks.WithLabelValues(method, status).Inc()
	}
}

func (m *Metrics) IncrementPollOutcome(method, outcome string) {
	if m != nil {
		m.PollOutcomes.WithLabelValues(method, outcome).Inc()
	}
}

func (m *Metrics) PollStarted() {
	if m != nil {
		m.ActivePolls.Inc()
	}
}

func (m *Metrics) PollStopped() {
	if m != nil {
		m.ActivePolls.Dec()
	}
}

func (m *Metrics) IncrementPreviewCache(result string) {
	if m != nil {
		m.PreviewCache.WithLabelValues(result).Inc()
	}
}

// ObserveCollaborator records the duration of one collaborator call.
func (m *Metrics) ObserveCollaborator(collaborator, operation string, d time.Duration) {
	if m != nil {
		m.CollaboratorLatency.WithLabelValues(collaborator, operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCollaboratorError(collaborator, category string) {
	if m != nil {
		m.CollaboratorErrors.WithLabelValues(collaborator, category).Inc()
	}
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.ActiveSessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.ActiveSessions.Dec()
	}
}

func stepLabel(step int) string {
	switch step {
	case 0:
		return "identity"
	case 1:
		return "booking"
	case 2:
		return "stay_intent"
	case 3:
		return "agreements"
	}
	return "unknown"
}
