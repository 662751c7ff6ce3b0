package workflow

import (
	"context"
	"time"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/poller"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/validation"
	id "caslkey/pkg/domain"
	audit "caslkey/pkg/platform/audit"
)

// pollSink applies poll outcomes under the workflow lock. A loop cancelled
// by Reset, Close or a newer Start has a cancelled context by the time the
// lock is acquired, so its outcome is dropped.
type pollSink struct {
	w *Workflow
}

func (s *pollSink) StatusResolved(ctx context.Context, report ports.StatusReport) {
	w := s.w
	w.mu.Lock()
	defer w.mu.Unlock()
	if ctx.Err() != nil || w.closed || w.submission != nil {
		return
	}

	now := w.clock()
	w.applyTerminalLocked(ctx, report, now)
	w.saveDraftLocked(ctx, now)
}

func (s *pollSink) PollFailed(ctx context.Context, err *poller.PollingError) {
	w := s.w
	w.mu.Lock()
	defer w.mu.Unlock()
	if ctx.Err() != nil || w.closed || w.submission != nil {
		return
	}

	w.pollErrors[err.Method] = err.UserMessage()
	w.trackLocked(ctx, audit.EventPollFailed, string(err.Method), string(ports.CategoryOf(err)))
}

func (w *Workflow) recordStatusLocked(method id.VerificationMethod, status models.VerificationStatus) {
	w.facts.Methods[method] = status
	if method == id.MethodBackgroundCheck {
		w.facts.BackgroundCheckStatus = status
	}
}

// applyTerminalLocked folds a terminal status into the facts. VERIFIED marks
// the method verified and recomputes the preview, since verification is not
// part of the preview cache key.
func (w *Workflow) applyTerminalLocked(ctx context.Context, report ports.StatusReport, now time.Time) {
	w.recordStatusLocked(report.Method, report.Status)

	if report.Status == models.StatusVerified {
		switch report.Method {
		case id.MethodID:
			w.facts.IDVerified = true
			w.facts.IsVerified = true
			w.facts.VerificationType = string(id.MethodID)
		case id.MethodPhone:
			w.facts.PhoneVerified = true
		case id.MethodSocial:
			w.facts.SocialVerified = true
			if report.Detail != nil {
				pd := *report.Detail
				w.facts.PlatformData = &pd
			}
		}
		w.cache.Refresh(ctx, w.snapshot, w.facts, now)
		if _, shown := w.errors[models.FieldVerification]; shown {
			w.setErrorLocked(models.FieldVerification,
				validation.ValidateField(w.snapshot, models.FieldVerification, w.envLocked(now)))
		}
	}

	if err := w.emitLocked(ctx, audit.ComplianceEvent{
		Action:   audit.EventVerificationCompleted,
		Subject:  string(w.facts.CaslKeyID),
		Method:   string(report.Method),
		Decision: string(report.Status),
	}); err != nil {
		w.logger.ErrorContext(ctx, "failed to audit verification outcome",
			"session_id", w.sessionID,
			"method", report.Method,
			"error", err,
		)
	}
}
