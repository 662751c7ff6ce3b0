package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/scoring"
	"caslkey/internal/screening/validation"
	id "caslkey/pkg/domain"
	dErrors "caslkey/pkg/domain-errors"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/sentinel"
	strutil "caslkey/pkg/platform/strings"
)

var (
	errClosed     = dErrors.New(dErrors.CodeInvalidState, "this screening session is closed")
	errSubmitted  = dErrors.New(dErrors.CodeInvalidState, "this screening was already submitted")
	errFirstStep  = dErrors.New(dErrors.CodeInvalidState, "already at the first step")
	errNoIdentity = dErrors.New(dErrors.CodeInvalidState, "complete the identity step before submitting verification")
)

func (w *Workflow) guardLocked() error {
	if w.closed {
		return errClosed
	}
	if w.submission != nil {
		return errSubmitted
	}
	return nil
}

// UpdateField replaces one snapshot value. Discrete fields are validated at
// once; free-text fields are validated after the debounce delay, each
// keystroke restarting it. A value of the wrong shape is not applied and
// shows up as an error on the field.
func (w *Workflow) UpdateField(ctx context.Context, field models.Field, value any) (models.WorkflowState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.nowFrom(ctx)
	if err := w.guardLocked(); err != nil {
		return w.stateLocked(now), err
	}
	if !field.IsKnown() {
		return w.stateLocked(now), dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown field %q", field))
	}

	next, err := w.snapshot.With(field, value)
	if err != nil {
		w.debounce.Cancel(string(field))
		w.touched[field] = true
		w.errors[field] = err.Error()
		return w.stateLocked(now), nil
	}
	w.snapshot = next
	w.touched[field] = true

	if field.Kind() == models.KindText {
		epoch := w.epoch
		w.debounce.Trigger(string(field), func() { w.debouncedCheck(epoch, field) })
	} else {
		w.revalidateLocked(field, now)
	}

	w.saveDraftLocked(ctx, now)
	return w.stateLocked(now), nil
}

func (w *Workflow) debouncedCheck(epoch uint64, field models.Field) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.submission != nil || epoch != w.epoch || field.Step() != w.step {
		return
	}
	w.revalidateLocked(field, w.clock())
}

// revalidateLocked refreshes the message of field and of every dependent
// field that is already showing a result.
func (w *Workflow) revalidateLocked(field models.Field, now time.Time) {
	env := w.envLocked(now)
	w.setErrorLocked(field, validation.ValidateField(w.snapshot, field, env))
	for _, dep := range validation.Dependents(field) {
		if _, shown := w.errors[dep]; shown || w.touched[dep] {
			w.setErrorLocked(dep, validation.ValidateField(w.snapshot, dep, env))
		}
	}
}

func (w *Workflow) setErrorLocked(field models.Field, msg string) {
	if msg == "" {
		delete(w.errors, field)
		return
	}
	w.errors[field] = msg
}

// Advance validates the current step and moves forward. Leaving step 0
// checks the guest's identity, starts a consented background check and
// refreshes the preview. Leaving the last step submits the screening.
// On any failure the workflow stays on its step.
func (w *Workflow) Advance(ctx context.Context) (models.WorkflowState, error) {
	ctx, span := w.tracer.Start(ctx, "Workflow.Advance")
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.nowFrom(ctx)
	if err := w.guardLocked(); err != nil {
		return w.stateLocked(now), err
	}

	step := w.step
	span.SetAttributes(attribute.Int("step", step))
	w.epoch++
	w.debounce.CancelAll()

	if errs := validation.Validate(w.snapshot, step, w.envLocked(now)); len(errs) > 0 {
		w.errors = errs
		w.metrics.IncrementAdvance(step, "rejected")
		w.trackLocked(ctx, audit.EventStepRejected, "", strconv.Itoa(step))
		span.SetAttributes(attribute.Int("invalid_fields", len(errs)))
		return w.stateLocked(now), dErrors.Validation("please correct the highlighted fields", errs.ToStrings())
	}

	var err error
	switch step {
	case models.StepIdentity:
		err = w.completeIdentityLocked(ctx, now)
	case models.StepAgreements:
		err = w.submitLocked(ctx, now)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "advance failed")
		w.metrics.IncrementAdvance(step, "failed")
		return w.stateLocked(now), err
	}

	w.errors = models.FieldErrors{}
	if step == models.LastStep {
		w.metrics.IncrementAdvance(step, "submitted")
		w.trackLocked(ctx, audit.EventStepAdvanced, "", "submitted")
		return w.stateLocked(now), nil
	}

	w.step++
	w.metrics.IncrementAdvance(step, "advanced")
	w.trackLocked(ctx, audit.EventStepAdvanced, "", strconv.Itoa(w.step))
	w.saveDraftLocked(ctx, now)
	return w.stateLocked(now), nil
}

func (w *Workflow) completeIdentityLocked(ctx context.Context, now time.Time) error {
	req := ports.IdentityRequest{
		Name:    strings.TrimSpace(w.snapshot.Name),
		Email:   strings.TrimSpace(w.snapshot.Email),
		Phone:   strings.TrimSpace(w.snapshot.Phone),
		Address: strings.TrimSpace(w.snapshot.Address),
	}
	identity, err := call(ctx, w, "identity", "check_or_create", func(ctx context.Context) (ports.Identity, error) {
		return w.identity.CheckOrCreateIdentity(ctx, req)
	})
	if err != nil {
		return ports.AsDomainError(err)
	}
	if identity.ID == "" {
		return ports.AsDomainError(ports.NewTransportError(ports.ErrorBadResponse, "identity", "check_or_create", "missing identity id", nil))
	}

	decision := "created"
	if identity.Existing {
		decision = "existing"
	}
	if err := w.emitLocked(ctx, audit.ComplianceEvent{
		Action:        audit.EventIdentityChecked,
		Subject:       string(identity.ID),
		Decision:      decision,
		SubjectIDHash: audit.HashSubject(req.Email),
	}); err != nil {
		return err
	}

	next := w.facts.Clone()
	switched := next.CaslKeyID != "" && next.CaslKeyID != identity.ID
	if switched {
		next = models.EmptyFacts()
	}
	next.CaslKeyID = identity.ID
	next.IsExistingUser = identity.Existing
	next.IsVerified = identity.Verified
	if identity.VerificationType != "" {
		next.VerificationType = identity.VerificationType
	}
	if identity.PlatformData != nil {
		pd := *identity.PlatformData
		next.PlatformData = &pd
	}

	var ticket *ports.Ticket
	if w.snapshot.BackgroundCheckConsent && !next.HasBackgroundCheckStatus() {
		t, err := w.requestArtifactLocked(ctx, id.MethodBackgroundCheck, ports.ArtifactPayload{Consent: true}, next.CaslKeyID)
		if err != nil {
			return err
		}
		ticket = &t
	}

	if switched {
		w.poller.Reset()
		clear(w.pollErrors)
		if err := w.cache.Clear(ctx); err != nil {
			w.logger.WarnContext(ctx, "failed to clear persisted preview", "session_id", w.sessionID, "error", err)
		}
		w.logger.InfoContext(ctx, "guest identity changed, verification facts dropped", "session_id", w.sessionID)
	}
	w.facts = next
	if ticket != nil {
		w.trackArtifactLocked(ctx, *ticket, next.CaslKeyID, now)
	}

	w.cache.Refresh(ctx, w.snapshot, w.facts, now)
	return nil
}

func (w *Workflow) submitLocked(ctx context.Context, now time.Time) error {
	result := scoring.Score(w.snapshot, w.facts, now)
	summary := scoring.Summarize(w.snapshot, w.facts, result, now)
	nights, _ := models.StayNights(w.snapshot.CheckInDate, w.snapshot.CheckOutDate)

	submission := models.Submission{
		ID:        id.NewSubmissionID(),
		SessionID: w.sessionID,
		CaslKeyID: w.facts.CaslKeyID,
		Booking: models.BookingDetails{
			Platform:     w.snapshot.Platform,
			ListingURL:   strings.TrimSpace(w.snapshot.ListingURL),
			CheckInDate:  w.snapshot.CheckInDate,
			CheckOutDate: w.snapshot.CheckOutDate,
			Nights:       nights,
		},
		Stay: models.StayDetails{
			Purpose:            w.snapshot.Purpose,
			OtherPurpose:       strings.TrimSpace(w.snapshot.OtherPurpose),
			TotalGuests:        w.snapshot.TotalGuests,
			ChildrenUnder12:    w.snapshot.ChildrenUnder12,
			NonOvernightGuests: w.snapshot.NonOvernightGuests,
			TravelingNearHome:  w.snapshot.TravelingNearHome,
			UsedSTRBefore:      w.snapshot.UsedSTRBefore,
			SupportingLinks:    nonBlank(w.snapshot.SupportingLinks),
		},
		Facts:       w.facts.Clone(),
		Score:       result,
		Summary:     summary,
		SubmittedAt: now,
	}

	ack, err := call(ctx, w, "submission", "submit", func(ctx context.Context) (ports.Ack, error) {
		return w.sink.Submit(ctx, submission)
	})
	if err != nil {
		return ports.AsDomainError(err)
	}

	if err := w.emitLocked(ctx, audit.ComplianceEvent{
		Action:   audit.EventScreeningSubmitted,
		Subject:  string(submission.CaslKeyID),
		Decision: string(summary.TrustLevel),
	}); err != nil {
		// The sink already holds the record.
		w.logger.ErrorContext(ctx, "failed to audit accepted submission",
			"session_id", w.sessionID,
			"submission_id", submission.ID,
			"error", err,
		)
	}

	w.submission = &submission
	w.metrics.IncrementSubmission(string(summary.TrustLevel))
	w.logger.InfoContext(ctx, "screening submitted",
		"session_id", w.sessionID,
		"submission_id", submission.ID,
		"ack_id", ack.SubmissionID,
		"trust_level", summary.TrustLevel,
	)

	w.poller.StopAll()
	w.debounce.CancelAll()
	if err := w.cache.Clear(ctx); err != nil {
		w.logger.WarnContext(ctx, "failed to clear persisted preview", "session_id", w.sessionID, "error", err)
	}
	w.deleteDraftLocked(ctx)
	return nil
}

// Retreat moves back one step without validating or calling anything. The
// visible errors are cleared and come back only when fields are edited or
// the step is advanced again.
func (w *Workflow) Retreat(ctx context.Context) (models.WorkflowState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.nowFrom(ctx)
	if err := w.guardLocked(); err != nil {
		return w.stateLocked(now), err
	}
	if w.step == models.StepIdentity {
		return w.stateLocked(now), errFirstStep
	}

	w.step--
	w.epoch++
	w.errors = models.FieldErrors{}
	clear(w.touched)
	w.debounce.CancelAll()

	w.metrics.IncrementNavigation("retreat")
	w.trackLocked(ctx, audit.EventStepRetreated, "", strconv.Itoa(w.step))
	w.saveDraftLocked(ctx, now)
	return w.stateLocked(now), nil
}

// SubmitArtifact hands material for one verification method to the
// verification service and starts polling while it is PROCESSING.
func (w *Workflow) SubmitArtifact(ctx context.Context, method id.VerificationMethod, payload ports.ArtifactPayload) (ports.Ticket, error) {
	ctx, span := w.tracer.Start(ctx, "Workflow.SubmitArtifact")
	defer span.End()
	span.SetAttributes(attribute.String("method", string(method)))

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.nowFrom(ctx)
	if err := w.guardLocked(); err != nil {
		return ports.Ticket{}, err
	}
	if !method.IsValid() {
		return ports.Ticket{}, dErrors.New(dErrors.CodeBadRequest, "unsupported verification method")
	}
	if method == id.MethodBackgroundCheck {
		if !w.snapshot.BackgroundCheckConsent {
			return ports.Ticket{}, dErrors.New(dErrors.CodeBadRequest, "a background check needs the guest's consent")
		}
		payload.Consent = true
	}

	ticket, err := w.submitArtifactLocked(ctx, method, payload, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "artifact rejected")
		return ports.Ticket{}, err
	}
	w.saveDraftLocked(ctx, now)
	return ticket, nil
}

func (w *Workflow) submitArtifactLocked(ctx context.Context, method id.VerificationMethod, payload ports.ArtifactPayload, now time.Time) (ports.Ticket, error) {
	caslKeyID := w.facts.CaslKeyID
	if caslKeyID == "" {
		return ports.Ticket{}, errNoIdentity
	}

	ticket, err := w.requestArtifactLocked(ctx, method, payload, caslKeyID)
	if err != nil {
		return ports.Ticket{}, err
	}
	w.trackArtifactLocked(ctx, ticket, caslKeyID, now)
	return ticket, nil
}

// requestArtifactLocked hands the artifact to the verification service and
// audits the intake. It does not touch the facts or the poller.
func (w *Workflow) requestArtifactLocked(ctx context.Context, method id.VerificationMethod, payload ports.ArtifactPayload, caslKeyID id.CaslKeyID) (ports.Ticket, error) {
	ticket, err := call(ctx, w, "verification", "submit_artifact", func(ctx context.Context) (ports.Ticket, error) {
		return w.verification.SubmitArtifact(ctx, method, payload, caslKeyID)
	})
	if err != nil {
		return ports.Ticket{}, ports.AsDomainError(err)
	}

	status := ticket.Status
	if status == "" || status == models.StatusNotSubmitted {
		status = models.StatusProcessing
	}
	ticket.Method = method
	ticket.Status = status

	if err := w.emitLocked(ctx, audit.ComplianceEvent{
		Action:   audit.EventArtifactSubmitted,
		Subject:  string(caslKeyID),
		Method:   string(method),
		Decision: string(status),
	}); err != nil {
		return ports.Ticket{}, err
	}
	return ticket, nil
}

func (w *Workflow) trackArtifactLocked(ctx context.Context, ticket ports.Ticket, caslKeyID id.CaslKeyID, now time.Time) {
	delete(w.pollErrors, ticket.Method)
	w.recordStatusLocked(ticket.Method, ticket.Status)
	w.poller.Start(ctx, ticket.Method, caslKeyID, ticket.Status)
	if ticket.Status.IsTerminal() {
		w.applyTerminalLocked(ctx, ports.StatusReport{Method: ticket.Method, Status: ticket.Status, CheckedAt: now}, now)
	}
}

// Preview returns the memoized trust preview for the current snapshot.
// After submission it returns the submitted result.
func (w *Workflow) Preview(ctx context.Context) (*models.TrustPreview, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errClosed
	}
	if w.submission != nil {
		return &models.TrustPreview{
			CaslKeyID:  w.submission.CaslKeyID,
			TrustLevel: w.submission.Summary.TrustLevel,
			ScoreRange: w.submission.Summary.ScoreRange,
			Score:      w.submission.Score.Score,
			Flags:      w.submission.Summary.Flags,
		}, nil
	}
	return w.cache.Get(ctx, w.snapshot, w.facts, w.nowFrom(ctx)), nil
}

// Reset abandons the attempt: polls and pending checks are cancelled, the
// snapshot, facts and preview cache are cleared along with their persisted
// copies, and the workflow returns to step 0.
func (w *Workflow) Reset(ctx context.Context) (models.WorkflowState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.nowFrom(ctx)
	if w.closed {
		return w.stateLocked(now), errClosed
	}

	w.epoch++
	w.poller.Reset()
	w.debounce.CancelAll()

	caslKeyID := w.facts.CaslKeyID
	w.step = models.StepIdentity
	w.snapshot = models.DefaultFormSnapshot()
	w.facts = models.EmptyFacts()
	w.errors = models.FieldErrors{}
	clear(w.touched)
	clear(w.pollErrors)
	w.submission = nil

	if err := w.cache.Clear(ctx); err != nil {
		w.logger.WarnContext(ctx, "failed to clear persisted preview", "session_id", w.sessionID, "error", err)
	}
	w.deleteDraftLocked(ctx)

	w.metrics.IncrementNavigation("reset")
	if err := w.emitLocked(ctx, audit.ComplianceEvent{
		Action:  audit.EventDraftErased,
		Subject: string(caslKeyID),
	}); err != nil {
		w.logger.ErrorContext(ctx, "failed to audit draft erasure", "session_id", w.sessionID, "error", err)
	}
	return w.stateLocked(now), nil
}

// Restore reloads a persisted draft into a fresh workflow and resumes
// polling for methods still PROCESSING. It reports whether a draft existed.
func (w *Workflow) Restore(ctx context.Context) (bool, error) {
	if w.drafts == nil {
		return false, nil
	}
	draft, err := w.drafts.Load(ctx, w.sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not load saved progress")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false, errClosed
	}

	w.step = min(max(draft.Step, models.StepIdentity), models.LastStep)
	w.snapshot = draft.Snapshot.Clone()
	w.facts = draft.Facts.Clone()
	if w.facts.BackgroundCheckStatus == "" {
		w.facts.BackgroundCheckStatus = models.StatusNotSubmitted
	}
	if draft.Preview != nil {
		w.cache.Seed(*draft.Preview)
	}
	if w.facts.CaslKeyID != "" {
		for method, status := range w.facts.Methods {
			if status.IsPollable() {
				w.poller.Start(ctx, method, w.facts.CaslKeyID, status)
			}
		}
	}

	w.logger.InfoContext(ctx, "draft restored", "session_id", w.sessionID, "step", w.step)
	return true, nil
}

// Close cancels polls and pending checks and rejects further commands. The
// persisted draft is kept so the attempt can be resumed.
func (w *Workflow) Close(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.epoch++
	w.poller.StopAll()
	w.debounce.Close()
	w.trackLocked(ctx, audit.EventSessionClosed, "", "")
}

// Wait blocks until every poll goroutine has returned. Call it after Close
// or Reset, without holding anything the workflow might need.
func (w *Workflow) Wait() {
	w.poller.Wait()
}

func nonBlank(in []string) []string {
	if out := strutil.DedupeAndTrim(in); len(out) > 0 {
		return out
	}
	return []string{}
}
