package workflow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"caslkey/internal/screening/ports"
	dErrors "caslkey/pkg/domain-errors"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/requestcontext"
)

// call runs one collaborator operation. An expired or unauthorized
// collaborator session is retried exactly once; every other failure is
// returned as is.
func call[T any](ctx context.Context, w *Workflow, collaborator, operation string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := w.tracer.Start(ctx, collaborator+"."+operation, trace.WithAttributes(
		attribute.String("collaborator", collaborator),
	))
	defer span.End()

	start := time.Now()
	v, err := fn(ctx)
	if err != nil && ports.IsSessionFailure(err) {
		w.logger.InfoContext(ctx, "retrying after collaborator session failure",
			"collaborator", collaborator,
			"operation", operation,
			"session_id", w.sessionID,
		)
		span.AddEvent("retry")
		v, err = fn(ctx)
	}
	w.metrics.ObserveCollaborator(collaborator, operation, time.Since(start))

	if err != nil {
		category := ports.CategoryOf(err)
		w.metrics.IncrementCollaboratorError(collaborator, string(category))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(category))
		w.logger.WarnContext(ctx, "collaborator call failed",
			"collaborator", collaborator,
			"operation", operation,
			"category", category,
			"session_id", w.sessionID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return v, err
}

// emitLocked records a compliance event. A failure is returned as a
// retryable error so the caller can abort before changing state.
func (w *Workflow) emitLocked(ctx context.Context, event audit.ComplianceEvent) error {
	if w.compliance == nil {
		return nil
	}
	event.SessionID = w.sessionID
	event.RequestID = requestcontext.RequestID(ctx)
	if err := w.compliance.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not record this step, please try again")
	}
	return nil
}

func (w *Workflow) trackLocked(ctx context.Context, action audit.AuditEvent, method, decision string) {
	if w.ops == nil {
		return
	}
	w.ops.Track(ctx, audit.OpsEvent{
		SessionID: w.sessionID,
		Action:    action,
		Method:    method,
		Decision:  decision,
		Device:    requestcontext.Device(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
}
