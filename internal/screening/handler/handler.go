// Package handler exposes guest sessions over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/service"
	"caslkey/internal/screening/workflow"
	id "caslkey/pkg/domain"
	dErrors "caslkey/pkg/domain-errors"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/httputil"
	authmw "caslkey/pkg/platform/middleware/auth"
	"caslkey/pkg/requestcontext"
)

// Workflow is the per-session command surface.
type Workflow interface {
	View(ctx context.Context) workflow.View
	UpdateField(ctx context.Context, field models.Field, value any) (models.WorkflowState, error)
	Advance(ctx context.Context) (models.WorkflowState, error)
	Retreat(ctx context.Context) (models.WorkflowState, error)
	SubmitArtifact(ctx context.Context, method id.VerificationMethod, payload ports.ArtifactPayload) (ports.Ticket, error)
	Reset(ctx context.Context) (models.WorkflowState, error)
	Preview(ctx context.Context) (*models.TrustPreview, error)
}

// Service is the session registry.
type Service interface {
	Start(ctx context.Context, resume *id.SessionID) (*service.Started, error)
	Workflow(ctx context.Context, sessionID id.SessionID) (Workflow, error)
	Close(ctx context.Context, sessionID id.SessionID) error
}

// SecurityEmitter records access violations.
type SecurityEmitter interface {
	Emit(ctx context.Context, event audit.SecurityEvent)
}

// Handler wires the session endpoints to the session service.
type Handler struct {
	service  Service
	tokens   authmw.TokenValidator
	security SecurityEmitter
	logger   *slog.Logger
	startMW  []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithStartMiddleware wraps POST /sessions only, e.g. with a rate limiter.
func WithStartMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.startMW = append(h.startMW, mw...)
	}
}

func New(svc Service, tokens authmw.TokenValidator, security SecurityEmitter, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:  svc,
		tokens:   tokens,
		security: security,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the session endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.With(h.startMW...).Post("/sessions", h.HandleStart)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession(h.tokens, h.logger))
		r.Get("/sessions/{id}", h.HandleGet)
		r.Patch("/sessions/{id}/fields", h.HandleUpdateField)
		r.Post("/sessions/{id}/advance", h.HandleAdvance)
		r.Post("/sessions/{id}/retreat", h.HandleRetreat)
		r.Post("/sessions/{id}/artifacts", h.HandleSubmitArtifact)
		r.Post("/sessions/{id}/reset", h.HandleReset)
		r.Get("/sessions/{id}/preview", h.HandlePreview)
		r.Delete("/sessions/{id}", h.HandleClose)
	})
}

// HandleStart handles POST /sessions. A request carrying a valid session
// token resumes that session; anything else starts a new one.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var resume *id.SessionID
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		sessionID, err := h.tokens.ValidateSessionToken(token)
		if err != nil {
			h.logger.WarnContext(ctx, "resume token rejected", "request_id", requestID, "error", err)
			httputil.WriteError(w, err)
			return
		}
		resume = &sessionID
	}

	started, err := h.service.Start(ctx, resume)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start session", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if started.Resumed {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, fromStarted(started))
}

// HandleGet handles GET /sessions/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, wf.View(r.Context()))
}

// HandleUpdateField handles PATCH /sessions/{id}/fields.
func (h *Handler) HandleUpdateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateFieldRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	state, err := wf.UpdateField(ctx, req.parsedField, req.Value)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StateResponse{State: state})
}

// HandleAdvance handles POST /sessions/{id}/advance.
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}

	state, err := wf.Advance(ctx)
	if err != nil {
		if !dErrors.IsUserFixable(err) {
			h.logger.ErrorContext(ctx, "advance failed",
				"request_id", requestcontext.RequestID(ctx),
				"session_id", requestcontext.SessionID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "step advanced",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", requestcontext.SessionID(ctx),
		"step", state.CurrentStep,
		"submitted", state.Submitted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, StateResponse{State: state})
}

// HandleRetreat handles POST /sessions/{id}/retreat.
func (h *Handler) HandleRetreat(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	state, err := wf.Retreat(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StateResponse{State: state})
}

// HandleSubmitArtifact handles POST /sessions/{id}/artifacts.
func (h *Handler) HandleSubmitArtifact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ArtifactRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	ticket, err := wf.SubmitArtifact(ctx, req.parsedMethod, req.Payload())
	if err != nil {
		if !dErrors.IsUserFixable(err) {
			h.logger.ErrorContext(ctx, "artifact submission failed",
				"request_id", requestcontext.RequestID(ctx),
				"method", req.parsedMethod,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, fromTicket(ticket))
}

// HandleReset handles POST /sessions/{id}/reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	state, err := wf.Reset(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StateResponse{State: state})
}

// HandlePreview handles GET /sessions/{id}/preview.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	preview, err := wf.Preview(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PreviewResponse{Preview: preview})
}

// HandleClose handles DELETE /sessions/{id}.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if err := h.service.Close(ctx, sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// workflow resolves the path session after checking it matches the token.
func (h *Handler) workflow(w http.ResponseWriter, r *http.Request) (Workflow, bool) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return nil, false
	}
	wf, err := h.service.Workflow(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return wf, true
}

// authorize parses the path session ID and requires it to be the session the
// bearer token was issued for. A mismatch is reported as not found.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SessionID{}, false
	}

	owner := requestcontext.SessionID(ctx)
	if owner != sessionID {
		h.logger.WarnContext(ctx, "session access denied",
			"request_id", requestcontext.RequestID(ctx),
			"token_session_id", owner,
		)
		if h.security != nil {
			h.security.Emit(ctx, audit.SecurityEvent{
				Timestamp: requestcontext.Now(ctx),
				SessionID: owner,
				Action:    audit.EventSessionAccessDenied,
				Reason:    "token bound to another session",
				IP:        requestcontext.ClientIP(ctx),
				Device:    requestcontext.Device(ctx),
				RequestID: requestcontext.RequestID(ctx),
				Severity:  audit.SeverityWarning,
			})
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session not found"))
		return id.SessionID{}, false
	}
	return sessionID, true
}

// Registry adapts *service.Service to the handler's Service interface.
type Registry struct {
	*service.Service
}

func (r Registry) Workflow(ctx context.Context, sessionID id.SessionID) (Workflow, error) {
	wf, err := r.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return wf, nil
}
