package handler

import (
	"time"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/service"
	"caslkey/internal/screening/workflow"
)

// StartResponse is returned by POST /sessions.
type StartResponse struct {
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Resumed   bool          `json:"resumed"`
	Session   workflow.View `json:"session"`
}

func fromStarted(s *service.Started) StartResponse {
	return StartResponse{
		SessionID: s.SessionID.String(),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Resumed:   s.Resumed,
		Session:   s.View,
	}
}

// StateResponse wraps the workflow state returned by commands.
type StateResponse struct {
	State models.WorkflowState `json:"state"`
}

// TicketResponse is returned by POST /sessions/{id}/artifacts.
type TicketResponse struct {
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	Reference   string    `json:"reference,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func fromTicket(t ports.Ticket) TicketResponse {
	return TicketResponse{
		Method:      t.Method.String(),
		Status:      t.Status.String(),
		Reference:   t.Reference,
		SubmittedAt: t.SubmittedAt,
	}
}

// PreviewResponse is returned by GET /sessions/{id}/preview. Preview is null
// until an identity exists.
type PreviewResponse struct {
	Preview *models.TrustPreview `json:"preview"`
}
