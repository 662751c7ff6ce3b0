// Package ports defines the collaborator contracts the screening workflow
// depends on. Adapters (HTTP clients, local fakes, stores) implement them;
// the workflow never imports an adapter.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"caslkey/internal/screening/models"
	id "caslkey/pkg/domain"
)

// IdentityRequest carries the step-0 identity fields. It is the only place
// name, email, phone and address leave the workflow.
type IdentityRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Identity is the identity service's answer for a guest.
type Identity struct {
	ID               id.CaslKeyID         `json:"casl_key_id"`
	Existing         bool                 `json:"existing"`
	Verified         bool                 `json:"verified"`
	VerificationType string               `json:"verification_type,omitempty"`
	PlatformData     *models.PlatformData `json:"platform_data,omitempty"`
}

// IdentityService resolves a guest to a CASL Key identity, creating one when
// none matches.
type IdentityService interface {
	CheckOrCreateIdentity(ctx context.Context, req IdentityRequest) (Identity, error)
}

// ArtifactPayload is the out-of-band material for one verification method:
// a document reference, a phone number, profile links or a consent record.
type ArtifactPayload struct {
	Reference string            `json:"reference,omitempty"`
	Links     []string          `json:"links,omitempty"`
	Consent   bool              `json:"consent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Ticket acknowledges an accepted artifact.
type Ticket struct {
	Method      id.VerificationMethod     `json:"method"`
	Status      models.VerificationStatus `json:"status"`
	Reference   string                    `json:"reference,omitempty"`
	SubmittedAt time.Time                 `json:"submitted_at"`
}

// StatusReport is one status check result. Detail is set for VERIFIED
// social checks and carries the platform review data.
type StatusReport struct {
	Method    id.VerificationMethod     `json:"method"`
	Status    models.VerificationStatus `json:"status"`
	Detail    *models.PlatformData      `json:"detail,omitempty"`
	CheckedAt time.Time                 `json:"checked_at"`
}

// VerificationService accepts artifacts and reports their status.
type VerificationService interface {
	SubmitArtifact(ctx context.Context, method id.VerificationMethod, payload ArtifactPayload, caslKeyID id.CaslKeyID) (Ticket, error)
	GetStatus(ctx context.Context, method id.VerificationMethod, caslKeyID id.CaslKeyID) (StatusReport, error)
}

// Ack confirms a stored submission.
type Ack struct {
	SubmissionID id.SubmissionID `json:"submission_id"`
	ReceivedAt   time.Time       `json:"received_at"`
}

// SubmissionSink receives the final screening record.
type SubmissionSink interface {
	Submit(ctx context.Context, submission models.Submission) (Ack, error)
}

// DraftStore persists resumable attempt state keyed by session.
// Load returns sentinel.ErrNotFound when nothing is stored.
type DraftStore interface {
	Save(ctx context.Context, draft models.Draft) error
	Load(ctx context.Context, sessionID id.SessionID) (models.Draft, error)
	SavePreview(ctx context.Context, sessionID id.SessionID, preview models.TrustPreview) error
	ClearPreview(ctx context.Context, sessionID id.SessionID) error
	Delete(ctx context.Context, sessionID id.SessionID) error
}
