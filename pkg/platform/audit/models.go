package audit

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	id "caslkey/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events a screening record must be able to prove:
	// identity checks, artifacts handed to a verifier, terminal outcomes and
	// submissions. Long retention, fail-closed.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers access violations against guest sessions.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine workflow navigation. Can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Events never carry guest name, email, phone or address. When an identity
// must be traceable, SubjectIDHash holds HashSubject of the identifier.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	SessionID id.SessionID
	// Subject is the opaque identity handle or another non-personal reference.
	Subject  string
	Action   string
	Method   string
	Decision string
	Reason   string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID     string
	Device        string
	IP            string
	Severity      Severity
	SubjectIDHash string
}

type AuditEvent string

const (
	// Compliance
	EventIdentityChecked       AuditEvent = "identity_checked"
	EventArtifactSubmitted     AuditEvent = "artifact_submitted"
	EventVerificationCompleted AuditEvent = "verification_completed"
	EventScreeningSubmitted    AuditEvent = "screening_submitted"
	EventDraftErased           AuditEvent = "draft_erased"

	// Security
	EventSessionAccessDenied AuditEvent = "session_access_denied"

	// Operations
	EventSessionStarted AuditEvent = "session_started"
	EventSessionClosed  AuditEvent = "session_closed"
	EventStepAdvanced   AuditEvent = "step_advanced"
	EventStepRejected   AuditEvent = "step_rejected"
	EventStepRetreated  AuditEvent = "step_retreated"
	EventPollFailed     AuditEvent = "poll_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentityChecked:       CategoryCompliance,
	EventArtifactSubmitted:     CategoryCompliance,
	EventVerificationCompleted: CategoryCompliance,
	EventScreeningSubmitted:    CategoryCompliance,
	EventDraftErased:           CategoryCompliance,

	EventSessionAccessDenied: CategorySecurity,

	EventSessionStarted: CategoryOperations,
	EventSessionClosed:  CategoryOperations,
	EventStepAdvanced:   CategoryOperations,
	EventStepRejected:   CategoryOperations,
	EventStepRetreated:  CategoryOperations,
	EventPollFailed:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID id.SessionID) ([]Event, error)
}

// HashSubject returns a keyless BLAKE2b-256 digest of a normalized identifier
// so an identity can be correlated across events without being stored.
func HashSubject(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// -----------------------------------------------------------------------------
// Right-sized event types for tri-publisher architecture
// -----------------------------------------------------------------------------

// ComplianceEvent captures screening actions requiring guaranteed persistence.
type ComplianceEvent struct {
	Timestamp     time.Time    // set automatically if zero
	SessionID     id.SessionID // required
	Subject       string       // opaque identity handle when known
	Action        AuditEvent   // required
	Method        string       // verification method, when relevant
	Decision      string       // outcome, e.g. "VERIFIED", "verified"
	SubjectIDHash string       // HashSubject of the guest's email
	RequestID     string
}

// Category returns CategoryCompliance (always).
func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:      CategoryCompliance,
		Timestamp:     e.Timestamp,
		SessionID:     e.SessionID,
		Subject:       e.Subject,
		Action:        string(e.Action),
		Method:        e.Method,
		Decision:      e.Decision,
		SubjectIDHash: e.SubjectIDHash,
		RequestID:     e.RequestID,
	}
}

// SecurityEvent captures access violations for alerting.
type SecurityEvent struct {
	Timestamp time.Time
	SessionID id.SessionID
	Action    AuditEvent
	Reason    string
	IP        string
	Device    string
	RequestID string
	Severity  Severity
}

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Category returns CategorySecurity (always).
func (e SecurityEvent) Category() EventCategory { return CategorySecurity }

func (e SecurityEvent) ToEvent() Event {
	return Event{
		Category:  CategorySecurity,
		Timestamp: e.Timestamp,
		SessionID: e.SessionID,
		Action:    string(e.Action),
		Reason:    e.Reason,
		IP:        e.IP,
		Device:    e.Device,
		RequestID: e.RequestID,
		Severity:  e.Severity,
	}
}

// OpsEvent captures workflow navigation with minimal overhead.
// Events are fire-and-forget with optional sampling.
type OpsEvent struct {
	Timestamp time.Time
	SessionID id.SessionID
	Action    AuditEvent
	Method    string
	Decision  string
	Device    string
	RequestID string
}

// Category returns CategoryOperations (always).
func (e OpsEvent) Category() EventCategory { return CategoryOperations }

func (e OpsEvent) ToEvent() Event {
	return Event{
		Category:  CategoryOperations,
		Timestamp: e.Timestamp,
		SessionID: e.SessionID,
		Action:    string(e.Action),
		Method:    e.Method,
		Decision:  e.Decision,
		Device:    e.Device,
		RequestID: e.RequestID,
	}
}
