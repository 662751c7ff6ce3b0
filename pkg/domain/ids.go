package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "caslkey/pkg/domain-errors"
)

// SessionID identifies one guest screening session. Every workflow instance is
// owned by exactly one session.
type SessionID uuid.UUID

// SubmissionID identifies an archived submission record.
type SubmissionID uuid.UUID

// CaslKeyID is the opaque identity handle returned by the identity service.
// It is the only identity reference that leaves the workflow.
type CaslKeyID string

const maxCaslKeyIDLength = 128

// NewSessionID returns a fresh random session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewSubmissionID returns a fresh random submission ID.
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

// ParseSessionID constructs a SessionID from external input.
//
// Errors: CodeInvalidInput for empty, malformed or nil UUIDs.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

// ParseSubmissionID constructs a SubmissionID from external input.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID(s, "submission id")
	return SubmissionID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

// ParseCaslKeyID validates an identity handle returned by a collaborator.
// Handles are opaque but must be short, printable and free of whitespace.
func ParseCaslKeyID(s string) (CaslKeyID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "casl key id cannot be empty")
	}
	if len(s) > maxCaslKeyIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "casl key id too long")
	}
	if strings.IndexFunc(s, func(r rune) bool { return unicode.IsSpace(r) || !unicode.IsPrint(r) }) >= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid casl key id")
	}
	return CaslKeyID(s), nil
}

func (id SessionID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id SubmissionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CaslKeyID) String() string    { return string(id) }
func (id CaslKeyID) IsNil() bool       { return id == "" }

func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *SessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id SubmissionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *SubmissionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
