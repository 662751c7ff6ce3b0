package models

import (
	"strings"

	dErrors "caslkey/pkg/domain-errors"
)

// VerificationStatus is the lifecycle of one out-of-band verification method.
type VerificationStatus string

const (
	StatusNotSubmitted VerificationStatus = "NOT_SUBMITTED"
	StatusProcessing   VerificationStatus = "PROCESSING"
	StatusVerified     VerificationStatus = "VERIFIED"
	StatusManualReview VerificationStatus = "MANUAL_REVIEW"
	StatusRejected     VerificationStatus = "REJECTED"
)

var statusAliases = map[string]VerificationStatus{
	"not_submitted": StatusNotSubmitted,
	"none":          StatusNotSubmitted,
	"processing":    StatusProcessing,
	"pending":       StatusProcessing,
	"in_progress":   StatusProcessing,
	"submitted":     StatusProcessing,
	"queued":        StatusProcessing,
	"verified":      StatusVerified,
	"approved":      StatusVerified,
	"passed":        StatusVerified,
	"clear":         StatusVerified,
	"manual_review": StatusManualReview,
	"review":        StatusManualReview,
	"needs_review":  StatusManualReview,
	"consider":      StatusManualReview,
	"rejected":      StatusRejected,
	"failed":        StatusRejected,
	"declined":      StatusRejected,
	"denied":        StatusRejected,
}

// ParseVerificationStatus maps a collaborator status string onto the enum.
// Matching is case-insensitive and treats spaces and dashes as underscores.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if st, ok := statusAliases[key]; ok {
		return st, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown verification status: "+s)
}

// IsTerminal reports whether polling stops at this status.
func (s VerificationStatus) IsTerminal() bool {
	switch s {
	case StatusVerified, StatusManualReview, StatusRejected:
		return true
	}
	return false
}

// IsPollable reports whether the status still needs checking.
func (s VerificationStatus) IsPollable() bool {
	return s == StatusProcessing
}

func (s VerificationStatus) String() string { return string(s) }
