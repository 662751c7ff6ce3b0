package ports

import (
	"context"
	"errors"
	"fmt"

	dErrors "caslkey/pkg/domain-errors"
)

// ErrorCategory is the normalized taxonomy for collaborator failures.
type ErrorCategory string

const (
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorUnavailable    ErrorCategory = "unavailable"
	ErrorSessionExpired ErrorCategory = "session_expired"
	ErrorUnauthorized   ErrorCategory = "unauthorized"
	ErrorBadResponse    ErrorCategory = "bad_response"
	ErrorRejected       ErrorCategory = "rejected"
	ErrorRateLimited    ErrorCategory = "rate_limited"
	ErrorInternal       ErrorCategory = "internal"
)

// TransportError wraps a collaborator failure with its category.
type TransportError struct {
	Category     ErrorCategory
	Collaborator string
	Operation    string
	Message      string
	Underlying   error
	Retryable    bool
}

func (e *TransportError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s.%s [%s]: %s: %v", e.Collaborator, e.Operation, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s.%s [%s]: %s", e.Collaborator, e.Operation, e.Category, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Underlying
}

// NewTransportError builds a categorized error. Retryable is derived from the
// category.
func NewTransportError(category ErrorCategory, collaborator, operation, message string, underlying error) *TransportError {
	retryable := category == ErrorTimeout ||
		category == ErrorUnavailable ||
		category == ErrorRateLimited

	return &TransportError{
		Category:     category,
		Collaborator: collaborator,
		Operation:    operation,
		Message:      message,
		Underlying:   underlying,
		Retryable:    retryable,
	}
}

// CategoryOf extracts the category from err. Context errors map to timeout
// and anything uncategorized to internal.
func CategoryOf(err error) ErrorCategory {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	return ErrorInternal
}

// IsSessionFailure reports whether err is an expired or unauthorized
// collaborator session, which is worth exactly one automatic retry.
func IsSessionFailure(err error) bool {
	switch CategoryOf(err) {
	case ErrorSessionExpired, ErrorUnauthorized:
		return true
	}
	return false
}

// AsDomainError translates a collaborator failure into a coded error with a
// stable message the guest can see. Coded errors pass through unchanged.
func AsDomainError(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch CategoryOf(err) {
	case ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "the verification service took too long to respond, please try again")
	case ErrorRejected:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "the verification service rejected the request, please check your details")
	case ErrorSessionExpired, ErrorUnauthorized:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "your verification session could not be renewed, please try again")
	case ErrorInternal:
		if errors.Is(err, context.Canceled) {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "the request was cancelled, please try again")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "the verification service is unavailable, please try again later")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "the verification service is unavailable, please try again later")
	}
}
