// Package domainerrors carries coded errors across service boundaries so that
// transports can render them without inspecting infrastructure details.
//
// Codes fall into two families callers must never conflate:
//   - user-fixable (validation_error, bad_request, invalid_input): the guest has
//     to change their input before trying again.
//   - retryable (service_unavailable, timeout, polling_failed, rate_limited): the
//     input was fine and the system should be retried.
package domainerrors

import (
	"errors"
	"fmt"
	"maps"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	CodeValidation    Code = "validation_error"
	CodeBadRequest    Code = "bad_request"
	CodeInvalidInput  Code = "invalid_input"
	CodeNotFound      Code = "not_found"
	CodeUnauthorized  Code = "unauthorized"
	CodeConflict      Code = "conflict"
	CodeInvalidState  Code = "invalid_state"
	CodeUnavailable   Code = "service_unavailable"
	CodeTimeout       Code = "timeout"
	CodePollingFailed Code = "polling_failed"
	CodeRateLimited   Code = "rate_limited"
	CodeInternal      Code = "internal_error"
)

// Error is a coded domain error. Fields holds per-field messages for
// validation failures and is nil otherwise.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and a user-facing message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation builds a validation_error carrying the per-field message map.
func Validation(message string, fields map[string]string) error {
	return &Error{Code: CodeValidation, Message: message, Fields: maps.Clone(fields)}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the first coded error in the chain, or
// CodeInternal when none is present.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf returns the per-field messages of a validation error.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// IsUserFixable reports whether the caller must change its input.
func IsUserFixable(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeBadRequest, CodeInvalidInput:
		return true
	}
	return false
}

// IsRetryable reports whether the same request may succeed later.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case CodeUnavailable, CodeTimeout, CodePollingFailed, CodeRateLimited:
		return true
	}
	return false
}
