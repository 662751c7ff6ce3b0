package domain

import dErrors "caslkey/pkg/domain-errors"

// VerificationMethod identifies an out-of-band verification channel.
// Invariant: the value must be one of the supported methods.
//
// Usage: construct via ParseVerificationMethod at trust boundaries; direct
// casting bypasses the allowlist.
type VerificationMethod string

const (
	MethodID              VerificationMethod = "id"
	MethodPhone           VerificationMethod = "phone"
	MethodSocial          VerificationMethod = "social"
	MethodBackgroundCheck VerificationMethod = "background_check"
)

var validVerificationMethods = map[VerificationMethod]bool{
	MethodID:              true,
	MethodPhone:           true,
	MethodSocial:          true,
	MethodBackgroundCheck: true,
}

// ParseVerificationMethod constructs a VerificationMethod from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseVerificationMethod(s string) (VerificationMethod, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "verification method cannot be empty")
	}
	m := VerificationMethod(s)
	if !m.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid verification method")
	}
	return m, nil
}

// IsValid checks if the method is one of the supported enum values.
func (m VerificationMethod) IsValid() bool {
	return validVerificationMethods[m]
}

func (m VerificationMethod) String() string {
	return string(m)
}
