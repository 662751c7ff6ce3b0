package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches wrapped coded error", func(t *testing.T) {
		err := fmt.Errorf("advance: %w", New(CodeInvalidState, "already submitted"))
		assert.True(t, HasCode(err, CodeInvalidState))
		assert.False(t, HasCode(err, CodeValidation))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

// TestFixableAndRetryableAreDisjoint guards the contract that a caller can
// always tell "fix your input" apart from "try again later".
func TestFixableAndRetryableAreDisjoint(t *testing.T) {
	codes := []Code{
		CodeValidation, CodeBadRequest, CodeInvalidInput, CodeNotFound,
		CodeUnauthorized, CodeConflict, CodeInvalidState, CodeUnavailable,
		CodeTimeout, CodePollingFailed, CodeInternal,
	}
	for _, code := range codes {
		err := New(code, "x")
		assert.False(t, IsUserFixable(err) && IsRetryable(err), "code %s is both fixable and retryable", code)
	}
	assert.True(t, IsUserFixable(Validation("bad", map[string]string{"email": "required"})))
	assert.True(t, IsRetryable(Wrap(errors.New("dial"), CodeUnavailable, "identity service unavailable")))
}

func TestValidationCopiesFields(t *testing.T) {
	fields := map[string]string{"name": "Name is required"}
	err := Validation("step invalid", fields)
	fields["name"] = "mutated"

	assert.Equal(t, "Name is required", FieldsOf(err)["name"])
}

func TestWrapUnwraps(t *testing.T) {
	root := errors.New("connection refused")
	err := Wrap(root, CodeUnavailable, "verification service unavailable")
	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "service_unavailable")
}
