package ports

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "caslkey/pkg/domain-errors"
)

func TestNewTransportError_Retryable(t *testing.T) {
	cases := map[ErrorCategory]bool{
		ErrorTimeout:        true,
		ErrorUnavailable:    true,
		ErrorRateLimited:    true,
		ErrorSessionExpired: false,
		ErrorUnauthorized:   false,
		ErrorBadResponse:    false,
		ErrorRejected:       false,
		ErrorInternal:       false,
	}
	for category, want := range cases {
		t.Run(string(category), func(t *testing.T) {
			err := NewTransportError(category, "identity", "check", "boom", nil)
			assert.Equal(t, want, err.Retryable)
		})
	}
}

func TestCategoryOf(t *testing.T) {
	wrapped := fmt.Errorf("call: %w", NewTransportError(ErrorSessionExpired, "verification", "status", "expired", nil))
	assert.Equal(t, ErrorSessionExpired, CategoryOf(wrapped))
	assert.Equal(t, ErrorTimeout, CategoryOf(context.DeadlineExceeded))
	assert.Equal(t, ErrorInternal, CategoryOf(errors.New("plain")))
}

func TestIsSessionFailure(t *testing.T) {
	assert.True(t, IsSessionFailure(NewTransportError(ErrorSessionExpired, "identity", "check", "", nil)))
	assert.True(t, IsSessionFailure(NewTransportError(ErrorUnauthorized, "identity", "check", "", nil)))
	assert.False(t, IsSessionFailure(NewTransportError(ErrorTimeout, "identity", "check", "", nil)))
	assert.False(t, IsSessionFailure(errors.New("plain")))
}

func TestAsDomainError(t *testing.T) {
	t.Run("timeout is retryable", func(t *testing.T) {
		err := AsDomainError(NewTransportError(ErrorTimeout, "identity", "check", "slow", nil))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.True(t, dErrors.IsRetryable(err))
		assert.False(t, dErrors.IsUserFixable(err))
	})

	t.Run("outage is retryable", func(t *testing.T) {
		err := AsDomainError(NewTransportError(ErrorUnavailable, "verification", "submit", "503", nil))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
		assert.True(t, dErrors.IsRetryable(err))
	})

	t.Run("rejected is user fixable", func(t *testing.T) {
		err := AsDomainError(NewTransportError(ErrorRejected, "verification", "submit", "400", nil))
		assert.True(t, dErrors.IsUserFixable(err))
	})

	t.Run("coded errors pass through", func(t *testing.T) {
		in := dErrors.New(dErrors.CodeInvalidState, "already submitted")
		assert.Same(t, in, AsDomainError(in))
	})

	t.Run("underlying error is preserved", func(t *testing.T) {
		te := NewTransportError(ErrorBadResponse, "identity", "check", "garbled", nil)
		err := AsDomainError(te)
		var got *TransportError
		assert.ErrorAs(t, err, &got)
		assert.Equal(t, ErrorBadResponse, got.Category)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, AsDomainError(nil))
	})
}
