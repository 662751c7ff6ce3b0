package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "caslkey/pkg/domain"
	dErrors "caslkey/pkg/domain-errors"
)

func newTestService(ttl time.Duration) *TokenService {
	return NewTokenService("test-signing-key", "test-issuer", "test-audience", ttl)
}

func Test_IssueAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)
	sessionID := id.NewSessionID()

	token, expiresAt, err := svc.Issue(sessionID, "mobile/Safari")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "mobile/Safari", claims.Device)

	got, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func Test_Validate_Expired(t *testing.T) {
	svc := newTestService(-time.Hour)
	token, _, err := svc.Issue(id.NewSessionID(), "")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func Test_Validate_Garbage(t *testing.T) {
	_, err := newTestService(time.Hour).Validate("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_WrongKey(t *testing.T) {
	token, _, err := newTestService(time.Hour).Issue(id.NewSessionID(), "")
	require.NoError(t, err)

	other := NewTokenService("other-key", "test-issuer", "test-audience", time.Hour)
	_, err = other.ValidateSessionToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_Validate_WrongAudience(t *testing.T) {
	token, _, err := newTestService(time.Hour).Issue(id.NewSessionID(), "")
	require.NoError(t, err)

	other := NewTokenService("test-signing-key", "test-issuer", "someone-else", time.Hour)
	_, err = other.Validate(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
