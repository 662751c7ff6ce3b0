package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "caslkey/pkg/domain"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/audit/store/memory"
)

func TestPublisher_FlushesOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)
	sessionID := id.NewSessionID()

	for range 3 {
		pub.Emit(context.Background(), audit.SecurityEvent{
			SessionID: sessionID,
			Action:    audit.EventSessionAccessDenied,
			Reason:    "token_session_mismatch",
		})
	}
	require.NoError(t, pub.Close())

	events, err := store.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
	assert.Equal(t, audit.SeverityWarning, events[0].Severity)
}

func TestEventQueue_DropsOldestWhenFull(t *testing.T) {
	q := newEventQueue(2)
	q.push(audit.SecurityEvent{Reason: "a"})
	q.push(audit.SecurityEvent{Reason: "b"})
	q.push(audit.SecurityEvent{Reason: "c"})

	assert.Equal(t, int64(1), q.droppedCount())
	first := q.take(1)
	require.Len(t, first, 1)
	assert.Equal(t, "b", first[0].Reason)
	assert.Equal(t, 1, q.size())

	rest := q.take(10)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].Reason)
	assert.Nil(t, q.take(10))
}
