package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "caslkey/pkg/domain"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("outbox down") }
func (failingStore) ListBySession(context.Context, id.SessionID) ([]audit.Event, error) {
	return nil, nil
}

func TestEmit_PersistsAndSetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)
	sessionID := id.NewSessionID()

	err := pub.Emit(context.Background(), audit.ComplianceEvent{
		SessionID: sessionID,
		Action:    audit.EventIdentityChecked,
		Subject:   "ck_123",
	})
	require.NoError(t, err)

	events, err := store.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, string(audit.EventIdentityChecked), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestEmit_RequiresSessionAndAction(t *testing.T) {
	pub := New(memory.NewInMemoryStore())

	err := pub.Emit(context.Background(), audit.ComplianceEvent{Action: audit.EventIdentityChecked})
	assert.Error(t, err)

	err = pub.Emit(context.Background(), audit.ComplianceEvent{SessionID: id.NewSessionID()})
	assert.Error(t, err)
}

func TestEmit_FailsClosed(t *testing.T) {
	pub := New(failingStore{})
	err := pub.Emit(context.Background(), audit.ComplianceEvent{
		SessionID: id.NewSessionID(),
		Action:    audit.EventScreeningSubmitted,
		Decision:  "verified",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbox down")
}

func TestEmit_RejectsMisroutedOrIncompleteActions(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)
	sessionID := id.NewSessionID()

	err := pub.Emit(context.Background(), audit.ComplianceEvent{
		SessionID: sessionID,
		Action:    audit.EventStepAdvanced,
	})
	assert.Error(t, err, "operational actions belong to the ops tracker")

	err = pub.Emit(context.Background(), audit.ComplianceEvent{
		SessionID: sessionID,
		Action:    audit.EventVerificationCompleted,
		Method:    "social",
	})
	assert.Error(t, err, "a verification outcome needs its status")

	events, err := store.ListBySession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Empty(t, events)
}
