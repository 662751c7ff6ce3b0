//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "caslkey/pkg/domain"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/audit/store/postgres"
	txcontext "caslkey/pkg/platform/tx"
	"caslkey/pkg/testutil/containers"
)

type OutboxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
	tx       *txcontext.Runner
}

func TestOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.tx = txcontext.NewRunner(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *OutboxSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "outbox", "audit_events"))
}

func (s *OutboxSuite) TestAppendThenRelay() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Subject:   "ck_7f3a",
		Action:    string(audit.EventIdentityChecked),
	}))

	var entries []postgres.OutboxEntry
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.store.FetchPending(ctx, 10)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		return s.store.MarkPublished(ctx, ids)
	})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(sessionID.String(), entries[0].AggregateID)
	s.Equal(string(audit.EventIdentityChecked), entries[0].EventType)

	var payload postgres.Payload
	s.Require().NoError(json.Unmarshal(entries[0].Payload, &payload))
	s.Equal("ck_7f3a", payload.Subject)

	pending, err := s.store.FetchPending(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *OutboxSuite) TestMaterializeAndList() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, action := range []audit.AuditEvent{audit.EventIdentityChecked, audit.EventScreeningSubmitted} {
		s.Require().NoError(s.store.AppendWithID(ctx, uuid.New(), audit.Event{
			Category:  audit.CategoryCompliance,
			Timestamp: base.Add(time.Duration(i) * time.Second),
			SessionID: sessionID,
			Action:    string(action),
		}))
	}

	events, err := s.store.ListBySession(ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventIdentityChecked), events[0].Action)
	s.Equal(string(audit.EventScreeningSubmitted), events[1].Action)
}

func (s *OutboxSuite) TestMaterializeIsIdempotent() {
	ctx := context.Background()
	eventID := uuid.New()
	event := audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now().UTC(),
		SessionID: id.NewSessionID(),
		Action:    string(audit.EventDraftErased),
	}
	s.Require().NoError(s.store.AppendWithID(ctx, eventID, event))
	s.Require().NoError(s.store.AppendWithID(ctx, eventID, event))

	events, err := s.store.ListBySession(ctx, event.SessionID)
	s.Require().NoError(err)
	s.Len(events, 1)
}
