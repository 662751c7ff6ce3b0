package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"caslkey/internal/screening/models"
	id "caslkey/pkg/domain"
	"caslkey/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func makeDraft(sessionID id.SessionID) models.Draft {
	snap := models.DefaultFormSnapshot()
	snap.Name = "Jane Doe"
	snap.TotalGuests = 3
	return models.Draft{
		SessionID: sessionID,
		Step:      2,
		Snapshot:  snap,
		Facts:     models.EmptyFacts(),
		Preview:   &models.TrustPreview{TrustLevel: models.TrustReview, ScoreRange: "70-84", Score: 80},
		UpdatedAt: time.Now(),
	}
}

func (s *MemoryStoreSuite) TestSaveAndLoad() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(s.store.Save(ctx, makeDraft(sessionID)))

	got, err := s.store.Load(ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(2, got.Step)
	s.Equal("Jane Doe", got.Snapshot.Name)
	s.Require().NotNil(got.Preview)
	s.Equal(80, got.Preview.Score)
}

func (s *MemoryStoreSuite) TestLoadMissing() {
	_, err := s.store.Load(context.Background(), id.NewSessionID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestClearPreviewKeepsDraft() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(s.store.Save(ctx, makeDraft(sessionID)))
	s.Require().NoError(s.store.ClearPreview(ctx, sessionID))

	got, err := s.store.Load(ctx, sessionID)
	s.Require().NoError(err)
	s.Nil(got.Preview)

	_, err = s.store.LoadPreview(ctx, sessionID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeleteRemovesEverything() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	s.Require().NoError(s.store.Save(ctx, makeDraft(sessionID)))
	s.Require().NoError(s.store.Delete(ctx, sessionID))

	_, err := s.store.Load(ctx, sessionID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.LoadPreview(ctx, sessionID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestLoadedDraftIsACopy() {
	ctx := context.Background()
	sessionID := id.NewSessionID()
	d := makeDraft(sessionID)
	d.Snapshot.ProfileURLs = []string{"https://example.com/me"}
	s.Require().NoError(s.store.Save(ctx, d))

	got, err := s.store.Load(ctx, sessionID)
	s.Require().NoError(err)
	got.Snapshot.ProfileURLs[0] = "changed"

	again, err := s.store.Load(ctx, sessionID)
	s.Require().NoError(err)
	s.Equal("https://example.com/me", again.Snapshot.ProfileURLs[0])
}
