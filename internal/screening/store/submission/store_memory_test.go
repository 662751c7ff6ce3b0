package submission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caslkey/internal/screening/models"
	id "caslkey/pkg/domain"
	"caslkey/pkg/platform/sentinel"
)

func sampleSubmission(caslKeyID id.CaslKeyID, at time.Time) models.Submission {
	return models.Submission{
		ID:        id.NewSubmissionID(),
		SessionID: id.NewSessionID(),
		CaslKeyID: caslKeyID,
		Booking:   models.BookingDetails{Platform: models.PlatformAirbnb, Nights: 2},
		Score:     models.ScoreResult{Score: 86},
		Summary: models.HostSummary{
			CaslKeyID:  caslKeyID,
			TrustLevel: models.TrustVerified,
			ScoreRange: "80-100",
		},
		SubmittedAt: at,
	}
}

func TestInMemoryStore_SubmitIsIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	first := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return first }

	sub := sampleSubmission("ck_1", first)
	ack, err := store.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, ack.SubmissionID)
	assert.Equal(t, first, ack.ReceivedAt)

	store.now = func() time.Time { return first.Add(time.Hour) }
	again, err := store.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, first, again.ReceivedAt)

	got, err := store.Get(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 86, got.Score.Score)
}

func TestInMemoryStore_GetMissing(t *testing.T) {
	_, err := NewInMemoryStore().Get(context.Background(), id.NewSubmissionID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_ListByCaslKey(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	later := sampleSubmission("ck_1", base.Add(time.Hour))
	earlier := sampleSubmission("ck_1", base)
	other := sampleSubmission("ck_2", base)

	for _, sub := range []models.Submission{later, earlier, other} {
		_, err := store.Submit(context.Background(), sub)
		require.NoError(t, err)
	}

	got, err := store.ListByCaslKey(context.Background(), "ck_1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, earlier.ID, got[0].ID)
	assert.Equal(t, later.ID, got[1].ID)
}
