// Package submission archives final screening submissions.
package submission

import (
	"context"
	"sort"
	"sync"
	"time"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
	"caslkey/pkg/platform/sentinel"
)

// InMemoryStore is the development archive. It has the same idempotency as
// PostgresStore.
type InMemoryStore struct {
	mu       sync.RWMutex
	records  map[id.SubmissionID]models.Submission
	received map[id.SubmissionID]time.Time
	now      func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:  make(map[id.SubmissionID]models.Submission),
		received: make(map[id.SubmissionID]time.Time),
		now:      time.Now,
	}
}

func (s *InMemoryStore) Submit(_ context.Context, sub models.Submission) (ports.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at, ok := s.received[sub.ID]; ok {
		return ports.Ack{SubmissionID: sub.ID, ReceivedAt: at}, nil
	}
	at := s.now()
	s.records[sub.ID] = sub
	s.received[sub.ID] = at
	return ports.Ack{SubmissionID: sub.ID, ReceivedAt: at}, nil
}

func (s *InMemoryStore) Get(_ context.Context, submissionID id.SubmissionID) (models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.records[submissionID]
	if !ok {
		return models.Submission{}, sentinel.ErrNotFound
	}
	return sub, nil
}

func (s *InMemoryStore) ListByCaslKey(_ context.Context, caslKeyID id.CaslKeyID) ([]models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Submission
	for _, sub := range s.records {
		if sub.CaslKeyID == caslKeyID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}
