// Package draft persists resumable screening attempts.
package draft

import (
	"context"
	"sync"

	"caslkey/internal/screening/models"
	id "caslkey/pkg/domain"
	"caslkey/pkg/platform/sentinel"
)

// InMemoryStore keeps drafts in process. The preview is stored apart from
// the draft so it can be cleared on its own.
type InMemoryStore struct {
	mu       sync.RWMutex
	drafts   map[id.SessionID]models.Draft
	previews map[id.SessionID]models.TrustPreview
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		drafts:   make(map[id.SessionID]models.Draft),
		previews: make(map[id.SessionID]models.TrustPreview),
	}
}

func (s *InMemoryStore) Save(_ context.Context, draft models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft.Preview != nil {
		s.previews[draft.SessionID] = *draft.Preview
	}
	draft.Preview = nil
	draft.Snapshot = draft.Snapshot.Clone()
	draft.Facts = draft.Facts.Clone()
	s.drafts[draft.SessionID] = draft
	return nil
}

// Load returns the draft with its latest preview attached. It returns
// sentinel.ErrNotFound when no draft exists.
func (s *InMemoryStore) Load(_ context.Context, sessionID id.SessionID) (models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		return models.Draft{}, sentinel.ErrNotFound
	}
	draft.Snapshot = draft.Snapshot.Clone()
	draft.Facts = draft.Facts.Clone()
	if p, ok := s.previews[sessionID]; ok {
		draft.Preview = &p
	}
	return draft, nil
}

func (s *InMemoryStore) SavePreview(_ context.Context, sessionID id.SessionID, preview models.TrustPreview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews[sessionID] = preview
	return nil
}

// LoadPreview returns the persisted preview on its own.
func (s *InMemoryStore) LoadPreview(_ context.Context, sessionID id.SessionID) (models.TrustPreview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.previews[sessionID]
	if !ok {
		return models.TrustPreview{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) ClearPreview(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.previews, sessionID)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	delete(s.previews, sessionID)
	return nil
}
