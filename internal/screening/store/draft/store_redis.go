package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"caslkey/internal/screening/models"
	id "caslkey/pkg/domain"
	"caslkey/pkg/platform/sentinel"
)

const (
	draftKeyPrefix   = "caslkey:draft:"
	previewKeyPrefix = "caslkey:preview:"

	// DefaultTTL bounds how long an abandoned attempt can be resumed.
	DefaultTTL = 7 * 24 * time.Hour
)

// RedisStore keeps drafts as JSON values with a sliding TTL. Every write
// refreshes the expiry of both keys.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func draftKey(sessionID id.SessionID) string   { return draftKeyPrefix + sessionID.String() }
func previewKey(sessionID id.SessionID) string { return previewKeyPrefix + sessionID.String() }

func (s *RedisStore) Save(ctx context.Context, draft models.Draft) error {
	preview := draft.Preview
	draft.Preview = nil
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, draftKey(draft.SessionID), payload, s.ttl)
	if preview != nil {
		p, err := json.Marshal(preview)
		if err != nil {
			return fmt.Errorf("marshal preview: %w", err)
		}
		pipe.Set(ctx, previewKey(draft.SessionID), p, s.ttl)
	} else {
		pipe.Expire(ctx, previewKey(draft.SessionID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the draft with its latest preview attached. It returns
// sentinel.ErrNotFound when the draft is missing or expired.
func (s *RedisStore) Load(ctx context.Context, sessionID id.SessionID) (models.Draft, error) {
	values, err := s.client.MGet(ctx, draftKey(sessionID), previewKey(sessionID)).Result()
	if err != nil {
		return models.Draft{}, fmt.Errorf("load draft: %w", err)
	}

	raw, ok := values[0].(string)
	if !ok {
		return models.Draft{}, sentinel.ErrNotFound
	}
	var draft models.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return models.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	draft.Snapshot = draft.Snapshot.Clone()
	draft.Facts = draft.Facts.Clone()

	if rawPreview, ok := values[1].(string); ok {
		var p models.TrustPreview
		if err := json.Unmarshal([]byte(rawPreview), &p); err == nil {
			draft.Preview = &p
		}
	}
	return draft, nil
}

func (s *RedisStore) SavePreview(ctx context.Context, sessionID id.SessionID, preview models.TrustPreview) error {
	payload, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("marshal preview: %w", err)
	}
	return s.client.Set(ctx, previewKey(sessionID), payload, s.ttl).Err()
}

// LoadPreview returns the persisted preview on its own.
func (s *RedisStore) LoadPreview(ctx context.Context, sessionID id.SessionID) (models.TrustPreview, error) {
	raw, err := s.client.Get(ctx, previewKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.TrustPreview{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.TrustPreview{}, fmt.Errorf("load preview: %w", err)
	}
	var p models.TrustPreview
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.TrustPreview{}, fmt.Errorf("decode preview: %w", err)
	}
	return p, nil
}

func (s *RedisStore) ClearPreview(ctx context.Context, sessionID id.SessionID) error {
	return s.client.Del(ctx, previewKey(sessionID)).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	return s.client.Del(ctx, draftKey(sessionID), previewKey(sessionID)).Err()
}
