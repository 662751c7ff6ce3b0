// Package kafka publishes final submissions as events for downstream host
// systems.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
)

const DefaultTopic = "caslkey.submissions"

// Publisher is the subset of the platform producer the sink uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Sink implements ports.SubmissionSink by publishing the submission keyed by
// CASL Key ID, so every submission for one guest lands on one partition.
type Sink struct {
	publisher Publisher
	topic     string
	now       func() time.Time
}

type Option func(*Sink)

func WithTopic(topic string) Option {
	return func(s *Sink) {
		if topic != "" {
			s.topic = topic
		}
	}
}

func NewSink(publisher Publisher, opts ...Option) *Sink {
	s := &Sink{publisher: publisher, topic: DefaultTopic, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Event is the published record. Version lets consumers reject shapes they
// do not understand.
type Event struct {
	Version    int               `json:"version"`
	Submission models.Submission `json:"submission"`
}

func (s *Sink) Submit(ctx context.Context, sub models.Submission) (ports.Ack, error) {
	value, err := json.Marshal(Event{Version: 1, Submission: sub})
	if err != nil {
		return ports.Ack{}, fmt.Errorf("marshal submission event: %w", err)
	}
	if err := s.publisher.Publish(ctx, s.topic, []byte(sub.CaslKeyID.String()), value); err != nil {
		category := ports.ErrorUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			category = ports.ErrorTimeout
		}
		return ports.Ack{}, ports.NewTransportError(category, "submission_events", "publish", "publish submission", err)
	}
	return ports.Ack{SubmissionID: sub.ID, ReceivedAt: s.now()}, nil
}
