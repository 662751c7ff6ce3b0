// Package fanout delivers one submission to several sinks at once.
package fanout

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
)

// Sink submits to a primary sink and any number of replicas concurrently.
// The primary's result decides the outcome; replica failures are logged.
type Sink struct {
	primary  ports.SubmissionSink
	replicas map[string]ports.SubmissionSink
	logger   *slog.Logger
}

type Option func(*Sink)

// WithReplica adds a best-effort sink under name.
func WithReplica(name string, sink ports.SubmissionSink) Option {
	return func(s *Sink) {
		if sink != nil {
			s.replicas[name] = sink
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

func New(primary ports.SubmissionSink, opts ...Option) *Sink {
	s := &Sink{
		primary:  primary,
		replicas: make(map[string]ports.SubmissionSink),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) Submit(ctx context.Context, sub models.Submission) (ports.Ack, error) {
	var ack ports.Ack
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		ack, err = s.primary.Submit(gctx, sub)
		return err
	})
	for name, replica := range s.replicas {
		g.Go(func() error {
			// ctx, not gctx: a primary failure must not cancel replicas.
			if _, err := replica.Submit(ctx, sub); err != nil {
				s.logger.WarnContext(ctx, "submission replica failed",
					"replica", name,
					"submission_id", sub.ID.String(),
					"error", err,
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ports.Ack{}, err
	}
	return ack, nil
}
