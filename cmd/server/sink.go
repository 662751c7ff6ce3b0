package main

import (
	"context"
	"log/slog"

	"caslkey/internal/platform/config"
	"caslkey/internal/screening/adapters/fanout"
	"caslkey/internal/screening/adapters/kafka"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/store/submission"
)

// newSubmissionSink archives submissions in Postgres (or memory) and, when a
// broker is configured, also publishes them as events.
func newSubmissionSink(ctx context.Context, cfg config.Server, in *infra, log *slog.Logger) (ports.SubmissionSink, error) {
	var archive ports.SubmissionSink = submission.NewInMemoryStore()
	if in.Postgres != nil {
		pg := submission.NewPostgres(in.Postgres.Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		archive = pg
	}

	opts := []fanout.Option{fanout.WithLogger(log)}
	if in.Producer != nil {
		opts = append(opts, fanout.WithReplica("kafka", kafka.NewSink(in.Producer, kafka.WithTopic(cfg.Kafka.Topic))))
	}
	return fanout.New(archive, opts...), nil
}
