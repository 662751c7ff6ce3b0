package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	httpapi "caslkey/internal/http"
	"caslkey/internal/platform/config"
	platformkafka "caslkey/internal/platform/kafka"
	"caslkey/internal/platform/kafka/producer"
	"caslkey/internal/platform/postgres"
	"caslkey/internal/platform/redis"
	"caslkey/pkg/platform/audit/worker"
)

// infra holds the optional backing services. Nil fields are not configured
// and their concerns fall back to in-memory implementations.
type infra struct {
	Redis    *redis.Client
	Postgres *postgres.Handles
	Kafka    *kgo.Client
	Producer *producer.Producer
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	in.Redis = rc

	pg, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		in.Close(log)
		return nil, err
	}
	in.Postgres = pg

	if len(cfg.Kafka.Brokers) > 0 {
		kcfg := platformkafka.Config{
			Brokers:           cfg.Kafka.Brokers,
			ClientID:          cfg.Kafka.ClientID,
			Partitions:        cfg.Kafka.Partitions,
			ReplicationFactor: cfg.Kafka.Replication,
		}
		client, err := platformkafka.NewClient(kcfg)
		if err != nil {
			in.Close(log)
			return nil, err
		}
		in.Kafka = client
		in.Producer = producer.New(client)

		topics := []string{cfg.Kafka.Topic}
		for _, t := range worker.DefaultTopics() {
			topics = append(topics, t)
		}
		if err := platformkafka.EnsureTopics(ctx, client, kcfg, topics...); err != nil {
			in.Close(log)
			return nil, fmt.Errorf("bootstrap topics: %w", err)
		}
	}

	log.Info("infrastructure ready",
		"redis", in.Redis != nil,
		"postgres", in.Postgres != nil,
		"kafka", in.Kafka != nil,
	)
	return in, nil
}

// Checks returns a readiness probe per configured dependency.
func (in *infra) Checks() map[string]httpapi.HealthCheck {
	checks := make(map[string]httpapi.HealthCheck)
	if in.Redis != nil {
		checks["redis"] = in.Redis.Health
	}
	if in.Postgres != nil {
		checks["postgres"] = in.Postgres.Health
	}
	if in.Kafka != nil {
		checks["kafka"] = in.Kafka.Ping
	}
	return checks
}

func (in *infra) Close(log *slog.Logger) {
	if in.Producer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := in.Producer.Close(ctx); err != nil {
			log.Warn("kafka flush failed", "error", err)
		}
		cancel()
	} else if in.Kafka != nil {
		in.Kafka.Close()
	}
	if in.Postgres != nil {
		if err := in.Postgres.Close(); err != nil {
			log.Warn("postgres close failed", "error", err)
		}
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
}
