package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"caslkey/internal/platform/config"
	platformkafka "caslkey/internal/platform/kafka"
	kafkaconsumer "caslkey/internal/platform/kafka/consumer"
	audit "caslkey/pkg/platform/audit"
	auditconsumer "caslkey/pkg/platform/audit/consumer"
	"caslkey/pkg/platform/audit/publishers/compliance"
	"caslkey/pkg/platform/audit/publishers/ops"
	"caslkey/pkg/platform/audit/publishers/security"
	auditmemory "caslkey/pkg/platform/audit/store/memory"
	auditpostgres "caslkey/pkg/platform/audit/store/postgres"
	"caslkey/pkg/platform/audit/worker"
	"caslkey/pkg/platform/circuit"
	"caslkey/pkg/platform/tx"
)

// rejectedStepSampleRate keeps a quarter of step_rejected events, which fire
// on every premature advance.
const rejectedStepSampleRate = 0.25

// auditStack is the three audit publishers over one store. With Postgres the
// store is the outbox: the relay moves entries to Kafka, or straight to the
// materializer when no broker is configured.
type auditStack struct {
	Compliance *compliance.Publisher
	Ops        *ops.Tracker
	Security   *security.Publisher

	relay    *worker.Relay
	consumer *kafkaconsumer.Consumer
	router   *auditconsumer.Router
}

func newAudit(ctx context.Context, cfg config.Server, in *infra, reg prometheus.Registerer, log *slog.Logger) (*auditStack, error) {
	a := &auditStack{}
	var store audit.Store = auditmemory.NewInMemoryStore()

	if in.Postgres != nil {
		pg := auditpostgres.New(in.Postgres.DB)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = pg

		a.router = auditconsumer.NewRouter(worker.DefaultTopics(), pg, log)

		var producer worker.Producer = loopback{router: a.router}
		if in.Producer != nil {
			producer = in.Producer
			client, err := platformkafka.NewClient(platformkafka.Config{
				Brokers:  cfg.Kafka.Brokers,
				ClientID: cfg.Kafka.ClientID + "-audit",
			}, kafkaconsumer.Options(cfg.Kafka.AuditGroup, a.router.Topics()...)...)
			if err != nil {
				return nil, err
			}
			a.consumer = kafkaconsumer.New(client, log)
		}
		a.relay = worker.NewRelay(pg, producer, tx.NewRunner(in.Postgres.DB), worker.WithLogger(log))
	}

	a.Compliance = compliance.New(store,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	a.Ops = ops.New(store,
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics(reg)),
		ops.WithBreaker(circuit.New("audit-ops")),
		ops.WithSampler(ops.NewSampler(1, map[audit.AuditEvent]float64{
			audit.EventStepRejected: rejectedStepSampleRate,
		})),
	)
	a.Security = security.New(store, security.WithLogger(log))
	return a, nil
}

// Start runs the relay and the materializing consumer on g.
func (a *auditStack) Start(ctx context.Context, g *errgroup.Group) {
	if a.relay != nil {
		g.Go(func() error { return a.relay.Run(ctx) })
	}
	if a.consumer != nil {
		g.Go(func() error { return a.consumer.Run(ctx, a.router) })
	}
}

// Close drains the buffered publishers. Compliance writes are synchronous.
func (a *auditStack) Close(log *slog.Logger) {
	if err := a.Ops.Close(); err != nil {
		log.Warn("ops audit drain failed", "error", err)
	}
	if err := a.Security.Close(); err != nil {
		log.Warn("security audit drain failed", "error", err)
	}
	if err := a.Compliance.Close(); err != nil {
		log.Warn("compliance audit close failed", "error", err)
	}
	if a.consumer != nil {
		a.consumer.Close()
	}
}

// loopback delivers relayed outbox entries to the materializer in process.
type loopback struct {
	router *auditconsumer.Router
}

func (l loopback) Publish(ctx context.Context, topic string, key, value []byte) error {
	return l.router.Handle(ctx, &kafkaconsumer.Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
	})
}
