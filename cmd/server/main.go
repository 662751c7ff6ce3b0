package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	httpapi "caslkey/internal/http"
	"caslkey/internal/platform/config"
	"caslkey/internal/platform/httpserver"
	"caslkey/internal/platform/logger"
	platformmetrics "caslkey/internal/platform/metrics"
	"caslkey/internal/ratelimit"
	"caslkey/internal/screening/handler"
	screeningmetrics "caslkey/internal/screening/metrics"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/service"
	"caslkey/internal/screening/session"
	"caslkey/internal/screening/store/draft"
)

const shutdownGrace = 15 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close(log)

	auditStack, err := newAudit(ctx, cfg, infra, reg, log)
	if err != nil {
		return err
	}
	defer auditStack.Close(log)

	sink, err := newSubmissionSink(ctx, cfg, infra, log)
	if err != nil {
		return err
	}
	identity, verification := newCollaborators(cfg.Collaborators, log)

	var drafts ports.DraftStore = draft.NewInMemoryStore()
	var limiterStore ratelimit.Store = ratelimit.NewInMemoryStore()
	if infra.Redis != nil {
		drafts = draft.NewRedis(infra.Redis.Client, draft.WithTTL(cfg.Redis.DraftTTL))
		limiterStore = ratelimit.NewRedisStore(infra.Redis.Client)
	}

	tokens := session.NewTokenService(cfg.Session.SigningKey, cfg.Session.Issuer, cfg.Session.Audience, cfg.Session.TokenTTL)
	sessions := service.New(identity, verification, sink, tokens,
		service.WithDraftStore(drafts),
		service.WithCompliance(auditStack.Compliance),
		service.WithOpsTracker(auditStack.Ops),
		service.WithMetrics(screeningmetrics.NewWith(reg)),
		service.WithLogger(log),
		service.WithConfig(service.Config{
			PollInterval:  cfg.Workflow.PollInterval,
			DebounceDelay: cfg.Workflow.DebounceDelay,
			IdleTimeout:   cfg.Session.IdleTimeout,
		}),
	)

	limiter := ratelimit.New(limiterStore, cfg.Session.StartsPerMinute, time.Minute,
		ratelimit.WithLogger(log),
		ratelimit.WithKeyPrefix("rl:sessions:"),
	)
	api := handler.New(handler.Registry{Service: sessions}, tokens, auditStack.Security, log,
		handler.WithStartMiddleware(limiter.PerIP),
	)
	router := httpapi.NewRouter(httpapi.Deps{
		API:      []httpapi.Registrar{api},
		Metrics:  platformmetrics.NewWith(reg),
		Gatherer: reg,
		Checks:   infra.Checks(),
		Logger:   log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, shutdownGrace, log)
	})
	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.Session.SweepInterval)
	})
	if mem, ok := limiterStore.(*ratelimit.InMemoryStore); ok {
		g.Go(func() error { return mem.RunSweeper(gctx, time.Minute) })
	}
	auditStack.Start(gctx, g)

	<-gctx.Done()
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	if err := sessions.Shutdown(drainCtx); err != nil {
		log.Warn("sessions did not drain in time", "error", err)
	}
	return g.Wait()
}
