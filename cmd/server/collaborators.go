package main

import (
	"log/slog"

	"golang.org/x/time/rate"

	"caslkey/internal/platform/config"
	"caslkey/internal/screening/adapters/httpclient"
	"caslkey/internal/screening/adapters/local"
	"caslkey/internal/screening/ports"
	"caslkey/pkg/platform/circuit"
)

// newCollaborators returns HTTP clients for configured URLs and the
// in-process development services otherwise.
func newCollaborators(cfg config.CollaboratorsConfig, log *slog.Logger) (ports.IdentityService, ports.VerificationService) {
	opts := func(name string) []httpclient.Option {
		o := []httpclient.Option{
			httpclient.WithAPIKey(cfg.APIKey),
			httpclient.WithTimeout(cfg.Timeout),
			httpclient.WithBreaker(circuit.New(name)),
			httpclient.WithLogger(log),
		}
		if cfg.RatePerSecond > 0 {
			o = append(o, httpclient.WithRateLimit(rate.Limit(cfg.RatePerSecond), max(cfg.Burst, 1)))
		}
		return o
	}

	var identity ports.IdentityService
	if cfg.IdentityURL != "" {
		identity = httpclient.NewIdentityClient(cfg.IdentityURL, opts("identity")...)
	} else {
		log.Warn("identity service URL not set, using local identity service")
		identity = local.NewIdentityService(cfg.LocalLatency)
	}

	var verification ports.VerificationService
	if cfg.VerificationURL != "" {
		verification = httpclient.NewVerificationClient(cfg.VerificationURL, opts("verification")...)
	} else {
		log.Warn("verification service URL not set, using local verification service")
		verification = local.NewVerificationService(cfg.LocalLatency)
	}
	return identity, verification
}
