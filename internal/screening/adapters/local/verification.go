package local

import (
	"context"
	"sync"
	"time"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
)

// DefaultScript is the status sequence reported after an artifact is
// submitted: two PROCESSING checks, then VERIFIED.
var DefaultScript = []models.VerificationStatus{
	models.StatusProcessing,
	models.StatusProcessing,
	models.StatusVerified,
}

// VerificationService replays a scripted status sequence per method. The last
// status repeats once the script is exhausted.
type VerificationService struct {
	Latency time.Duration
	// PlatformData is reported with VERIFIED social checks.
	PlatformData models.PlatformData

	mu      sync.Mutex
	scripts map[id.VerificationMethod][]models.VerificationStatus
	cursors map[cursorKey]int
	now     func() time.Time
}

type cursorKey struct {
	caslKeyID id.CaslKeyID
	method    id.VerificationMethod
}

func NewVerificationService(latency time.Duration) *VerificationService {
	return &VerificationService{
		Latency:      latency,
		PlatformData: models.PlatformData{ReviewCount: 8, Rating: 4.8, Source: "local"},
		scripts:      make(map[id.VerificationMethod][]models.VerificationStatus),
		cursors:      make(map[cursorKey]int),
		now:          time.Now,
	}
}

// Script overrides the status sequence for method.
func (s *VerificationService) Script(method id.VerificationMethod, statuses ...models.VerificationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[method] = append([]models.VerificationStatus(nil), statuses...)
}

func (s *VerificationService) SubmitArtifact(ctx context.Context, method id.VerificationMethod, _ ports.ArtifactPayload, caslKeyID id.CaslKeyID) (ports.Ticket, error) {
	if err := sleep(ctx, s.Latency); err != nil {
		return ports.Ticket{}, ports.NewTransportError(ports.ErrorTimeout, "verification", "submit_artifact", "submit cancelled", err)
	}

	s.mu.Lock()
	s.cursors[cursorKey{caslKeyID: caslKeyID, method: method}] = 0
	s.mu.Unlock()

	return ports.Ticket{
		Method:      method,
		Status:      models.StatusProcessing,
		Reference:   string(method) + ":" + caslKeyID.String(),
		SubmittedAt: s.now(),
	}, nil
}

func (s *VerificationService) GetStatus(ctx context.Context, method id.VerificationMethod, caslKeyID id.CaslKeyID) (ports.StatusReport, error) {
	if err := sleep(ctx, s.Latency); err != nil {
		return ports.StatusReport{}, ports.NewTransportError(ports.ErrorTimeout, "verification", "get_status", "status check cancelled", err)
	}

	report := ports.StatusReport{Method: method, CheckedAt: s.now()}

	s.mu.Lock()
	key := cursorKey{caslKeyID: caslKeyID, method: method}
	cursor, submitted := s.cursors[key]
	if !submitted {
		s.mu.Unlock()
		report.Status = models.StatusNotSubmitted
		return report, nil
	}
	script := s.scripts[method]
	if len(script) == 0 {
		script = DefaultScript
	}
	if cursor >= len(script) {
		cursor = len(script) - 1
	}
	report.Status = script[cursor]
	s.cursors[key] = cursor + 1
	s.mu.Unlock()

	if report.Status == models.StatusVerified && method == id.MethodSocial {
		pd := s.PlatformData
		report.Detail = &pd
	}
	return report, nil
}
