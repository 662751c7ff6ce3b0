// Package local provides in-process collaborators for development and demos.
// They use deterministic data and a configurable latency to mimic real calls.
package local

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
)

// identityNamespace scopes the name-based UUIDs minted for guests.
var identityNamespace = uuid.MustParse("0d5c6c1e-5b0f-4e0e-9a35-c4a51c0de7a1")

// IdentityService resolves a guest to a stable CASL Key ID derived from the
// normalized email and phone. A guest is "existing" from the second lookup on.
type IdentityService struct {
	Latency time.Duration
	// Verified marks every identity as already verified by ID.
	Verified bool

	mu   sync.Mutex
	seen map[id.CaslKeyID]bool
}

func NewIdentityService(latency time.Duration) *IdentityService {
	return &IdentityService{
		Latency: latency,
		seen:    make(map[id.CaslKeyID]bool),
	}
}

func (s *IdentityService) CheckOrCreateIdentity(ctx context.Context, req ports.IdentityRequest) (ports.Identity, error) {
	if err := sleep(ctx, s.Latency); err != nil {
		return ports.Identity{}, ports.NewTransportError(ports.ErrorTimeout, "identity", "check_or_create_identity", "lookup cancelled", err)
	}

	caslKeyID := DeriveCaslKeyID(req.Email, req.Phone)

	s.mu.Lock()
	if s.seen == nil {
		s.seen = make(map[id.CaslKeyID]bool)
	}
	existing := s.seen[caslKeyID]
	s.seen[caslKeyID] = true
	s.mu.Unlock()

	identity := ports.Identity{ID: caslKeyID, Existing: existing}
	if s.Verified {
		identity.Verified = true
		identity.VerificationType = "id"
	}
	return identity, nil
}

// DeriveCaslKeyID returns the deterministic ID for an email and phone pair.
// Email case and phone formatting do not change the result.
func DeriveCaslKeyID(email, phone string) id.CaslKeyID {
	key := normalizeEmail(email) + "|" + normalizePhone(phone)
	u := uuid.NewSHA1(identityNamespace, []byte(key))
	return id.CaslKeyID("ck_" + strings.ReplaceAll(u.String(), "-", "")[:16])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
