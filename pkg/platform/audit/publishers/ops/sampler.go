package ops

import (
	"math/rand/v2"

	audit "caslkey/pkg/platform/audit"
)

// Sampler keeps a fraction of ops events per action. Rates are fixed at
// construction and clamped to [0,1].
type Sampler struct {
	base  float64
	rates map[audit.AuditEvent]float64
	roll  func() float64
}

// NewSampler keeps base of all events, except actions listed in overrides.
func NewSampler(base float64, overrides map[audit.AuditEvent]float64) *Sampler {
	s := &Sampler{
		base:  clampRate(base),
		rates: make(map[audit.AuditEvent]float64, len(overrides)),
		roll:  rand.Float64, //nolint:gosec // sampling, not security
	}
	for action, rate := range overrides {
		s.rates[action] = clampRate(rate)
	}
	return s
}

// Keep reports whether an event for action should be tracked.
func (s *Sampler) Keep(action audit.AuditEvent) bool {
	rate, ok := s.rates[action]
	if !ok {
		rate = s.base
	}
	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return s.roll() < rate
}

func clampRate(rate float64) float64 {
	return max(0, min(1, rate))
}
