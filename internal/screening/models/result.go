package models

import id "caslkey/pkg/domain"

// Adjustment is one itemized score change.
type Adjustment struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// ScoreResult is the trust score with its adjustments in evaluation order.
type ScoreResult struct {
	Score       int          `json:"score"`
	Adjustments []Adjustment `json:"adjustments"`
}

// TrustLevel is the categorical result shared with hosts.
type TrustLevel string

const (
	TrustVerified     TrustLevel = "verified"
	TrustReview       TrustLevel = "review"
	TrustManualReview TrustLevel = "manual_review"
	TrustNotEligible  TrustLevel = "not_eligible"
)

func (l TrustLevel) String() string { return string(l) }

// HostFlags are the booking risk signals a host may see.
type HostFlags struct {
	LocalBooking      bool `json:"local_booking"`
	HighGuestCount    bool `json:"high_guest_count"`
	NoSTRHistory      bool `json:"no_str_history"`
	LastMinuteBooking bool `json:"last_minute_booking"`
}

// TrustPreview is the guest-facing preview of the host result.
type TrustPreview struct {
	CaslKeyID  id.CaslKeyID `json:"casl_key_id,omitempty"`
	TrustLevel TrustLevel   `json:"trust_level"`
	ScoreRange string       `json:"score_range"`
	Score      int          `json:"score"`
	Flags      HostFlags    `json:"flags"`
}

// HostSummary is the redacted, PII-free record shown to the host.
type HostSummary struct {
	CaslKeyID      id.CaslKeyID `json:"casl_key_id,omitempty"`
	TrustLevel     TrustLevel   `json:"trust_level"`
	ScoreRange     string       `json:"score_range"`
	Flags          HostFlags    `json:"flags"`
	Recommendation string       `json:"recommendation"`
}
