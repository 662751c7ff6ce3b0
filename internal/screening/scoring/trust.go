package scoring

import (
	"time"

	"caslkey/internal/screening/models"
)

const (
	verifiedThreshold     = 85
	reviewThreshold       = 70
	manualReviewThreshold = 50
)

var recommendations = map[models.TrustLevel]string{
	models.TrustVerified:     "Guest meets the screening criteria. Standard booking procedures apply.",
	models.TrustReview:       "Guest meets most screening criteria. Review the flagged items before confirming.",
	models.TrustManualReview: "Screening found several risk signals. Contact the guest before confirming the booking.",
	models.TrustNotEligible:  "Guest does not meet the screening criteria for this booking.",
}

// MapTrustLevel returns the trust level for score and its display range.
func MapTrustLevel(score int) (models.TrustLevel, string) {
	switch {
	case score >= verifiedThreshold:
		return models.TrustVerified, "85-100"
	case score >= reviewThreshold:
		return models.TrustReview, "70-84"
	case score >= manualReviewThreshold:
		return models.TrustManualReview, "50-69"
	default:
		return models.TrustNotEligible, "Below 50"
	}
}

// Flags derives the host-visible booking risk flags.
func Flags(s models.FormSnapshot, now time.Time) models.HostFlags {
	return models.HostFlags{
		LocalBooking:      s.TravelingNearHome,
		HighGuestCount:    s.TotalGuests > highGuestThreshold,
		NoSTRHistory:      !s.UsedSTRBefore,
		LastMinuteBooking: models.IsLastMinute(s.CheckInDate, now),
	}
}

// Recommendation returns the neutral host-facing sentence for level.
func Recommendation(level models.TrustLevel) string {
	return recommendations[level]
}

// Summarize builds the host summary. It reads only the flag inputs and the
// score, so no identity field can reach the result.
func Summarize(s models.FormSnapshot, facts models.VerificationFacts, result models.ScoreResult, now time.Time) models.HostSummary {
	level, scoreRange := MapTrustLevel(result.Score)
	return models.HostSummary{
		CaslKeyID:      facts.CaslKeyID,
		TrustLevel:     level,
		ScoreRange:     scoreRange,
		Flags:          Flags(s, now),
		Recommendation: Recommendation(level),
	}
}

// Preview computes the guest-facing preview.
func Preview(s models.FormSnapshot, facts models.VerificationFacts, now time.Time) models.TrustPreview {
	result := Score(s, facts, now)
	level, scoreRange := MapTrustLevel(result.Score)
	return models.TrustPreview{
		CaslKeyID:  facts.CaslKeyID,
		TrustLevel: level,
		ScoreRange: scoreRange,
		Score:      result.Score,
		Flags:      Flags(s, now),
	}
}
