// Package scoring turns a form snapshot and verification facts into a trust
// score, a trust level and the redacted host summary.
//
// Every function here is pure given the same now; the workflow pins now per
// command so a preview and the final submission agree.
package scoring

import (
	"time"

	"caslkey/internal/screening/models"
)

const (
	baseScore = 100
	minScore  = 0
	maxScore  = 100

	highGuestThreshold = 5
	longStayNights     = 7
	manyReviews        = 5
)

// Adjustment reasons, in evaluation order.
const (
	ReasonSpecialOccasion  = "Special occasion stay"
	ReasonHighGuestCount   = "More than 5 guests"
	ReasonNonOvernight     = "Non-overnight visitors expected"
	ReasonLocalBooking     = "Traveling near home"
	ReasonFirstTimeSTR     = "First short-term rental stay"
	ReasonLastMinute       = "Check-in within 2 days"
	ReasonChildren         = "Traveling with children under 12"
	ReasonLongStay         = "Stay longer than 7 nights"
	ReasonManyReviews      = "More than 5 platform reviews"
	ReasonSomeReviews      = "Has platform reviews"
	ReasonIdentityVerified = "Identity verified"
	ReasonRentalHistory    = "Prior rental history provided"
)

type rule struct {
	reason  string
	points  int
	applies func(s models.FormSnapshot, f models.VerificationFacts, now time.Time) bool
}

var rules = []rule{
	// deductions
	{ReasonSpecialOccasion, -5, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		return s.Purpose == models.PurposeSpecialOccasion
	}},
	{ReasonHighGuestCount, -3, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		return s.TotalGuests > highGuestThreshold
	}},
	{ReasonNonOvernight, -2, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		return s.NonOvernightGuests > 0
	}},
	{ReasonLocalBooking, -3, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		return s.TravelingNearHome
	}},
	{ReasonFirstTimeSTR, -5, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		return !s.UsedSTRBefore
	}},
	{ReasonLastMinute, -3, func(s models.FormSnapshot, _ models.VerificationFacts, now time.Time) bool {
		return models.IsLastMinute(s.CheckInDate, now)
	}},

	// bonuses
	{ReasonChildren, 1, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		return s.ChildrenUnder12 > 0
	}},
	{ReasonLongStay, 2, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		nights, ok := models.StayNights(s.CheckInDate, s.CheckOutDate)
		return ok && nights > longStayNights
	}},
	{ReasonManyReviews, 3, func(_ models.FormSnapshot, f models.VerificationFacts, _ time.Time) bool {
		return f.ReviewCount() > manyReviews
	}},
	{ReasonSomeReviews, 1, func(_ models.FormSnapshot, f models.VerificationFacts, _ time.Time) bool {
		n := f.ReviewCount()
		return n > 0 && n <= manyReviews
	}},
	{ReasonIdentityVerified, 5, func(_ models.FormSnapshot, f models.VerificationFacts, _ time.Time) bool {
		return f.IdentityVerified()
	}},
	{ReasonRentalHistory, 3, func(s models.FormSnapshot, _ models.VerificationFacts, _ time.Time) bool {
		return s.UsedSTRBefore && s.HasSupportingLinks()
	}},
}

// Score evaluates every rule independently, in order, and clamps the sum to
// [0,100].
func Score(s models.FormSnapshot, facts models.VerificationFacts, now time.Time) models.ScoreResult {
	score := baseScore
	adjustments := make([]models.Adjustment, 0, len(rules))
	for _, r := range rules {
		if !r.applies(s, facts, now) {
			continue
		}
		score += r.points
		adjustments = append(adjustments, models.Adjustment{Reason: r.reason, Points: r.points})
	}
	return models.ScoreResult{Score: clamp(score), Adjustments: adjustments}
}

func clamp(score int) int {
	return max(minScore, min(maxScore, score))
}
