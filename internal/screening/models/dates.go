package models

import (
	"math"
	"time"
)

// DateLayout is the wire and storage format of booking dates.
const DateLayout = "2006-01-02"

// LastMinuteDays is the check-in horizon, in days, that counts as a
// last-minute booking.
const LastMinuteDays = 2

const day = 24 * time.Hour

// ParseDate parses a booking date as a UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Today normalizes now to midnight UTC of its own calendar date.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ceilDays is ceil(d / 1 day).
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// DaysUntil returns ceil((checkIn - today) / 1 day). ok is false when the
// date does not parse.
func DaysUntil(checkIn string, now time.Time) (int, bool) {
	in, ok := ParseDate(checkIn)
	if !ok {
		return 0, false
	}
	return ceilDays(in.Sub(Today(now))), true
}

// IsLastMinute reports whether check-in falls within LastMinuteDays of today.
// Both the score deduction and the host flag use this helper.
func IsLastMinute(checkIn string, now time.Time) bool {
	days, ok := DaysUntil(checkIn, now)
	return ok && days <= LastMinuteDays
}

// StayNights returns ceil((checkOut - checkIn) / 1 day).
func StayNights(checkIn, checkOut string) (int, bool) {
	in, ok := ParseDate(checkIn)
	if !ok {
		return 0, false
	}
	out, ok := ParseDate(checkOut)
	if !ok {
		return 0, false
	}
	return ceilDays(out.Sub(in)), true
}
