package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLastMinute(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	assert.True(t, IsLastMinute("2026-03-10", now))
	assert.True(t, IsLastMinute("2026-03-12", now))
	assert.False(t, IsLastMinute("2026-03-13", now))
	assert.False(t, IsLastMinute("", now))
	assert.False(t, IsLastMinute("10/03/2026", now))
}

func TestStayNights(t *testing.T) {
	n, ok := StayNights("2026-03-10", "2026-03-18")
	assert.True(t, ok)
	assert.Equal(t, 8, n)

	_, ok = StayNights("2026-03-10", "")
	assert.False(t, ok)
}

func TestToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Today(now))
}
