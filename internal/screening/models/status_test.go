package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "caslkey/pkg/domain"
)

func TestParseVerificationStatus(t *testing.T) {
	tests := map[string]VerificationStatus{
		"PROCESSING":    StatusProcessing,
		"pending":       StatusProcessing,
		"In Progress":   StatusProcessing,
		"approved":      StatusVerified,
		"VERIFIED":      StatusVerified,
		"review":        StatusManualReview,
		"manual-review": StatusManualReview,
		"failed":        StatusRejected,
		"not_submitted": StatusNotSubmitted,
	}
	for in, want := range tests {
		got, err := ParseVerificationStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseVerificationStatus("sideways")
	assert.Error(t, err)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusProcessing.IsPollable())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusNotSubmitted.IsTerminal())
	for _, s := range []VerificationStatus{StatusVerified, StatusManualReview, StatusRejected} {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.IsPollable(), s)
	}
}

func TestFacts(t *testing.T) {
	f := EmptyFacts()
	assert.False(t, f.HasBackgroundCheckStatus())
	assert.Equal(t, StatusNotSubmitted, f.MethodStatus(id.MethodID))

	f.BackgroundCheckStatus = StatusProcessing
	f.Methods[id.MethodPhone] = StatusVerified
	f.PlatformData = &PlatformData{ReviewCount: 7}

	c := f.Clone()
	c.Methods[id.MethodPhone] = StatusRejected
	c.PlatformData.ReviewCount = 0

	assert.True(t, f.HasBackgroundCheckStatus())
	assert.Equal(t, StatusProcessing, f.MethodStatus(id.MethodBackgroundCheck))
	assert.Equal(t, StatusVerified, f.MethodStatus(id.MethodPhone))
	assert.Equal(t, 7, f.ReviewCount())
}
