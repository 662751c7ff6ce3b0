package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFormSnapshot(t *testing.T) {
	s := DefaultFormSnapshot()
	assert.Equal(t, 1, s.TotalGuests)
	assert.NotNil(t, s.ProfileURLs)
	assert.NotNil(t, s.SupportingLinks)
	assert.Empty(t, s.Name)
	assert.False(t, s.AgreeTerms)
}

func TestWith_DoesNotMutateReceiver(t *testing.T) {
	base := DefaultFormSnapshot()
	base.ProfileURLs = []string{"https://a.example"}

	next, err := base.With(FieldProfileURLs, []any{"https://b.example"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example"}, base.ProfileURLs)
	assert.Equal(t, []string{"https://b.example"}, next.ProfileURLs)

	next.ProfileURLs[0] = "changed"
	assert.Equal(t, "https://a.example", base.ProfileURLs[0])
}

func TestWith_Coercion(t *testing.T) {
	s := DefaultFormSnapshot()

	tests := []struct {
		name  string
		field Field
		value any
		check func(t *testing.T, s FormSnapshot)
	}{
		{"json float count", FieldTotalGuests, float64(4), func(t *testing.T, s FormSnapshot) { assert.Equal(t, 4, s.TotalGuests) }},
		{"json number count", FieldChildrenUnder12, json.Number("2"), func(t *testing.T, s FormSnapshot) { assert.Equal(t, 2, s.ChildrenUnder12) }},
		{"string count", FieldNonOvernightGuests, " 3 ", func(t *testing.T, s FormSnapshot) { assert.Equal(t, 3, s.NonOvernightGuests) }},
		{"bool", FieldTravelingNearHome, true, func(t *testing.T, s FormSnapshot) { assert.True(t, s.TravelingNearHome) }},
		{"string bool", FieldAgreeTerms, "true", func(t *testing.T, s FormSnapshot) { assert.True(t, s.AgreeTerms) }},
		{"purpose", FieldPurpose, "business", func(t *testing.T, s FormSnapshot) { assert.Equal(t, PurposeBusiness, s.Purpose) }},
		{"single link", FieldSupportingLinks, "https://x.example", func(t *testing.T, s FormSnapshot) {
			assert.Equal(t, []string{"https://x.example"}, s.SupportingLinks)
		}},
		{"nil clears text", FieldName, nil, func(t *testing.T, s FormSnapshot) { assert.Empty(t, s.Name) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.With(tt.field, tt.value)
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestWith_Rejects(t *testing.T) {
	s := DefaultFormSnapshot()

	tests := []struct {
		name  string
		field Field
		value any
	}{
		{"fractional count", FieldTotalGuests, 2.5},
		{"text count", FieldTotalGuests, "many"},
		{"number as text", FieldName, 42},
		{"bad bool", FieldAgreeTerms, "maybe"},
		{"mixed list", FieldProfileURLs, []any{"https://a.example", 1}},
		{"unknown field", Field("favourite_colour"), "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.With(tt.field, tt.value)
			require.Error(t, err)
			assert.Equal(t, s, got)
		})
	}
}

func TestFieldMetadata(t *testing.T) {
	assert.Equal(t, StepIdentity, FieldEmail.Step())
	assert.Equal(t, StepBooking, FieldCheckOut.Step())
	assert.Equal(t, StepStayIntent, FieldZipCode.Step())
	assert.Equal(t, StepAgreements, FieldAgreeAccuracy.Step())
	assert.Equal(t, -1, FieldVerification.Step())

	assert.Equal(t, KindText, FieldAddress.Kind())
	assert.Equal(t, KindDiscrete, FieldPurpose.Kind())
	assert.False(t, FieldVerification.IsKnown())
}

func TestPurposes_IncludeSpecialOccasion(t *testing.T) {
	assert.True(t, PurposeSpecialOccasion.IsValid())
	assert.False(t, Purpose("party").IsValid())
}
