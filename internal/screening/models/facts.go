package models

import (
	"maps"

	id "caslkey/pkg/domain"
)

// PlatformData is the external review signal attached to a guest's
// booking-platform profile.
type PlatformData struct {
	ReviewCount int     `json:"review_count"`
	Rating      float64 `json:"rating,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// VerificationFacts accumulates the results of identity and verification
// calls. Only completed collaborator calls change it; guest input never does.
type VerificationFacts struct {
	CaslKeyID             id.CaslKeyID       `json:"casl_key_id,omitempty"`
	IsExistingUser        bool               `json:"is_existing_user"`
	IsVerified            bool               `json:"is_verified"`
	VerificationType      string             `json:"verification_type,omitempty"`
	BackgroundCheckStatus VerificationStatus `json:"background_check_status"`
	IDVerified            bool               `json:"id_verified"`
	PhoneVerified         bool               `json:"phone_verified"`
	SocialVerified        bool               `json:"social_verified"`
	PlatformData          *PlatformData      `json:"platform_data,omitempty"`

	// Methods holds the last known status of each out-of-band method.
	Methods map[id.VerificationMethod]VerificationStatus `json:"methods,omitempty"`
}

// EmptyFacts is the value at the start of a fresh attempt.
func EmptyFacts() VerificationFacts {
	return VerificationFacts{
		BackgroundCheckStatus: StatusNotSubmitted,
		Methods:               map[id.VerificationMethod]VerificationStatus{},
	}
}

func (f VerificationFacts) Clone() VerificationFacts {
	out := f
	out.Methods = maps.Clone(f.Methods)
	if out.Methods == nil {
		out.Methods = map[id.VerificationMethod]VerificationStatus{}
	}
	if f.PlatformData != nil {
		pd := *f.PlatformData
		out.PlatformData = &pd
	}
	return out
}

// HasBackgroundCheckStatus reports whether a background check was started.
func (f VerificationFacts) HasBackgroundCheckStatus() bool {
	return f.BackgroundCheckStatus != "" && f.BackgroundCheckStatus != StatusNotSubmitted
}

// IdentityVerified reports whether any identity verification succeeded.
func (f VerificationFacts) IdentityVerified() bool {
	return f.IsVerified || f.IDVerified
}

// ReviewCount returns the platform review count, zero when unknown.
func (f VerificationFacts) ReviewCount() int {
	if f.PlatformData == nil {
		return 0
	}
	return f.PlatformData.ReviewCount
}

// MethodStatus returns the last known status of method.
func (f VerificationFacts) MethodStatus(method id.VerificationMethod) VerificationStatus {
	if method == id.MethodBackgroundCheck && f.HasBackgroundCheckStatus() {
		return f.BackgroundCheckStatus
	}
	if st, ok := f.Methods[method]; ok {
		return st
	}
	return StatusNotSubmitted
}
