package models

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// FormSnapshot is the guest-supplied data for the current attempt. Values are
// replaced wholesale on every edit; a snapshot handed out is never mutated.
type FormSnapshot struct {
	// Identity
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	Phone                  string   `json:"phone"`
	Address                string   `json:"address"`
	ProfileURLs            []string `json:"profile_urls"`
	BackgroundCheckConsent bool     `json:"background_check_consent"`

	// Booking; dates are calendar dates in DateLayout.
	Platform     Platform `json:"platform"`
	ListingURL   string   `json:"listing_url"`
	CheckInDate  string   `json:"check_in_date"`
	CheckOutDate string   `json:"check_out_date"`

	// Stay intent
	Purpose            Purpose  `json:"purpose"`
	OtherPurpose       string   `json:"other_purpose"`
	TotalGuests        int      `json:"total_guests"`
	ChildrenUnder12    int      `json:"children_under_12"`
	NonOvernightGuests int      `json:"non_overnight_guests"`
	TravelingNearHome  bool     `json:"traveling_near_home"`
	ZipCode            string   `json:"zip_code"`
	UsedSTRBefore      bool     `json:"used_str_before"`
	SupportingLinks    []string `json:"supporting_links"`

	// Agreements
	AgreeTerms      bool `json:"agree_terms"`
	AgreeHouseRules bool `json:"agree_house_rules"`
	AgreeAccuracy   bool `json:"agree_accuracy"`
}

// DefaultFormSnapshot returns the state of a fresh attempt. Total guests
// starts at 1 because the guest is always part of the party.
func DefaultFormSnapshot() FormSnapshot {
	return FormSnapshot{
		ProfileURLs:     []string{},
		TotalGuests:     1,
		SupportingLinks: []string{},
	}
}

// Clone returns a deep copy.
func (s FormSnapshot) Clone() FormSnapshot {
	out := s
	out.ProfileURLs = cloneStrings(s.ProfileURLs)
	out.SupportingLinks = cloneStrings(s.SupportingLinks)
	return out
}

// HasProfileURL reports whether any non-blank profile link was supplied.
func (s FormSnapshot) HasProfileURL() bool {
	return slices.ContainsFunc(s.ProfileURLs, func(u string) bool { return strings.TrimSpace(u) != "" })
}

// HasSupportingLinks reports whether any non-blank supporting link was supplied.
func (s FormSnapshot) HasSupportingLinks() bool {
	return slices.ContainsFunc(s.SupportingLinks, func(u string) bool { return strings.TrimSpace(u) != "" })
}

// With returns a copy of s with field set to value. Values arrive from JSON
// so numbers may be float64 or json.Number and lists may be []any. A value
// of the wrong shape is rejected and s is returned unchanged.
func (s FormSnapshot) With(field Field, value any) (FormSnapshot, error) {
	out := s.Clone()
	var err error
	switch field {
	case FieldName:
		out.Name, err = asString(value)
	case FieldEmail:
		out.Email, err = asString(value)
	case FieldPhone:
		out.Phone, err = asString(value)
	case FieldAddress:
		out.Address, err = asString(value)
	case FieldProfileURLs:
		out.ProfileURLs, err = asStrings(value)
	case FieldBackgroundCheckConsent:
		out.BackgroundCheckConsent, err = asBool(value)
	case FieldPlatform:
		var v string
		v, err = asString(value)
		out.Platform = Platform(v)
	case FieldListingURL:
		out.ListingURL, err = asString(value)
	case FieldCheckIn:
		out.CheckInDate, err = asString(value)
	case FieldCheckOut:
		out.CheckOutDate, err = asString(value)
	case FieldPurpose:
		var v string
		v, err = asString(value)
		out.Purpose = Purpose(v)
	case FieldOtherPurpose:
		out.OtherPurpose, err = asString(value)
	case FieldTotalGuests:
		out.TotalGuests, err = asInt(value)
	case FieldChildrenUnder12:
		out.ChildrenUnder12, err = asInt(value)
	case FieldNonOvernightGuests:
		out.NonOvernightGuests, err = asInt(value)
	case FieldTravelingNearHome:
		out.TravelingNearHome, err = asBool(value)
	case FieldZipCode:
		out.ZipCode, err = asString(value)
	case FieldUsedSTRBefore:
		out.UsedSTRBefore, err = asBool(value)
	case FieldSupportingLinks:
		out.SupportingLinks, err = asStrings(value)
	case FieldAgreeTerms:
		out.AgreeTerms, err = asBool(value)
	case FieldAgreeHouseRules:
		out.AgreeHouseRules, err = asBool(value)
	case FieldAgreeAccuracy:
		out.AgreeAccuracy, err = asBool(value)
	default:
		return s, fmt.Errorf("unknown field %q", field)
	}
	if err != nil {
		return s, err
	}
	return out, nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("expected text, got %T", v)
}

func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("expected true or false")
		}
		return b, nil
	case nil:
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %T", v)
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, fmt.Errorf("must be a whole number")
		}
		return int(t), nil
	case json.Number:
		n, err := strconv.Atoi(t.String())
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("must be a whole number")
		}
		return n, nil
	}
	return 0, fmt.Errorf("must be a whole number, got %T", v)
}

func asStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of links")
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return []string{}, nil
		}
		return []string{t}, nil
	case nil:
		return []string{}, nil
	}
	return nil, fmt.Errorf("expected a list of links, got %T", v)
}
