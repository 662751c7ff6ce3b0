package models

import "slices"

// Purpose is the guest's stated reason for the stay.
type Purpose string

const (
	PurposeVacation        Purpose = "vacation"
	PurposeBusiness        Purpose = "business"
	PurposeFamilyVisit     Purpose = "family_visit"
	PurposeSpecialOccasion Purpose = "special_occasion"
	PurposeRelocation      Purpose = "relocation"
	PurposeOther           Purpose = "other"
)

// Purposes lists every selectable purpose, in display order.
func Purposes() []Purpose {
	return []Purpose{
		PurposeVacation,
		PurposeBusiness,
		PurposeFamilyVisit,
		PurposeSpecialOccasion,
		PurposeRelocation,
		PurposeOther,
	}
}

func (p Purpose) IsValid() bool { return slices.Contains(Purposes(), p) }

// Platform is the booking platform the reservation was made on.
type Platform string

const (
	PlatformAirbnb          Platform = "airbnb"
	PlatformVrbo            Platform = "vrbo"
	PlatformBooking         Platform = "booking_com"
	PlatformFurnishedFinder Platform = "furnished_finder"
	PlatformDirect          Platform = "direct"
	PlatformOther           Platform = "other"
)

func Platforms() []Platform {
	return []Platform{
		PlatformAirbnb,
		PlatformVrbo,
		PlatformBooking,
		PlatformFurnishedFinder,
		PlatformDirect,
		PlatformOther,
	}
}

func (p Platform) IsValid() bool { return slices.Contains(Platforms(), p) }
