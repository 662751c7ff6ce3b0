// Package validation computes per-field errors for one workflow step.
//
// Validation is pure: it reads the snapshot, the verification facts and a
// pinned "now", and returns a message map. An empty map means the step is
// valid. Expected invalid input never produces an error value.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"caslkey/internal/screening/models"
)

const (
	maxStayNights        = 365
	maxSupportingLinks   = 10
	maxPastCheckInDays   = 30
	maxListingURLLength  = 500
	maxEmailLength       = 254
	minOtherPurposeRunes = 3
	maxOtherPurposeRunes = 200
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\+?\d{10,15}$`)
	httpURLPattern = regexp.MustCompile(`^https?://\S+$`)
	zipPattern     = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phoneStripper  = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// validate is the package-level validator with the screening tags registered.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s: %v", tag, err))
		}
	}
	must("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	must("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(phoneStripper.Replace(fl.Field().String()))
	})
	must("http_url", func(fl validator.FieldLevel) bool {
		return httpURLPattern.MatchString(fl.Field().String())
	})
	must("zip", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	must("booking_date", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseDate(fl.Field().String())
		return ok
	})
	must("platform", func(fl validator.FieldLevel) bool {
		return models.Platform(fl.Field().String()).IsValid()
	})
	must("purpose", func(fl validator.FieldLevel) bool {
		return models.Purpose(fl.Field().String()).IsValid()
	})
	return v
}

// Env is the ambient input validation needs besides the snapshot.
type Env struct {
	Facts models.VerificationFacts
	Now   time.Time
}

// check runs a validator tag against value and returns the message of the
// first failing tag, or "" when value passes.
func check(value any, tags string, messages map[string]string) string {
	err := validate.Var(value, tags)
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "is invalid"
	}
	if msg, ok := messages[verrs[0].Tag()]; ok {
		return msg
	}
	return "is invalid"
}

// Validate returns the errors of every field on step. Unknown steps yield
// no errors.
func Validate(s models.FormSnapshot, step int, env Env) models.FieldErrors {
	errs := models.FieldErrors{}
	for _, field := range stepFields[step] {
		if msg := validateField(s, field, env); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateField evaluates a single field, including the step-0
// verification pseudo-field. It returns "" when the field is valid.
func ValidateField(s models.FormSnapshot, field models.Field, env Env) string {
	return validateField(s, field, env)
}

// Dependents lists the fields whose result can change when field changes.
func Dependents(field models.Field) []models.Field {
	switch field {
	case models.FieldProfileURLs, models.FieldBackgroundCheckConsent:
		return []models.Field{models.FieldVerification}
	case models.FieldCheckIn:
		return []models.Field{models.FieldCheckOut}
	case models.FieldPurpose:
		return []models.Field{models.FieldOtherPurpose}
	case models.FieldTotalGuests:
		return []models.Field{models.FieldChildrenUnder12}
	case models.FieldTravelingNearHome:
		return []models.Field{models.FieldZipCode}
	case models.FieldUsedSTRBefore:
		return []models.Field{models.FieldSupportingLinks}
	}
	return nil
}

var stepFields = map[int][]models.Field{
	models.StepIdentity: {
		models.FieldName,
		models.FieldEmail,
		models.FieldPhone,
		models.FieldAddress,
		models.FieldProfileURLs,
		models.FieldVerification,
	},
	models.StepBooking: {
		models.FieldPlatform,
		models.FieldListingURL,
		models.FieldCheckIn,
		models.FieldCheckOut,
	},
	models.StepStayIntent: {
		models.FieldPurpose,
		models.FieldOtherPurpose,
		models.FieldTotalGuests,
		models.FieldChildrenUnder12,
		models.FieldNonOvernightGuests,
		models.FieldZipCode,
		models.FieldSupportingLinks,
	},
	models.StepAgreements: {
		models.FieldAgreeTerms,
		models.FieldAgreeHouseRules,
		models.FieldAgreeAccuracy,
	},
}

func validateField(s models.FormSnapshot, field models.Field, env Env) string {
	switch field {
	// step 0
	case models.FieldName:
		return check(strings.TrimSpace(s.Name), "required,min=2,max=100", map[string]string{
			"required": "Name is required",
			"min":      "Name must be at least 2 characters",
			"max":      "Name must be at most 100 characters",
		})
	case models.FieldEmail:
		return check(strings.TrimSpace(s.Email), fmt.Sprintf("required,max=%d,simple_email", maxEmailLength), map[string]string{
			"required":     "Email is required",
			"max":          "Email is too long",
			"simple_email": "Enter a valid email address",
		})
	case models.FieldPhone:
		return check(strings.TrimSpace(s.Phone), "required,phone", map[string]string{
			"required": "Phone number is required",
			"phone":    "Enter a valid phone number (10-15 digits)",
		})
	case models.FieldAddress:
		return check(strings.TrimSpace(s.Address), "required,min=10,max=200", map[string]string{
			"required": "Address is required",
			"min":      "Address must be at least 10 characters",
			"max":      "Address must be at most 200 characters",
		})
	case models.FieldProfileURLs:
		return eachURL(s.ProfileURLs, "http_url", "Profile links must start with http:// or https://")
	case models.FieldVerification:
		if s.HasProfileURL() || s.BackgroundCheckConsent || env.Facts.IdentityVerified() {
			return ""
		}
		return "Add a platform profile link or consent to a background check"

	// step 1
	case models.FieldPlatform:
		return check(string(s.Platform), "required,platform", map[string]string{
			"required": "Select the booking platform",
			"platform": "Select a supported booking platform",
		})
	case models.FieldListingURL:
		return check(strings.TrimSpace(s.ListingURL), fmt.Sprintf("required,max=%d,http_url", maxListingURLLength), map[string]string{
			"required": "Listing URL is required",
			"max":      "Listing URL is too long",
			"http_url": "Listing URL must start with http:// or https://",
		})
	case models.FieldCheckIn:
		return checkIn(s, env.Now)
	case models.FieldCheckOut:
		return checkOut(s)

	// step 2
	case models.FieldPurpose:
		return check(string(s.Purpose), "required,purpose", map[string]string{
			"required": "Select the purpose of your stay",
			"purpose":  "Select a purpose from the list",
		})
	case models.FieldOtherPurpose:
		if s.Purpose != models.PurposeOther {
			return ""
		}
		return check(strings.TrimSpace(s.OtherPurpose), fmt.Sprintf("required,min=%d,max=%d", minOtherPurposeRunes, maxOtherPurposeRunes), map[string]string{
			"required": "Describe the purpose of your stay",
			"min":      "Purpose description must be at least 3 characters",
			"max":      "Purpose description must be at most 200 characters",
		})
	case models.FieldTotalGuests:
		return check(s.TotalGuests, "min=1,max=20", map[string]string{
			"min": "At least 1 guest is required",
			"max": "At most 20 guests are allowed",
		})
	case models.FieldChildrenUnder12:
		if s.ChildrenUnder12 < 0 {
			return "Children count cannot be negative"
		}
		if s.ChildrenUnder12 > s.TotalGuests {
			return "Children cannot exceed the total number of guests"
		}
		return ""
	case models.FieldNonOvernightGuests:
		return check(s.NonOvernightGuests, "min=0,max=50", map[string]string{
			"min": "Visitor count cannot be negative",
			"max": "At most 50 visitors are allowed",
		})
	case models.FieldZipCode:
		if !s.TravelingNearHome {
			return ""
		}
		return check(strings.TrimSpace(s.ZipCode), "required,zip", map[string]string{
			"required": "ZIP code is required when traveling near home",
			"zip":      "Enter a 5-digit ZIP code or ZIP+4",
		})
	case models.FieldSupportingLinks:
		if !s.UsedSTRBefore {
			return ""
		}
		if countNonBlank(s.SupportingLinks) > maxSupportingLinks {
			return fmt.Sprintf("At most %d links may be supplied", maxSupportingLinks)
		}
		return eachURL(s.SupportingLinks, "url", "Each supporting link must be a valid URL")

	// step 3
	case models.FieldAgreeTerms:
		return requireTrue(s.AgreeTerms, "You must accept the terms of service")
	case models.FieldAgreeHouseRules:
		return requireTrue(s.AgreeHouseRules, "You must agree to follow the house rules")
	case models.FieldAgreeAccuracy:
		return requireTrue(s.AgreeAccuracy, "You must confirm your information is accurate")
	}
	return ""
}

func checkIn(s models.FormSnapshot, now time.Time) string {
	msg := check(s.CheckInDate, "required,booking_date", map[string]string{
		"required":     "Check-in date is required",
		"booking_date": "Enter a valid check-in date",
	})
	if msg != "" {
		return msg
	}
	in, _ := models.ParseDate(s.CheckInDate)
	today := models.Today(now)
	if in.Before(today.AddDate(0, 0, -maxPastCheckInDays)) {
		return "Check-in date cannot be more than 30 days in the past"
	}
	if in.After(today.AddDate(1, 0, 0)) {
		return "Check-in date cannot be more than 1 year in the future"
	}
	return ""
}

func checkOut(s models.FormSnapshot) string {
	msg := check(s.CheckOutDate, "required,booking_date", map[string]string{
		"required":     "Check-out date is required",
		"booking_date": "Enter a valid check-out date",
	})
	if msg != "" {
		return msg
	}
	nights, ok := models.StayNights(s.CheckInDate, s.CheckOutDate)
	if !ok {
		// check-in reports its own error
		return ""
	}
	if nights <= 0 {
		return "Check-out date must be after check-in date"
	}
	if nights > maxStayNights {
		return "Stay cannot exceed 365 nights"
	}
	return ""
}

func requireTrue(b bool, msg string) string {
	if check(b, "required", nil) != "" {
		return msg
	}
	return ""
}

func eachURL(urls []string, tag, msg string) string {
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if check(u, tag, nil) != "" {
			return msg
		}
	}
	return ""
}

func countNonBlank(in []string) int {
	n := 0
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
