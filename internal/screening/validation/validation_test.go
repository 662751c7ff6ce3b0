package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"caslkey/internal/screening/models"
)

var fixedNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

type ValidationSuite struct {
	suite.Suite
	env Env
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationSuite))
}

func (s *ValidationSuite) SetupTest() {
	s.env = Env{Facts: models.EmptyFacts(), Now: fixedNow}
}

func validIdentity() models.FormSnapshot {
	f := models.DefaultFormSnapshot()
	f.Name = "Jordan Lee"
	f.Email = "jordan@example.com"
	f.Phone = "(555) 123-4567"
	f.Address = "12 Harbor Street, Portland"
	f.ProfileURLs = []string{"https://airbnb.com/users/show/42"}
	return f
}

func validBooking() models.FormSnapshot {
	f := validIdentity()
	f.Platform = models.PlatformAirbnb
	f.ListingURL = "https://airbnb.com/rooms/99"
	f.CheckInDate = "2026-07-01"
	f.CheckOutDate = "2026-07-05"
	return f
}

func validStay() models.FormSnapshot {
	f := validBooking()
	f.Purpose = models.PurposeVacation
	f.TotalGuests = 2
	return f
}

func (s *ValidationSuite) TestStep0() {
	s.Run("valid", func() {
		s.Empty(Validate(validIdentity(), models.StepIdentity, s.env))
	})

	s.Run("empty form reports every required field", func() {
		errs := Validate(models.DefaultFormSnapshot(), models.StepIdentity, s.env)
		for _, f := range []models.Field{models.FieldName, models.FieldEmail, models.FieldPhone, models.FieldAddress, models.FieldVerification} {
			s.Contains(errs, f)
		}
		s.NotContains(errs, models.FieldProfileURLs)
	})

	cases := []struct {
		name  string
		edit  func(*models.FormSnapshot)
		field models.Field
	}{
		{"short name", func(f *models.FormSnapshot) { f.Name = "J" }, models.FieldName},
		{"long name", func(f *models.FormSnapshot) { f.Name = strings.Repeat("a", 101) }, models.FieldName},
		{"email without tld", func(f *models.FormSnapshot) { f.Email = "jordan@example" }, models.FieldEmail},
		{"email too long", func(f *models.FormSnapshot) { f.Email = strings.Repeat("a", 250) + "@b.co" }, models.FieldEmail},
		{"short phone", func(f *models.FormSnapshot) { f.Phone = "555-1234" }, models.FieldPhone},
		{"phone with letters", func(f *models.FormSnapshot) { f.Phone = "555-CALL-NOW1" }, models.FieldPhone},
		{"short address", func(f *models.FormSnapshot) { f.Address = "1 Main" }, models.FieldAddress},
		{"bad profile url", func(f *models.FormSnapshot) { f.ProfileURLs = []string{"airbnb.com/users/1"} }, models.FieldProfileURLs},
		{"no verification path", func(f *models.FormSnapshot) { f.ProfileURLs = []string{" "} }, models.FieldVerification},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			f := validIdentity()
			tc.edit(&f)
			errs := Validate(f, models.StepIdentity, s.env)
			s.Contains(errs, tc.field)
		})
	}

	s.Run("international phone", func() {
		f := validIdentity()
		f.Phone = "+44 20 7946 0958"
		s.Empty(Validate(f, models.StepIdentity, s.env))
	})

	s.Run("consent satisfies verification", func() {
		f := validIdentity()
		f.ProfileURLs = []string{}
		f.BackgroundCheckConsent = true
		s.Empty(Validate(f, models.StepIdentity, s.env))
	})

	s.Run("prior verification satisfies verification", func() {
		f := validIdentity()
		f.ProfileURLs = []string{}
		env := s.env
		env.Facts.IsVerified = true
		s.Empty(Validate(f, models.StepIdentity, env))
	})
}

func (s *ValidationSuite) TestStep1() {
	s.Run("valid", func() {
		s.Empty(Validate(validBooking(), models.StepBooking, s.env))
	})

	s.Run("check-out equal to check-in is rejected", func() {
		f := validBooking()
		f.CheckOutDate = f.CheckInDate
		errs := Validate(f, models.StepBooking, s.env)
		s.Equal("Check-out date must be after check-in date", errs[models.FieldCheckOut])
	})

	s.Run("check-out one day after check-in is accepted", func() {
		f := validBooking()
		f.CheckInDate = "2026-07-01"
		f.CheckOutDate = "2026-07-02"
		s.Empty(Validate(f, models.StepBooking, s.env))
	})

	cases := []struct {
		name  string
		edit  func(*models.FormSnapshot)
		field models.Field
	}{
		{"missing platform", func(f *models.FormSnapshot) { f.Platform = "" }, models.FieldPlatform},
		{"unknown platform", func(f *models.FormSnapshot) { f.Platform = "craigslist" }, models.FieldPlatform},
		{"listing not http", func(f *models.FormSnapshot) { f.ListingURL = "ftp://x.example/1" }, models.FieldListingURL},
		{"listing too long", func(f *models.FormSnapshot) { f.ListingURL = "https://x.example/" + strings.Repeat("a", 490) }, models.FieldListingURL},
		{"missing check-in", func(f *models.FormSnapshot) { f.CheckInDate = "" }, models.FieldCheckIn},
		{"unparseable check-in", func(f *models.FormSnapshot) { f.CheckInDate = "07/01/2026" }, models.FieldCheckIn},
		{"check-in too far past", func(f *models.FormSnapshot) { f.CheckInDate = "2026-05-15"; f.CheckOutDate = "2026-05-20" }, models.FieldCheckIn},
		{"check-in too far ahead", func(f *models.FormSnapshot) { f.CheckInDate = "2027-06-16"; f.CheckOutDate = "2027-06-20" }, models.FieldCheckIn},
		{"check-out before check-in", func(f *models.FormSnapshot) { f.CheckOutDate = "2026-06-30" }, models.FieldCheckOut},
		{"stay too long", func(f *models.FormSnapshot) { f.CheckOutDate = "2027-07-02" }, models.FieldCheckOut},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			f := validBooking()
			tc.edit(&f)
			s.Contains(Validate(f, models.StepBooking, s.env), tc.field)
		})
	}

	s.Run("check-in exactly 30 days past is allowed", func() {
		f := validBooking()
		f.CheckInDate = "2026-05-16"
		f.CheckOutDate = "2026-05-20"
		s.Empty(Validate(f, models.StepBooking, s.env))
	})

	s.Run("365 nights is allowed", func() {
		f := validBooking()
		f.CheckInDate = "2026-07-01"
		f.CheckOutDate = "2027-07-01"
		s.Empty(Validate(f, models.StepBooking, s.env))
	})
}

func (s *ValidationSuite) TestStep2() {
	s.Run("valid", func() {
		s.Empty(Validate(validStay(), models.StepStayIntent, s.env))
	})

	cases := []struct {
		name  string
		edit  func(*models.FormSnapshot)
		field models.Field
	}{
		{"missing purpose", func(f *models.FormSnapshot) { f.Purpose = "" }, models.FieldPurpose},
		{"other without reason", func(f *models.FormSnapshot) { f.Purpose = models.PurposeOther }, models.FieldOtherPurpose},
		{"other with short reason", func(f *models.FormSnapshot) { f.Purpose = models.PurposeOther; f.OtherPurpose = "ab" }, models.FieldOtherPurpose},
		{"zero guests", func(f *models.FormSnapshot) { f.TotalGuests = 0 }, models.FieldTotalGuests},
		{"too many guests", func(f *models.FormSnapshot) { f.TotalGuests = 21 }, models.FieldTotalGuests},
		{"negative children", func(f *models.FormSnapshot) { f.ChildrenUnder12 = -1 }, models.FieldChildrenUnder12},
		{"children exceed guests", func(f *models.FormSnapshot) { f.ChildrenUnder12 = 3 }, models.FieldChildrenUnder12},
		{"too many visitors", func(f *models.FormSnapshot) { f.NonOvernightGuests = 51 }, models.FieldNonOvernightGuests},
		{"near home without zip", func(f *models.FormSnapshot) { f.TravelingNearHome = true }, models.FieldZipCode},
		{"near home with bad zip", func(f *models.FormSnapshot) { f.TravelingNearHome = true; f.ZipCode = "1234" }, models.FieldZipCode},
		{"bad supporting link", func(f *models.FormSnapshot) {
			f.UsedSTRBefore = true
			f.SupportingLinks = []string{"not a url"}
		}, models.FieldSupportingLinks},
		{"too many supporting links", func(f *models.FormSnapshot) {
			f.UsedSTRBefore = true
			f.SupportingLinks = make([]string, 11)
			for i := range f.SupportingLinks {
				f.SupportingLinks[i] = "https://reviews.example/" + strings.Repeat("x", i+1)
			}
		}, models.FieldSupportingLinks},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			f := validStay()
			tc.edit(&f)
			s.Contains(Validate(f, models.StepStayIntent, s.env), tc.field)
		})
	}

	s.Run("zip plus four", func() {
		f := validStay()
		f.TravelingNearHome = true
		f.ZipCode = "97201-1234"
		s.Empty(Validate(f, models.StepStayIntent, s.env))
	})

	s.Run("supporting links ignored when not used before", func() {
		f := validStay()
		f.SupportingLinks = []string{"not a url"}
		s.Empty(Validate(f, models.StepStayIntent, s.env))
	})
}

func (s *ValidationSuite) TestStep3() {
	f := validStay()
	errs := Validate(f, models.StepAgreements, s.env)
	s.Len(errs, 3)

	f.AgreeTerms, f.AgreeHouseRules = true, true
	errs = Validate(f, models.StepAgreements, s.env)
	s.Equal(models.FieldErrors{models.FieldAgreeAccuracy: "You must confirm your information is accurate"}, errs)

	f.AgreeAccuracy = true
	s.Empty(Validate(f, models.StepAgreements, s.env))
}

func TestValidate_UnknownStep(t *testing.T) {
	assert.Empty(t, Validate(models.DefaultFormSnapshot(), 7, Env{Now: fixedNow}))
}

func TestValidateField_MatchesStep(t *testing.T) {
	f := validBooking()
	f.CheckOutDate = f.CheckInDate
	env := Env{Facts: models.EmptyFacts(), Now: fixedNow}

	assert.Equal(t, Validate(f, models.StepBooking, env)[models.FieldCheckOut], ValidateField(f, models.FieldCheckOut, env))
	assert.Empty(t, ValidateField(f, models.FieldListingURL, env))
}

func TestDependents(t *testing.T) {
	assert.Equal(t, []models.Field{models.FieldCheckOut}, Dependents(models.FieldCheckIn))
	assert.Equal(t, []models.Field{models.FieldVerification}, Dependents(models.FieldBackgroundCheckConsent))
	assert.Nil(t, Dependents(models.FieldName))
}
