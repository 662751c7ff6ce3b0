package models

// Field names a guest-editable form field. The same names key the per-field
// error map returned by validation.
type Field string

const (
	// Step 0: identity
	FieldName                   Field = "name"
	FieldEmail                  Field = "email"
	FieldPhone                  Field = "phone"
	FieldAddress                Field = "address"
	FieldProfileURLs            Field = "profile_urls"
	FieldBackgroundCheckConsent Field = "background_check_consent"

	// Step 1: booking
	FieldPlatform   Field = "platform"
	FieldListingURL Field = "listing_url"
	FieldCheckIn    Field = "check_in_date"
	FieldCheckOut   Field = "check_out_date"

	// Step 2: stay intent
	FieldPurpose            Field = "purpose"
	FieldOtherPurpose       Field = "other_purpose"
	FieldTotalGuests        Field = "total_guests"
	FieldChildrenUnder12    Field = "children_under_12"
	FieldNonOvernightGuests Field = "non_overnight_guests"
	FieldTravelingNearHome  Field = "traveling_near_home"
	FieldZipCode            Field = "zip_code"
	FieldUsedSTRBefore      Field = "used_str_before"
	FieldSupportingLinks    Field = "supporting_links"

	// Step 3: agreements
	FieldAgreeTerms      Field = "agree_terms"
	FieldAgreeHouseRules Field = "agree_house_rules"
	FieldAgreeAccuracy   Field = "agree_accuracy"
)

// FieldVerification keys the step-0 error raised when the guest offers no way
// to be verified. It is not an editable field.
const FieldVerification Field = "verification"

// FieldKind decides how edits are validated: free text is debounced, discrete
// inputs (checkboxes, selects, dates, counters) validate immediately.
type FieldKind int

const (
	KindDiscrete FieldKind = iota
	KindText
)

// Steps of the workflow.
const (
	StepIdentity   = 0
	StepBooking    = 1
	StepStayIntent = 2
	StepAgreements = 3

	// LastStep is the final data step; advancing from it submits.
	LastStep = StepAgreements
)

type fieldInfo struct {
	step int
	kind FieldKind
}

var fieldTable = map[Field]fieldInfo{
	FieldName:                   {StepIdentity, KindText},
	FieldEmail:                  {StepIdentity, KindText},
	FieldPhone:                  {StepIdentity, KindText},
	FieldAddress:                {StepIdentity, KindText},
	FieldProfileURLs:            {StepIdentity, KindText},
	FieldBackgroundCheckConsent: {StepIdentity, KindDiscrete},

	FieldPlatform:   {StepBooking, KindDiscrete},
	FieldListingURL: {StepBooking, KindText},
	FieldCheckIn:    {StepBooking, KindDiscrete},
	FieldCheckOut:   {StepBooking, KindDiscrete},

	FieldPurpose:            {StepStayIntent, KindDiscrete},
	FieldOtherPurpose:       {StepStayIntent, KindText},
	FieldTotalGuests:        {StepStayIntent, KindDiscrete},
	FieldChildrenUnder12:    {StepStayIntent, KindDiscrete},
	FieldNonOvernightGuests: {StepStayIntent, KindDiscrete},
	FieldTravelingNearHome:  {StepStayIntent, KindDiscrete},
	FieldZipCode:            {StepStayIntent, KindText},
	FieldUsedSTRBefore:      {StepStayIntent, KindDiscrete},
	FieldSupportingLinks:    {StepStayIntent, KindText},

	FieldAgreeTerms:      {StepAgreements, KindDiscrete},
	FieldAgreeHouseRules: {StepAgreements, KindDiscrete},
	FieldAgreeAccuracy:   {StepAgreements, KindDiscrete},
}

// IsKnown reports whether f is an editable field.
func (f Field) IsKnown() bool {
	_, ok := fieldTable[f]
	return ok
}

// Step returns the step that owns f, or -1 for unknown fields.
func (f Field) Step() int {
	if info, ok := fieldTable[f]; ok {
		return info.step
	}
	return -1
}

func (f Field) Kind() FieldKind {
	return fieldTable[f].kind
}

func (f Field) String() string { return string(f) }

// FieldErrors maps a field to a human-readable message. An empty map means
// the step is valid.
type FieldErrors map[Field]string

// ToStrings flattens the map for transports that want plain string keys.
func (e FieldErrors) ToStrings() map[string]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[string(k)] = v
	}
	return out
}
