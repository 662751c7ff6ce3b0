package models

import (
	"time"

	id "caslkey/pkg/domain"
)

// WorkflowState is the externally visible progress of one attempt.
type WorkflowState struct {
	CurrentStep int         `json:"current_step"`
	Errors      FieldErrors `json:"errors,omitempty"`
	IsValid     bool        `json:"is_valid"`
	Submitted   bool        `json:"submitted"`
	// PollErrors records the last polling failure per method until the method
	// is restarted.
	PollErrors map[id.VerificationMethod]string `json:"poll_errors,omitempty"`
}

// Draft is the resumable copy of an in-progress attempt.
type Draft struct {
	SessionID id.SessionID      `json:"session_id"`
	Step      int               `json:"step"`
	Snapshot  FormSnapshot      `json:"snapshot"`
	Facts     VerificationFacts `json:"facts"`
	Preview   *TrustPreview     `json:"preview,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// BookingDetails are the booking fields forwarded with a submission.
type BookingDetails struct {
	Platform     Platform `json:"platform"`
	ListingURL   string   `json:"listing_url"`
	CheckInDate  string   `json:"check_in_date"`
	CheckOutDate string   `json:"check_out_date"`
	Nights       int      `json:"nights"`
}

// StayDetails are the stay-intent fields forwarded with a submission. The ZIP
// code stays behind because it locates the guest's home.
type StayDetails struct {
	Purpose            Purpose  `json:"purpose"`
	OtherPurpose       string   `json:"other_purpose,omitempty"`
	TotalGuests        int      `json:"total_guests"`
	ChildrenUnder12    int      `json:"children_under_12"`
	NonOvernightGuests int      `json:"non_overnight_guests"`
	TravelingNearHome  bool     `json:"traveling_near_home"`
	UsedSTRBefore      bool     `json:"used_str_before"`
	SupportingLinks    []string `json:"supporting_links,omitempty"`
}

// Submission is the final record handed to the submission sink. It carries
// no name, email, phone or address.
type Submission struct {
	ID          id.SubmissionID   `json:"id"`
	SessionID   id.SessionID      `json:"session_id"`
	CaslKeyID   id.CaslKeyID      `json:"casl_key_id"`
	Booking     BookingDetails    `json:"booking"`
	Stay        StayDetails       `json:"stay"`
	Facts       VerificationFacts `json:"facts"`
	Score       ScoreResult       `json:"score"`
	Summary     HostSummary       `json:"summary"`
	SubmittedAt time.Time         `json:"submitted_at"`
}
