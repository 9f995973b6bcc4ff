package models

import (
	"time"

	lookup "examreg/internal/lookup/models"
	id "examreg/pkg/domain"
)

// Status codes as they are stored. They are drawn from the lookup catalog
// types named on each Record field.
const (
	ParticipationAttending = lookup.CodeYes
	ParticipationAbsent    = lookup.CodeNo

	Confirmed   = lookup.CodeYes
	Unconfirmed = lookup.CodeNo

	RefundRequested = lookup.CodeYes
	// RefundRecorded is the refundConfirmed marker for "refund requested,
	// not yet paid out".
	RefundRecorded = lookup.CodeNo
)

// Mode is the edit mode a record is in, derived from its status fields.
type Mode int

const (
	// ModeOpen: participation is editable; the refund request is editable only
	// when the fee has been confirmed.
	ModeOpen Mode = iota
	// ModeRefundSettled: the refund has been paid out. Participation and the
	// refund request are frozen.
	ModeRefundSettled
)

func (m Mode) String() string {
	if m == ModeRefundSettled {
		return "refund_settled"
	}
	return "open"
}

// Record is one person registered under an application.
//
// Invariants:
//   - RegistrationNo is unique across every record and never changes once
//     assigned; zero means not yet assigned
//   - RefundConfirmed == Confirmed freezes ParticipationStatus and RefundRequest
//   - RefundRequest is empty unless FeeConfirmed == Confirmed
//   - Every status field is empty or a code valid in its catalog type
//   - CreatedYmd is set once when the record is first created
//
// FeeConfirmed, ContactConfirmed, RefundConfirmed and RegisteredExamNumber are
// written by administrators only; submissions can never set them.
type Record struct {
	ID            id.RecordID      `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	OwnerID       id.AccountID     `json:"owner_id"`
	// Ordinal is the 1-based display position within the application.
	Ordinal        int `json:"ordinal"`
	RegistrationNo int `json:"registration_no"`

	ExamineeType string `json:"examinee_type"` // lookup 100
	Name         string `json:"name"`
	Mobile       string `json:"mobile"` // digits only
	DepositNote  string `json:"deposit_note"`

	ParticipationStatus string `json:"participation_status"` // lookup 110
	FeeConfirmed        string `json:"fee_confirmed"`        // lookup 130
	ContactConfirmed    string `json:"contact_confirmed"`    // lookup 130
	RefundRequest       string `json:"refund_request"`       // lookup 120
	RefundConfirmed     string `json:"refund_confirmed"`     // lookup 130

	RegisteredExamNumber string    `json:"registered_exam_number"`
	CreatedYmd           string    `json:"created_ymd"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (r *Record) Mode() Mode {
	if r.RefundConfirmed == Confirmed {
		return ModeRefundSettled
	}
	return ModeOpen
}

// Removable reports whether an applicant may drop the record from their
// application. Fee-confirmed and refund-settled records stay until an
// administrator changes them.
func (r *Record) Removable() bool {
	return r.FeeConfirmed != Confirmed && r.Mode() != ModeRefundSettled
}

func (r *Record) HasRegistrationNo() bool {
	return r.RegistrationNo > 0
}

func (r *Record) CanEditParticipation() bool {
	return r.Mode() == ModeOpen
}

func (r *Record) CanRequestRefund() bool {
	return r.Mode() == ModeOpen && r.FeeConfirmed == Confirmed
}

// Clone returns an independent copy.
func (r *Record) Clone() *Record {
	c := *r
	return &c
}
