package models

import (
	"strconv"
	"strings"
	"time"
)

// Submission is one examinee row as sent by the applicant. Status fields the
// applicant may not write are absent; RegistrationNo and CreatedYmd are echoed
// back from the last load and trusted only when they belong to this
// application.
type Submission struct {
	RegistrationNo      string `json:"registration_no"`
	ExamineeType        string `json:"examinee_type"`
	Name                string `json:"name"`
	Mobile              string `json:"mobile"`
	DepositNote         string `json:"deposit_note"`
	ParticipationStatus string `json:"participation_status"`
	RefundRequest       string `json:"refund_request"`
	CreatedYmd          string `json:"created_ymd"`
}

func (s Submission) Required() [][2]string {
	return [][2]string{
		{FieldExamineeType, strings.TrimSpace(s.ExamineeType)},
		{FieldName, strings.TrimSpace(s.Name)},
		{FieldMobile, NormalizeMobile(s.Mobile)},
		{FieldDepositNote, strings.TrimSpace(s.DepositNote)},
		{FieldParticipationStatus, strings.TrimSpace(s.ParticipationStatus)},
	}
}

// ParsedRegistrationNo returns the echoed number when it is a positive integer.
func (s Submission) ParsedRegistrationNo() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s.RegistrationNo))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Derive computes the stored form of a submitted row. stored is the existing
// record the row replaces, or nil on first creation. Identity fields (ID,
// application, owner, ordinal, registration number, created date) are left to
// the caller.
//
// Rules, in order:
//  1. a settled refund keeps participation, refund request and refund
//     confirmation exactly as stored
//  2. a refund request on a fee-confirmed record marks the examinee absent and
//     sets the refund-recorded marker
//  3. otherwise the submitted participation is kept (attending when empty),
//     the refund request is dropped and the refund confirmation cleared
//
// Fee and contact confirmation start unconfirmed and are otherwise carried
// from the stored record. The registered exam number is always carried.
func Derive(stored *Record, in Submission) Record {
	out := Record{
		ExamineeType:     strings.TrimSpace(in.ExamineeType),
		Name:             strings.TrimSpace(in.Name),
		Mobile:           NormalizeMobile(in.Mobile),
		DepositNote:      strings.TrimSpace(in.DepositNote),
		FeeConfirmed:     Unconfirmed,
		ContactConfirmed: Unconfirmed,
	}
	if stored != nil {
		out.FeeConfirmed = orDefault(stored.FeeConfirmed, Unconfirmed)
		out.ContactConfirmed = orDefault(stored.ContactConfirmed, Unconfirmed)
		out.RegisteredExamNumber = stored.RegisteredExamNumber
	}

	switch {
	case stored != nil && stored.Mode() == ModeRefundSettled:
		out.ParticipationStatus = stored.ParticipationStatus
		out.RefundRequest = stored.RefundRequest
		out.RefundConfirmed = stored.RefundConfirmed
	case strings.TrimSpace(in.RefundRequest) == RefundRequested && out.FeeConfirmed == Confirmed:
		out.ParticipationStatus = ParticipationAbsent
		out.RefundRequest = RefundRequested
		out.RefundConfirmed = RefundRecorded
	default:
		out.ParticipationStatus = orDefault(strings.TrimSpace(in.ParticipationStatus), ParticipationAttending)
		out.RefundRequest = ""
		out.RefundConfirmed = ""
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// ValidYmd reports whether s is an 8-digit calendar date (YYYYMMDD).
func ValidYmd(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse("20060102", s)
	return err == nil
}
