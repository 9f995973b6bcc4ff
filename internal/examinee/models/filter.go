package models

import (
	lookup "examreg/internal/lookup/models"
	platformstrings "examreg/pkg/platform/strings"
)

// AdminRow is a record joined with the application fields the admin grid
// shows beside it.
type AdminRow struct {
	Record
	ChurchName   string `json:"church_name"`
	Denomination string `json:"denomination"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// RecordFilter narrows the admin list. Text fields match case-insensitive
// substrings; coded fields match codes, tolerating numeric spellings. Empty
// fields do not filter.
type RecordFilter struct {
	ChurchName          string
	Denomination        string
	Name                string
	Mobile              string
	DepositNote         string
	ExamineeType        string
	ParticipationStatus string
	FeeConfirmed        string
	ContactConfirmed    string
	RefundRequest       string
	RefundConfirmed     string
	RegistrationNo      int
}

func (f RecordFilter) Matches(row AdminRow) bool {
	if f.RegistrationNo != 0 && row.RegistrationNo != f.RegistrationNo {
		return false
	}
	texts := [][2]string{
		{row.ChurchName, f.ChurchName},
		{row.Denomination, f.Denomination},
		{row.Name, f.Name},
		{row.DepositNote, f.DepositNote},
	}
	for _, t := range texts {
		if !platformstrings.ContainsFold(t[0], t[1]) {
			return false
		}
	}
	if mobile := platformstrings.DigitsOnly(f.Mobile); mobile != "" && !platformstrings.ContainsFold(row.Mobile, mobile) {
		return false
	}
	codes := [][2]string{
		{row.ExamineeType, f.ExamineeType},
		{row.ParticipationStatus, f.ParticipationStatus},
		{row.FeeConfirmed, f.FeeConfirmed},
		{row.ContactConfirmed, f.ContactConfirmed},
		{row.RefundRequest, f.RefundRequest},
		{row.RefundConfirmed, f.RefundConfirmed},
	}
	for _, c := range codes {
		if c[1] != "" && !lookup.CodesEqual(c[0], c[1]) {
			return false
		}
	}
	return true
}

// ExamNumber is one row of the two-column seat number import.
type ExamNumber struct {
	RegistrationNo int    `json:"registration_no"`
	ExamNumber     string `json:"exam_number"`
}

// ExamNumberResult reports a bulk import.
type ExamNumberResult struct {
	Updated  int   `json:"updated"`
	NotFound []int `json:"not_found"`
}
