// Package models defines the lookup catalog: coded values with date-bounded
// display labels, grouped by classification type.
package models

import (
	"sort"
	"strconv"
	"time"
)

// TypeID identifies a classification (participation, refund request, ...).
type TypeID int

const (
	TypeExamineeType  TypeID = 100
	TypeParticipation TypeID = 110
	TypeRefundRequest TypeID = 120
	TypeConfirmation  TypeID = 130
	TypeUserType      TypeID = 140
)

// Codes shared by the participation, refund and confirmation types.
const (
	CodeYes = "100"
	CodeNo  = "200"
)

// openEnded is the end date used by entries with no expiry.
const openEnded = 99991231

// Entry is one catalog row. StartYmd and EndYmd are inclusive YYYYMMDD dates;
// a zero EndYmd means the entry never expires.
type Entry struct {
	TypeID   TypeID `json:"type_id"`
	Code     string `json:"code"`
	Label    string `json:"label"`
	StartYmd int    `json:"start_ymd"`
	EndYmd   int    `json:"end_ymd"`
	Sort     int    `json:"sort"`
}

// ValidOn reports whether the entry is in effect on ymd.
func (e Entry) ValidOn(ymd int) bool {
	end := e.EndYmd
	if end == 0 {
		end = openEnded
	}
	return e.StartYmd <= ymd && ymd <= end
}

// Option is a code/label pair offered to clients.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// ValidOptions filters entries to those in effect on ymd and orders them by
// Sort, then by numeric code (non-numeric codes last, lexically).
func ValidOptions(entries []Entry, ymd int) []Option {
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ValidOn(ymd) {
			valid = append(valid, e)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Sort != valid[j].Sort {
			return valid[i].Sort < valid[j].Sort
		}
		return codeLess(valid[i].Code, valid[j].Code)
	})
	out := make([]Option, 0, len(valid))
	for _, e := range valid {
		out = append(out, Option{Code: e.Code, Label: e.Label})
	}
	return out
}

func codeLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Ymd converts t to a YYYYMMDD integer in t's location.
func Ymd(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// YmdString is Ymd formatted as an 8-digit string.
func YmdString(t time.Time) string {
	return strconv.Itoa(Ymd(t))
}

// CodesEqual compares two codes, tolerating numeric spellings such as "0100"
// against "100" that spreadsheet round trips produce.
func CodesEqual(a, b string) bool {
	if a == b {
		return true
	}
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	return errA == nil && errB == nil && na == nb
}
