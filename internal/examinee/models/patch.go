package models

import (
	"sort"
	"strings"
	"time"

	lookup "examreg/internal/lookup/models"
)

// fieldKind describes how an administrator may write a record field.
type fieldKind struct {
	lookupType lookup.TypeID // zero for free text
	required   bool
}

var patchableFields = map[string]fieldKind{
	FieldExamineeType:        {lookupType: lookup.TypeExamineeType, required: true},
	FieldName:                {required: true},
	FieldMobile:              {required: true},
	FieldDepositNote:         {required: true},
	FieldParticipationStatus: {lookupType: lookup.TypeParticipation, required: true},
	FieldFeeConfirmed:        {lookupType: lookup.TypeConfirmation},
	FieldContactConfirmed:    {lookupType: lookup.TypeConfirmation},
	FieldRefundRequest:       {lookupType: lookup.TypeRefundRequest},
	FieldRefundConfirmed:     {lookupType: lookup.TypeConfirmation},
	FieldExamNumber:          {},
}

var immutableFields = map[string]struct{}{
	FieldID:             {},
	FieldApplicationID:  {},
	FieldOwnerID:        {},
	FieldRegistrationNo: {},
	FieldCreatedYmd:     {},
}

// CodedFieldType returns the catalog type of a coded record field.
func CodedFieldType(field string) (lookup.TypeID, bool) {
	kind, ok := patchableFields[field]
	if !ok || kind.lookupType == 0 {
		return 0, false
	}
	return kind.lookupType, true
}

// ValidatePatch rejects identity fields, unknown fields and blanked required
// fields. Fields are reported in sorted order so the first error is stable.
func ValidatePatch(fields map[string]string) error {
	if len(fields) == 0 {
		return &ValidationError{Field: "fields", Reason: "must not be empty"}
	}
	for _, name := range sortedKeys(fields) {
		if _, ok := immutableFields[name]; ok {
			return &ValidationError{Field: name, Reason: "cannot be modified"}
		}
		kind, ok := patchableFields[name]
		if !ok {
			return &ValidationError{Field: name, Reason: "is not a recognized field"}
		}
		if kind.required && normalizedPatchValue(name, fields[name]) == "" {
			return &ValidationError{Field: name, Reason: "is required"}
		}
	}
	return nil
}

// normalizedPatchValue is the value ApplyPatch would store for name.
func normalizedPatchValue(name, value string) string {
	if name == FieldMobile {
		return NormalizeMobile(value)
	}
	return strings.TrimSpace(value)
}

// ApplyPatch writes the supplied fields onto the record. It is the
// administrator path and does not run Derive; coded values must already be
// canonical codes.
func (r *Record) ApplyPatch(fields map[string]string, now time.Time) error {
	if err := ValidatePatch(fields); err != nil {
		return err
	}
	for name, value := range fields {
		value = strings.TrimSpace(value)
		switch name {
		case FieldExamineeType:
			r.ExamineeType = value
		case FieldName:
			r.Name = value
		case FieldMobile:
			r.Mobile = NormalizeMobile(value)
		case FieldDepositNote:
			r.DepositNote = value
		case FieldParticipationStatus:
			r.ParticipationStatus = value
		case FieldFeeConfirmed:
			r.FeeConfirmed = value
		case FieldContactConfirmed:
			r.ContactConfirmed = value
		case FieldRefundRequest:
			r.RefundRequest = value
		case FieldRefundConfirmed:
			r.RefundConfirmed = value
		case FieldExamNumber:
			r.RegisteredExamNumber = value
		}
	}
	r.UpdatedAt = now
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
