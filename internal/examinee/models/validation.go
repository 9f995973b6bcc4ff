package models

import (
	"fmt"
	"strings"

	dErrors "examreg/pkg/domain-errors"
)

// Required field names, in the order they are checked.
const (
	FieldExamineeType        = "examinee_type"
	FieldName                = "name"
	FieldMobile              = "mobile"
	FieldDepositNote         = "deposit_note"
	FieldParticipationStatus = "participation_status"
	FieldFeeConfirmed        = "fee_confirmed"
	FieldContactConfirmed    = "contact_confirmed"
	FieldRefundRequest       = "refund_request"
	FieldRefundConfirmed     = "refund_confirmed"
	FieldExamNumber          = "registered_exam_number"

	FieldID             = "id"
	FieldApplicationID  = "application_id"
	FieldOwnerID        = "owner_id"
	FieldRegistrationNo = "registration_no"
	FieldCreatedYmd     = "created_ymd"
)

// ValidationError names the first row and field that failed. Row is 1-based.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "is required"
	}
	if e.Row == 0 {
		return fmt.Sprintf("%s %s", e.Field, reason)
	}
	return fmt.Sprintf("row %d: %s %s", e.Row, e.Field, reason)
}

func (e *ValidationError) DomainCode() dErrors.Code {
	return dErrors.CodeValidation
}

// RequiredFields is anything that can report its mandatory values in check
// order as (field, value) pairs.
type RequiredFields interface {
	Required() [][2]string
}

// ValidateRequired checks rows in order and stops at the first required value
// that is empty after trimming.
func ValidateRequired[T RequiredFields](rows []T) error {
	for i, row := range rows {
		for _, fv := range row.Required() {
			if strings.TrimSpace(fv[1]) == "" {
				return &ValidationError{Row: i + 1, Field: fv[0]}
			}
		}
	}
	return nil
}
