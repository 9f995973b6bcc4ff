package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "examreg/pkg/domain-errors"
)

func TestValidateRequired_FailFast(t *testing.T) {
	rows := []Submission{validSubmission(), validSubmission(), validSubmission()}
	rows[1].Mobile = "--"
	rows[1].DepositNote = ""
	rows[2].Name = ""

	err := ValidateRequired(rows)

	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 2, verr.Row)
	assert.Equal(t, FieldMobile, verr.Field)
	assert.Equal(t, "row 2: mobile is required", err.Error())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestValidateRequired_CheckOrder(t *testing.T) {
	row := Submission{}
	err := ValidateRequired([]Submission{row})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, FieldExamineeType, verr.Field)
}

func TestValidateRequired_AllValid(t *testing.T) {
	assert.NoError(t, ValidateRequired([]Submission{validSubmission()}))
	assert.NoError(t, ValidateRequired([]Submission{}))
}

func TestValidateRequired_WhitespaceIsEmpty(t *testing.T) {
	rows := []Submission{validSubmission(), validSubmission()}
	rows[1].Name = "   "

	err := ValidateRequired(rows)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 2, verr.Row)
	assert.Equal(t, FieldName, verr.Field)
}
