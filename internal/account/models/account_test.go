package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	examinee "examreg/internal/examinee/models"
	id "examreg/pkg/domain"
)

func TestApplyPatch(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	acct := NewAccount(id.NewAccountID(), "kim@example.com", "Kim", now.Add(-time.Hour))

	require.NoError(t, acct.ApplyPatch(map[string]string{
		FieldPhone:      "010-2222-3333",
		FieldEmailOptIn: "y",
		FieldUserType:   "900",
	}, now))
	assert.Equal(t, "01022223333", acct.Phone)
	assert.True(t, acct.EmailOptIn)
	assert.Equal(t, "900", acct.UserType)
	assert.Equal(t, now, acct.UpdatedAt)
	assert.Equal(t, "Y", acct.Fields()[FieldEmailOptIn])
}

func TestValidatePatch(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		field  string
	}{
		{"blank phone", map[string]string{FieldPhone: "--"}, FieldPhone},
		{"bad email", map[string]string{FieldEmail: "kim"}, FieldEmail},
		{"bad opt in", map[string]string{FieldEmailOptIn: "maybe"}, FieldEmailOptIn},
		{"unknown field", map[string]string{"id": "x"}, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatch(tt.fields)
			var verr *examinee.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseOptIn(t *testing.T) {
	for in, want := range map[string]bool{"Y": true, "n": false, "true": true, "0": false, "": false} {
		got, ok := ParseOptIn(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}
