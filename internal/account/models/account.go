package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	examinee "examreg/internal/examinee/models"
	lookup "examreg/internal/lookup/models"
	id "examreg/pkg/domain"
	platformstrings "examreg/pkg/platform/strings"
)

// Editable account fields, as named in users-grid patches.
const (
	FieldEmail      = "email"
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldUserType   = "user_type"
	FieldEmailOptIn = "email_opt_in"
)

// Account is a portal user. Applicants own at most one application.
type Account struct {
	ID         id.AccountID `json:"id"`
	Email      string       `json:"email"`
	Name       string       `json:"name"`
	Phone      string       `json:"phone"`     // digits only
	UserType   string       `json:"user_type"` // lookup 140
	EmailOptIn bool         `json:"email_opt_in"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func NewAccount(accountID id.AccountID, email, name string, now time.Time) *Account {
	return &Account{
		ID:        accountID,
		Email:     strings.TrimSpace(email),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// Required returns the users-grid mandatory values.
func (a *Account) Required() [][2]string {
	return [][2]string{
		{FieldPhone, platformstrings.DigitsOnly(a.Phone)},
	}
}

// Fields returns the editable fields as strings.
func (a *Account) Fields() map[string]string {
	return map[string]string{
		FieldEmail:      a.Email,
		FieldName:       a.Name,
		FieldPhone:      a.Phone,
		FieldUserType:   a.UserType,
		FieldEmailOptIn: FormatOptIn(a.EmailOptIn),
	}
}

// CodedFieldType returns the catalog type of a coded account field.
func CodedFieldType(field string) (lookup.TypeID, bool) {
	if field == FieldUserType {
		return lookup.TypeUserType, true
	}
	return 0, false
}

var emailCheck = validator.New()

// ValidatePatch rejects unknown fields, a blank phone and a malformed email
// or opt-in flag.
func ValidatePatch(fields map[string]string) error {
	if len(fields) == 0 {
		return &examinee.ValidationError{Field: "fields", Reason: "must not be empty"}
	}
	for name, value := range fields {
		value = strings.TrimSpace(value)
		switch name {
		case FieldName, FieldUserType:
		case FieldPhone:
			if platformstrings.DigitsOnly(value) == "" {
				return &examinee.ValidationError{Field: name}
			}
		case FieldEmail:
			if emailCheck.Var(value, "required,email") != nil {
				return &examinee.ValidationError{Field: name, Reason: "must be an email address"}
			}
		case FieldEmailOptIn:
			if _, ok := ParseOptIn(value); !ok {
				return &examinee.ValidationError{Field: name, Reason: "must be Y or N"}
			}
		default:
			return &examinee.ValidationError{Field: name, Reason: "is not a recognized field"}
		}
	}
	return nil
}

// ApplyPatch writes a users-grid patch. Coded values must already be codes.
func (a *Account) ApplyPatch(fields map[string]string, now time.Time) error {
	if err := ValidatePatch(fields); err != nil {
		return err
	}
	for name, value := range fields {
		value = strings.TrimSpace(value)
		switch name {
		case FieldEmail:
			a.Email = value
		case FieldName:
			a.Name = value
		case FieldPhone:
			a.Phone = platformstrings.DigitsOnly(value)
		case FieldUserType:
			a.UserType = value
		case FieldEmailOptIn:
			a.EmailOptIn, _ = ParseOptIn(value)
		}
	}
	a.UpdatedAt = now
	return nil
}

// ParseOptIn accepts Y/N as shown in the grid, and the strconv boolean forms.
func ParseOptIn(s string) (bool, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y":
		return true, true
	case "N", "":
		return false, true
	}
	v, err := strconv.ParseBool(s)
	return v, err == nil
}

func FormatOptIn(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}
