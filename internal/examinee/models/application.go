package models

import (
	"strings"
	"time"

	id "examreg/pkg/domain"
	platformstrings "examreg/pkg/platform/strings"
)

// Application is the container an account submits: church metadata plus the
// examinee records. An account owns at most one application.
type Application struct {
	ID              id.ApplicationID `json:"id"`
	OwnerID         id.AccountID     `json:"owner_id"`
	ChurchName      string           `json:"church_name"`
	PastorName      string           `json:"pastor_name"`
	ChurchAddress   string           `json:"church_address"`
	Denomination    string           `json:"denomination"`
	ContactName     string           `json:"contact_name"`
	ContactPosition string           `json:"contact_position"`
	ContactPhone    string           `json:"contact_phone"` // digits only
	ContactEmail    string           `json:"contact_email"`
	CreatedYmd      string           `json:"created_ymd"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Application-level field names, shared by submissions and the contacts grid.
const (
	FieldChurchName      = "church_name"
	FieldPastorName      = "pastor_name"
	FieldChurchAddress   = "church_address"
	FieldDenomination    = "denomination"
	FieldContactName     = "contact_name"
	FieldContactPosition = "contact_position"
	FieldContactPhone    = "contact_phone"
	FieldContactEmail    = "contact_email"
)

// ApplicationHeader is the applicant-supplied part of an application.
type ApplicationHeader struct {
	ChurchName      string `json:"church_name"`
	PastorName      string `json:"pastor_name"`
	ChurchAddress   string `json:"church_address"`
	Denomination    string `json:"denomination"`
	ContactName     string `json:"contact_name"`
	ContactPosition string `json:"contact_position"`
	ContactPhone    string `json:"contact_phone"`
	ContactEmail    string `json:"contact_email"`
}

// Validate checks the header fields required for a submission.
func (h ApplicationHeader) Validate() error {
	required := [][2]string{
		{FieldChurchName, h.ChurchName},
		{FieldDenomination, h.Denomination},
		{FieldContactName, h.ContactName},
		{FieldContactPhone, platformstrings.DigitsOnly(h.ContactPhone)},
	}
	for _, fv := range required {
		if strings.TrimSpace(fv[1]) == "" {
			return &ValidationError{Field: fv[0]}
		}
	}
	return nil
}

// NewApplication starts an application for owner on its first submission.
func NewApplication(appID id.ApplicationID, owner id.AccountID, createdYmd string, now time.Time) *Application {
	return &Application{
		ID:         appID,
		OwnerID:    owner,
		CreatedYmd: createdYmd,
		UpdatedAt:  now,
	}
}

// ApplyHeader copies the applicant-supplied fields onto the application.
func (a *Application) ApplyHeader(h ApplicationHeader, now time.Time) {
	a.ChurchName = strings.TrimSpace(h.ChurchName)
	a.PastorName = strings.TrimSpace(h.PastorName)
	a.ChurchAddress = strings.TrimSpace(h.ChurchAddress)
	a.Denomination = strings.TrimSpace(h.Denomination)
	a.ContactName = strings.TrimSpace(h.ContactName)
	a.ContactPosition = strings.TrimSpace(h.ContactPosition)
	a.ContactPhone = platformstrings.DigitsOnly(h.ContactPhone)
	a.ContactEmail = strings.TrimSpace(h.ContactEmail)
	a.UpdatedAt = now
}

var applicationPatchable = map[string]bool{
	FieldChurchName:      true,
	FieldPastorName:      false,
	FieldChurchAddress:   false,
	FieldDenomination:    true,
	FieldContactName:     true,
	FieldContactPosition: false,
	FieldContactPhone:    true,
	FieldContactEmail:    false,
}

// ValidateApplicationPatch checks a contacts-grid patch. The map value above
// records whether the field may not be blanked.
func ValidateApplicationPatch(fields map[string]string) error {
	if len(fields) == 0 {
		return &ValidationError{Field: "fields", Reason: "must not be empty"}
	}
	for _, name := range sortedKeys(fields) {
		required, ok := applicationPatchable[name]
		if !ok {
			if _, identity := immutableFields[name]; identity {
				return &ValidationError{Field: name, Reason: "cannot be modified"}
			}
			return &ValidationError{Field: name, Reason: "is not a recognized field"}
		}
		value := strings.TrimSpace(fields[name])
		if name == FieldContactPhone {
			value = platformstrings.DigitsOnly(value)
		}
		if required && value == "" {
			return &ValidationError{Field: name, Reason: "is required"}
		}
	}
	return nil
}

// ApplyPatch writes a contacts-grid patch.
func (a *Application) ApplyPatch(fields map[string]string, now time.Time) error {
	if err := ValidateApplicationPatch(fields); err != nil {
		return err
	}
	for name, value := range fields {
		value = strings.TrimSpace(value)
		switch name {
		case FieldChurchName:
			a.ChurchName = value
		case FieldPastorName:
			a.PastorName = value
		case FieldChurchAddress:
			a.ChurchAddress = value
		case FieldDenomination:
			a.Denomination = value
		case FieldContactName:
			a.ContactName = value
		case FieldContactPosition:
			a.ContactPosition = value
		case FieldContactPhone:
			a.ContactPhone = platformstrings.DigitsOnly(value)
		case FieldContactEmail:
			a.ContactEmail = value
		}
	}
	a.UpdatedAt = now
	return nil
}
