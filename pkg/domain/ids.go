// Package domain holds typed identifiers shared across features. Each id is a
// distinct named uuid so an application id can never be passed where a record
// id is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "examreg/pkg/domain-errors"
)

// AccountID identifies the submitting account (the owner of an application).
type AccountID uuid.UUID

// ApplicationID identifies one registration application.
type ApplicationID uuid.UUID

// RecordID identifies one examinee record within an application.
type RecordID uuid.UUID

func (id AccountID) String() string     { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id RecordID) String() string      { return uuid.UUID(id).String() }

func (id AccountID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

func NewAccountID() AccountID         { return AccountID(uuid.New()) }
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }
func NewRecordID() RecordID           { return RecordID(uuid.New()) }

// ParseAccountID parses and validates an account identifier at a trust boundary.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	return AccountID(u), err
}

// ParseApplicationID parses and validates an application identifier.
func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID(s, "application id")
	return ApplicationID(u), err
}

// ParseRecordID parses and validates an examinee record identifier.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record id")
	return RecordID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return u, nil
}

// Text encoding keeps ids as canonical strings in JSON. An empty string
// decodes to the nil id.

func (id AccountID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RecordID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }

func (id *AccountID) UnmarshalText(b []byte) error     { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *ApplicationID) UnmarshalText(b []byte) error { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *RecordID) UnmarshalText(b []byte) error      { return unmarshalUUID((*uuid.UUID)(id), b) }

func unmarshalUUID(dst *uuid.UUID, b []byte) error {
	if len(b) == 0 {
		*dst = uuid.Nil
		return nil
	}
	return dst.UnmarshalText(b)
}
