package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors at their boundary.
//
// - ErrNotFound: the row does not exist
// - ErrConflict: a uniqueness constraint was hit (registration number, owner)
// - ErrInvalidState: the row is in the wrong state for the write
// - ErrUnavailable: a backing store or cache could not be reached
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
