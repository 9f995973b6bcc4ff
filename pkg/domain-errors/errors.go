// Package domainerrors carries transport-agnostic error codes from services to
// the HTTP edge. Services return *Error values; handlers map the code to a status.
package domainerrors

import "errors"

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "service_unavailable"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Coded is implemented by typed errors that carry structured detail (a row
// ordinal, a failed id) and choose their own code.
type Coded interface {
	error
	DomainCode() Code
}

// New creates a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost *Error in the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error carries code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.DomainCode()
	}
	return CodeInternal
}

// Message returns the client-safe description of err: the message of a
// domain error, or the text of a Coded error.
func Message(err error) string {
	if de, ok := As(err); ok {
		return de.Message
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Error()
	}
	return ""
}
