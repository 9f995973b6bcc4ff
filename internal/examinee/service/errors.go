package service

import (
	"errors"

	dErrors "examreg/pkg/domain-errors"
	"examreg/pkg/platform/sentinel"
)

// translateStoreError maps store sentinels onto domain codes. Errors that
// already carry a code pass through.
func translateStoreError(err error, msg string) error {
	if isCoded(err) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, msg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// isCoded reports whether err already carries a domain code.
func isCoded(err error) bool {
	if _, ok := dErrors.As(err); ok {
		return true
	}
	var coded dErrors.Coded
	return errors.As(err, &coded)
}
