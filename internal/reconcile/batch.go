package reconcile

import (
	"context"
	"errors"
	"fmt"

	dErrors "examreg/pkg/domain-errors"
)

// Row outcomes reported by ApplyBatch.
const (
	StatusUpdated    = "updated"
	StatusRejected   = "rejected"
	StatusRolledBack = "rolled_back"
)

// Result is the outcome of one row of a batch.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RejectedError reports the first rejected row of a batch. Nothing in the
// batch was written; Results holds every row's outcome.
type RejectedError struct {
	Index   int
	ID      string
	Err     error
	Results []Result
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("update %d (%s) rejected: %s", e.Index+1, e.ID, dErrors.Message(e.Err))
}

func (e *RejectedError) Unwrap() error { return e.Err }

func (e *RejectedError) DomainCode() dErrors.Code {
	return dErrors.CodeOf(e.Err)
}

// TxRunner runs fn as one unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ApplyBatch applies one update per id inside a single unit of work. Every
// row is attempted so the caller learns all rejections at once; if any row is
// rejected the unit of work is rolled back and a *RejectedError is returned
// with the results. commit, when set, runs after the last row inside the same
// unit of work.
//
// Errors that do not condemn a single row (store outages) abort the batch and
// are returned as is, with nil results.
func ApplyBatch(ctx context.Context, tx TxRunner, ids []string, apply func(ctx context.Context, i int) error, commit func(ctx context.Context) error) ([]Result, error) {
	var results []Result
	var rejected *RejectedError
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		results = make([]Result, len(ids))
		rejected = nil
		for i := range ids {
			results[i] = Result{ID: ids[i], Status: StatusUpdated}
			err := apply(ctx, i)
			if err == nil {
				continue
			}
			if !IsRowRejection(err) {
				return err
			}
			results[i].Status = StatusRejected
			results[i].Code = string(dErrors.CodeOf(err))
			results[i].Error = dErrors.Message(err)
			if rejected == nil {
				rejected = &RejectedError{Index: i, ID: ids[i], Err: err}
			}
		}
		if rejected != nil {
			return rejected
		}
		if commit != nil {
			return commit(ctx)
		}
		return nil
	})

	if rejected != nil && errors.Is(err, rejected) {
		for i := range results {
			if results[i].Status == StatusUpdated {
				results[i].Status = StatusRolledBack
			}
		}
		rejected.Results = results
		return results, rejected
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

// IsRowRejection reports whether err condemns one row rather than the batch.
func IsRowRejection(err error) bool {
	if !isCoded(err) {
		return false
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeNotFound, dErrors.CodeConflict, dErrors.CodeInvariantViolation:
		return true
	}
	return false
}

func isCoded(err error) bool {
	if _, ok := dErrors.As(err); ok {
		return true
	}
	var coded dErrors.Coded
	return errors.As(err, &coded)
}
