// Package sequence issues registration numbers.
//
// The allocator reads the highest number in use and hands out consecutive
// numbers above it. The read uses an index-backed query when one exists; when
// the store reports the index is missing the allocator scans every number
// instead. Any other failure is fatal: a record must never be created with a
// colliding or zero number.
//
// Allocation is not atomic on its own. Callers run Next and the insert of the
// numbered records inside one store transaction.
package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"examreg/internal/examinee/metrics"
	"examreg/internal/examinee/models"
	dErrors "examreg/pkg/domain-errors"
	"examreg/pkg/requestcontext"
)

// DefaultBase is the number before the first one issued.
const DefaultBase = 1000

// ErrIndexMissing is returned by Source.MaxRegistrationNo when the supporting
// index does not exist. It is the only error that triggers the scan fallback.
var ErrIndexMissing = errors.New("registration number index missing")

// Source reads registration numbers already in use, including numbers of
// records that have since been deleted.
type Source interface {
	// MaxRegistrationNo returns the highest number in use; ok is false when
	// none has been issued.
	MaxRegistrationNo(ctx context.Context) (n int, ok bool, err error)
	// ScanRegistrationNos returns every number in use. Null entries are
	// records that never received one.
	ScanRegistrationNos(ctx context.Context) ([]sql.NullInt64, error)
}

// AllocationError means the highest registration number could not be read.
type AllocationError struct {
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("registration number allocation failed: %v", e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

func (e *AllocationError) DomainCode() dErrors.Code {
	return dErrors.CodeInternal
}

type Allocator struct {
	base    int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Allocator)

func WithBase(base int) Option {
	return func(a *Allocator) {
		if base >= 0 {
			a.base = base
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) { a.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Allocator) { a.metrics = m }
}

func New(opts ...Option) *Allocator {
	a := &Allocator{
		base:   DefaultBase,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Base returns the configured base number.
func (a *Allocator) Base() int {
	return a.base
}

// Next reads the current maximum from src and returns a counter positioned
// just above it.
func (a *Allocator) Next(ctx context.Context, src Source) (*Counter, error) {
	maxNo, ok, err := src.MaxRegistrationNo(ctx)
	switch {
	case err == nil:
		if !ok || maxNo < a.base {
			maxNo = a.base
		}
		return &Counter{next: maxNo + 1}, nil
	case errors.Is(err, ErrIndexMissing):
		return a.scan(ctx, src)
	default:
		return nil, &AllocationError{Err: err}
	}
}

func (a *Allocator) scan(ctx context.Context, src Source) (*Counter, error) {
	a.logger.WarnContext(ctx, "registration index missing, scanning all records",
		"request_id", requestcontext.RequestID(ctx),
	)
	if a.metrics != nil {
		a.metrics.IncrementSequenceFallbacks()
	}

	numbers, err := src.ScanRegistrationNos(ctx)
	if err != nil {
		return nil, &AllocationError{Err: fmt.Errorf("fallback scan: %w", err)}
	}
	maxNo := a.base
	for _, n := range numbers {
		if n.Valid && int(n.Int64) > maxNo {
			maxNo = int(n.Int64)
		}
	}
	return &Counter{next: maxNo + 1}, nil
}

// Counter hands out consecutive numbers for one transaction.
type Counter struct {
	next   int
	issued int
}

// Take returns the next number.
func (c *Counter) Take() int {
	n := c.next
	c.next++
	c.issued++
	return n
}

// Issued is how many numbers Take has returned.
func (c *Counter) Issued() int {
	return c.issued
}

// Assign numbers every record that does not already carry one, in slice
// order. Records with a number keep it.
func (c *Counter) Assign(records []*models.Record) {
	for _, r := range records {
		if !r.HasRegistrationNo() {
			r.RegistrationNo = c.Take()
		}
	}
}
