package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"examreg/internal/lookup/metrics"
	"examreg/internal/lookup/models"
	dErrors "examreg/pkg/domain-errors"
	"examreg/pkg/platform/circuit"
	"examreg/pkg/platform/sentinel"
	"examreg/pkg/requestcontext"
)

// ErrUnavailable means the catalog could not be read and no earlier snapshot
// exists. Callers degrade to raw codes instead of failing.
var ErrUnavailable = fmt.Errorf("lookup catalog: %w", sentinel.ErrUnavailable)

// Store is the catalog persistence (memory, Postgres, or the Redis cache in
// front of either).
type Store interface {
	ListByType(ctx context.Context, typeID models.TypeID) ([]models.Entry, error)
}

// Catalog answers code/label questions as of a reference date.
//
// Every store read goes through the circuit breaker. A failed read falls back
// to the last snapshot that succeeded for the same type; with no snapshot the
// read returns ErrUnavailable.
type Catalog struct {
	store    Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	location *time.Location

	mu       sync.RWMutex
	lastGood map[models.TypeID][]models.Entry
}

type Option func(*Catalog)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithLocation sets the time zone that decides which day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(c *Catalog) {
		if loc != nil {
			c.location = loc
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Catalog) { c.breaker = b }
}

func New(store Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:    store,
		breaker:  circuit.New("lookup"),
		logger:   slog.Default(),
		location: time.UTC,
		lastGood: make(map[models.TypeID][]models.Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today returns the catalog reference date for the request.
func (c *Catalog) Today(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).In(c.location)
}

// Location is the zone used for reference dates.
func (c *Catalog) Location() *time.Location {
	return c.location
}

// Degraded reports whether the breaker is open.
func (c *Catalog) Degraded() bool {
	return c.breaker.IsOpen()
}

// ListValid returns the options in effect on asOf, ordered for display.
func (c *Catalog) ListValid(ctx context.Context, typeID models.TypeID, asOf time.Time) ([]models.Option, error) {
	entries, err := c.entries(ctx, typeID)
	if err != nil {
		return nil, err
	}
	return models.ValidOptions(entries, models.Ymd(asOf.In(c.location))), nil
}

// ResolveLabel returns the label for code, or code itself when it is unknown
// or the catalog is unavailable.
func (c *Catalog) ResolveLabel(ctx context.Context, typeID models.TypeID, code string, asOf time.Time) string {
	if code == "" {
		return ""
	}
	options, err := c.ListValid(ctx, typeID, asOf)
	if err != nil {
		return code
	}
	for _, o := range options {
		if models.CodesEqual(o.Code, code) {
			return o.Label
		}
	}
	return code
}

// Canonicalize maps a displayed value back to its code. Lookups run in a fixed
// order: exact code, numerically equal code, exact label, case-insensitive
// label. A value matching none of them, or any value while the catalog is
// unavailable, is returned trimmed but otherwise unchanged so the caller can
// reject it explicitly.
func (c *Catalog) Canonicalize(ctx context.Context, typeID models.TypeID, value string, asOf time.Time) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	options, err := c.ListValid(ctx, typeID, asOf)
	if err != nil {
		return value
	}
	for _, o := range options {
		if o.Code == value {
			return o.Code
		}
	}
	for _, o := range options {
		if models.CodesEqual(o.Code, value) {
			return o.Code
		}
	}
	for _, o := range options {
		if o.Label == value {
			return o.Code
		}
	}
	for _, o := range options {
		if strings.EqualFold(o.Label, value) {
			return o.Code
		}
	}
	return value
}

// Validate checks that code is empty or valid for typeID on asOf. When the
// catalog is unavailable the code is accepted; the write is not blocked on a
// lookup outage.
func (c *Catalog) Validate(ctx context.Context, typeID models.TypeID, field, code string, asOf time.Time) error {
	if code == "" {
		return nil
	}
	options, err := c.ListValid(ctx, typeID, asOf)
	if errors.Is(err, ErrUnavailable) {
		c.logger.WarnContext(ctx, "accepting unverified code while catalog is unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"type_id", int(typeID),
			"field", field,
		)
		return nil
	}
	if err != nil {
		return err
	}
	for _, o := range options {
		if o.Code == code {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s: unknown code %q", field, code))
}

func (c *Catalog) entries(ctx context.Context, typeID models.TypeID) ([]models.Entry, error) {
	entries, err := c.store.ListByType(ctx, typeID)
	if err != nil {
		return c.fallback(ctx, typeID, err)
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "lookup circuit closed", "type_id", int(typeID))
		c.setCircuitMetric(false)
	}

	c.mu.Lock()
	c.lastGood[typeID] = entries
	c.mu.Unlock()
	return entries, nil
}

func (c *Catalog) fallback(ctx context.Context, typeID models.TypeID, cause error) ([]models.Entry, error) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.WarnContext(ctx, "lookup circuit opened", "type_id", int(typeID), "error", cause)
		c.setCircuitMetric(true)
	}
	if c.metrics != nil {
		c.metrics.IncrementStoreFailures()
	}

	c.mu.RLock()
	snapshot, ok := c.lastGood[typeID]
	c.mu.RUnlock()
	if ok {
		if c.metrics != nil {
			c.metrics.IncrementStaleServed()
		}
		return snapshot, nil
	}

	c.logger.WarnContext(ctx, "lookup catalog unavailable",
		"request_id", requestcontext.RequestID(ctx),
		"type_id", int(typeID),
		"error", cause,
	)
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, cause)
}

func (c *Catalog) setCircuitMetric(open bool) {
	if c.metrics != nil {
		c.metrics.SetCircuitOpen(open)
	}
}
