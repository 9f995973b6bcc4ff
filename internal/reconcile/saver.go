package reconcile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"examreg/internal/examinee/models"
	lookup "examreg/internal/lookup/models"
	dErrors "examreg/pkg/domain-errors"
)

// Row is one editable grid row.
type Row interface {
	Key() Key
	// Required returns the mandatory (field, value) pairs in check order.
	Required() [][2]string
	// Fields returns the editable fields as sent to the server.
	Fields() map[string]string
}

// Update is one row of a save request.
type Update struct {
	Key    Key
	Fields map[string]string
}

// Transport delivers a batch to the server. A non-nil error means the batch
// as a whole failed.
type Transport interface {
	Send(ctx context.Context, updates []Update) error
}

// Canonicalizer maps displayed values back to catalog codes.
type Canonicalizer interface {
	Today(ctx context.Context) time.Time
	Canonicalize(ctx context.Context, typeID lookup.TypeID, value string, asOf time.Time) string
}

// CodedFields reports the catalog type of a coded field.
type CodedFields func(field string) (lookup.TypeID, bool)

// Saver sends the dirty rows of one grid.
type Saver struct {
	transport Transport
	catalog   Canonicalizer
	coded     CodedFields
	logger    *slog.Logger
}

type Option func(*Saver)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Saver) { s.logger = logger }
}

// WithCodedFields sets which fields are canonicalized before sending. Without
// it every value is sent as entered.
func WithCodedFields(coded CodedFields) Option {
	return func(s *Saver) { s.coded = coded }
}

func NewSaver(transport Transport, catalog Canonicalizer, opts ...Option) *Saver {
	s := &Saver{
		transport: transport,
		catalog:   catalog,
		coded:     func(string) (lookup.TypeID, bool) { return 0, false },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save sends the rows whose keys are dirty and returns how many were sent.
//
// The dirty rows are validated first; the first missing required value aborts
// the save before anything is sent and is reported by its position among the
// dirty rows. On success exactly the sent keys are cleared, so rows marked
// again while the request was in flight stay dirty only if they were not part
// of it. On failure every key stays dirty.
func (s *Saver) Save(ctx context.Context, rows []Row, dirty *DirtySet) (int, error) {
	selected := make([]Row, 0, dirty.Len())
	for _, row := range rows {
		if dirty.Has(row.Key()) {
			selected = append(selected, row)
		}
	}
	if len(selected) == 0 {
		return 0, nil
	}
	if err := models.ValidateRequired(selected); err != nil {
		return 0, err
	}

	asOf := s.catalog.Today(ctx)
	updates := make([]Update, len(selected))
	keys := make([]Key, len(selected))
	for i, row := range selected {
		fields := row.Fields()
		out := make(map[string]string, len(fields))
		for name, value := range fields {
			if typeID, ok := s.coded(name); ok {
				value = s.catalog.Canonicalize(ctx, typeID, value, asOf)
			}
			out[name] = strings.TrimSpace(value)
		}
		updates[i] = Update{Key: row.Key(), Fields: out}
		keys[i] = row.Key()
	}

	if err := s.transport.Send(ctx, updates); err != nil {
		s.logger.WarnContext(ctx, "grid save failed; rows stay dirty",
			"rows", len(updates),
			"error", err,
		)
		if isCoded(err) {
			return 0, err
		}
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "save failed")
	}
	dirty.Clear(keys)
	return len(updates), nil
}
