// Package service implements the examinee registration workflows: applicant
// submission and resubmission, and the administrator grid operations.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"examreg/internal/examinee/metrics"
	"examreg/internal/examinee/models"
	"examreg/internal/examinee/sequence"
	lookup "examreg/internal/lookup/models"
	id "examreg/pkg/domain"
	audit "examreg/pkg/platform/audit"
)

// DefaultMaxSubmitAttempts bounds retries after a registration number
// conflict.
const DefaultMaxSubmitAttempts = 3

// Store persists applications and examinee records. Methods join the
// transaction carried in the context when there is one.
type Store interface {
	sequence.Source
	LockRegistrations(ctx context.Context) error

	FindApplication(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindApplicationByOwner(ctx context.Context, owner id.AccountID) (*models.Application, error)
	SaveApplication(ctx context.Context, app *models.Application) error
	ListApplications(ctx context.Context) ([]*models.Application, error)

	ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*models.Record, error)
	ListRecords(ctx context.Context) ([]*models.Record, error)
	ListAdminRows(ctx context.Context) ([]models.AdminRow, error)
	ReplaceChildRecords(ctx context.Context, appID id.ApplicationID, owner id.AccountID, records []*models.Record) error
	FindRecord(ctx context.Context, appID id.ApplicationID, recID id.RecordID) (*models.Record, error)
	UpdateRecord(ctx context.Context, record *models.Record) error
	ApplyExamNumbers(ctx context.Context, rows []models.ExamNumber, now time.Time) (models.ExamNumberResult, error)
}

// TxRunner runs fn as one unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Catalog is the part of the lookup catalog the workflows use.
type Catalog interface {
	Today(ctx context.Context) time.Time
	Canonicalize(ctx context.Context, typeID lookup.TypeID, value string, asOf time.Time) string
	Validate(ctx context.Context, typeID lookup.TypeID, field, code string, asOf time.Time) error
	ResolveLabel(ctx context.Context, typeID lookup.TypeID, code string, asOf time.Time) string
}

// AuditPublisher records audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store       Store
	tx          TxRunner
	catalog     Catalog
	allocator   *sequence.Allocator
	compliance  AuditPublisher
	ops         AuditPublisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	maxAttempts int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAllocator(a *sequence.Allocator) Option {
	return func(s *Service) { s.allocator = a }
}

// WithComplianceAudit sets the fail-closed publisher emitted to inside each
// write transaction.
func WithComplianceAudit(p AuditPublisher) Option {
	return func(s *Service) { s.compliance = p }
}

// WithOpsAudit sets the best-effort publisher for operational events.
func WithOpsAudit(p AuditPublisher) Option {
	return func(s *Service) { s.ops = p }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithMaxSubmitAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func New(store Store, tx TxRunner, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		store:       store,
		tx:          tx,
		catalog:     catalog,
		allocator:   sequence.New(),
		logger:      slog.Default(),
		tracer:      otel.Tracer("examreg/internal/examinee/service"),
		maxAttempts: DefaultMaxSubmitAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emitCompliance(ctx context.Context, event audit.Event) error {
	if s.compliance == nil {
		return nil
	}
	return s.compliance.Emit(ctx, event)
}

func (s *Service) emitOps(ctx context.Context, event audit.Event) {
	if s.ops == nil {
		return
	}
	if err := s.ops.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "ops audit event not recorded", "action", event.Action, "error", err)
	}
}
