// Package service implements the users grid and first-login account creation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"examreg/internal/account/models"
	lookup "examreg/internal/lookup/models"
	"examreg/internal/reconcile"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/sentinel"
	"examreg/pkg/requestcontext"
)

type Store interface {
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	List(ctx context.Context) ([]*models.Account, error)
}

type Catalog interface {
	Today(ctx context.Context) time.Time
	Canonicalize(ctx context.Context, typeID lookup.TypeID, value string, asOf time.Time) string
	Validate(ctx context.Context, typeID lookup.TypeID, field, code string, asOf time.Time) error
	ResolveLabel(ctx context.Context, typeID lookup.TypeID, code string, asOf time.Time) string
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store      Store
	tx         reconcile.TxRunner
	catalog    Catalog
	compliance AuditPublisher
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithComplianceAudit(p AuditPublisher) Option {
	return func(s *Service) { s.compliance = p }
}

func New(store Store, tx reconcile.TxRunner, catalog Catalog, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, catalog: catalog, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View is an account row of the users grid.
type View struct {
	models.Account
	UserTypeLabel string `json:"user_type_label"`
}

// Patch is one users-grid edit.
type Patch struct {
	AccountID id.AccountID
	Fields    map[string]string
}

// Ensure returns the account for a verified login, creating it on first
// sight. The token's email is recorded only at creation.
func (s *Service) Ensure(ctx context.Context, accountID id.AccountID, email, name string) (*models.Account, error) {
	a, err := s.store.FindByID(ctx, accountID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if strings.TrimSpace(email) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no email")
	}
	a = models.NewAccount(accountID, email, name, requestcontext.Now(ctx))
	if err := s.store.Save(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "email already belongs to another account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}
	s.logger.InfoContext(ctx, "account created",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", accountID.String(),
	)
	return a, nil
}

// EnsureAccount is Ensure for callers that only need the side effect, such as
// the bearer middleware.
func (s *Service) EnsureAccount(ctx context.Context, accountID id.AccountID, email, name string) error {
	_, err := s.Ensure(ctx, accountID, email, name)
	return err
}

// List returns the users grid with user types resolved.
func (s *Service) List(ctx context.Context) ([]View, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	asOf := s.catalog.Today(ctx)
	out := make([]View, len(accounts))
	for i, a := range accounts {
		out[i] = View{
			Account:       *a,
			UserTypeLabel: s.catalog.ResolveLabel(ctx, lookup.TypeUserType, a.UserType, asOf),
		}
	}
	return out, nil
}

// Update applies users-grid edits as one transaction; any rejected row rolls
// the batch back.
func (s *Service) Update(ctx context.Context, patches []Patch) ([]reconcile.Result, error) {
	if len(patches) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "updates must not be empty")
	}
	asOf := s.catalog.Today(ctx)
	now := requestcontext.Now(ctx)

	ids := make([]string, len(patches))
	for i, p := range patches {
		ids[i] = p.AccountID.String()
	}
	results, err := reconcile.ApplyBatch(ctx, s.tx, ids,
		func(ctx context.Context, i int) error {
			return s.update(ctx, patches[i], asOf, now)
		},
		func(ctx context.Context) error {
			if s.compliance == nil {
				return nil
			}
			return s.compliance.Emit(ctx, audit.Event{
				AccountID: requestcontext.AccountID(ctx),
				Subject:   "users",
				Action:    string(audit.EventUsersUpdated),
				Detail:    map[string]string{"count": strconv.Itoa(len(patches))},
			})
		},
	)
	var rejected *reconcile.RejectedError
	if err != nil && !errors.As(err, &rejected) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update accounts")
	}
	return results, err
}

func (s *Service) update(ctx context.Context, p Patch, asOf, now time.Time) error {
	fields := make(map[string]string, len(p.Fields))
	for name, value := range p.Fields {
		if typeID, ok := models.CodedFieldType(name); ok && strings.TrimSpace(value) != "" {
			value = s.catalog.Canonicalize(ctx, typeID, value, asOf)
			if err := s.catalog.Validate(ctx, typeID, name, value, asOf); err != nil {
				return err
			}
		}
		fields[name] = value
	}

	a, err := s.store.FindByID(ctx, p.AccountID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return err
	}
	if err := a.ApplyPatch(fields, now); err != nil {
		return err
	}
	if err := s.store.Save(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "email already belongs to another account")
		}
		return err
	}
	return nil
}
