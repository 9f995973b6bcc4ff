package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"examreg/internal/account/models"
	id "examreg/pkg/domain"
	"examreg/pkg/platform/sentinel"
	txcontext "examreg/pkg/platform/tx"
)

const accountColumns = ` id, email, name, phone, user_type, email_opt_in, created_at, updated_at`

// PostgresStore persists accounts and joins the transaction in the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) q(ctx context.Context) txcontext.Querier {
	return txcontext.Executor(ctx, s.db)
}

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var (
		a         models.Account
		accountID uuid.UUID
	)
	if err := row.Scan(&accountID, &a.Email, &a.Name, &a.Phone, &a.UserType, &a.EmailOptIn, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ID = id.AccountID(accountID)
	return &a, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(accountID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`
	a, err := scanAccount(s.q(ctx).QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) Save(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			user_type = EXCLUDED.user_type,
			email_opt_in = EXCLUDED.email_opt_in,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(a.ID), a.Email, a.Name, a.Phone, a.UserType, a.EmailOptIn, a.CreatedAt, a.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("save account: %s: %w", pgErr.ConstraintName, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts ORDER BY lower(email), id`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
