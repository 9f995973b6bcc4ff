package store

import (
	"context"
	"database/sql"
	"fmt"

	"examreg/internal/lookup/models"
	txcontext "examreg/pkg/platform/tx"
)

// PostgresStore reads the catalog from the lookup_entries table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListByType(ctx context.Context, typeID models.TypeID) ([]models.Entry, error) {
	query := `
		SELECT type_id, code, label, start_ymd, end_ymd, sort
		FROM lookup_entries
		WHERE type_id = $1
	`
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, int(typeID))
	if err != nil {
		return nil, fmt.Errorf("list lookup entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e      models.Entry
			typeID int
		)
		if err := rows.Scan(&typeID, &e.Code, &e.Label, &e.StartYmd, &e.EndYmd, &e.Sort); err != nil {
			return nil, fmt.Errorf("scan lookup entry: %w", err)
		}
		e.TypeID = models.TypeID(typeID)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookup entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, entries ...models.Entry) error {
	query := `
		INSERT INTO lookup_entries (type_id, code, label, start_ymd, end_ymd, sort)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (type_id, code, start_ymd) DO UPDATE SET
			label = EXCLUDED.label,
			end_ymd = EXCLUDED.end_ymd,
			sort = EXCLUDED.sort
	`
	exec := txcontext.Executor(ctx, s.db)
	for _, e := range entries {
		if _, err := exec.ExecContext(ctx, query, int(e.TypeID), e.Code, e.Label, e.StartYmd, e.EndYmd, e.Sort); err != nil {
			return fmt.Errorf("upsert lookup entry %d/%s: %w", e.TypeID, e.Code, err)
		}
	}
	return nil
}
