package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	id "examreg/pkg/domain"
	audit "examreg/pkg/platform/audit"
	txcontext "examreg/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to audit_outbox in the caller's transaction and relayed
// to Kafka by the outbox worker.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes an audit event to the outbox table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	// Always derive category from action - eventCategories map is the source of truth
	event.Category = audit.AuditEvent(event.Action).Category()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (category, action, subject, actor, request_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		string(event.Category),
		event.Action,
		event.Subject,
		event.ActorID,
		event.RequestID,
		payload,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// Pending returns unpublished entries oldest first.
func (s *Store) Pending(ctx context.Context, limit int) ([]audit.OutboxEntry, error) {
	query := `
		SELECT id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []audit.OutboxEntry
	for rows.Next() {
		var (
			entry   audit.OutboxEntry
			payload []byte
		)
		if err := rows.Scan(&entry.ID, &payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Event); err != nil {
			return nil, fmt.Errorf("decode outbox entry %d: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// ListByAccount returns the events recorded for an account, oldest first.
func (s *Store) ListByAccount(ctx context.Context, accountID id.AccountID) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM audit_outbox
		WHERE payload->>'account_id' = $1
		ORDER BY id
	`
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, accountID.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var event audit.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("decode audit event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// MarkPublished stamps the given entries as relayed.
func (s *Store) MarkPublished(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE audit_outbox SET published_at = $2 WHERE id = ANY($1)`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(ids), at); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
