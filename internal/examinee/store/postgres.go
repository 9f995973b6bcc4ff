package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"examreg/internal/examinee/models"
	"examreg/internal/examinee/sequence"
	id "examreg/pkg/domain"
	"examreg/pkg/platform/sentinel"
	txcontext "examreg/pkg/platform/tx"
)

const (
	registrationIndex = "examinee_records_registration_no_key"
	// registrationLockKey serializes allocation across submissions.
	registrationLockKey = 720_1001

	uniqueViolation = "23505"
)

// PostgresStore persists applications and examinee records. Every method joins
// the transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) q(ctx context.Context) txcontext.Querier {
	return txcontext.Executor(ctx, s.db)
}

// LockRegistrations takes a transaction-scoped advisory lock. It must run
// inside a transaction; outside one the lock is released immediately.
func (s *PostgresStore) LockRegistrations(ctx context.Context) error {
	if _, err := s.q(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockKey); err != nil {
		return fmt.Errorf("lock registration numbers: %w", err)
	}
	return nil
}

// MaxRegistrationNo reads the highest number through the unique index. When
// the index has been dropped it reports sequence.ErrIndexMissing rather than
// running an unindexed sort.
func (s *PostgresStore) MaxRegistrationNo(ctx context.Context) (int, bool, error) {
	var present bool
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, registrationIndex).Scan(&present); err != nil {
		return 0, false, fmt.Errorf("check registration index: %w", err)
	}
	if !present {
		return 0, false, sequence.ErrIndexMissing
	}

	query := `
		SELECT GREATEST(
			COALESCE((SELECT registration_no FROM examinee_records
			          WHERE registration_no IS NOT NULL
			          ORDER BY registration_no DESC LIMIT 1), 0),
			COALESCE((SELECT last_no FROM registration_high_water), 0)
		)
	`
	var maxNo int
	if err := s.q(ctx).QueryRowContext(ctx, query).Scan(&maxNo); err != nil {
		return 0, false, fmt.Errorf("read max registration number: %w", err)
	}
	return maxNo, maxNo > 0, nil
}

func (s *PostgresStore) ScanRegistrationNos(ctx context.Context) ([]sql.NullInt64, error) {
	query := `
		SELECT registration_no FROM examinee_records
		UNION ALL
		SELECT last_no FROM registration_high_water
	`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan registration numbers: %w", err)
	}
	defer rows.Close()

	var out []sql.NullInt64
	for rows.Next() {
		var n sql.NullInt64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan registration number: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registration numbers: %w", err)
	}
	return out, nil
}

const applicationColumns = `
	id, owner_id, church_name, pastor_name, church_address, denomination,
	contact_name, contact_position, contact_phone, contact_email,
	created_ymd, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*models.Application, error) {
	var (
		app            models.Application
		appID, ownerID uuid.UUID
	)
	err := row.Scan(
		&appID, &ownerID, &app.ChurchName, &app.PastorName, &app.ChurchAddress, &app.Denomination,
		&app.ContactName, &app.ContactPosition, &app.ContactPhone, &app.ContactEmail,
		&app.CreatedYmd, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.ID = id.ApplicationID(appID)
	app.OwnerID = id.AccountID(ownerID)
	return &app, nil
}

func (s *PostgresStore) FindApplication(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE id = $1`
	app, err := scanApplication(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(appID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) FindApplicationByOwner(ctx context.Context, owner id.AccountID) (*models.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE owner_id = $1`
	app, err := scanApplication(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(owner)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application by owner: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) SaveApplication(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			church_name = EXCLUDED.church_name,
			pastor_name = EXCLUDED.pastor_name,
			church_address = EXCLUDED.church_address,
			denomination = EXCLUDED.denomination,
			contact_name = EXCLUDED.contact_name,
			contact_position = EXCLUDED.contact_position,
			contact_phone = EXCLUDED.contact_phone,
			contact_email = EXCLUDED.contact_email,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(app.ID), uuid.UUID(app.OwnerID), app.ChurchName, app.PastorName, app.ChurchAddress, app.Denomination,
		app.ContactName, app.ContactPosition, app.ContactPhone, app.ContactEmail,
		app.CreatedYmd, app.UpdatedAt,
	)
	if err != nil {
		return translateWriteError("save application", err)
	}
	return nil
}

func (s *PostgresStore) ListApplications(ctx context.Context) ([]*models.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications ORDER BY created_ymd, id`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

const recordColumns = `
	r.id, r.application_id, r.owner_id, r.ordinal, r.registration_no,
	r.examinee_type, r.name, r.mobile, r.deposit_note,
	r.participation_status, r.fee_confirmed, r.contact_confirmed,
	r.refund_request, r.refund_confirmed, r.registered_exam_number,
	r.created_ymd, r.updated_at`

func recordDest(r *models.Record, recID, appID, ownerID *uuid.UUID, regNo *sql.NullInt64) []any {
	return []any{
		recID, appID, ownerID, &r.Ordinal, regNo,
		&r.ExamineeType, &r.Name, &r.Mobile, &r.DepositNote,
		&r.ParticipationStatus, &r.FeeConfirmed, &r.ContactConfirmed,
		&r.RefundRequest, &r.RefundConfirmed, &r.RegisteredExamNumber,
		&r.CreatedYmd, &r.UpdatedAt,
	}
}

func scanRecord(row interface{ Scan(...any) error }, extra ...any) (*models.Record, error) {
	var (
		r                     models.Record
		recID, appID, ownerID uuid.UUID
		regNo                 sql.NullInt64
	)
	dest := append(recordDest(&r, &recID, &appID, &ownerID, &regNo), extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	r.ID = id.RecordID(recID)
	r.ApplicationID = id.ApplicationID(appID)
	r.OwnerID = id.AccountID(ownerID)
	if regNo.Valid {
		r.RegistrationNo = int(regNo.Int64)
	}
	return &r, nil
}

func (s *PostgresStore) queryRecords(ctx context.Context, query string, args ...any) ([]*models.Record, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListByApplication(ctx context.Context, appID id.ApplicationID) ([]*models.Record, error) {
	query := `SELECT` + recordColumns + ` FROM examinee_records r WHERE r.application_id = $1 ORDER BY r.ordinal`
	return s.queryRecords(ctx, query, uuid.UUID(appID))
}

func (s *PostgresStore) ListRecords(ctx context.Context) ([]*models.Record, error) {
	query := `SELECT` + recordColumns + ` FROM examinee_records r ORDER BY r.registration_no`
	return s.queryRecords(ctx, query)
}

func (s *PostgresStore) ListAdminRows(ctx context.Context) ([]models.AdminRow, error) {
	query := `SELECT` + recordColumns + `, a.church_name, a.denomination, a.contact_name, a.contact_phone
		FROM examinee_records r
		JOIN applications a ON a.id = r.application_id
		ORDER BY r.registration_no`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admin rows: %w", err)
	}
	defer rows.Close()

	var out []models.AdminRow
	for rows.Next() {
		var row models.AdminRow
		r, err := scanRecord(rows, &row.ChurchName, &row.Denomination, &row.ContactName, &row.ContactPhone)
		if err != nil {
			return nil, fmt.Errorf("scan admin row: %w", err)
		}
		row.Record = *r
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin rows: %w", err)
	}
	return out, nil
}

// ReplaceChildRecords deletes the application's records and inserts records
// in their place, then raises the high-water mark. Run it inside a
// transaction so observers never see the empty intermediate state.
func (s *PostgresStore) ReplaceChildRecords(ctx context.Context, appID id.ApplicationID, owner id.AccountID, records []*models.Record) error {
	q := s.q(ctx)
	if _, err := q.ExecContext(ctx,
		`DELETE FROM examinee_records WHERE application_id = $1 AND owner_id = $2`,
		uuid.UUID(appID), uuid.UUID(owner),
	); err != nil {
		return fmt.Errorf("delete application records: %w", err)
	}

	insert := `
		INSERT INTO examinee_records (
			id, application_id, owner_id, ordinal, registration_no,
			examinee_type, name, mobile, deposit_note,
			participation_status, fee_confirmed, contact_confirmed,
			refund_request, refund_confirmed, registered_exam_number,
			created_ymd, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	highest := 0
	for _, r := range records {
		if !r.HasRegistrationNo() {
			return fmt.Errorf("record %s has no registration number: %w", r.ID, sentinel.ErrInvalidState)
		}
		_, err := q.ExecContext(ctx, insert,
			uuid.UUID(r.ID), uuid.UUID(appID), uuid.UUID(owner), r.Ordinal, r.RegistrationNo,
			r.ExamineeType, r.Name, r.Mobile, r.DepositNote,
			r.ParticipationStatus, r.FeeConfirmed, r.ContactConfirmed,
			r.RefundRequest, r.RefundConfirmed, r.RegisteredExamNumber,
			r.CreatedYmd, r.UpdatedAt,
		)
		if err != nil {
			return translateWriteError(fmt.Sprintf("insert record %d", r.RegistrationNo), err)
		}
		highest = max(highest, r.RegistrationNo)
	}

	if highest > 0 {
		_, err := q.ExecContext(ctx, `
			INSERT INTO registration_high_water (singleton, last_no) VALUES (TRUE, $1)
			ON CONFLICT (singleton) DO UPDATE SET last_no = GREATEST(registration_high_water.last_no, EXCLUDED.last_no)
		`, highest)
		if err != nil {
			return fmt.Errorf("raise registration high water: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindRecord(ctx context.Context, appID id.ApplicationID, recID id.RecordID) (*models.Record, error) {
	query := `SELECT` + recordColumns + ` FROM examinee_records r WHERE r.id = $1 AND r.application_id = $2`
	r, err := scanRecord(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(recID), uuid.UUID(appID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return r, nil
}

// UpdateRecord writes the mutable columns. Registration number, created date,
// owner and ordinal are never part of the statement.
func (s *PostgresStore) UpdateRecord(ctx context.Context, r *models.Record) error {
	query := `
		UPDATE examinee_records SET
			examinee_type = $3,
			name = $4,
			mobile = $5,
			deposit_note = $6,
			participation_status = $7,
			fee_confirmed = $8,
			contact_confirmed = $9,
			refund_request = $10,
			refund_confirmed = $11,
			registered_exam_number = $12,
			updated_at = $13
		WHERE id = $1 AND application_id = $2
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(r.ID), uuid.UUID(r.ApplicationID),
		r.ExamineeType, r.Name, r.Mobile, r.DepositNote,
		r.ParticipationStatus, r.FeeConfirmed, r.ContactConfirmed,
		r.RefundRequest, r.RefundConfirmed, r.RegisteredExamNumber,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ApplyExamNumbers updates seat numbers in one statement keyed by
// registration number and reports the numbers that matched no record.
func (s *PostgresStore) ApplyExamNumbers(ctx context.Context, rows []models.ExamNumber, now time.Time) (models.ExamNumberResult, error) {
	result := models.ExamNumberResult{NotFound: []int{}}
	if len(rows) == 0 {
		return result, nil
	}
	numbers := make([]int64, len(rows))
	seats := make([]string, len(rows))
	for i, row := range rows {
		numbers[i] = int64(row.RegistrationNo)
		seats[i] = row.ExamNumber
	}

	query := `
		UPDATE examinee_records r
		SET registered_exam_number = v.seat, updated_at = $3
		FROM unnest($1::int[], $2::text[]) AS v(registration_no, seat)
		WHERE r.registration_no = v.registration_no
		RETURNING r.registration_no
	`
	updated, err := s.q(ctx).QueryContext(ctx, query, pq.Array(numbers), pq.Array(seats), now)
	if err != nil {
		return result, fmt.Errorf("apply exam numbers: %w", err)
	}
	defer updated.Close()

	found := make(map[int]struct{}, len(rows))
	for updated.Next() {
		var n int
		if err := updated.Scan(&n); err != nil {
			return result, fmt.Errorf("scan updated registration number: %w", err)
		}
		found[n] = struct{}{}
		result.Updated++
	}
	if err := updated.Err(); err != nil {
		return result, fmt.Errorf("iterate updated registration numbers: %w", err)
	}
	for _, row := range rows {
		if _, ok := found[row.RegistrationNo]; !ok {
			result.NotFound = append(result.NotFound, row.RegistrationNo)
		}
	}
	return result, nil
}

func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
