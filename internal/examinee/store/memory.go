package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"examreg/internal/examinee/models"
	"examreg/internal/examinee/sequence"
	id "examreg/pkg/domain"
	"examreg/pkg/platform/sentinel"
)

// InMemory keeps applications and examinee records in maps. It enforces the
// same uniqueness rules as the Postgres schema: one application per owner and
// globally unique registration numbers.
type InMemory struct {
	txMu         sync.Mutex
	mu           sync.RWMutex
	applications map[id.ApplicationID]*models.Application
	records      map[id.RecordID]*models.Record
	highWater    int
	noIndex      bool
}

type InMemoryOption func(*InMemory)

// WithoutRegistrationIndex makes MaxRegistrationNo report a missing index so
// callers exercise the scan fallback.
func WithoutRegistrationIndex() InMemoryOption {
	return func(s *InMemory) { s.noIndex = true }
}

func NewInMemory(opts ...InMemoryOption) *InMemory {
	s := &InMemory{
		applications: make(map[id.ApplicationID]*models.Application),
		records:      make(map[id.RecordID]*models.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LockRegistrations is a no-op; RunInTx serializes units of work.
func (s *InMemory) LockRegistrations(_ context.Context) error {
	return nil
}

func (s *InMemory) MaxRegistrationNo(_ context.Context) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.noIndex {
		return 0, false, sequence.ErrIndexMissing
	}
	maxNo := s.highWater
	for _, r := range s.records {
		if r.RegistrationNo > maxNo {
			maxNo = r.RegistrationNo
		}
	}
	return maxNo, maxNo > 0, nil
}

func (s *InMemory) ScanRegistrationNos(_ context.Context) ([]sql.NullInt64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sql.NullInt64, 0, len(s.records)+1)
	for _, r := range s.records {
		out = append(out, sql.NullInt64{Int64: int64(r.RegistrationNo), Valid: r.HasRegistrationNo()})
	}
	if s.highWater > 0 {
		out = append(out, sql.NullInt64{Int64: int64(s.highWater), Valid: true})
	}
	return out, nil
}

func (s *InMemory) FindApplication(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *app
	return &c, nil
}

func (s *InMemory) FindApplicationByOwner(_ context.Context, owner id.AccountID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, app := range s.applications {
		if app.OwnerID == owner {
			c := *app
			return &c, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) SaveApplication(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for existingID, existing := range s.applications {
		if existing.OwnerID == app.OwnerID && existingID != app.ID {
			return fmt.Errorf("owner %s already has an application: %w", app.OwnerID, sentinel.ErrConflict)
		}
	}
	c := *app
	s.applications[app.ID] = &c
	return nil
}

// ListApplications returns every application ordered by creation date.
func (s *InMemory) ListApplications(_ context.Context) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Application, 0, len(s.applications))
	for _, app := range s.applications {
		c := *app
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedYmd != out[j].CreatedYmd {
			return out[i].CreatedYmd < out[j].CreatedYmd
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemory) ListByApplication(_ context.Context, appID id.ApplicationID) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Record
	for _, r := range s.records {
		if r.ApplicationID == appID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (s *InMemory) ListRecords(_ context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	sortByRegistrationNo(out)
	return out, nil
}

func (s *InMemory) ListAdminRows(_ context.Context) ([]models.AdminRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]*models.Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	sortByRegistrationNo(records)

	out := make([]models.AdminRow, 0, len(records))
	for _, r := range records {
		row := models.AdminRow{Record: *r}
		if app, ok := s.applications[r.ApplicationID]; ok {
			row.ChurchName = app.ChurchName
			row.Denomination = app.Denomination
			row.ContactName = app.ContactName
			row.ContactPhone = app.ContactPhone
		}
		out = append(out, row)
	}
	return out, nil
}

// ReplaceChildRecords deletes every record of the application owned by owner
// and inserts records in their place. Nothing changes when any incoming
// registration number is already held by another application.
func (s *InMemory) ReplaceChildRecords(_ context.Context, appID id.ApplicationID, owner id.AccountID, records []*models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[appID]; !ok {
		return fmt.Errorf("application %s: %w", appID, sentinel.ErrNotFound)
	}

	seen := make(map[int]struct{}, len(records))
	for _, r := range records {
		if !r.HasRegistrationNo() {
			return fmt.Errorf("record %s has no registration number: %w", r.ID, sentinel.ErrInvalidState)
		}
		if _, dup := seen[r.RegistrationNo]; dup {
			return fmt.Errorf("registration number %d repeated: %w", r.RegistrationNo, sentinel.ErrConflict)
		}
		seen[r.RegistrationNo] = struct{}{}
		for _, existing := range s.records {
			if existing.RegistrationNo == r.RegistrationNo && existing.ApplicationID != appID {
				return fmt.Errorf("registration number %d: %w", r.RegistrationNo, sentinel.ErrConflict)
			}
		}
	}

	for recID, existing := range s.records {
		if existing.ApplicationID == appID && existing.OwnerID == owner {
			delete(s.records, recID)
		}
	}
	for _, r := range records {
		s.records[r.ID] = r.Clone()
		if r.RegistrationNo > s.highWater {
			s.highWater = r.RegistrationNo
		}
	}
	return nil
}

func (s *InMemory) FindRecord(_ context.Context, appID id.ApplicationID, recID id.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[recID]
	if !ok || r.ApplicationID != appID {
		return nil, sentinel.ErrNotFound
	}
	return r.Clone(), nil
}

// UpdateRecord overwrites the mutable fields of an existing record.
func (s *InMemory) UpdateRecord(_ context.Context, r *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[r.ID]
	if !ok || existing.ApplicationID != r.ApplicationID {
		return sentinel.ErrNotFound
	}
	updated := r.Clone()
	updated.OwnerID = existing.OwnerID
	updated.RegistrationNo = existing.RegistrationNo
	updated.CreatedYmd = existing.CreatedYmd
	updated.Ordinal = existing.Ordinal
	s.records[r.ID] = updated
	return nil
}

// ApplyExamNumbers sets the seat number of each record found by registration
// number, stamping it with now, and reports the numbers that matched nothing.
func (s *InMemory) ApplyExamNumbers(_ context.Context, rows []models.ExamNumber, now time.Time) (models.ExamNumberResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byNo := make(map[int]*models.Record, len(s.records))
	for _, r := range s.records {
		if r.HasRegistrationNo() {
			byNo[r.RegistrationNo] = r
		}
	}
	result := models.ExamNumberResult{NotFound: []int{}}
	for _, row := range rows {
		r, ok := byNo[row.RegistrationNo]
		if !ok {
			result.NotFound = append(result.NotFound, row.RegistrationNo)
			continue
		}
		r.RegisteredExamNumber = row.ExamNumber
		r.UpdatedAt = now
		result.Updated++
	}
	return result, nil
}

// RunInTx serializes units of work and restores the previous contents when fn
// fails.
func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	before := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

func (s *InMemory) snapshot() *InMemory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := &InMemory{
		applications: make(map[id.ApplicationID]*models.Application, len(s.applications)),
		records:      make(map[id.RecordID]*models.Record, len(s.records)),
		highWater:    s.highWater,
	}
	for k, v := range s.applications {
		app := *v
		c.applications[k] = &app
	}
	for k, v := range s.records {
		c.records[k] = v.Clone()
	}
	return c
}

func (s *InMemory) restore(from *InMemory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = from.applications
	s.records = from.records
	s.highWater = from.highWater
}

func sortByRegistrationNo(records []*models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RegistrationNo < records[j].RegistrationNo
	})
}
