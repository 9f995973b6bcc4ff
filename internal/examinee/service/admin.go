package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"examreg/internal/examinee/models"
	"examreg/internal/reconcile"
	lookup "examreg/internal/lookup/models"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/sentinel"
	"examreg/pkg/requestcontext"
)

// RecordPatch is one administrator edit: the supplied fields only.
type RecordPatch struct {
	ApplicationID id.ApplicationID
	RecordID      id.RecordID
	Fields        map[string]string
}

// ApplicationPatch is one contacts-grid edit.
type ApplicationPatch struct {
	ApplicationID id.ApplicationID
	Fields        map[string]string
}

// ListRecords returns the admin grid rows matching filter, ordered by
// registration number. Coded filter values are canonicalized first so a label
// filters the same as its code.
func (s *Service) ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.AdminRow, error) {
	asOf := s.catalog.Today(ctx)
	coded := []struct {
		typeID lookup.TypeID
		value  *string
	}{
		{lookup.TypeExamineeType, &filter.ExamineeType},
		{lookup.TypeParticipation, &filter.ParticipationStatus},
		{lookup.TypeConfirmation, &filter.FeeConfirmed},
		{lookup.TypeConfirmation, &filter.ContactConfirmed},
		{lookup.TypeRefundRequest, &filter.RefundRequest},
		{lookup.TypeConfirmation, &filter.RefundConfirmed},
	}
	for _, c := range coded {
		if *c.value != "" {
			*c.value = s.catalog.Canonicalize(ctx, c.typeID, *c.value, asOf)
		}
	}

	rows, err := s.store.ListAdminRows(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
	}
	out := make([]models.AdminRow, 0, len(rows))
	for _, row := range rows {
		if filter.Matches(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

// PatchRecords applies administrator edits as one transaction. When any row is
// rejected nothing is written and a *reconcile.RejectedError is returned
// alongside the per-row results.
func (s *Service) PatchRecords(ctx context.Context, patches []RecordPatch) ([]reconcile.Result, error) {
	ctx, span := s.tracer.Start(ctx, "examinee.PatchRecords")
	defer span.End()

	if len(patches) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "updates must not be empty")
	}
	asOf := s.catalog.Today(ctx)
	now := requestcontext.Now(ctx)

	ids := make([]string, len(patches))
	for i, p := range patches {
		ids[i] = p.RecordID.String()
	}
	results, err := reconcile.ApplyBatch(ctx, s.tx, ids,
		func(ctx context.Context, i int) error {
			return s.patchRecord(ctx, patches[i], asOf, now)
		},
		func(ctx context.Context) error {
			return s.emitCompliance(ctx, audit.Event{
				AccountID: requestcontext.AccountID(ctx),
				Subject:   "records",
				Action:    string(audit.EventRecordsPatched),
				Detail:    map[string]string{"count": strconv.Itoa(len(patches))},
			})
		},
	)

	var rejected *reconcile.RejectedError
	switch {
	case errors.As(err, &rejected):
		s.recordPatched("rejected", len(patches))
		s.logger.InfoContext(ctx, "record patch rejected",
			"request_id", requestcontext.RequestID(ctx),
			"index", rejected.Index,
			"record_id", rejected.ID,
			"error", rejected.Err,
		)
		return results, err
	case err != nil:
		span.RecordError(err)
		s.recordPatched("error", len(patches))
		return nil, translateStoreError(err, "failed to update records")
	}
	s.recordPatched("updated", len(patches))
	s.logger.InfoContext(ctx, "records patched",
		"request_id", requestcontext.RequestID(ctx),
		"count", len(patches),
	)
	return results, nil
}

func (s *Service) patchRecord(ctx context.Context, p RecordPatch, asOf, now time.Time) error {
	if err := models.ValidatePatch(p.Fields); err != nil {
		return err
	}
	fields := make(map[string]string, len(p.Fields))
	for name, value := range p.Fields {
		value = strings.TrimSpace(value)
		if typeID, ok := models.CodedFieldType(name); ok && value != "" {
			value = s.catalog.Canonicalize(ctx, typeID, value, asOf)
			if err := s.catalog.Validate(ctx, typeID, name, value, asOf); err != nil {
				return err
			}
		}
		fields[name] = value
	}

	record, err := s.store.FindRecord(ctx, p.ApplicationID, p.RecordID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "record not found")
	}
	if err != nil {
		return err
	}
	if err := record.ApplyPatch(fields, now); err != nil {
		return err
	}
	if record.RefundRequest != "" && record.FeeConfirmed != models.Confirmed {
		return dErrors.New(dErrors.CodeInvariantViolation, "refund request requires a confirmed fee")
	}
	if err := s.store.UpdateRecord(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return err
	}
	return nil
}

func (s *Service) recordPatched(outcome string, n int) {
	if s.metrics != nil {
		s.metrics.AddPatchedRecords(outcome, n)
	}
}

// PatchApplications applies contacts-grid edits with the same all-or-nothing
// rule as PatchRecords.
func (s *Service) PatchApplications(ctx context.Context, patches []ApplicationPatch) ([]reconcile.Result, error) {
	if len(patches) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "updates must not be empty")
	}
	now := requestcontext.Now(ctx)

	ids := make([]string, len(patches))
	for i, p := range patches {
		ids[i] = p.ApplicationID.String()
	}
	results, err := reconcile.ApplyBatch(ctx, s.tx, ids,
		func(ctx context.Context, i int) error {
			return s.patchApplication(ctx, patches[i], now)
		},
		func(ctx context.Context) error {
			return s.emitCompliance(ctx, audit.Event{
				AccountID: requestcontext.AccountID(ctx),
				Subject:   "applications",
				Action:    string(audit.EventApplicationsPatched),
				Detail:    map[string]string{"count": strconv.Itoa(len(patches))},
			})
		},
	)
	var rejected *reconcile.RejectedError
	if err != nil && !errors.As(err, &rejected) {
		return nil, translateStoreError(err, "failed to update applications")
	}
	return results, err
}

func (s *Service) patchApplication(ctx context.Context, p ApplicationPatch, now time.Time) error {
	app, err := s.store.FindApplication(ctx, p.ApplicationID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if err != nil {
		return err
	}
	if err := app.ApplyPatch(p.Fields, now); err != nil {
		return err
	}
	return s.store.SaveApplication(ctx, app)
}

// ApplyExamNumbers imports seat numbers keyed by registration number.
// Unknown registration numbers are reported, not rejected.
func (s *Service) ApplyExamNumbers(ctx context.Context, rows []models.ExamNumber) (models.ExamNumberResult, error) {
	if len(rows) == 0 {
		return models.ExamNumberResult{}, &models.ValidationError{Field: "rows", Reason: "must not be empty"}
	}
	seen := make(map[int]struct{}, len(rows))
	clean := make([]models.ExamNumber, len(rows))
	for i, row := range rows {
		if row.RegistrationNo <= 0 {
			return models.ExamNumberResult{}, &models.ValidationError{Row: i + 1, Field: models.FieldRegistrationNo, Reason: "must be a positive number"}
		}
		if _, dup := seen[row.RegistrationNo]; dup {
			return models.ExamNumberResult{}, &models.ValidationError{Row: i + 1, Field: models.FieldRegistrationNo, Reason: "is duplicated"}
		}
		seen[row.RegistrationNo] = struct{}{}
		clean[i] = models.ExamNumber{RegistrationNo: row.RegistrationNo, ExamNumber: strings.TrimSpace(row.ExamNumber)}
	}

	var result models.ExamNumberResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.store.ApplyExamNumbers(ctx, clean, requestcontext.Now(ctx))
		return err
	})
	if err != nil {
		return models.ExamNumberResult{}, translateStoreError(err, "failed to apply exam numbers")
	}
	if s.metrics != nil {
		s.metrics.AddExamNumbersSet(result.Updated)
	}
	s.emitOps(ctx, audit.Event{
		AccountID: requestcontext.AccountID(ctx),
		Subject:   "exam_numbers",
		Action:    string(audit.EventExamNumbersApplied),
		ActorID:   requestcontext.Actor(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Detail: map[string]string{
			"updated":   strconv.Itoa(result.Updated),
			"not_found": strconv.Itoa(len(result.NotFound)),
		},
	})
	s.logger.InfoContext(ctx, "exam numbers applied",
		"request_id", requestcontext.RequestID(ctx),
		"updated", result.Updated,
		"not_found", len(result.NotFound),
	)
	return result, nil
}

// Summary counts records for today's report.
func (s *Service) Summary(ctx context.Context) (models.Summary, error) {
	asOf := s.catalog.Today(ctx)

	var records []*models.Record
	var applications []*models.Application
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListRecords(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		applications, err = s.store.ListApplications(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Summary{}, translateStoreError(err, "failed to load summary")
	}

	summary := models.Summarize(records, lookup.YmdString(asOf), lookup.YmdString(asOf.AddDate(0, 0, -1)))
	summary.Applications = len(applications)
	s.emitOps(ctx, audit.Event{
		AccountID: requestcontext.AccountID(ctx),
		Subject:   "summary",
		Action:    string(audit.EventSummaryViewed),
		ActorID:   requestcontext.Actor(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
	return summary, nil
}
