package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"examreg/internal/examinee/models"
	lookup "examreg/internal/lookup/models"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/sentinel"
	"examreg/pkg/requestcontext"
)

// SubmitRequest is an applicant's full application: header fields and every
// examinee row in display order.
type SubmitRequest struct {
	Header  models.ApplicationHeader
	Records []models.Submission
}

// codedSubmissionFields lists the coded inputs of a submission row.
var codedSubmissionFields = []struct {
	field  string
	typeID lookup.TypeID
	value  func(*models.Submission) *string
}{
	{models.FieldExamineeType, lookup.TypeExamineeType, func(s *models.Submission) *string { return &s.ExamineeType }},
	{models.FieldParticipationStatus, lookup.TypeParticipation, func(s *models.Submission) *string { return &s.ParticipationStatus }},
	{models.FieldRefundRequest, lookup.TypeRefundRequest, func(s *models.Submission) *string { return &s.RefundRequest }},
}

// Submit creates or resubmits the owner's application. The records are
// replaced wholesale: rows echoing a registration number of this application
// inherit that record's identity, creation date and administrator fields;
// every other row is new and receives a fresh number. A resubmission that
// leaves out a fee-confirmed or refund-settled record is rejected.
func (s *Service) Submit(ctx context.Context, owner id.AccountID, req SubmitRequest) (*models.ApplicationView, error) {
	ctx, span := s.tracer.Start(ctx, "examinee.Submit")
	defer span.End()
	start := time.Now()

	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account required")
	}
	if err := req.Header.Validate(); err != nil {
		return nil, err
	}
	if len(req.Records) == 0 {
		return nil, &models.ValidationError{Field: "records", Reason: "must not be empty"}
	}
	if err := models.ValidateRequired(req.Records); err != nil {
		return nil, err
	}

	asOf := s.catalog.Today(ctx)
	rows, err := s.canonicalizeSubmissions(ctx, req.Records, asOf)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("examinee.rows", len(rows)))

	var outcome submitOutcome
	for attempt := 1; ; attempt++ {
		outcome = submitOutcome{}
		err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
			return s.replace(ctx, owner, req.Header, rows, asOf, &outcome)
		})
		if err == nil || !errors.Is(err, sentinel.ErrConflict) || attempt >= s.maxAttempts {
			break
		}
		if s.metrics != nil {
			s.metrics.IncrementSubmitRetries()
		}
		s.logger.WarnContext(ctx, "registration number conflict, retrying submission",
			"request_id", requestcontext.RequestID(ctx),
			"attempt", attempt,
		)
	}
	if s.metrics != nil {
		s.metrics.ObserveSubmitDuration(start)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
		if s.metrics != nil {
			s.metrics.IncrementSubmissions(outcome.kind(), "error")
		}
		return nil, translateSubmitError(err)
	}

	if s.metrics != nil {
		s.metrics.IncrementSubmissions(outcome.kind(), "ok")
		s.metrics.AddNumbersAllocated(outcome.allocated)
	}
	s.logger.InfoContext(ctx, "application submitted",
		"request_id", requestcontext.RequestID(ctx),
		"application_id", outcome.app.ID.String(),
		"records", len(outcome.records),
		"allocated", outcome.allocated,
		"first_submission", outcome.created,
	)
	return s.view(ctx, outcome.app, outcome.records, asOf), nil
}

type submitOutcome struct {
	app       *models.Application
	records   []*models.Record
	created   bool
	allocated int
}

func (o submitOutcome) kind() string {
	if o.created {
		return "first"
	}
	return "resubmit"
}

func (s *Service) canonicalizeSubmissions(ctx context.Context, in []models.Submission, asOf time.Time) ([]models.Submission, error) {
	out := make([]models.Submission, len(in))
	for i := range in {
		row := in[i]
		for _, f := range codedSubmissionFields {
			v := f.value(&row)
			*v = s.catalog.Canonicalize(ctx, f.typeID, *v, asOf)
			if err := s.catalog.Validate(ctx, f.typeID, f.field, *v, asOf); err != nil {
				if dErrors.HasCode(err, dErrors.CodeValidation) {
					return nil, &models.ValidationError{Row: i + 1, Field: f.field, Reason: fmt.Sprintf("has unknown code %q", *v)}
				}
				return nil, err
			}
		}
		out[i] = row
	}
	return out, nil
}

// replace is one attempt at the submission unit of work.
func (s *Service) replace(ctx context.Context, owner id.AccountID, header models.ApplicationHeader, rows []models.Submission, asOf time.Time, out *submitOutcome) error {
	ctx, span := s.tracer.Start(ctx, "examinee.replace")
	defer span.End()
	now := requestcontext.Now(ctx)
	today := lookup.YmdString(asOf)

	if err := s.store.LockRegistrations(ctx); err != nil {
		return err
	}

	app, err := s.store.FindApplicationByOwner(ctx, owner)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		app = models.NewApplication(id.NewApplicationID(), owner, today, now)
		out.created = true
	case err != nil:
		return err
	}
	app.ApplyHeader(header, now)
	if err := s.store.SaveApplication(ctx, app); err != nil {
		return err
	}

	stored, err := s.store.ListByApplication(ctx, app.ID)
	if err != nil {
		return err
	}
	byNo := make(map[int]*models.Record, len(stored))
	for _, r := range stored {
		if r.HasRegistrationNo() {
			byNo[r.RegistrationNo] = r
		}
	}

	records := make([]*models.Record, len(rows))
	needNumbers := 0
	for i, row := range rows {
		var prev *models.Record
		if n, ok := row.ParsedRegistrationNo(); ok {
			prev = byNo[n]
			delete(byNo, n)
		}
		derived := models.Derive(prev, row)
		r := &derived
		r.ApplicationID = app.ID
		r.OwnerID = owner
		r.Ordinal = i + 1
		r.UpdatedAt = now
		if prev != nil {
			r.ID = prev.ID
			r.RegistrationNo = prev.RegistrationNo
			r.CreatedYmd = prev.CreatedYmd
		} else {
			r.ID = id.NewRecordID()
			r.CreatedYmd = today
			if models.ValidYmd(row.CreatedYmd) {
				r.CreatedYmd = row.CreatedYmd
			}
			needNumbers++
		}
		records[i] = r
	}
	for _, r := range stored {
		if _, dropped := byNo[r.RegistrationNo]; dropped && !r.Removable() {
			return &models.ValidationError{
				Field:  models.FieldRegistrationNo,
				Reason: fmt.Sprintf("%d is locked by the office and cannot be removed", r.RegistrationNo),
			}
		}
	}

	if needNumbers > 0 {
		_, allocSpan := s.tracer.Start(ctx, "examinee.allocate")
		counter, err := s.allocator.Next(ctx, s.store)
		if err != nil {
			allocSpan.RecordError(err)
			allocSpan.End()
			return err
		}
		counter.Assign(records)
		allocSpan.SetAttributes(attribute.Int("examinee.allocated", counter.Issued()))
		allocSpan.End()
		out.allocated = counter.Issued()
	}

	if err := s.store.ReplaceChildRecords(ctx, app.ID, owner, records); err != nil {
		return err
	}

	action := audit.EventApplicationResubmitted
	if out.created {
		action = audit.EventApplicationSubmitted
	}
	err = s.emitCompliance(ctx, audit.Event{
		AccountID: owner,
		Subject:   app.ID.String(),
		Action:    string(action),
		Detail: map[string]string{
			"records":   strconv.Itoa(len(records)),
			"allocated": strconv.Itoa(out.allocated),
		},
	})
	if err != nil {
		return err
	}

	out.app = app
	out.records = records
	return nil
}

func translateSubmitError(err error) error {
	if isCoded(err) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "registration numbers changed while saving; submit again")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "registration store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
	}
}

// GetMine returns the owner's application with labels resolved.
func (s *Service) GetMine(ctx context.Context, owner id.AccountID) (*models.ApplicationView, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account required")
	}
	app, err := s.store.FindApplicationByOwner(ctx, owner)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no application submitted yet")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	records, err := s.store.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load records")
	}
	return s.view(ctx, app, records, s.catalog.Today(ctx)), nil
}

func (s *Service) view(ctx context.Context, app *models.Application, records []*models.Record, asOf time.Time) *models.ApplicationView {
	out := &models.ApplicationView{Application: *app, Records: make([]models.RecordView, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, models.RecordView{
			Record:        *r,
			MobileDisplay: models.FormatMobile(r.Mobile),
			Labels: map[string]string{
				models.FieldExamineeType:        s.catalog.ResolveLabel(ctx, lookup.TypeExamineeType, r.ExamineeType, asOf),
				models.FieldParticipationStatus: s.catalog.ResolveLabel(ctx, lookup.TypeParticipation, r.ParticipationStatus, asOf),
				models.FieldFeeConfirmed:        s.catalog.ResolveLabel(ctx, lookup.TypeConfirmation, r.FeeConfirmed, asOf),
				models.FieldContactConfirmed:    s.catalog.ResolveLabel(ctx, lookup.TypeConfirmation, r.ContactConfirmed, asOf),
				models.FieldRefundRequest:       s.catalog.ResolveLabel(ctx, lookup.TypeRefundRequest, r.RefundRequest, asOf),
				models.FieldRefundConfirmed:     s.catalog.ResolveLabel(ctx, lookup.TypeConfirmation, r.RefundConfirmed, asOf),
			},
			Mode:                 r.Mode().String(),
			CanEditParticipation: r.CanEditParticipation(),
			CanRequestRefund:     r.CanRequestRefund(),
		})
	}
	return out
}
