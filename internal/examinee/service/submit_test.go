package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"examreg/internal/examinee/models"
	"examreg/internal/examinee/sequence"
	"examreg/internal/examinee/service/mocks"
	lookup "examreg/internal/lookup/models"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/sentinel"
)

type SubmitMockSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	tx      *mocks.MockTxRunner
	catalog *mocks.MockCatalog
	audit   *mocks.MockAuditPublisher
	service *Service

	owner id.AccountID
	app   *models.Application
}

func TestSubmitMockSuite(t *testing.T) {
	suite.Run(t, new(SubmitMockSuite))
}

func (s *SubmitMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.tx = mocks.NewMockTxRunner(s.ctrl)
	s.catalog = mocks.NewMockCatalog(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, s.tx, s.catalog, WithComplianceAudit(s.audit))

	s.owner = id.NewAccountID()
	s.app = models.NewApplication(id.NewApplicationID(), s.owner, "20260301", time.Now())

	s.tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) },
	).AnyTimes()
	s.catalog.EXPECT().Today(gomock.Any()).Return(submittedAt).AnyTimes()
	s.catalog.EXPECT().Canonicalize(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ lookup.TypeID, value string, _ time.Time) string { return value },
	).AnyTimes()
	s.catalog.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.catalog.EXPECT().ResolveLabel(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ lookup.TypeID, code string, _ time.Time) string { return code },
	).AnyTimes()
}

func (s *SubmitMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SubmitMockSuite) stored(no int) *models.Record {
	return &models.Record{
		ID:                  id.NewRecordID(),
		ApplicationID:       s.app.ID,
		OwnerID:             s.owner,
		Ordinal:             1,
		RegistrationNo:      no,
		ExamineeType:        "100",
		Name:                "Lee",
		Mobile:              "01011112222",
		DepositNote:         "deposit",
		ParticipationStatus: models.ParticipationAttending,
		FeeConfirmed:        models.Confirmed,
		ContactConfirmed:    models.Unconfirmed,
		CreatedYmd:          "20260301",
	}
}

func (s *SubmitMockSuite) expectExistingApplication(records ...*models.Record) {
	s.store.EXPECT().LockRegistrations(gomock.Any()).Return(nil)
	s.store.EXPECT().FindApplicationByOwner(gomock.Any(), s.owner).Return(s.app, nil)
	s.store.EXPECT().SaveApplication(gomock.Any(), s.app).Return(nil)
	s.store.EXPECT().ListByApplication(gomock.Any(), s.app.ID).Return(records, nil)
}

func (s *SubmitMockSuite) TestAllNumberedRowsSkipAllocation() {
	existing := s.stored(1007)
	s.expectExistingApplication(existing)
	s.store.EXPECT().MaxRegistrationNo(gomock.Any()).Times(0)
	s.store.EXPECT().ScanRegistrationNos(gomock.Any()).Times(0)
	s.store.EXPECT().ReplaceChildRecords(gomock.Any(), s.app.ID, s.owner, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ id.ApplicationID, _ id.AccountID, records []*models.Record) error {
			s.Require().Len(records, 1)
			s.Equal(existing.ID, records[0].ID)
			s.Equal(1007, records[0].RegistrationNo)
			s.Equal(models.Confirmed, records[0].FeeConfirmed)
			return nil
		})
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(audit.EventApplicationResubmitted), e.Action)
		s.Equal("0", e.Detail["allocated"])
		return nil
	})

	_, err := s.service.Submit(context.Background(), s.owner, SubmitRequest{
		Header:  header(),
		Records: []models.Submission{{RegistrationNo: "1007", ExamineeType: "100", Name: "Lee", Mobile: "01011112222", DepositNote: "deposit", ParticipationStatus: models.ParticipationAttending}},
	})
	s.Require().NoError(err)
}

func (s *SubmitMockSuite) TestNewRowsAllocateOnceForTheBatch() {
	s.expectExistingApplication(s.stored(1007))
	s.store.EXPECT().MaxRegistrationNo(gomock.Any()).Return(1010, true, nil).Times(1)
	s.store.EXPECT().ReplaceChildRecords(gomock.Any(), s.app.ID, s.owner, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ id.ApplicationID, _ id.AccountID, records []*models.Record) error {
			s.Require().Len(records, 3)
			s.Equal(1011, records[0].RegistrationNo)
			s.Equal(1007, records[1].RegistrationNo)
			s.Equal(1012, records[2].RegistrationNo)
			s.Equal("20260210", records[2].CreatedYmd, "a valid payload date is kept for a new row")
			s.Equal("20260315", records[0].CreatedYmd)
			return nil
		})
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	withDate := row("Choi", "01055556666")
	withDate.CreatedYmd = "20260210"
	_, err := s.service.Submit(context.Background(), s.owner, SubmitRequest{
		Header: header(),
		Records: []models.Submission{
			row("Park", "01033334444"),
			{RegistrationNo: "1007", ExamineeType: "100", Name: "Lee", Mobile: "01011112222", DepositNote: "deposit", ParticipationStatus: models.ParticipationAttending},
			withDate,
		},
	})
	s.Require().NoError(err)
}

func (s *SubmitMockSuite) TestFatalScanAbortsWithoutWriting() {
	s.expectExistingApplication()
	s.store.EXPECT().MaxRegistrationNo(gomock.Any()).Return(0, false, sequence.ErrIndexMissing)
	s.store.EXPECT().ScanRegistrationNos(gomock.Any()).Return(nil, errors.New("connection reset"))
	s.store.EXPECT().ReplaceChildRecords(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Submit(context.Background(), s.owner, SubmitRequest{Header: header(), Records: []models.Submission{row("Park", "01033334444")}})

	var allocErr *sequence.AllocationError
	s.Require().ErrorAs(err, &allocErr)
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
}

func (s *SubmitMockSuite) TestComplianceAuditFailureFailsTheSubmission() {
	s.expectExistingApplication()
	s.store.EXPECT().MaxRegistrationNo(gomock.Any()).Return(0, false, nil)
	s.store.EXPECT().ReplaceChildRecords(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(dErrors.New(dErrors.CodeInternal, "audit unavailable"))

	_, err := s.service.Submit(context.Background(), s.owner, SubmitRequest{Header: header(), Records: []models.Submission{row("Park", "01033334444")}})
	s.Require().Error(err)
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
}

func TestTranslateStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want dErrors.Code
	}{
		{"not found", sentinel.ErrNotFound, dErrors.CodeNotFound},
		{"conflict", sentinel.ErrConflict, dErrors.CodeConflict},
		{"unavailable", sentinel.ErrUnavailable, dErrors.CodeUnavailable},
		{"coded passes through", &models.ValidationError{Field: "x"}, dErrors.CodeValidation},
		{"unknown", errors.New("boom"), dErrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateStoreError(tt.err, "op failed")
			require.Error(t, err)
			assert.Equal(t, tt.want, dErrors.CodeOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
