package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"examreg/internal/account/models"
	"examreg/internal/account/store"
	lookupservice "examreg/internal/lookup/service"
	lookupstore "examreg/internal/lookup/store"
	"examreg/internal/reconcile"
	id "examreg/pkg/domain"
	dErrors "examreg/pkg/domain-errors"
	"examreg/pkg/platform/audit/publishers/compliance"
	auditmemory "examreg/pkg/platform/audit/store/memory"
	"examreg/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	audit   *auditmemory.InMemoryStore
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	lookups := lookupstore.NewInMemory()
	s.Require().NoError(lookupstore.SeedDefaults(s.ctx, lookups))
	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(s.store, s.store, lookupservice.New(lookups), WithComplianceAudit(compliance.New(s.audit)))
}

func (s *ServiceSuite) TestEnsure() {
	accountID := id.NewAccountID()

	created, err := s.service.Ensure(s.ctx, accountID, "kim@example.com", "Kim")
	s.Require().NoError(err)
	s.Equal("kim@example.com", created.Email)

	again, err := s.service.Ensure(s.ctx, accountID, "other@example.com", "")
	s.Require().NoError(err)
	s.Equal("kim@example.com", again.Email, "email is recorded at creation only")

	_, err = s.service.Ensure(s.ctx, id.NewAccountID(), "KIM@example.com", "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.Ensure(s.ctx, id.NewAccountID(), "", "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestUpdateCanonicalizesUserType() {
	a, err := s.service.Ensure(s.ctx, id.NewAccountID(), "kim@example.com", "Kim")
	s.Require().NoError(err)

	results, err := s.service.Update(s.ctx, []Patch{{
		AccountID: a.ID,
		Fields:    map[string]string{models.FieldUserType: "Administrator", models.FieldPhone: "010 9999 0000"},
	}})
	s.Require().NoError(err)
	s.Equal(reconcile.StatusUpdated, results[0].Status)

	list, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("900", list[0].UserType)
	s.Equal("Administrator", list[0].UserTypeLabel)
	s.Equal("01099990000", list[0].Phone)

	events, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("users_updated", events[0].Action)
}

func (s *ServiceSuite) TestUpdateIsAtomic() {
	a, err := s.service.Ensure(s.ctx, id.NewAccountID(), "kim@example.com", "Kim")
	s.Require().NoError(err)
	b, err := s.service.Ensure(s.ctx, id.NewAccountID(), "lee@example.com", "Lee")
	s.Require().NoError(err)

	results, err := s.service.Update(s.ctx, []Patch{
		{AccountID: a.ID, Fields: map[string]string{models.FieldName: "Kim Sr"}},
		{AccountID: b.ID, Fields: map[string]string{models.FieldEmail: "kim@example.com"}},
	})
	var rejected *reconcile.RejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	s.Equal(reconcile.StatusRolledBack, results[0].Status)
	s.Equal(reconcile.StatusRejected, results[1].Status)

	found, err := s.store.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Kim", found.Name)
}
