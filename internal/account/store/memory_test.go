package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"examreg/internal/account/models"
	id "examreg/pkg/domain"
	"examreg/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) account(email string) *models.Account {
	return models.NewAccount(id.NewAccountID(), email, "", time.Now())
}

func (s *InMemorySuite) TestLookup() {
	a := s.account("Kim@Example.com")
	s.Require().NoError(s.store.Save(s.ctx, a))

	found, err := s.store.FindByEmail(s.ctx, "kim@example.com")
	s.Require().NoError(err)
	s.Equal(a.ID, found.ID)

	_, err = s.store.FindByID(s.ctx, id.NewAccountID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestEmailIsUnique() {
	s.Require().NoError(s.store.Save(s.ctx, s.account("kim@example.com")))
	err := s.store.Save(s.ctx, s.account("KIM@example.com"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemorySuite) TestListOrdersByEmail() {
	for _, e := range []string{"c@x.io", "A@x.io", "b@x.io"} {
		s.Require().NoError(s.store.Save(s.ctx, s.account(e)))
	}
	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("A@x.io", list[0].Email)
	s.Equal("c@x.io", list[2].Email)
}

func (s *InMemorySuite) TestRunInTxRestoresOnError() {
	a := s.account("kim@example.com")
	s.Require().NoError(s.store.Save(s.ctx, a))

	boom := errors.New("boom")
	err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
		changed := a.Clone()
		changed.Phone = "0101234"
		s.Require().NoError(s.store.Save(ctx, changed))
		return boom
	})
	s.ErrorIs(err, boom)

	found, err := s.store.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Empty(found.Phone)
}
