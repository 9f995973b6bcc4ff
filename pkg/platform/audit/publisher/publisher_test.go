package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "examreg/pkg/domain"
	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/audit/store/memory"
)

// gatedStore holds every Append until release is closed and reports when
// the first one starts.
type gatedStore struct {
	*memory.InMemoryStore
	entered chan struct{}
	release chan struct{}
	first   bool
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		InMemoryStore: memory.NewInMemoryStore(),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (s *gatedStore) Append(ctx context.Context, event audit.Event) error {
	if !s.first {
		s.first = true
		close(s.entered)
	}
	<-s.release
	return s.InMemoryStore.Append(ctx, event)
}

type failingStore struct {
	*memory.InMemoryStore
}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("outbox unavailable")
}

type PublisherSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.InMemoryStore
	account id.AccountID
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewInMemoryStore()
	s.account = id.NewAccountID()
}

func (s *PublisherSuite) event(action audit.AuditEvent) audit.Event {
	return audit.Event{AccountID: s.account, Subject: "application", Action: string(action)}
}

func (s *PublisherSuite) TestSynchronousEmitIsVisibleImmediately() {
	pub := NewPublisher(s.store)
	defer pub.Close()

	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventApplicationSubmitted)))
	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventApplicationResubmitted)))

	events, err := pub.List(s.ctx, s.account)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventApplicationSubmitted), events[0].Action)
	s.Equal(string(audit.EventApplicationResubmitted), events[1].Action)
}

func (s *PublisherSuite) TestSynchronousEmitReturnsStoreError() {
	pub := NewPublisher(failingStore{s.store})
	s.Error(pub.Emit(s.ctx, s.event(audit.EventSummaryViewed)))
}

func (s *PublisherSuite) TestCloseDrainsTheBuffer() {
	pub := NewPublisher(s.store, WithAsyncBuffer(16))
	for range 12 {
		s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventExamNumbersApplied)))
	}
	pub.Close()
	pub.Close()

	events, err := s.store.ListByAccount(s.ctx, s.account)
	s.Require().NoError(err)
	s.Len(events, 12)
}

func (s *PublisherSuite) TestFullBufferDropsTheEvent() {
	store := newGatedStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventAdminAuthFailed)))
	<-store.entered
	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventAdminAuthFailed)))
	s.ErrorIs(pub.Emit(s.ctx, s.event(audit.EventAdminAuthFailed)), ErrBufferFull)

	close(store.release)
	pub.Close()
	events, err := store.ListByAccount(s.ctx, s.account)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *PublisherSuite) TestCancelledContextIsNotQueued() {
	pub := NewPublisher(s.store, WithAsyncBuffer(4))
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	s.ErrorIs(pub.Emit(ctx, s.event(audit.EventBearerAuthFailed)), context.Canceled)
	pub.Close()
	events, err := s.store.ListByAccount(s.ctx, s.account)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *PublisherSuite) TestStampsTimeAndCategory() {
	pub := NewPublisher(s.store)
	defer pub.Close()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	stamped := s.event(audit.EventAdminAuthFailed)
	stamped.Category = audit.CategoryOperations
	s.Require().NoError(pub.Emit(s.ctx, stamped))
	kept := s.event(audit.EventRecordsPatched)
	kept.Timestamp = at
	s.Require().NoError(pub.Emit(s.ctx, kept))

	events, err := pub.List(s.ctx, s.account)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.CategorySecurity, events[0].Category, "category follows the action")
	s.False(events[0].Timestamp.IsZero())
	s.Equal(audit.CategoryCompliance, events[1].Category)
	s.True(at.Equal(events[1].Timestamp))
}

func (s *PublisherSuite) TestListIsScopedToTheAccount() {
	pub := NewPublisher(s.store)
	defer pub.Close()
	other := id.NewAccountID()

	s.Require().NoError(pub.Emit(s.ctx, s.event(audit.EventApplicationSubmitted)))
	s.Require().NoError(pub.Emit(s.ctx, audit.Event{AccountID: other, Action: string(audit.EventUsersUpdated)}))

	mine, err := pub.List(s.ctx, s.account)
	s.Require().NoError(err)
	s.Len(mine, 1)
	theirs, err := pub.List(s.ctx, other)
	s.Require().NoError(err)
	s.Require().Len(theirs, 1)
	s.Equal(string(audit.EventUsersUpdated), theirs[0].Action)
}
