package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "examreg/pkg/domain"
	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/audit/store/memory"
	"examreg/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("outbox unavailable")
}

func TestEmit_FillsFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithActor(ctx, "admin")
	ctx = requestcontext.WithTime(ctx, now)

	accountID := id.NewAccountID()
	err := pub.Emit(ctx, audit.Event{AccountID: accountID, Action: string(audit.EventRecordsPatched)})
	require.NoError(t, err)

	events, err := store.ListByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "admin", events[0].ActorID)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestEmit_FailsClosed(t *testing.T) {
	pub := New(failingStore{})
	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventApplicationSubmitted)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbox unavailable")
}

func TestEmit_RejectsNonComplianceActions(t *testing.T) {
	pub := New(memory.NewInMemoryStore())
	assert.Error(t, pub.Emit(context.Background(), audit.Event{}))
	assert.Error(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventSummaryViewed)}))
}
