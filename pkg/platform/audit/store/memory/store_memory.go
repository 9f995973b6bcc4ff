package memory

import (
	"context"
	"sync"
	"time"

	id "examreg/pkg/domain"
	audit "examreg/pkg/platform/audit"
)

// InMemoryStore keeps events in append order and tracks which have been
// relayed.
type InMemoryStore struct {
	mu        sync.RWMutex
	entries   []audit.OutboxEntry
	published map[int64]time.Time
	nextID    int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{published: make(map[int64]time.Time)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.published = make(map[int64]time.Time)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.entries = append(s.entries, audit.OutboxEntry{ID: s.nextID, Event: event})
	return nil
}

func (s *InMemoryStore) ListByAccount(_ context.Context, accountID id.AccountID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.entries {
		if e.Event.AccountID == accountID {
			out = append(out, e.Event)
		}
	}
	return out, nil
}

// ListAll returns all audit events in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Event)
	}
	return out, nil
}

func (s *InMemoryStore) Pending(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.OutboxEntry
	for _, e := range s.entries {
		if _, done := s.published[e.ID]; done {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entryID := range ids {
		s.published[entryID] = at
	}
	return nil
}
