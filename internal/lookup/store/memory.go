package store

import (
	"context"
	"sync"

	"examreg/internal/lookup/models"
)

// InMemory holds catalog entries keyed by type. Entries with the same
// (type, code, start) replace each other on Upsert.
type InMemory struct {
	mu      sync.RWMutex
	entries map[models.TypeID][]models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[models.TypeID][]models.Entry)}
}

func (s *InMemory) ListByType(_ context.Context, typeID models.TypeID) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.entries[typeID]
	out := make([]models.Entry, len(src))
	copy(out, src)
	return out, nil
}

func (s *InMemory) Upsert(_ context.Context, entries ...models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		list := s.entries[e.TypeID]
		replaced := false
		for i := range list {
			if list[i].Code == e.Code && list[i].StartYmd == e.StartYmd {
				list[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, e)
		}
		s.entries[e.TypeID] = list
	}
	return nil
}
