package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"examreg/internal/account/models"
	id "examreg/pkg/domain"
	"examreg/pkg/platform/sentinel"
)

// InMemory keeps accounts in a map with the same case-insensitive email
// uniqueness as the accounts table.
type InMemory struct {
	txMu     sync.Mutex
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[id.AccountID]*models.Account)}
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[accountID]; ok {
		return a.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Save inserts or replaces the account.
func (s *InMemory) Save(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID != account.ID && strings.EqualFold(a.Email, account.Email) {
			return sentinel.ErrConflict
		}
	}
	s.accounts[account.ID] = account.Clone()
	return nil
}

// List returns every account ordered by email.
func (s *InMemory) List(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email)
	})
	return out, nil
}

// RunInTx serializes units of work and restores the previous contents when fn
// fails.
func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	before := make(map[id.AccountID]*models.Account, len(s.accounts))
	for k, v := range s.accounts {
		before[k] = v.Clone()
	}
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.accounts = before
		s.mu.Unlock()
		return err
	}
	return nil
}
