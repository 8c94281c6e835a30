// Package memory holds process-local implementations of the ledger ports,
// used for single-replica deployments and tests.
package memory

import (
	"context"
	"sync"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/internal/core/ports"
)

// DepositStore implements ports.BalanceStore over a mutex-guarded map.
type DepositStore struct {
	mu       sync.RWMutex
	balances map[string]domain.Amount
}

func NewDepositStore() *DepositStore {
	return &DepositStore{balances: make(map[string]domain.Amount)}
}

func (s *DepositStore) Get(ctx context.Context, account string) (domain.Amount, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.balances[account]
	return balance, ok, nil
}

func (s *DepositStore) Update(ctx context.Context, account string, fn ports.UpdateFunc) (domain.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.balances[account]
	next, err := fn(current, exists)
	if err != nil {
		return current, err
	}
	s.balances[account] = next
	return next, nil
}

// Accounts returns the number of stored entries, zeroed ones included.
func (s *DepositStore) Accounts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.balances)
}
