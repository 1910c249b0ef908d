// Package store holds the identity ledger's keyed user table.
package store

import (
	"context"
	"sync"

	"scholarchain/internal/chain"
	"scholarchain/internal/identity/models"
	"scholarchain/pkg/domain"
	"scholarchain/pkg/platform/sentinel"
)

// InMemory keeps the user table in process memory. Saves made inside an
// executor operation journal the prior record so aborts restore it exactly.
// Records are stored and returned as clones; callers never share memory with
// the table.
type InMemory struct {
	mu    sync.RWMutex
	users map[domain.Principal]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[domain.Principal]*models.User)}
}

// Save creates or overwrites the record for user.Principal.
func (s *InMemory) Save(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx, ok := chain.TxFrom(ctx); ok {
		prev, existed := s.users[user.Principal]
		key := user.Principal
		tx.OnRollback(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if existed {
				s.users[key] = prev
			} else {
				delete(s.users, key)
			}
		})
	}
	s.users[user.Principal] = user.Clone()
	return nil
}

// Find returns the record for a principal.
func (s *InMemory) Find(_ context.Context, principal domain.Principal) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[principal]; ok {
		return user.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// Exists reports whether a record exists for the principal.
func (s *InMemory) Exists(_ context.Context, principal domain.Principal) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[principal]
	return ok
}
