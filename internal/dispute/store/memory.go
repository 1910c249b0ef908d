// Package store holds the dispute table. The store owns the id sequence:
// ids are dense, zero-based, and assigned at creation.
package store

import (
	"context"
	"sync"

	"scholarchain/internal/chain"
	"scholarchain/internal/dispute/models"
	"scholarchain/pkg/platform/sentinel"
)

// InMemory keeps disputes keyed by their assigned id.
type InMemory struct {
	mu       sync.RWMutex
	disputes map[uint64]*models.Dispute
	next     uint64
}

func NewInMemory() *InMemory {
	return &InMemory{disputes: make(map[uint64]*models.Dispute)}
}

// Create assigns the next id to the dispute and records it. The sequence
// advance is journaled with the record so an aborted operation does not
// leave an id gap.
func (s *InMemory) Create(ctx context.Context, dispute *models.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	if tx, ok := chain.TxFrom(ctx); ok {
		tx.OnRollback(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.disputes, id)
			s.next = id
		})
	}
	dispute.ID = id
	s.disputes[id] = dispute.Clone()
	s.next = id + 1
	return nil
}

// Save overwrites an existing dispute record.
func (s *InMemory) Save(ctx context.Context, dispute *models.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.disputes[dispute.ID]
	if !exists {
		return sentinel.ErrNotFound
	}
	if tx, ok := chain.TxFrom(ctx); ok {
		id := dispute.ID
		tx.OnRollback(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.disputes[id] = prev
		})
	}
	s.disputes[dispute.ID] = dispute.Clone()
	return nil
}

// Find returns the dispute with the given id.
func (s *InMemory) Find(_ context.Context, id uint64) (*models.Dispute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dispute, ok := s.disputes[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return dispute.Clone(), nil
}

// Count returns the number of disputes ever raised.
func (s *InMemory) Count(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next
}
