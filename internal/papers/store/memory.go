// Package store holds the paper table. Ids are a dense zero-based sequence
// owned by the store, with a content-hash index for duplicate detection.
package store

import (
	"context"
	"sync"

	"scholarchain/internal/chain"
	"scholarchain/internal/papers/models"
	"scholarchain/pkg/domain"
	"scholarchain/pkg/platform/sentinel"
)

// InMemory keeps papers keyed by id with a hash index.
type InMemory struct {
	mu     sync.RWMutex
	papers map[uint64]*models.Paper
	byHash map[domain.ContentHash]uint64
	next   uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		papers: make(map[uint64]*models.Paper),
		byHash: make(map[domain.ContentHash]uint64),
	}
}

// Create assigns the next id and records the paper. It fails with
// sentinel.ErrConflict when a paper with the same content hash already
// exists.
func (s *InMemory) Create(ctx context.Context, paper *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byHash[paper.ContentHash]; exists {
		return sentinel.ErrConflict
	}

	id := s.next
	if tx, ok := chain.TxFrom(ctx); ok {
		hash := paper.ContentHash
		tx.OnRollback(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.papers, id)
			delete(s.byHash, hash)
			s.next = id
		})
	}
	paper.ID = id
	s.papers[id] = paper.Clone()
	s.byHash[paper.ContentHash] = id
	s.next = id + 1
	return nil
}

// Find returns the paper with the given id.
func (s *InMemory) Find(_ context.Context, id uint64) (*models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paper, ok := s.papers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return paper.Clone(), nil
}

// Exists reports whether a paper with the given id exists.
func (s *InMemory) Exists(_ context.Context, id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.papers[id]
	return ok
}

// Count returns the number of papers ever submitted.
func (s *InMemory) Count(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next
}
