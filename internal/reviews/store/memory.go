// Package store holds the review table. Ids are a dense zero-based
// sequence owned by the store.
package store

import (
	"context"
	"sync"

	"scholarchain/internal/chain"
	"scholarchain/internal/reviews/models"
	"scholarchain/pkg/platform/sentinel"
)

// InMemory keeps reviews keyed by id.
type InMemory struct {
	mu      sync.RWMutex
	reviews map[uint64]*models.Review
	next    uint64
}

func NewInMemory() *InMemory {
	return &InMemory{reviews: make(map[uint64]*models.Review)}
}

// Create assigns the next id and records the review.
func (s *InMemory) Create(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	if tx, ok := chain.TxFrom(ctx); ok {
		tx.OnRollback(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.reviews, id)
			s.next = id
		})
	}
	review.ID = id
	s.reviews[id] = review.Clone()
	s.next = id + 1
	return nil
}

// Save overwrites an existing review record.
func (s *InMemory) Save(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.reviews[review.ID]
	if !exists {
		return sentinel.ErrNotFound
	}
	if tx, ok := chain.TxFrom(ctx); ok {
		id := review.ID
		tx.OnRollback(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.reviews[id] = prev
		})
	}
	s.reviews[review.ID] = review.Clone()
	return nil
}

// Find returns the review with the given id.
func (s *InMemory) Find(_ context.Context, id uint64) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	review, ok := s.reviews[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return review.Clone(), nil
}

// Exists reports whether a review with the given id exists.
func (s *InMemory) Exists(_ context.Context, id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.reviews[id]
	return ok
}

// Count returns the number of reviews ever submitted.
func (s *InMemory) Count(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.next
}
