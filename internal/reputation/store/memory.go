// Package store holds the reputation vote table, indexed by target so
// aggregation folds over one target's votes instead of scanning the whole
// table.
package store

import (
	"context"
	"sync"

	"scholarchain/internal/chain"
	"scholarchain/internal/reputation/models"
	"scholarchain/pkg/domain"
	"scholarchain/pkg/platform/sentinel"
)

// InMemory keeps votes keyed by (target, voter) with a per-target index.
type InMemory struct {
	mu    sync.RWMutex
	votes map[domain.Principal]map[domain.Principal]*models.Vote
}

func NewInMemory() *InMemory {
	return &InMemory{votes: make(map[domain.Principal]map[domain.Principal]*models.Vote)}
}

// Create records a vote. It fails with sentinel.ErrConflict when a vote for
// the (target, voter) pair already exists; votes are never overwritten.
func (s *InMemory) Create(ctx context.Context, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byVoter := s.votes[vote.Target]
	if byVoter == nil {
		byVoter = make(map[domain.Principal]*models.Vote)
		s.votes[vote.Target] = byVoter
	}
	if _, exists := byVoter[vote.Voter]; exists {
		return sentinel.ErrConflict
	}

	if tx, ok := chain.TxFrom(ctx); ok {
		target, voter := vote.Target, vote.Voter
		tx.OnRollback(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.votes[target], voter)
		})
	}
	v := *vote
	byVoter[vote.Voter] = &v
	return nil
}

// Get returns the vote cast by voter on target.
func (s *InMemory) Get(_ context.Context, target, voter domain.Principal) (*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vote, ok := s.votes[target][voter]; ok {
		v := *vote
		return &v, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByTarget returns all votes ever cast on target.
func (s *InMemory) ListByTarget(_ context.Context, target domain.Principal) []*models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Vote, 0, len(s.votes[target]))
	for _, vote := range s.votes[target] {
		v := *vote
		out = append(out, &v)
	}
	return out
}
