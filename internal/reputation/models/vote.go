// Package models holds the reputation vote record.
package models

import (
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

// MaxScore bounds a single reputation vote.
const MaxScore = 100

// Vote is one reputation score cast by voter on target.
// Invariants:
//   - at most one vote per (target, voter) pair; votes are never overwritten
//   - Score is 0..MaxScore
//   - Timestamp is the block height at cast time and never changes
//
// Votes older than the voting period stop counting toward aggregation but
// the records persist; there is no pruning.
type Vote struct {
	Target    domain.Principal `json:"target"`
	Voter     domain.Principal `json:"voter"`
	Score     uint64           `json:"score"`
	Timestamp uint64           `json:"timestamp"`
}

// NewVote validates the score bound and builds the record.
func NewVote(target, voter domain.Principal, score, height uint64) (*Vote, error) {
	if score > MaxScore {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid reputation score")
	}
	return &Vote{
		Target:    target,
		Voter:     voter,
		Score:     score,
		Timestamp: height,
	}, nil
}

// InWindow reports whether the vote still counts at the given height for
// the given voting period.
func (v *Vote) InWindow(height, votingPeriod uint64) bool {
	return height-v.Timestamp <= votingPeriod
}
