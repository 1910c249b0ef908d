// Package models holds the dispute record and its state machine.
package models

import (
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

// Dispute is a formal accusation against a user, settled by simple majority.
// Ballots are anonymous tallies: only the yes/no counters are kept, not who
// cast them, so one principal may vote more than once. That matches the host
// ledger's dispute table and keeps the record constant-size.
type Dispute struct {
	ID       uint64             `json:"id"`
	Target   domain.Principal   `json:"target"`
	Type     domain.DisputeType `json:"type"`
	VotesYes uint64             `json:"votes_yes"`
	VotesNo  uint64             `json:"votes_no"`
	RaisedAt uint64             `json:"raised_at"`
	Resolved bool               `json:"resolved"`
}

// NewDispute opens a dispute against target at the given block height.
func NewDispute(target domain.Principal, disputeType domain.DisputeType, height uint64) (*Dispute, error) {
	if target.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid target principal")
	}
	if !disputeType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid dispute type")
	}
	return &Dispute{
		Target:   target,
		Type:     disputeType,
		RaisedAt: height,
	}, nil
}

// InVoteWindow reports whether ballots are still accepted at height.
func (d *Dispute) InVoteWindow(height, votePeriod uint64) bool {
	return height < d.RaisedAt+votePeriod
}

// CanVote validates a ballot at the given height.
func (d *Dispute) CanVote(height, votePeriod uint64) error {
	if d.Resolved {
		return dErrors.New(dErrors.CodeConflict, "dispute already resolved")
	}
	if !d.InVoteWindow(height, votePeriod) {
		return dErrors.New(dErrors.CodeConflict, "voting window closed")
	}
	return nil
}

// ApplyVote adds one ballot to the tally. Call CanVote first.
func (d *Dispute) ApplyVote(guilty bool) {
	if guilty {
		d.VotesYes++
	} else {
		d.VotesNo++
	}
}

// CanResolve validates closing the dispute.
func (d *Dispute) CanResolve() error {
	if d.Resolved {
		return dErrors.New(dErrors.CodeConflict, "dispute already resolved")
	}
	return nil
}

// Guilty reports the majority verdict. Ties acquit.
func (d *Dispute) Guilty() bool {
	return d.VotesYes > d.VotesNo
}

// ApplyResolve marks the dispute settled. Call CanResolve first.
func (d *Dispute) ApplyResolve() {
	d.Resolved = true
}

// Clone returns a deep copy so store reads never alias store state.
func (d *Dispute) Clone() *Dispute {
	c := *d
	return &c
}
