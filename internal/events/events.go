// Package events is the governance event pipeline. Services emit one event
// per committed operation; sinks range from the in-memory store used in
// tests to the Postgres outbox and Kafka for off-chain listeners.
package events

import (
	"context"
	"time"

	"scholarchain/pkg/domain"
)

// Action identifies what happened.
type Action string

const (
	ActionUserRegistered    Action = "user_registered"
	ActionRoleAdded         Action = "role_added"
	ActionProfileUpdated    Action = "profile_updated"
	ActionActiveToggled     Action = "active_toggled"
	ActionStakeWithdrawn    Action = "stake_withdrawn"
	ActionReputationVote    Action = "reputation_vote_cast"
	ActionReputationFinal   Action = "reputation_finalized"
	ActionDisputeRaised     Action = "dispute_raised"
	ActionDisputeVote       Action = "dispute_vote_cast"
	ActionDisputeResolved   Action = "dispute_resolved"
	ActionAuthorityBound    Action = "authority_bound"
	ActionConfigChanged     Action = "config_changed"
	ActionPaperSubmitted    Action = "paper_submitted"
	ActionReviewSubmitted   Action = "review_submitted"
	ActionReviewValidated   Action = "review_validated"
	ActionDeposit           Action = "deposit"
)

// Event is one committed governance fact.
type Event struct {
	ID        string           `json:"id"`
	Action    Action           `json:"action"`
	Principal domain.Principal `json:"principal,omitempty"`
	Subject   string           `json:"subject,omitempty"`
	Height    uint64           `json:"height"`
	Timestamp time.Time        `json:"timestamp"`
	Detail    string           `json:"detail,omitempty"`
}

// Store persists events for off-chain consumers.
type Store interface {
	Append(ctx context.Context, event Event) error
}
