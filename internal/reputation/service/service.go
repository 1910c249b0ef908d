// Package service implements reputation voting and admin-triggered
// aggregation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"scholarchain/internal/authority"
	"scholarchain/internal/chain"
	"scholarchain/internal/events"
	"scholarchain/internal/platform/metrics"
	"scholarchain/internal/reputation/models"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/platform/sentinel"
)

// VoteStore is the keyed vote table.
type VoteStore interface {
	Create(ctx context.Context, vote *models.Vote) error
	Get(ctx context.Context, target, voter domain.Principal) (*models.Vote, error)
	ListByTarget(ctx context.Context, target domain.Principal) []*models.Vote
}

// Identity is the slice of the identity ledger the aggregator needs.
type Identity interface {
	IsActive(ctx context.Context, principal domain.Principal) bool
	GrantReputation(ctx context.Context, target domain.Principal, sum, maxReputation uint64) error
}

// Service holds the vote store and aggregation configuration.
type Service struct {
	votes     VoteStore
	identity  Identity
	authority *authority.Registry
	exec      *chain.Executor

	votingPeriod  *chain.Value[uint64]
	maxReputation *chain.Value[uint64]

	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher *events.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(votes VoteStore, identity Identity, auth *authority.Registry, exec *chain.Executor, votingPeriod, maxReputation uint64, opts ...Option) *Service {
	s := &Service{
		votes:         votes,
		identity:      identity,
		authority:     auth,
		exec:          exec,
		votingPeriod:  chain.NewValue(votingPeriod),
		maxReputation: chain.NewValue(maxReputation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vote records one score from caller on target. Both sides must be
// registered and active, and a (target, caller) pair votes at most once.
func (s *Service) Vote(ctx context.Context, caller, target domain.Principal, score uint64) (*models.Vote, error) {
	if score > models.MaxScore {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid reputation score")
	}

	var vote *models.Vote
	err := s.exec.Execute(ctx, "reputation.vote", func(opCtx context.Context) error {
		if !s.identity.IsActive(opCtx, caller) {
			return dErrors.New(dErrors.CodeForbidden, "voter is not an active user")
		}
		if !s.identity.IsActive(opCtx, target) {
			return dErrors.New(dErrors.CodeForbidden, "target is not an active user")
		}

		v, err := models.NewVote(target, caller, score, s.exec.Height())
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		if err := s.votes.Create(opCtx, v); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "already voted")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vote")
		}
		vote = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.VotesCast.Inc()
	}
	s.emit(ctx, events.Event{
		Action:    events.ActionReputationVote,
		Principal: caller,
		Subject:   target.String(),
		Height:    s.exec.Height(),
	})
	return vote, nil
}

// Finalize folds the still-valid votes on target into its reputation.
// Reputation-authority gated. The fold is all-or-nothing: if the new total
// would exceed the configured maximum the whole call is rejected and
// reputation is unchanged.
//
// Finalize is deliberately not idempotent: votes are not consumed, so a
// repeat call while the same votes remain in the window adds the same sum
// again. The original ledger behaves this way; callers must treat repeat
// finalization as reward compounding.
func (s *Service) Finalize(ctx context.Context, caller, target domain.Principal) (uint64, error) {
	var sum uint64
	err := s.exec.Execute(ctx, "reputation.finalize", func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModuleReputation, caller); err != nil {
			return err
		}

		height := s.exec.Height()
		period := s.votingPeriod.Get()
		for _, vote := range s.votes.ListByTarget(opCtx, target) {
			if vote.InWindow(height, period) {
				sum += vote.Score
			}
		}

		return s.identity.GrantReputation(opCtx, target, sum, s.maxReputation.Get())
	})
	if err != nil {
		return 0, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionReputationFinal,
		Principal: caller,
		Subject:   target.String(),
		Height:    s.exec.Height(),
	})
	return sum, nil
}

// GetVote returns the vote cast by voter on target.
func (s *Service) GetVote(ctx context.Context, target, voter domain.Principal) (*models.Vote, error) {
	vote, err := s.votes.Get(ctx, target, voter)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vote not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vote")
	}
	return vote, nil
}

// SetVotingPeriod updates the aggregation window.
// Reputation-authority gated.
func (s *Service) SetVotingPeriod(ctx context.Context, caller domain.Principal, v uint64) error {
	return s.setConfig(ctx, "reputation.set_voting_period", caller, s.votingPeriod, v)
}

// SetMaxReputation updates the reputation cap. Reputation-authority gated.
func (s *Service) SetMaxReputation(ctx context.Context, caller domain.Principal, v uint64) error {
	return s.setConfig(ctx, "reputation.set_max_reputation", caller, s.maxReputation, v)
}

// VotingPeriod exposes the current aggregation window.
func (s *Service) VotingPeriod() uint64 { return s.votingPeriod.Get() }

// MaxReputation exposes the current reputation cap.
func (s *Service) MaxReputation() uint64 { return s.maxReputation.Get() }

func (s *Service) setConfig(ctx context.Context, op string, caller domain.Principal, cell *chain.Value[uint64], v uint64) error {
	err := s.exec.Execute(ctx, op, func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModuleReputation, caller); err != nil {
			return err
		}
		cell.Set(opCtx, v)
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, events.Event{
		Action:    events.ActionConfigChanged,
		Principal: caller,
		Height:    s.exec.Height(),
		Detail:    op,
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}
