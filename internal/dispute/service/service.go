// Package service implements dispute raising, ballot collection, and
// majority resolution with the reputation penalty path.
package service

import (
	"context"
	"errors"
	"log/slog"

	"scholarchain/internal/authority"
	"scholarchain/internal/chain"
	"scholarchain/internal/dispute/models"
	"scholarchain/internal/events"
	"scholarchain/internal/platform/metrics"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/platform/sentinel"
)

// DisputeStore is the id-keyed dispute table. The store owns the id
// sequence.
type DisputeStore interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	Save(ctx context.Context, dispute *models.Dispute) error
	Find(ctx context.Context, id uint64) (*models.Dispute, error)
	Count(ctx context.Context) uint64
}

// Identity is the slice of the identity ledger the dispute registry needs.
// ApplyPenalty runs inside the caller's operation so a failed penalty
// unwinds the whole resolution.
type Identity interface {
	IsActive(ctx context.Context, principal domain.Principal) bool
	Reputation(ctx context.Context, principal domain.Principal) (uint64, error)
	ApplyPenalty(ctx context.Context, target domain.Principal, amount uint64) error
}

// Service holds the dispute table and governance configuration.
type Service struct {
	disputes  DisputeStore
	identity  Identity
	authority *authority.Registry
	exec      *chain.Executor

	votePeriod     *chain.Value[uint64]
	penalty        *chain.Value[uint64]
	trustThreshold *chain.Value[uint64]

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

func New(disputes DisputeStore, identity Identity, auth *authority.Registry, exec *chain.Executor, votePeriod, penalty, trustThreshold uint64, opts ...Option) *Service {
	s := &Service{
		disputes:       disputes,
		identity:       identity,
		authority:      auth,
		exec:           exec,
		votePeriod:     chain.NewValue(votePeriod),
		penalty:        chain.NewValue(penalty),
		trustThreshold: chain.NewValue(trustThreshold),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Raise opens a dispute against target. The caller must be active with
// reputation at or above the governance trust threshold. This threshold is
// independent of the identity ledger's own trust knob.
func (s *Service) Raise(ctx context.Context, caller, target domain.Principal, disputeType domain.DisputeType) (*models.Dispute, error) {
	var dispute *models.Dispute
	err := s.exec.Execute(ctx, "dispute.raise", func(opCtx context.Context) error {
		if !s.identity.IsActive(opCtx, caller) {
			return dErrors.New(dErrors.CodeForbidden, "caller is not an active user")
		}
		reputation, err := s.identity.Reputation(opCtx, caller)
		if err != nil {
			return err
		}
		if reputation < s.trustThreshold.Get() {
			return dErrors.New(dErrors.CodeForbidden, "caller is not trusted to raise disputes")
		}
		if !s.identity.IsActive(opCtx, target) {
			return dErrors.New(dErrors.CodeForbidden, "target is not an active user")
		}

		d, err := models.NewDispute(target, disputeType, s.exec.Height())
		if err != nil {
			return err
		}
		if err := s.disputes.Create(opCtx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record dispute")
		}
		dispute = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DisputesRaised.Inc()
	}
	s.emit(ctx, events.Event{
		Action:    events.ActionDisputeRaised,
		Principal: caller,
		Subject:   target.String(),
		Height:    s.exec.Height(),
	})
	return dispute, nil
}

// CastVote adds one yes/no ballot to an open dispute. Ballots are tallies
// only; a voter is not recorded and may ballot repeatedly. Votes are
// accepted only while the dispute's window is open.
func (s *Service) CastVote(ctx context.Context, caller domain.Principal, id uint64, guilty bool) (*models.Dispute, error) {
	var dispute *models.Dispute
	err := s.exec.Execute(ctx, "dispute.vote", func(opCtx context.Context) error {
		if !s.identity.IsActive(opCtx, caller) {
			return dErrors.New(dErrors.CodeForbidden, "caller is not an active user")
		}

		d, err := s.find(opCtx, id)
		if err != nil {
			return err
		}
		if err := d.CanVote(s.exec.Height(), s.votePeriod.Get()); err != nil {
			return err
		}
		d.ApplyVote(guilty)
		if err := s.disputes.Save(opCtx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save dispute")
		}
		dispute = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionDisputeVote,
		Principal: caller,
		Subject:   dispute.Target.String(),
		Height:    s.exec.Height(),
	})
	return dispute, nil
}

// Resolve settles a dispute by simple majority. A guilty verdict applies
// the configured reputation penalty to the target, clamped at zero; a
// failed penalty unwinds the whole resolution including the resolved flag.
// Resolution is terminal, a second call fails with a conflict.
func (s *Service) Resolve(ctx context.Context, caller domain.Principal, id uint64) (*models.Dispute, error) {
	var dispute *models.Dispute
	err := s.exec.Execute(ctx, "dispute.resolve", func(opCtx context.Context) error {
		d, err := s.find(opCtx, id)
		if err != nil {
			return err
		}
		if err := d.CanResolve(); err != nil {
			return err
		}
		d.ApplyResolve()
		if err := s.disputes.Save(opCtx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save dispute")
		}
		if d.Guilty() {
			if err := s.identity.ApplyPenalty(opCtx, d.Target, s.penalty.Get()); err != nil {
				return err
			}
		}
		dispute = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DisputesResolved.Inc()
	}
	s.emit(ctx, events.Event{
		Action:    events.ActionDisputeResolved,
		Principal: caller,
		Subject:   dispute.Target.String(),
		Height:    s.exec.Height(),
	})
	return dispute, nil
}

// GetDispute returns the dispute with the given id.
func (s *Service) GetDispute(ctx context.Context, id uint64) (*models.Dispute, error) {
	return s.find(ctx, id)
}

// Count returns how many disputes have ever been raised.
func (s *Service) Count(ctx context.Context) uint64 {
	return s.disputes.Count(ctx)
}

// SetVotePeriod updates the ballot acceptance window.
// Dispute-authority gated.
func (s *Service) SetVotePeriod(ctx context.Context, caller domain.Principal, v uint64) error {
	return s.setConfig(ctx, "dispute.set_vote_period", caller, s.votePeriod, v)
}

// SetPenalty updates the guilty-verdict reputation penalty.
// Dispute-authority gated.
func (s *Service) SetPenalty(ctx context.Context, caller domain.Principal, v uint64) error {
	return s.setConfig(ctx, "dispute.set_penalty", caller, s.penalty, v)
}

// SetTrustThreshold updates the reputation floor for raising disputes.
// Dispute-authority gated.
func (s *Service) SetTrustThreshold(ctx context.Context, caller domain.Principal, v uint64) error {
	return s.setConfig(ctx, "dispute.set_trust_threshold", caller, s.trustThreshold, v)
}

// VotePeriod exposes the current ballot window.
func (s *Service) VotePeriod() uint64 { return s.votePeriod.Get() }

// Penalty exposes the current guilty-verdict penalty.
func (s *Service) Penalty() uint64 { return s.penalty.Get() }

// TrustThreshold exposes the current raise gate.
func (s *Service) TrustThreshold() uint64 { return s.trustThreshold.Get() }

func (s *Service) setConfig(ctx context.Context, op string, caller domain.Principal, cell *chain.Value[uint64], v uint64) error {
	err := s.exec.Execute(ctx, op, func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModuleDispute, caller); err != nil {
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
		Subject:   op,
		Height:    s.exec.Height(),
	})
	return nil
}

func (s *Service) find(ctx context.Context, id uint64) (*models.Dispute, error) {
	d, err := s.disputes.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "dispute not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dispute")
	}
	return d, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Emit(ctx, event)
}
