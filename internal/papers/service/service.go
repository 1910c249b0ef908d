// Package service implements paper submission against the identity and
// bank ledgers. Papers hold no governance state; they consume the trust
// layer through the role gate and the submission fee.
package service

import (
	"context"
	"errors"
	"log/slog"

	"scholarchain/internal/authority"
	"scholarchain/internal/bank"
	"scholarchain/internal/chain"
	"scholarchain/internal/events"
	"scholarchain/internal/papers/models"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/platform/sentinel"
)

// PaperStore is the id-keyed paper table.
type PaperStore interface {
	Create(ctx context.Context, paper *models.Paper) error
	Find(ctx context.Context, id uint64) (*models.Paper, error)
	Exists(ctx context.Context, id uint64) bool
	Count(ctx context.Context) uint64
}

// Identity is the slice of the identity ledger the paper registry needs.
type Identity interface {
	HasRole(ctx context.Context, principal domain.Principal, role domain.Role) bool
}

// Bank moves the submission fee into custody.
type Bank interface {
	Transfer(ctx context.Context, from, to domain.Principal, amount uint64) error
}

// Service holds the paper table and fee configuration.
type Service struct {
	papers    PaperStore
	identity  Identity
	bank      Bank
	authority *authority.Registry
	exec      *chain.Executor

	submissionFee *chain.Value[uint64]

	logger    *slog.Logger
	publisher *events.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(papers PaperStore, identity Identity, bankLedger Bank, auth *authority.Registry, exec *chain.Executor, submissionFee uint64, opts ...Option) *Service {
	s := &Service{
		papers:        papers,
		identity:      identity,
		bank:          bankLedger,
		authority:     auth,
		exec:          exec,
		submissionFee: chain.NewValue(submissionFee),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records an authorship claim. The caller must hold an active
// author role and pays the configured submission fee into custody; a
// failed fee transfer aborts the submission.
func (s *Service) Submit(ctx context.Context, caller domain.Principal, title string, contentHash domain.ContentHash) (*models.Paper, error) {
	var paper *models.Paper
	err := s.exec.Execute(ctx, "papers.submit", func(opCtx context.Context) error {
		if !s.identity.HasRole(opCtx, caller, domain.RoleAuthor) {
			return dErrors.New(dErrors.CodeForbidden, "caller is not an active author")
		}

		p, err := models.NewPaper(caller, title, contentHash, s.exec.Height())
		if err != nil {
			return err
		}
		if err := s.bank.Transfer(opCtx, caller, bank.Custody, s.submissionFee.Get()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeConflict, "failed to pay submission fee")
		}
		if err := s.papers.Create(opCtx, p); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "paper already submitted")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record paper")
		}
		paper = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionPaperSubmitted,
		Principal: caller,
		Subject:   paper.ContentHash.String(),
		Height:    s.exec.Height(),
	})
	return paper, nil
}

// GetPaper returns the paper with the given id.
func (s *Service) GetPaper(ctx context.Context, id uint64) (*models.Paper, error) {
	paper, err := s.papers.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "paper not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load paper")
	}
	return paper, nil
}

// Exists reports whether a paper with the given id exists.
func (s *Service) Exists(ctx context.Context, id uint64) bool {
	return s.papers.Exists(ctx, id)
}

// Count returns how many papers have ever been submitted.
func (s *Service) Count(ctx context.Context) uint64 {
	return s.papers.Count(ctx)
}

// SetSubmissionFee updates the fee charged per submission.
// Papers-authority gated.
func (s *Service) SetSubmissionFee(ctx context.Context, caller domain.Principal, v uint64) error {
	err := s.exec.Execute(ctx, "papers.set_submission_fee", func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModulePapers, caller); err != nil {
			return err
		}
		s.submissionFee.Set(opCtx, v)
		return nil
	})
	if err != nil {
		return err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionConfigChanged,
		Principal: caller,
		Subject:   "papers.set_submission_fee",
		Height:    s.exec.Height(),
	})
	return nil
}

// SubmissionFee exposes the current submission fee.
func (s *Service) SubmissionFee() uint64 { return s.submissionFee.Get() }

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Emit(ctx, event)
}
