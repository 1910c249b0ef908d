// Package service implements review submission and authority-gated
// validation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"scholarchain/internal/authority"
	"scholarchain/internal/chain"
	"scholarchain/internal/events"
	"scholarchain/internal/reviews/models"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
	"scholarchain/pkg/platform/sentinel"
)

// ReviewStore is the id-keyed review table.
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	Save(ctx context.Context, review *models.Review) error
	Find(ctx context.Context, id uint64) (*models.Review, error)
	Exists(ctx context.Context, id uint64) bool
	Count(ctx context.Context) uint64
}

// Identity is the slice of the identity ledger the review registry needs.
type Identity interface {
	HasRole(ctx context.Context, principal domain.Principal, role domain.Role) bool
}

// Papers answers whether the reviewed paper exists.
type Papers interface {
	Exists(ctx context.Context, id uint64) bool
}

// Service holds the review table.
type Service struct {
	reviews   ReviewStore
	identity  Identity
	papers    Papers
	authority *authority.Registry
	exec      *chain.Executor

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

func New(reviews ReviewStore, identity Identity, papers Papers, auth *authority.Registry, exec *chain.Executor, opts ...Option) *Service {
	s := &Service{
		reviews:   reviews,
		identity:  identity,
		papers:    papers,
		authority: auth,
		exec:      exec,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records a peer review against an existing paper. The caller must
// hold an active reviewer role.
func (s *Service) Submit(ctx context.Context, caller domain.Principal, paperID uint64, contentHash domain.ContentHash) (*models.Review, error) {
	var review *models.Review
	err := s.exec.Execute(ctx, "reviews.submit", func(opCtx context.Context) error {
		if !s.identity.HasRole(opCtx, caller, domain.RoleReviewer) {
			return dErrors.New(dErrors.CodeForbidden, "caller is not an active reviewer")
		}
		if !s.papers.Exists(opCtx, paperID) {
			return dErrors.New(dErrors.CodeNotFound, "paper not found")
		}

		r, err := models.NewReview(paperID, caller, contentHash, s.exec.Height())
		if err != nil {
			return err
		}
		if err := s.reviews.Create(opCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record review")
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionReviewSubmitted,
		Principal: caller,
		Subject:   review.ContentHash.String(),
		Height:    s.exec.Height(),
	})
	return review, nil
}

// Validate marks a review validated. Only the reviews authority may do so,
// and only once per review.
func (s *Service) Validate(ctx context.Context, caller domain.Principal, id uint64) (*models.Review, error) {
	var review *models.Review
	err := s.exec.Execute(ctx, "reviews.validate", func(opCtx context.Context) error {
		if err := s.authority.Require(authority.ModuleReviews, caller); err != nil {
			return err
		}

		r, err := s.find(opCtx, id)
		if err != nil {
			return err
		}
		if err := r.CanValidate(); err != nil {
			return err
		}
		r.ApplyValidate()
		if err := s.reviews.Save(opCtx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save review")
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.Event{
		Action:    events.ActionReviewValidated,
		Principal: caller,
		Subject:   review.ContentHash.String(),
		Height:    s.exec.Height(),
	})
	return review, nil
}

// GetReview returns the review with the given id.
func (s *Service) GetReview(ctx context.Context, id uint64) (*models.Review, error) {
	return s.find(ctx, id)
}

// Exists reports whether a review with the given id exists.
func (s *Service) Exists(ctx context.Context, id uint64) bool {
	return s.reviews.Exists(ctx, id)
}

func (s *Service) find(ctx context.Context, id uint64) (*models.Review, error) {
	review, err := s.reviews.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "review not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review")
	}
	return review, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Emit(ctx, event)
}
