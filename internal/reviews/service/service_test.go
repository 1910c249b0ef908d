package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"scholarchain/internal/authority"
	"scholarchain/internal/bank"
	"scholarchain/internal/chain"
	identityservice "scholarchain/internal/identity/service"
	identitystore "scholarchain/internal/identity/store"
	papersservice "scholarchain/internal/papers/service"
	papersstore "scholarchain/internal/papers/store"
	"scholarchain/internal/reviews/store"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

const (
	author   = domain.Principal("0xauthor")
	reviewer = domain.Principal("0xreviewer")
	admin    = domain.Principal("0xadmin")
)

var (
	profileHash = domain.ContentHash(strings.Repeat("a", domain.HashLength))
	paperHash   = domain.ContentHash(strings.Repeat("b", domain.HashLength))
	reviewHash  = domain.ContentHash(strings.Repeat("c", domain.HashLength))
)

type ReviewServiceSuite struct {
	suite.Suite
	ctx     context.Context
	svc     *Service
	paperID uint64
}

func (s *ReviewServiceSuite) SetupTest() {
	s.ctx = context.Background()
	exec := chain.NewExecutor(chain.NewClock())
	auth := authority.NewRegistry()
	ledger := bank.NewLedger()

	identity := identityservice.New(identitystore.NewInMemory(), ledger, auth, exec, 1000, 5000)
	papers := papersservice.New(papersstore.NewInMemory(), identity, ledger, auth, exec, 10)
	s.svc = New(store.NewInMemory(), identity, papers, auth, exec)

	s.Require().NoError(auth.Bind(s.ctx, authority.ModuleReviews, admin))

	ledger.Deposit(s.ctx, author, 2000)
	_, err := identity.Register(s.ctx, author, domain.RoleAuthor, profileHash, 1000)
	s.Require().NoError(err)

	ledger.Deposit(s.ctx, reviewer, 2000)
	_, err = identity.Register(s.ctx, reviewer, domain.RoleReviewer, profileHash, 1000)
	s.Require().NoError(err)

	paper, err := papers.Submit(s.ctx, author, "On Ledger Provenance", paperHash)
	s.Require().NoError(err)
	s.paperID = paper.ID
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceSuite))
}

func (s *ReviewServiceSuite) TestSubmitRecordsReview() {
	review, err := s.svc.Submit(s.ctx, reviewer, s.paperID, reviewHash)
	s.Require().NoError(err)
	s.Equal(uint64(0), review.ID)
	s.Equal(s.paperID, review.PaperID)
	s.False(review.Validated)
}

func (s *ReviewServiceSuite) TestSubmitRequiresReviewerRole() {
	_, err := s.svc.Submit(s.ctx, author, s.paperID, reviewHash)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ReviewServiceSuite) TestSubmitUnknownPaperRejected() {
	_, err := s.svc.Submit(s.ctx, reviewer, 42, reviewHash)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal(uint64(0), s.svc.reviews.Count(s.ctx))
}

func (s *ReviewServiceSuite) TestValidateOnlyByAuthority() {
	review, err := s.svc.Submit(s.ctx, reviewer, s.paperID, reviewHash)
	s.Require().NoError(err)

	_, err = s.svc.Validate(s.ctx, reviewer, review.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	validated, err := s.svc.Validate(s.ctx, admin, review.ID)
	s.Require().NoError(err)
	s.True(validated.Validated)
}

func (s *ReviewServiceSuite) TestValidateTwiceRejected() {
	review, err := s.svc.Submit(s.ctx, reviewer, s.paperID, reviewHash)
	s.Require().NoError(err)

	_, err = s.svc.Validate(s.ctx, admin, review.ID)
	s.Require().NoError(err)

	_, err = s.svc.Validate(s.ctx, admin, review.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ReviewServiceSuite) TestValidateUnknownReview() {
	_, err := s.svc.Validate(s.ctx, admin, 42)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ReviewServiceSuite) TestGetReview() {
	review, err := s.svc.Submit(s.ctx, reviewer, s.paperID, reviewHash)
	s.Require().NoError(err)

	got, err := s.svc.GetReview(s.ctx, review.ID)
	s.Require().NoError(err)
	s.Equal(reviewHash, got.ContentHash)
	s.True(s.svc.Exists(s.ctx, review.ID))
}
