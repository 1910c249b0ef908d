package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"scholarchain/internal/authority"
	"scholarchain/internal/bank"
	"scholarchain/internal/chain"
	"scholarchain/internal/dispute/store"
	identityservice "scholarchain/internal/identity/service"
	identitystore "scholarchain/internal/identity/store"
	"scholarchain/pkg/domain"
	dErrors "scholarchain/pkg/domain-errors"
)

const (
	accuser = domain.Principal("0xaccuser")
	accused = domain.Principal("0xaccused")
	juror   = domain.Principal("0xjuror")
	admin   = domain.Principal("0xadmin")
)

var profileHash = domain.ContentHash(strings.Repeat("a", domain.HashLength))

type DisputeServiceSuite struct {
	suite.Suite
	ctx      context.Context
	clock    *chain.Clock
	exec     *chain.Executor
	auth     *authority.Registry
	svc      *Service
	store    *store.InMemory
	identity *identityservice.Service
}

func (s *DisputeServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = chain.NewClock()
	s.exec = chain.NewExecutor(s.clock)
	s.auth = authority.NewRegistry()
	ledger := bank.NewLedger()

	s.identity = identityservice.New(identitystore.NewInMemory(), ledger, s.auth, s.exec, 1000, 5000)
	s.store = store.NewInMemory()
	s.svc = New(s.store, s.identity, s.auth, s.exec, 100, 10, 50)

	s.Require().NoError(s.auth.Bind(s.ctx, authority.ModuleDispute, admin))

	for _, p := range []domain.Principal{accuser, accused, juror} {
		ledger.Deposit(s.ctx, p, 10_000)
		_, err := s.identity.Register(s.ctx, p, domain.RoleAuthor, profileHash, 1000)
		s.Require().NoError(err)
	}

	// Clear the raise gate for the accuser only.
	s.Require().NoError(s.identity.GrantReputation(s.ctx, accuser, 60, 10_000))
}

func TestDisputeServiceSuite(t *testing.T) {
	suite.Run(t, new(DisputeServiceSuite))
}

func (s *DisputeServiceSuite) TestRaiseByTrustedCreatesDispute() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputePlagiarism)
	s.Require().NoError(err)
	s.Equal(uint64(0), dispute.ID)
	s.Equal(accused, dispute.Target)
	s.Equal(uint64(0), dispute.VotesYes)
	s.Equal(uint64(0), dispute.VotesNo)
	s.False(dispute.Resolved)
	s.Equal(uint64(1), s.svc.Count(s.ctx))
}

func (s *DisputeServiceSuite) TestRaiseBelowThresholdLeavesCounterUnchanged() {
	_, err := s.svc.Raise(s.ctx, juror, accused, domain.DisputePlagiarism)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal(uint64(0), s.svc.Count(s.ctx))
}

func (s *DisputeServiceSuite) TestRaiseInvalidTypeRejected() {
	_, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputeType("gossip"))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *DisputeServiceSuite) TestCastVoteTallies() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputeFalseData)
	s.Require().NoError(err)

	_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, true)
	s.Require().NoError(err)
	_, err = s.svc.CastVote(s.ctx, accuser, dispute.ID, true)
	s.Require().NoError(err)
	updated, err := s.svc.CastVote(s.ctx, juror, dispute.ID, false)
	s.Require().NoError(err)

	s.Equal(uint64(2), updated.VotesYes)
	s.Equal(uint64(1), updated.VotesNo)
}

func (s *DisputeServiceSuite) TestCastVoteUnknownDispute() {
	_, err := s.svc.CastVote(s.ctx, juror, 42, true)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DisputeServiceSuite) TestCastVoteAfterWindowCloses() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputeAuthorship)
	s.Require().NoError(err)

	for i := uint64(0); i < s.svc.VotePeriod(); i++ {
		s.clock.Tick()
	}

	_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *DisputeServiceSuite) TestResolveGuiltyAppliesPenalty() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputeReviewMisuse)
	s.Require().NoError(err)

	s.Require().NoError(s.identity.GrantReputation(s.ctx, accused, 25, 10_000))

	for _, guilty := range []bool{true, true, true, false} {
		_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, guilty)
		s.Require().NoError(err)
	}

	resolved, err := s.svc.Resolve(s.ctx, admin, dispute.ID)
	s.Require().NoError(err)
	s.True(resolved.Resolved)

	rep, err := s.identity.Reputation(s.ctx, accused)
	s.Require().NoError(err)
	s.Equal(uint64(15), rep)
}

func (s *DisputeServiceSuite) TestResolveGuiltyClampsPenaltyAtZero() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputePlagiarism)
	s.Require().NoError(err)

	s.Require().NoError(s.identity.GrantReputation(s.ctx, accused, 5, 10_000))
	_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, true)
	s.Require().NoError(err)

	_, err = s.svc.Resolve(s.ctx, admin, dispute.ID)
	s.Require().NoError(err)

	rep, err := s.identity.Reputation(s.ctx, accused)
	s.Require().NoError(err)
	s.Equal(uint64(0), rep, "penalty clamps, never underflows")
}

func (s *DisputeServiceSuite) TestResolveTieAcquits() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputeFalseData)
	s.Require().NoError(err)

	s.Require().NoError(s.identity.GrantReputation(s.ctx, accused, 25, 10_000))
	_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, true)
	s.Require().NoError(err)
	_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, false)
	s.Require().NoError(err)

	_, err = s.svc.Resolve(s.ctx, admin, dispute.ID)
	s.Require().NoError(err)

	rep, err := s.identity.Reputation(s.ctx, accused)
	s.Require().NoError(err)
	s.Equal(uint64(25), rep, "tie acquits")
}

func (s *DisputeServiceSuite) TestResolveTwiceRejected() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputePlagiarism)
	s.Require().NoError(err)

	_, err = s.svc.Resolve(s.ctx, admin, dispute.ID)
	s.Require().NoError(err)

	_, err = s.svc.Resolve(s.ctx, admin, dispute.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *DisputeServiceSuite) TestVoteAfterResolveRejected() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputePlagiarism)
	s.Require().NoError(err)
	_, err = s.svc.Resolve(s.ctx, admin, dispute.ID)
	s.Require().NoError(err)

	_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, true)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *DisputeServiceSuite) TestResolvePenaltyFailureUnwindsResolution() {
	dispute, err := s.svc.Raise(s.ctx, accuser, accused, domain.DisputePlagiarism)
	s.Require().NoError(err)
	_, err = s.svc.CastVote(s.ctx, juror, dispute.ID, true)
	s.Require().NoError(err)

	broken := New(s.store, failingIdentity{s.identity}, s.auth, s.exec, 100, 10, 50)
	_, err = broken.Resolve(s.ctx, admin, dispute.ID)
	s.Require().Error(err)

	got, err := s.svc.GetDispute(s.ctx, dispute.ID)
	s.Require().NoError(err)
	s.False(got.Resolved, "failed penalty unwinds the resolved flag")
}

func (s *DisputeServiceSuite) TestSettersAuthorityGated() {
	err := s.svc.SetPenalty(s.ctx, juror, 99)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	s.Require().NoError(s.svc.SetPenalty(s.ctx, admin, 99))
	s.Equal(uint64(99), s.svc.Penalty())
}

// failingIdentity delegates everything to the real ledger but refuses the
// penalty write, standing in for an identity-side failure mid-resolution.
type failingIdentity struct {
	*identityservice.Service
}

func (f failingIdentity) ApplyPenalty(ctx context.Context, target domain.Principal, amount uint64) error {
	return dErrors.New(dErrors.CodeInternal, "penalty write refused")
}
