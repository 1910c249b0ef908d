package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"scholarchain/internal/chain"
	"scholarchain/internal/dispute/models"
	"scholarchain/pkg/domain"
	"scholarchain/pkg/platform/sentinel"
)

type DisputeStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
}

func (s *DisputeStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func TestDisputeStoreSuite(t *testing.T) {
	suite.Run(t, new(DisputeStoreSuite))
}

func (s *DisputeStoreSuite) newDispute() *models.Dispute {
	d, err := models.NewDispute("0xtarget", domain.DisputePlagiarism, 7)
	s.Require().NoError(err)
	return d
}

func (s *DisputeStoreSuite) TestCreateAssignsSequentialIDs() {
	first := s.newDispute()
	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Equal(uint64(0), first.ID)

	second := s.newDispute()
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Equal(uint64(1), second.ID)

	s.Equal(uint64(2), s.store.Count(s.ctx))
}

func (s *DisputeStoreSuite) TestFindReturnsCopy() {
	d := s.newDispute()
	s.Require().NoError(s.store.Create(s.ctx, d))

	got, err := s.store.Find(s.ctx, d.ID)
	s.Require().NoError(err)
	got.VotesYes = 99

	again, err := s.store.Find(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(uint64(0), again.VotesYes)
}

func (s *DisputeStoreSuite) TestSaveUnknownReturnsNotFound() {
	d := s.newDispute()
	d.ID = 42
	err := s.store.Save(s.ctx, d)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *DisputeStoreSuite) TestCreateRollbackReleasesID() {
	exec := chain.NewExecutor(chain.NewClock())
	_ = exec.Execute(s.ctx, "raise", func(ctx context.Context) error {
		s.Require().NoError(s.store.Create(ctx, s.newDispute()))
		return errors.New("abort")
	})

	s.Equal(uint64(0), s.store.Count(s.ctx))
	_, err := s.store.Find(s.ctx, 0)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	kept := s.newDispute()
	s.Require().NoError(s.store.Create(s.ctx, kept))
	s.Equal(uint64(0), kept.ID, "released id is reused")
}

func (s *DisputeStoreSuite) TestSaveRollbackRestoresPriorTally() {
	d := s.newDispute()
	s.Require().NoError(s.store.Create(s.ctx, d))

	exec := chain.NewExecutor(chain.NewClock())
	_ = exec.Execute(s.ctx, "vote", func(ctx context.Context) error {
		d.ApplyVote(true)
		s.Require().NoError(s.store.Save(ctx, d))
		return errors.New("abort")
	})

	got, err := s.store.Find(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(uint64(0), got.VotesYes)
}
