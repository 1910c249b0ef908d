package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"scholarchain/internal/chain"
	"scholarchain/internal/identity/models"
	"scholarchain/pkg/domain"
	"scholarchain/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) newUser(principal string) *models.User {
	u, err := models.NewUser(
		domain.Principal(principal),
		domain.RoleAuthor,
		domain.ContentHash(strings.Repeat("a", domain.HashLength)),
		1000, 1000, 1,
	)
	s.Require().NoError(err)
	return u
}

func (s *UserStoreSuite) TestSaveAndFind() {
	user := s.newUser("0xalice")
	s.Require().NoError(s.store.Save(s.ctx, user))

	found, err := s.store.Find(s.ctx, user.Principal)
	s.Require().NoError(err)
	s.Equal(user.Principal, found.Principal)
	s.Equal([]domain.Role{domain.RoleAuthor}, found.Roles)
}

func (s *UserStoreSuite) TestFindUnknownReturnsNotFound() {
	_, err := s.store.Find(s.ctx, domain.Principal("0xnobody"))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *UserStoreSuite) TestExists() {
	s.False(s.store.Exists(s.ctx, domain.Principal("0xalice")))
	s.Require().NoError(s.store.Save(s.ctx, s.newUser("0xalice")))
	s.True(s.store.Exists(s.ctx, domain.Principal("0xalice")))
}

func (s *UserStoreSuite) TestFindReturnsIsolatedCopy() {
	user := s.newUser("0xalice")
	s.Require().NoError(s.store.Save(s.ctx, user))

	found, err := s.store.Find(s.ctx, user.Principal)
	s.Require().NoError(err)
	found.Reputation = 9999
	found.Roles = append(found.Roles, domain.RoleReviewer)

	again, err := s.store.Find(s.ctx, user.Principal)
	s.Require().NoError(err)
	s.Equal(uint64(0), again.Reputation)
	s.Len(again.Roles, 1)
}

func (s *UserStoreSuite) TestSaveRollsBackCreateInsideAbortedOperation() {
	exec := chain.NewExecutor(chain.NewClock())
	_ = exec.Execute(s.ctx, "create", func(ctx context.Context) error {
		s.Require().NoError(s.store.Save(ctx, s.newUser("0xalice")))
		return errors.New("abort")
	})

	s.False(s.store.Exists(s.ctx, domain.Principal("0xalice")))
}

func (s *UserStoreSuite) TestSaveRollsBackOverwriteInsideAbortedOperation() {
	user := s.newUser("0xalice")
	s.Require().NoError(s.store.Save(s.ctx, user))

	exec := chain.NewExecutor(chain.NewClock())
	_ = exec.Execute(s.ctx, "mutate", func(ctx context.Context) error {
		u, err := s.store.Find(ctx, user.Principal)
		s.Require().NoError(err)
		u.Reputation = 500
		s.Require().NoError(s.store.Save(ctx, u))
		return errors.New("abort")
	})

	found, err := s.store.Find(s.ctx, user.Principal)
	s.Require().NoError(err)
	s.Equal(uint64(0), found.Reputation)
}
