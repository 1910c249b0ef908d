//go:build integration

package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"scholarchain/internal/events"
	"scholarchain/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *events.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = events.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "governance_events"))
}

func newEvent(action events.Action) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		Action:    action,
		Principal: "0xalice",
		Subject:   "0xbob",
		Height:    7,
		Timestamp: time.Now().UTC(),
	}
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()

	s.Require().NoError(s.store.Append(ctx, newEvent(events.ActionUserRegistered)))
	s.Require().NoError(s.store.Append(ctx, newEvent(events.ActionDisputeRaised)))

	registered, err := s.store.ListByAction(ctx, events.ActionUserRegistered)
	s.Require().NoError(err)
	s.Require().Len(registered, 1)
	s.Equal(events.ActionUserRegistered, registered[0].Action)
	s.Equal(uint64(7), registered[0].Height)
}

func (s *PostgresStoreSuite) TestDuplicateIDIgnored() {
	ctx := context.Background()

	event := newEvent(events.ActionReputationVote)
	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event), "replays are idempotent")

	votes, err := s.store.ListByAction(ctx, events.ActionReputationVote)
	s.Require().NoError(err)
	s.Len(votes, 1)
}
