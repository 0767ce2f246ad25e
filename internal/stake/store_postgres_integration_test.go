//go:build integration

package stake_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"agentcred/internal/stake"
	id "agentcred/pkg/domain"
	"agentcred/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *stake.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = stake.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "stake_entries", "account_balances")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestEntryRoundtrip() {
	ctx := context.Background()

	entry, err := s.store.GetEntry(ctx, 1)
	s.Require().NoError(err)
	s.Nil(entry, "unseen agents have no entry")

	err = s.store.PutEntry(ctx, &stake.Entry{AgentID: 1, Owner: "alice", StakedAmount: 1000})
	s.Require().NoError(err)

	entry, err = s.store.GetEntry(ctx, 1)
	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.Equal(id.Identity("alice"), entry.Owner)
	s.Equal(uint64(1000), entry.StakedAmount)

	// Upsert replaces the position.
	err = s.store.PutEntry(ctx, &stake.Entry{AgentID: 1, Owner: "alice", StakedAmount: 850})
	s.Require().NoError(err)
	entry, err = s.store.GetEntry(ctx, 1)
	s.Require().NoError(err)
	s.Equal(uint64(850), entry.StakedAmount)
}

func (s *PostgresStoreSuite) TestCreditAccumulates() {
	ctx := context.Background()

	balance, err := s.store.Balance(ctx, "treasury")
	s.Require().NoError(err)
	s.Equal(uint64(0), balance)

	s.Require().NoError(s.store.Credit(ctx, "treasury", 150))
	s.Require().NoError(s.store.Credit(ctx, "treasury", 50))

	balance, err = s.store.Balance(ctx, "treasury")
	s.Require().NoError(err)
	s.Equal(uint64(200), balance)
}

// TestConcurrentCredits verifies the balance upsert is additive under
// concurrency, not last-write-wins.
func (s *PostgresStoreSuite) TestConcurrentCredits() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			s.NoError(s.store.Credit(ctx, "treasury", 10))
		}()
	}
	wg.Wait()

	balance, err := s.store.Balance(ctx, "treasury")
	s.Require().NoError(err)
	s.Equal(uint64(goroutines*10), balance)
}
