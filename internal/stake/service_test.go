package stake

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentcred/internal/access"
	"agentcred/internal/events"
	"agentcred/internal/registry"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

const (
	admin    = id.Identity("admin")
	auditor  = id.Identity("auditor")
	user     = id.Identity("user")
	treasury = id.Identity("treasury")
)

type fixture struct {
	svc    *Service
	authz  *access.Service
	events *events.InMemoryStore
}

func newFixture(t *testing.T, opts ...ServiceOption) *fixture {
	t.Helper()
	authz := access.NewService(access.NewInMemoryStore(), admin)
	require.NoError(t, authz.Grant(context.Background(), admin, auditor, id.RoleAuditor))

	eventStore := events.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	pub := events.NewPublisher(eventStore, logger)

	return &fixture{
		svc:    NewService(NewInMemoryStore(), authz, pub, treasury, logger, opts...),
		authz:  authz,
		events: eventStore,
	}
}

func TestStakeThenUnstakeRestoresBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txID, err := f.svc.Stake(ctx, user, 1, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	staked, err := f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), staked)

	_, err = f.svc.Unstake(ctx, user, 1, 100)
	require.NoError(t, err)

	staked, err = f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), staked, "stake then unstake restores the pre-stake amount")

	// The withdrawn amount lands back on the caller's account.
	balance, err := f.svc.AccountBalance(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)
}

func TestFirstStakerBecomesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Stake(ctx, user, 1, 50)
	require.NoError(t, err)

	owner, err := f.svc.GetOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, user, owner)

	// A different identity cannot add to the position.
	_, err = f.svc.Stake(ctx, id.Identity("intruder"), 1, 50)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotOwner))
}

func TestStakeRejectsZeroAmount(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Stake(context.Background(), user, 1, 0)
	assert.True(t, dErrors.Is(err, dErrors.CodeZeroAmount))

	_, err = f.svc.Stake(context.Background(), user, 1, -5)
	assert.True(t, dErrors.Is(err, dErrors.CodeZeroAmount))
}

func TestUnstakeGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Stake(ctx, user, 1, 100)
	require.NoError(t, err)

	t.Run("more than staked", func(t *testing.T) {
		_, err := f.svc.Unstake(ctx, user, 1, 1000)
		assert.True(t, dErrors.Is(err, dErrors.CodeInsufficientStake))
	})

	t.Run("non-owner", func(t *testing.T) {
		_, err := f.svc.Unstake(ctx, auditor, 1, 10)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotOwner))
	})

	staked, err := f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), staked, "failed unstakes must not move the balance")
}

func TestSlashMovesStakeToTreasury(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Stake(ctx, user, 1, 1000)
	require.NoError(t, err)

	txID, err := f.svc.Slash(ctx, auditor, 1, 150, "bad content")
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	staked, err := f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(850), staked)

	balance, err := f.svc.AccountBalance(ctx, treasury)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), balance, "slashed amount moves to the treasury")

	evts, err := f.events.ListByAgent(ctx, 1)
	require.NoError(t, err)
	last := evts[len(evts)-1]
	assert.Equal(t, events.TypeSlashed, last.Type)
	assert.Equal(t, "bad content", last.Reason)
	assert.Equal(t, uint64(150), last.Amount)
}

func TestSlashEntireStakeThenOverdraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Stake(ctx, user, 1, 500)
	require.NoError(t, err)

	_, err = f.svc.Slash(ctx, auditor, 1, 500, "total")
	require.NoError(t, err)

	staked, err := f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), staked)

	_, err = f.svc.Slash(ctx, auditor, 1, 1, "overdraft")
	assert.True(t, dErrors.Is(err, dErrors.CodeInsufficientStake))
}

func TestSlashRejectsZeroAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A zero slash against a never-staked agent must not write an ownerless
	// entry that would lock out the first real staker.
	_, err := f.svc.Slash(ctx, auditor, 7, 0, "noop")
	assert.True(t, dErrors.Is(err, dErrors.CodeZeroAmount))

	evts, err := f.events.ListByAgent(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, evts, "rejected slashes emit no event")

	_, err = f.svc.Stake(ctx, user, 7, 100)
	require.NoError(t, err)

	owner, err := f.svc.GetOwner(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, user, owner, "first staker still becomes the owner")
}

func TestSlashRequiresAuditorRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Stake(ctx, user, 1, 1000)
	require.NoError(t, err)

	_, err = f.svc.Slash(ctx, user, 1, 10, "nope")
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	staked, err := f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), staked)
}

func TestOwnerRegistryGate(t *testing.T) {
	reg := registry.NewService()
	f := newFixture(t, WithOwnerRegistry(reg))
	ctx := context.Background()

	_, err := f.svc.Stake(ctx, user, 999, 10)
	assert.True(t, dErrors.Is(err, dErrors.CodeAgentNotRegistered))

	agent, err := reg.Register(ctx, user, "ipfs://agent-card")
	require.NoError(t, err)

	_, err = f.svc.Stake(ctx, user, agent.ID, 10)
	assert.NoError(t, err)
}

func TestSetOwnerRegistryIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.SetOwnerRegistry(ctx, user, registry.NewService())
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	err = f.svc.SetOwnerRegistry(ctx, admin, registry.NewService())
	assert.NoError(t, err)

	// Newly configured registry is consulted immediately.
	_, err = f.svc.Stake(ctx, user, 42, 10)
	assert.True(t, dErrors.Is(err, dErrors.CodeAgentNotRegistered))
}

func TestSetTreasury(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("admin only", func(t *testing.T) {
		err := f.svc.SetTreasury(ctx, user, id.Identity("vault"))
		assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects empty treasury", func(t *testing.T) {
		err := f.svc.SetTreasury(ctx, admin, id.Identity(""))
		assert.True(t, dErrors.Is(err, dErrors.CodeInvalidTreasury))
	})

	t.Run("redirects slashes", func(t *testing.T) {
		require.NoError(t, f.svc.SetTreasury(ctx, admin, id.Identity("vault")))
		_, err := f.svc.Stake(ctx, user, 1, 100)
		require.NoError(t, err)
		_, err = f.svc.Slash(ctx, auditor, 1, 40, "test")
		require.NoError(t, err)

		balance, err := f.svc.AccountBalance(ctx, id.Identity("vault"))
		require.NoError(t, err)
		assert.Equal(t, uint64(40), balance)
	})
}

func TestConcurrentSlashesNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Stake(ctx, user, 1, 1000)
	require.NoError(t, err)

	// Two racing slashes of 600 jointly exceed the balance; exactly one may win.
	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Slash(ctx, auditor, 1, 600, "race")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, insufficient int
	for err := range results {
		if err == nil {
			successes++
		} else if dErrors.Is(err, dErrors.CodeInsufficientStake) {
			insufficient++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, insufficient)

	staked, err := f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), staked)
}

func TestConcurrentStakesSumExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.Stake(ctx, user, 1, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	staked, err := f.svc.GetStake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(goroutines*10), staked)
}
