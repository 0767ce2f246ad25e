package reputation

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
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

const (
	admin   = id.Identity("admin")
	auditor = id.Identity("auditor")
	user    = id.Identity("alice")
)

func newService(t *testing.T) (*Service, *events.InMemoryStore) {
	t.Helper()
	authz := access.NewService(access.NewInMemoryStore(), admin)
	require.NoError(t, authz.Grant(context.Background(), admin, auditor, id.RoleAuditor))

	eventStore := events.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	pub := events.NewPublisher(eventStore, logger)
	return NewService(NewInMemoryStore(), authz, pub, logger), eventStore
}

func TestUnseenSubjectsDefaultToZero(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	score, err := svc.UserScore(ctx, id.Identity("nobody"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), score)

	score, err = svc.AgentScore(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), score)
}

func TestAdjustUserAccumulates(t *testing.T) {
	svc, eventStore := newService(t)
	ctx := context.Background()

	txID, err := svc.AdjustUser(ctx, auditor, user, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	_, err = svc.AdjustUser(ctx, auditor, user, -3)
	require.NoError(t, err)

	score, err := svc.UserScore(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(7), score)

	evts, err := eventStore.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, evts, 2)
	assert.Equal(t, events.TypeReputationUpdated, evts[1].Type)
	assert.Equal(t, int64(-3), evts[1].Delta)
	assert.Equal(t, int64(7), evts[1].NewScore)
}

func TestAdjustAgentGoesNegative(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AdjustAgent(ctx, auditor, 1, -5)
	require.NoError(t, err)

	score, err := svc.AgentScore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), score, "scores have no floor")
}

func TestUserAndAgentNamespacesAreIndependent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// Subject "7" as a user identity and agent 7 must not share a score.
	_, err := svc.AdjustUser(ctx, auditor, id.Identity("7"), 10)
	require.NoError(t, err)
	_, err = svc.AdjustAgent(ctx, auditor, 7, -2)
	require.NoError(t, err)

	userScore, err := svc.UserScore(ctx, id.Identity("7"))
	require.NoError(t, err)
	agentScore, err := svc.AgentScore(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(10), userScore)
	assert.Equal(t, int64(-2), agentScore)
}

func TestAdjustRequiresAuditor(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AdjustUser(ctx, user, user, 100)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	_, err = svc.AdjustAgent(ctx, user, 1, 100)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	score, err := svc.UserScore(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(0), score, "failed adjustments must not change state")
}

func TestConcurrentAdjustmentsSumExactly(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.AdjustAgent(ctx, auditor, 1, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	score, err := svc.AgentScore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines), score)
}
