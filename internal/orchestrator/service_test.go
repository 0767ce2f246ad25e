package orchestrator

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentcred/internal/access"
	"agentcred/internal/content"
	"agentcred/internal/events"
	"agentcred/internal/registry"
	"agentcred/internal/reputation"
	"agentcred/internal/stake"
	"agentcred/internal/verdict"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

const (
	admin        = id.Identity("admin")
	orchestrator = id.Identity("orchestrator")
	alice        = id.Identity("alice")
	treasury     = id.Identity("treasury")
	agentID      = id.AgentID(1)
)

type fixture struct {
	svc        *Service
	stake      *stake.Service
	reputation *reputation.Service
	userScore  func(t *testing.T) int64
	agentScore func(t *testing.T) int64
}

type stubVerifier struct {
	verdict verdict.Verdict
	err     error
	calls   int
}

func (s *stubVerifier) Verify(context.Context, verdict.Request) (verdict.Verdict, error) {
	s.calls++
	return s.verdict, s.err
}

func newFixture(t *testing.T, opts ...ServiceOption) *fixture {
	t.Helper()
	ctx := context.Background()
	authz := access.NewService(access.NewInMemoryStore(), admin)
	require.NoError(t, authz.Grant(ctx, admin, orchestrator, id.RoleAuditor))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	pub := events.NewPublisher(events.NewInMemoryStore(), logger)

	stakeSvc := stake.NewService(stake.NewInMemoryStore(), authz, pub, treasury, logger)
	repSvc := reputation.NewService(reputation.NewInMemoryStore(), authz, pub, logger)
	contentSvc := content.NewService(content.NewInMemoryStore(), authz, pub, stakeSvc, logger)
	fallback := verdict.NewFallback("unsafe", 20, 80, 95)

	f := &fixture{
		svc:        NewService(contentSvc, repSvc, stakeSvc, fallback, orchestrator, logger, opts...),
		stake:      stakeSvc,
		reputation: repSvc,
	}
	f.userScore = func(t *testing.T) int64 {
		t.Helper()
		score, err := repSvc.UserScore(ctx, alice)
		require.NoError(t, err)
		return score
	}
	f.agentScore = func(t *testing.T) int64 {
		t.Helper()
		score, err := repSvc.AgentScore(ctx, agentID)
		require.NoError(t, err)
		return score
	}
	return f
}

func TestSubmitCleanContentViaFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stake.Stake(ctx, alice, agentID, 1000)
	require.NoError(t, err)

	res, err := f.svc.SubmitAndAudit(ctx, alice, agentID, "a wholesome haiku")
	require.NoError(t, err)

	assert.True(t, res.FallbackUsed)
	assert.True(t, res.Verdict.Ok)
	assert.GreaterOrEqual(t, res.Verdict.Score, 80)
	assert.LessOrEqual(t, res.Verdict.Score, 95)
	assert.Equal(t, content.StatusAuditedOk, res.Record.Status)
	assert.NotEmpty(t, res.PublishTx)
	assert.NotEmpty(t, res.AuditTx)
	assert.NotEqual(t, res.PublishTx, res.AuditTx)

	assert.Equal(t, uint64(1000), res.StakeBefore)
	assert.Equal(t, uint64(1000), res.StakeAfter, "passing audits never slash")
	assert.Equal(t, int64(1), f.userScore(t))
	assert.Equal(t, int64(2), f.agentScore(t))
}

func TestSubmitUnsafeContentSlashesHard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stake.Stake(ctx, alice, agentID, 1000)
	require.NoError(t, err)

	res, err := f.svc.SubmitAndAudit(ctx, alice, agentID, "this is unsafe content")
	require.NoError(t, err)

	assert.True(t, res.FallbackUsed)
	assert.False(t, res.Verdict.Ok)
	assert.Equal(t, 20, res.Verdict.Score)
	assert.Equal(t, content.StatusAuditedFail, res.Record.Status)

	// Score 20 is the hard-failure tier: 15% of 1000.
	assert.Equal(t, uint64(1000), res.StakeBefore)
	assert.Equal(t, uint64(850), res.StakeAfter)
	assert.Equal(t, int64(-2), res.UserDelta)
	assert.Equal(t, int64(-4), res.AgentDelta)
	assert.Equal(t, int64(-2), f.userScore(t))
	assert.Equal(t, int64(-4), f.agentScore(t))

	balance, err := f.stake.AccountBalance(ctx, treasury)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), balance)
}

func TestSubmitPrefersExternalVerifier(t *testing.T) {
	stub := &stubVerifier{verdict: verdict.Verdict{Ok: false, Score: 30}}
	f := newFixture(t, WithVerifier(stub))
	ctx := context.Background()

	_, err := f.stake.Stake(ctx, alice, agentID, 1000)
	require.NoError(t, err)

	res, err := f.svc.SubmitAndAudit(ctx, alice, agentID, "borderline content")
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, 30, res.Verdict.Score)
	// Soft failure tier: 5% of 1000.
	assert.Equal(t, uint64(950), res.StakeAfter)
	assert.Equal(t, int64(-1), res.UserDelta)
	assert.Equal(t, int64(-2), res.AgentDelta)
}

func TestSubmitFallsBackWhenVerifierDown(t *testing.T) {
	stub := &stubVerifier{err: dErrors.New(dErrors.CodeVerifierUnavailable, "connection refused")}
	f := newFixture(t, WithVerifier(stub))
	ctx := context.Background()

	res, err := f.svc.SubmitAndAudit(ctx, alice, agentID, "fine content")
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.True(t, res.FallbackUsed)
	assert.True(t, res.Verdict.Ok)
}

func TestSubmitSameContentTwiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitAndAudit(ctx, alice, agentID, "original")
	require.NoError(t, err)

	_, err = f.svc.SubmitAndAudit(ctx, alice, agentID, "original")
	assert.True(t, dErrors.Is(err, dErrors.CodeDuplicateContent))
}

func TestSubmitRequiresRegisteredAgent(t *testing.T) {
	reg := registry.NewService()
	f := newFixture(t, WithRegistry(reg))
	ctx := context.Background()

	_, err := f.svc.SubmitAndAudit(ctx, alice, 42, "from a ghost agent")
	assert.True(t, dErrors.Is(err, dErrors.CodeAgentNotRegistered))

	agent, err := reg.Register(ctx, alice, "https://agents.example/meta.json")
	require.NoError(t, err)

	_, err = f.svc.SubmitAndAudit(ctx, alice, agent.ID, "from a real agent")
	require.NoError(t, err)
}

func TestBalancedDeltaPolicyTable(t *testing.T) {
	policy := NewBalancedDeltaPolicy()

	user, agent := policy.DeltaFor(true, 90)
	assert.Equal(t, int64(1), user)
	assert.Equal(t, int64(2), agent)

	user, agent = policy.DeltaFor(false, 40)
	assert.Equal(t, int64(-1), user)
	assert.Equal(t, int64(-2), agent)

	user, agent = policy.DeltaFor(false, 20)
	assert.Equal(t, int64(-2), user)
	assert.Equal(t, int64(-4), agent)
}
