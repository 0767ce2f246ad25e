// Package orchestrator drives the end-to-end audit pipeline: hash and
// publish incoming content, obtain a verdict, commit it, and settle the
// reputation consequences.
package orchestrator

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agentcred/internal/content"
	"agentcred/internal/platform/metrics"
	"agentcred/internal/registry"
	"agentcred/internal/verdict"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
	"agentcred/pkg/requestcontext"
)

const tracerName = "agentcred/orchestrator"

// ContentLedger is the content surface the pipeline drives.
type ContentLedger interface {
	Publish(ctx context.Context, author id.Identity, agentID id.AgentID, hash id.ContentHash, uri string) (string, error)
	CommitAudit(ctx context.Context, caller id.Identity, hash id.ContentHash, ok bool, score int) (string, error)
	GetContent(ctx context.Context, hash id.ContentHash) (*content.Record, error)
}

// ReputationLedger applies verdict-driven score adjustments.
type ReputationLedger interface {
	AdjustUser(ctx context.Context, caller, user id.Identity, delta int64) (string, error)
	AdjustAgent(ctx context.Context, caller id.Identity, agentID id.AgentID, delta int64) (string, error)
}

// Staker reads stake positions so results can report the economic outcome.
type Staker interface {
	GetStake(ctx context.Context, agentID id.AgentID) (uint64, error)
}

// Verifier returns an external verdict for submitted content.
type Verifier interface {
	Verify(ctx context.Context, req verdict.Request) (verdict.Verdict, error)
}

// Result is the full outcome of one submission.
type Result struct {
	Record       content.Record
	Verdict      verdict.Verdict
	PublishTx    string
	AuditTx      string
	FallbackUsed bool
	UserDelta    int64
	AgentDelta   int64
	StakeBefore  uint64
	StakeAfter   uint64
}

// Service runs submissions through the pipeline under its own privileged
// identity, which must hold the auditor role.
type Service struct {
	content    ContentLedger
	reputation ReputationLedger
	staker     Staker
	fallback   *verdict.Fallback
	identity   id.Identity
	logger     *slog.Logger

	verifier Verifier
	registry registry.Lookup
	policy   DeltaPolicy
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithVerifier sets the external verifier client. Without one every
// submission is scored by the local fallback.
func WithVerifier(v Verifier) ServiceOption {
	return func(s *Service) { s.verifier = v }
}

// WithRegistry requires submitted agents to be registered.
func WithRegistry(lookup registry.Lookup) ServiceOption {
	return func(s *Service) { s.registry = lookup }
}

// WithDeltaPolicy overrides the balanced reputation deltas.
func WithDeltaPolicy(p DeltaPolicy) ServiceOption {
	return func(s *Service) { s.policy = p }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(contentLedger ContentLedger, reputation ReputationLedger, staker Staker, fallback *verdict.Fallback, identity id.Identity, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		content:    contentLedger,
		reputation: reputation,
		staker:     staker,
		fallback:   fallback,
		identity:   identity,
		logger:     logger,
		policy:     NewBalancedDeltaPolicy(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitAndAudit publishes raw content on behalf of caller and settles the
// audit in one pass. The caller's and agent's reputations move per the
// delta policy; failed verdicts slash through the content ledger.
func (s *Service) SubmitAndAudit(ctx context.Context, caller id.Identity, agentID id.AgentID, payload string) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "SubmitAndAudit",
		trace.WithAttributes(attribute.Int64("agent.id", int64(agentID))))
	defer span.End()

	if s.registry != nil {
		registered, err := s.registry.Exists(ctx, agentID)
		if err != nil {
			return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
		}
		if !registered {
			return Result{}, dErrors.Newf(dErrors.CodeAgentNotRegistered, "agent %d not registered", agentID)
		}
	}

	hash := id.HashContent(payload)
	uri := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
	span.SetAttributes(attribute.String("content.hash", string(hash)))

	publishTx, err := s.content.Publish(ctx, caller, agentID, hash, uri)
	if err != nil {
		return Result{}, err
	}

	v, fallbackUsed := s.verdictFor(ctx, hash, uri, payload)
	span.SetAttributes(
		attribute.Bool("verdict.ok", v.Ok),
		attribute.Int("verdict.score", v.Score),
		attribute.Bool("verdict.fallback", fallbackUsed),
	)

	stakeBefore, err := s.staker.GetStake(ctx, agentID)
	if err != nil {
		return Result{}, err
	}

	auditTx, err := s.content.CommitAudit(ctx, s.identity, hash, v.Ok, v.Score)
	if err != nil {
		return Result{}, err
	}

	userDelta, agentDelta := s.policy.DeltaFor(v.Ok, v.Score)
	if _, err := s.reputation.AdjustUser(ctx, s.identity, caller, userDelta); err != nil {
		return Result{}, err
	}
	if _, err := s.reputation.AdjustAgent(ctx, s.identity, agentID, agentDelta); err != nil {
		return Result{}, err
	}

	stakeAfter, err := s.staker.GetStake(ctx, agentID)
	if err != nil {
		return Result{}, err
	}
	record, err := s.content.GetContent(ctx, hash)
	if err != nil {
		return Result{}, err
	}

	s.logger.InfoContext(ctx, "submission audited",
		"content_hash", hash,
		"agent_id", agentID,
		"ok", v.Ok,
		"score", v.Score,
		"fallback", fallbackUsed,
		"slashed", stakeBefore-stakeAfter,
		"request_id", requestcontext.RequestID(ctx),
	)
	return Result{
		Record:       *record,
		Verdict:      v,
		PublishTx:    publishTx,
		AuditTx:      auditTx,
		FallbackUsed: fallbackUsed,
		UserDelta:    userDelta,
		AgentDelta:   agentDelta,
		StakeBefore:  stakeBefore,
		StakeAfter:   stakeAfter,
	}, nil
}

// verdictFor asks the external verifier first and falls back to the local
// heuristic when it is unavailable. Fallback never fails.
func (s *Service) verdictFor(ctx context.Context, hash id.ContentHash, uri string, payload string) (verdict.Verdict, bool) {
	if s.verifier == nil {
		return s.fallback.Evaluate(payload), true
	}

	start := time.Now()
	v, err := s.verifier.Verify(ctx, verdict.Request{
		ContentHash: hash,
		URI:         uri,
		Content:     payload,
	})
	if s.metrics != nil {
		s.metrics.VerifierLatency.Observe(time.Since(start).Seconds())
	}
	if err == nil {
		return v, false
	}

	s.logger.WarnContext(ctx, "verifier unavailable, using fallback heuristic",
		"content_hash", hash,
		"error", err,
	)
	if s.metrics != nil {
		s.metrics.VerifierFallbacks.Inc()
	}
	return s.fallback.Evaluate(payload), true
}
