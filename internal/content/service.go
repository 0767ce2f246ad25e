// Package content implements the content lifecycle ledger: publication of
// hash-addressed records and the one-shot audit commit, including the
// economic penalty applied to failed audits.
package content

import (
	"context"
	"log/slog"

	"agentcred/internal/events"
	"agentcred/internal/platform/locking"
	"agentcred/internal/platform/metrics"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
	"agentcred/pkg/requestcontext"
)

// SlashReason is the fixed reason recorded for audit-driven slashes.
const SlashReason = "content audit failed"

// Store persists content records keyed by content hash.
type Store interface {
	Get(ctx context.Context, hash id.ContentHash) (*Record, error)
	Put(ctx context.Context, record *Record) error
	List(ctx context.Context, limit int) ([]Record, error)
}

// Authorizer answers role membership questions for privileged operations.
type Authorizer interface {
	RequireRole(ctx context.Context, identity id.Identity, role id.Role) error
}

// Publisher appends ledger events and returns the transaction identifier.
type Publisher interface {
	Emit(ctx context.Context, event events.Event) (string, error)
}

// Slasher is the stake ledger surface the audit commit needs: the current
// position to size the penalty against, and the slash itself.
type Slasher interface {
	GetStake(ctx context.Context, agentID id.AgentID) (uint64, error)
	Slash(ctx context.Context, caller id.Identity, agentID id.AgentID, amount uint64, reason string) (string, error)
}

// Service is the content ledger. Audit commits on the same hash are
// serialized under the per-hash lock so exactly one of two racing commits
// can win.
type Service struct {
	store     Store
	authz     Authorizer
	publisher Publisher
	slasher   Slasher
	policy    SlashPolicy
	logger    *slog.Logger
	metrics   *metrics.Metrics
	locks     locking.KeyedMutex
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithSlashPolicy overrides the canonical tiered penalty table.
func WithSlashPolicy(p SlashPolicy) ServiceOption {
	return func(s *Service) { s.policy = p }
}

func NewService(store Store, authz Authorizer, publisher Publisher, slasher Slasher, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		authz:     authz,
		publisher: publisher,
		slasher:   slasher,
		policy:    ScoreTierPolicy{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish registers a new content record in the Pending state. The hash is
// claimed for good: a second publication of the same hash is rejected, never
// overwritten.
func (s *Service) Publish(ctx context.Context, author id.Identity, agentID id.AgentID, hash id.ContentHash, uri string) (string, error) {
	var txID string
	err := s.locks.Do(string(hash), func() error {
		existing, err := s.store.Get(ctx, hash)
		if err != nil {
			return err
		}
		if existing != nil {
			return dErrors.New(dErrors.CodeDuplicateContent, "content already published")
		}
		record := &Record{
			ContentHash: hash,
			Author:      author,
			AgentID:     agentID,
			URI:         uri,
			Status:      StatusPending,
			CreatedAt:   requestcontext.Now(ctx),
		}
		if err := s.store.Put(ctx, record); err != nil {
			return err
		}
		txID, err = s.publisher.Emit(ctx, events.Event{
			Type:        events.TypeContentPublished,
			Timestamp:   record.CreatedAt,
			Actor:       author,
			AgentID:     agentID,
			ContentHash: hash,
			URI:         uri,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.ContentPublished.Inc()
	}
	return txID, nil
}

// CommitAudit records the verdict for a pending record and, on failure,
// applies the policy's penalty against the agent's current stake. The
// transition is one-shot: a second commit on the same hash fails and leaves
// the first verdict untouched.
func (s *Service) CommitAudit(ctx context.Context, caller id.Identity, hash id.ContentHash, ok bool, score int) (string, error) {
	if err := s.authz.RequireRole(ctx, caller, id.RoleAuditor); err != nil {
		return "", err
	}

	var (
		txID    string
		agentID id.AgentID
		slashed uint64
	)
	err := s.locks.Do(string(hash), func() error {
		record, err := s.store.Get(ctx, hash)
		if err != nil {
			return err
		}
		if record == nil {
			return dErrors.New(dErrors.CodeContentNotFound, "content not found")
		}
		if record.Status.Terminal() {
			return dErrors.New(dErrors.CodeContentAlreadyAudited, "content already audited")
		}
		if score < 0 || score > 100 {
			return dErrors.Newf(dErrors.CodeInvalidScoreRange, "score %d out of range [0,100]", score)
		}
		agentID = record.AgentID

		// The terminal status lands before the penalty: if the write fails the
		// stake is untouched and a retry re-runs the whole commit, while a
		// slash failure after the write leaves the verdict recorded and a
		// retry stops at ContentAlreadyAudited instead of slashing twice.
		record.Status = StatusAuditedOk
		if !ok {
			record.Status = StatusAuditedFail
		}
		record.AuditScore = score
		record.AuditedAt = requestcontext.Now(ctx)
		if err := s.store.Put(ctx, record); err != nil {
			return err
		}

		if !ok {
			bps := s.policy.TierFor(score)
			staked, err := s.slasher.GetStake(ctx, agentID)
			if err != nil {
				return err
			}
			if amount := SlashAmount(staked, bps); amount > 0 {
				if _, err := s.slasher.Slash(ctx, caller, agentID, amount, SlashReason); err != nil {
					return err
				}
				slashed = amount
			}
		}
		txID, err = s.publisher.Emit(ctx, events.Event{
			Type:        events.TypeContentAudited,
			Timestamp:   record.AuditedAt,
			Actor:       caller,
			AgentID:     agentID,
			ContentHash: hash,
			Ok:          ok,
			Score:       score,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "audit committed",
		"content_hash", hash,
		"agent_id", agentID,
		"ok", ok,
		"score", score,
		"slashed", slashed,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		outcome := "ok"
		if !ok {
			outcome = "fail"
		}
		s.metrics.AuditsCommitted.WithLabelValues(outcome).Inc()
	}
	return txID, nil
}

// GetContent returns the record for a hash.
func (s *Service) GetContent(ctx context.Context, hash id.ContentHash) (*Record, error) {
	record, err := s.store.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, dErrors.New(dErrors.CodeContentNotFound, "content not found")
	}
	return record, nil
}

// ListContent returns up to limit records in publication order.
func (s *Service) ListContent(ctx context.Context, limit int) ([]Record, error) {
	return s.store.List(ctx, limit)
}
