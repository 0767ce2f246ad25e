// Package reputation implements the signed reputation ledger. Scores are
// unbounded integers, default 0, adjusted only by additive deltas through
// auditor-authorized calls; they are never reset or deleted.
package reputation

import (
	"context"
	"log/slog"

	"agentcred/internal/events"
	"agentcred/internal/platform/locking"
	"agentcred/internal/platform/metrics"
	id "agentcred/pkg/domain"
	"agentcred/pkg/requestcontext"
)

// Subject keys. Users and agents are independent namespaces; the prefix
// keeps them from colliding in one store.
const (
	userPrefix  = "user:"
	agentPrefix = "agent:"
)

// Store persists per-subject scores. Get returns 0 for unseen subjects.
type Store interface {
	Get(ctx context.Context, subject string) (int64, error)
	Put(ctx context.Context, subject string, score int64) error
}

// Authorizer answers role membership questions.
type Authorizer interface {
	RequireRole(ctx context.Context, identity id.Identity, role id.Role) error
}

// Publisher appends ledger events.
type Publisher interface {
	Emit(ctx context.Context, event events.Event) (string, error)
}

// Service is the reputation ledger.
type Service struct {
	store     Store
	authz     Authorizer
	publisher Publisher
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

func NewService(store Store, authz Authorizer, publisher Publisher, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{store: store, authz: authz, publisher: publisher, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AdjustUser applies a signed delta to a user's score. Auditor-only.
func (s *Service) AdjustUser(ctx context.Context, caller id.Identity, user id.Identity, delta int64) (string, error) {
	return s.adjust(ctx, caller, userPrefix+user.String(), 0, delta)
}

// AdjustAgent applies a signed delta to an agent's score. Auditor-only.
func (s *Service) AdjustAgent(ctx context.Context, caller id.Identity, agentID id.AgentID, delta int64) (string, error) {
	return s.adjust(ctx, caller, agentPrefix+agentID.String(), agentID, delta)
}

func (s *Service) adjust(ctx context.Context, caller id.Identity, subject string, agentID id.AgentID, delta int64) (string, error) {
	if err := s.authz.RequireRole(ctx, caller, id.RoleAuditor); err != nil {
		return "", err
	}

	var txID string
	err := s.locks.Do(subject, func() error {
		score, err := s.store.Get(ctx, subject)
		if err != nil {
			return err
		}
		newScore := score + delta
		if err := s.store.Put(ctx, subject, newScore); err != nil {
			return err
		}
		txID, err = s.publisher.Emit(ctx, events.Event{
			Type:      events.TypeReputationUpdated,
			Timestamp: requestcontext.Now(ctx),
			Actor:     caller,
			AgentID:   agentID,
			Subject:   subject,
			Delta:     delta,
			NewScore:  newScore,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.ReputationAdjusted.Inc()
	}
	return txID, nil
}

// UserScore reads a user's score; reading is unrestricted.
func (s *Service) UserScore(ctx context.Context, user id.Identity) (int64, error) {
	return s.store.Get(ctx, userPrefix+user.String())
}

// AgentScore reads an agent's score; reading is unrestricted.
func (s *Service) AgentScore(ctx context.Context, agentID id.AgentID) (int64, error) {
	return s.store.Get(ctx, agentPrefix+agentID.String())
}
