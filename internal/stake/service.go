// Package stake implements the collateral ledger: per-agent stake balances
// with owner-gated deposits/withdrawals and auditor-gated slashing.
package stake

import (
	"context"
	"log/slog"
	"sync"

	"agentcred/internal/events"
	"agentcred/internal/platform/locking"
	"agentcred/internal/platform/metrics"
	"agentcred/internal/registry"
	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
	"agentcred/pkg/requestcontext"
)

// Authorizer answers role membership questions for privileged operations.
type Authorizer interface {
	RequireRole(ctx context.Context, identity id.Identity, role id.Role) error
}

// Publisher appends ledger events and returns the transaction identifier.
type Publisher interface {
	Emit(ctx context.Context, event events.Event) (string, error)
}

// Service is the stake ledger. All balance mutations run under the per-agent
// lock so racing calls never jointly overdraw an entry.
type Service struct {
	store     Store
	authz     Authorizer
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	locks     locking.KeyedMutex

	// Deployment configuration, admin-mutable at runtime.
	cfgMu    sync.RWMutex
	treasury id.Identity
	registry registry.Lookup
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithOwnerRegistry sets the identity registry consulted on Stake.
func WithOwnerRegistry(lookup registry.Lookup) ServiceOption {
	return func(s *Service) { s.registry = lookup }
}

func NewService(store Store, authz Authorizer, publisher Publisher, treasury id.Identity, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		authz:     authz,
		publisher: publisher,
		treasury:  treasury,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stake deposits collateral against an agent. The first staker becomes the
// recorded owner; afterwards only the owner may add to the position.
func (s *Service) Stake(ctx context.Context, caller id.Identity, agentID id.AgentID, amount int64) (string, error) {
	if amount <= 0 {
		return "", dErrors.New(dErrors.CodeZeroAmount, "amount must be greater than 0")
	}
	if lookup := s.ownerRegistry(); lookup != nil {
		registered, err := lookup.Exists(ctx, agentID)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
		}
		if !registered {
			return "", dErrors.Newf(dErrors.CodeAgentNotRegistered, "agent %d not registered", agentID)
		}
	}

	var txID string
	err := s.locks.Do(agentID.String(), func() error {
		entry, err := s.store.GetEntry(ctx, agentID)
		if err != nil {
			return err
		}
		if entry == nil {
			entry = &Entry{AgentID: agentID, Owner: caller}
		} else if entry.Owner != caller {
			return dErrors.New(dErrors.CodeNotOwner, "only the agent owner can stake")
		}
		entry.StakedAmount += uint64(amount)
		if err := s.store.PutEntry(ctx, entry); err != nil {
			return err
		}
		txID, err = s.publisher.Emit(ctx, events.Event{
			Type:      events.TypeStaked,
			Timestamp: requestcontext.Now(ctx),
			Actor:     caller,
			AgentID:   agentID,
			Amount:    uint64(amount),
		})
		return err
	})
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.StakeOperations.WithLabelValues("stake").Inc()
	}
	return txID, nil
}

// Unstake returns collateral to the recorded owner.
func (s *Service) Unstake(ctx context.Context, caller id.Identity, agentID id.AgentID, amount int64) (string, error) {
	if amount <= 0 {
		return "", dErrors.New(dErrors.CodeZeroAmount, "amount must be greater than 0")
	}

	var txID string
	err := s.locks.Do(agentID.String(), func() error {
		entry, err := s.store.GetEntry(ctx, agentID)
		if err != nil {
			return err
		}
		if entry == nil || entry.Owner != caller {
			return dErrors.New(dErrors.CodeNotOwner, "only the agent owner can unstake")
		}
		if uint64(amount) > entry.StakedAmount {
			return dErrors.New(dErrors.CodeInsufficientStake, "insufficient stake")
		}
		entry.StakedAmount -= uint64(amount)
		if err := s.store.PutEntry(ctx, entry); err != nil {
			return err
		}
		if err := s.store.Credit(ctx, caller, uint64(amount)); err != nil {
			return err
		}
		txID, err = s.publisher.Emit(ctx, events.Event{
			Type:      events.TypeUnstaked,
			Timestamp: requestcontext.Now(ctx),
			Actor:     caller,
			AgentID:   agentID,
			Amount:    uint64(amount),
		})
		return err
	})
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.StakeOperations.WithLabelValues("unstake").Inc()
	}
	return txID, nil
}

// Slash moves collateral from the agent's stake to the treasury. Only
// auditors may call it, and it can never drive the balance below zero.
func (s *Service) Slash(ctx context.Context, caller id.Identity, agentID id.AgentID, amount uint64, reason string) (string, error) {
	if amount == 0 {
		return "", dErrors.New(dErrors.CodeZeroAmount, "amount must be greater than 0")
	}
	if err := s.authz.RequireRole(ctx, caller, id.RoleAuditor); err != nil {
		return "", err
	}

	var txID string
	err := s.locks.Do(agentID.String(), func() error {
		entry, err := s.store.GetEntry(ctx, agentID)
		if err != nil {
			return err
		}
		if entry == nil {
			entry = &Entry{AgentID: agentID}
		}
		if amount > entry.StakedAmount {
			return dErrors.New(dErrors.CodeInsufficientStake, "insufficient stake to slash")
		}
		entry.StakedAmount -= amount
		if err := s.store.PutEntry(ctx, entry); err != nil {
			return err
		}
		if err := s.store.Credit(ctx, s.treasuryAccount(), amount); err != nil {
			return err
		}
		txID, err = s.publisher.Emit(ctx, events.Event{
			Type:      events.TypeSlashed,
			Timestamp: requestcontext.Now(ctx),
			Actor:     caller,
			AgentID:   agentID,
			Amount:    amount,
			Reason:    reason,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "stake slashed",
		"agent_id", agentID,
		"amount", amount,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.SlashesApplied.Inc()
		s.metrics.SlashedAmount.Add(float64(amount))
	}
	return txID, nil
}

// SetTreasury changes the account that receives slashed collateral.
func (s *Service) SetTreasury(ctx context.Context, caller, treasury id.Identity) error {
	if err := s.authz.RequireRole(ctx, caller, id.RoleAdmin); err != nil {
		return err
	}
	if treasury.IsZero() {
		return dErrors.New(dErrors.CodeInvalidTreasury, "invalid treasury address")
	}
	s.cfgMu.Lock()
	s.treasury = treasury
	s.cfgMu.Unlock()
	return nil
}

// SetOwnerRegistry configures the identity registry consulted on Stake. A
// nil lookup disables the registration check.
func (s *Service) SetOwnerRegistry(ctx context.Context, caller id.Identity, lookup registry.Lookup) error {
	if err := s.authz.RequireRole(ctx, caller, id.RoleAdmin); err != nil {
		return err
	}
	s.cfgMu.Lock()
	s.registry = lookup
	s.cfgMu.Unlock()
	return nil
}

// GetStake returns the agent's current staked amount; unseen agents hold 0.
func (s *Service) GetStake(ctx context.Context, agentID id.AgentID) (uint64, error) {
	entry, err := s.store.GetEntry(ctx, agentID)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}
	return entry.StakedAmount, nil
}

// GetOwner returns the recorded owner, or the zero identity if none.
func (s *Service) GetOwner(ctx context.Context, agentID id.AgentID) (id.Identity, error) {
	entry, err := s.store.GetEntry(ctx, agentID)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", nil
	}
	return entry.Owner, nil
}

// AccountBalance returns the credited balance of an identity account, e.g.
// the treasury's accumulated slashes.
func (s *Service) AccountBalance(ctx context.Context, identity id.Identity) (uint64, error) {
	return s.store.Balance(ctx, identity)
}

func (s *Service) treasuryAccount() id.Identity {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.treasury
}

func (s *Service) ownerRegistry() registry.Lookup {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.registry
}
