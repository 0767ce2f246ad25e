// Package registry is the minimal agent identity registry. The stake ledger
// consults it, when configured, to reject stakes against unregistered
// agents. IDs are allocated sequentially starting at 1.
package registry

import (
	"context"
	"sync"

	id "agentcred/pkg/domain"
	dErrors "agentcred/pkg/domain-errors"
)

// Lookup is the read surface the stake ledger consults by identifier, never
// by owning reference.
type Lookup interface {
	Exists(ctx context.Context, agentID id.AgentID) (bool, error)
}

// Agent is a registered publishing identity.
type Agent struct {
	ID    id.AgentID
	Owner id.Identity
	URI   string
}

// Service is an in-process registry. A chain-backed implementation would
// satisfy the same Lookup interface.
type Service struct {
	mu     sync.RWMutex
	nextID id.AgentID
	agents map[id.AgentID]Agent
}

func NewService() *Service {
	return &Service{nextID: 1, agents: make(map[id.AgentID]Agent)}
}

// Register allocates the next agent ID for the caller.
func (s *Service) Register(_ context.Context, owner id.Identity, uri string) (Agent, error) {
	if owner.IsZero() {
		return Agent{}, dErrors.New(dErrors.CodeBadRequest, "owner identity is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	agent := Agent{ID: s.nextID, Owner: owner, URI: uri}
	s.agents[agent.ID] = agent
	s.nextID++
	return agent, nil
}

func (s *Service) Exists(_ context.Context, agentID id.AgentID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.agents[agentID]
	return ok, nil
}

// Get returns the registered agent record.
func (s *Service) Get(_ context.Context, agentID id.AgentID) (Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[agentID]
	if !ok {
		return Agent{}, dErrors.Newf(dErrors.CodeNotFound, "agent %d not registered", agentID)
	}
	return agent, nil
}
