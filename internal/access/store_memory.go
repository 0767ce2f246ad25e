package access

import (
	"context"
	"sync"

	id "agentcred/pkg/domain"
)

type roleKey struct {
	identity id.Identity
	role     id.Role
}

// InMemoryStore keeps role grants in process.
type InMemoryStore struct {
	mu     sync.RWMutex
	grants map[roleKey]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{grants: make(map[roleKey]struct{})}
}

func (s *InMemoryStore) Add(_ context.Context, identity id.Identity, role id.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[roleKey{identity, role}] = struct{}{}
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, identity id.Identity, role id.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, roleKey{identity, role})
	return nil
}

func (s *InMemoryStore) Has(_ context.Context, identity id.Identity, role id.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[roleKey{identity, role}]
	return ok, nil
}
