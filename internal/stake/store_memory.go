package stake

import (
	"context"
	"sync"

	id "agentcred/pkg/domain"
)

// InMemoryStore keeps stake entries and account balances in process.
type InMemoryStore struct {
	mu       sync.RWMutex
	entries  map[id.AgentID]Entry
	accounts map[id.Identity]uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries:  make(map[id.AgentID]Entry),
		accounts: make(map[id.Identity]uint64),
	}
}

func (s *InMemoryStore) GetEntry(_ context.Context, agentID id.AgentID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[agentID]; ok {
		copied := entry
		return &copied, nil
	}
	return nil, nil
}

func (s *InMemoryStore) PutEntry(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.AgentID] = *entry
	return nil
}

func (s *InMemoryStore) Credit(_ context.Context, identity id.Identity, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[identity] += amount
	return nil
}

func (s *InMemoryStore) Balance(_ context.Context, identity id.Identity) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[identity], nil
}
