package content

import (
	"context"
	"sync"

	id "agentcred/pkg/domain"
)

// InMemoryStore keeps content records in process, preserving publication
// order for listing.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.ContentHash]*Record
	order   []id.ContentHash
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.ContentHash]*Record)}
}

func (s *InMemoryStore) Get(_ context.Context, hash id.ContentHash) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[hash]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *InMemoryStore) Put(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ContentHash]; !ok {
		s.order = append(s.order, record.ContentHash)
	}
	clone := *record
	s.records[record.ContentHash] = &clone
	return nil
}

func (s *InMemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for _, hash := range s.order[:n] {
		out = append(out, *s.records[hash])
	}
	return out, nil
}
