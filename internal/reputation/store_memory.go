package reputation

import (
	"context"
	"sync"
)

// InMemoryStore keeps reputation scores in process.
type InMemoryStore struct {
	mu     sync.RWMutex
	scores map[string]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{scores: make(map[string]int64)}
}

func (s *InMemoryStore) Get(_ context.Context, subject string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[subject], nil
}

func (s *InMemoryStore) Put(_ context.Context, subject string, score int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[subject] = score
	return nil
}
