package kvstore

import (
	"context"
	"sync"
)

// In-process key-value store. Contents are lost on restart.
type MemoryKVStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{m: make(map[string]string)}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = value
	return nil
}

func (s *MemoryKVStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, key)
	return nil
}
