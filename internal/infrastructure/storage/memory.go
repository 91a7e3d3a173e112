package storage

import (
	"context"
	"sync"

	"github.com/jhoicas/panel-clientes/internal/domain/repository"
)

type memoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemory almacenamiento en memoria; no sobrevive reinicios del proceso.
func NewMemory() repository.KeyValueStore {
	return &memoryStore{items: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.items, k)
	}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Close(context.Context) error { return nil }
