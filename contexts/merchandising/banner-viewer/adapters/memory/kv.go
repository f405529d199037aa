package memory

import (
	"context"
	"sync"
	"time"
)

// LocalStore is the in-process durable key-value backend under the crop
// config store, the moral equivalent of browser local storage.
type LocalStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		values: make(map[string][]byte),
	}
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *LocalStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *LocalStore) Now() time.Time {
	return time.Now().UTC()
}
