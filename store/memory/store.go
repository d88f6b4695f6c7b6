package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/xraph/digigate"
	"github.com/xraph/digigate/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

func New() *Store {
	return &Store{
		values: make(map[string][]byte),
	}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, digigate.ErrStoreClosed
	}
	if v, ok := s.values[key]; ok {
		return slices.Clone(v), nil
	}
	return nil, digigate.ErrRecordNotFound
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return digigate.ErrStoreClosed
	}
	s.values[key] = slices.Clone(value)
	return nil
}

// Delete is a no-op for absent keys.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return digigate.ErrStoreClosed
	}
	delete(s.values, key)
	return nil
}

// Keys lists stored keys with the given prefix in sorted order.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return digigate.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
