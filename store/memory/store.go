// Package memory provides an in-memory Store, primarily for tests and
// single-process demos. It implements the same contract as the durable
// drivers so the engine can be exercised without a real backend.
package memory

import (
	"context"
	"sync"

	credits "github.com/clipforge/credits"
	"github.com/clipforge/credits/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store is a map-backed key-value store.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		values: make(map[string]string),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", credits.ErrStoreClosed
	}
	v, ok := s.values[key]
	if !ok {
		return "", credits.ErrKeyNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return credits.ErrStoreClosed
	}
	s.values[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return credits.ErrStoreClosed
	}
	delete(s.values, key)
	return nil
}

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is still open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return credits.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Subsequent operations fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Len returns the number of stored keys. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
