// Package mock provides an in-memory store.Store for tests.
package mock

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/MrWong99/parseltongue/internal/store"
)

// Store keeps functions in a map and records saves.
type Store struct {
	mu sync.Mutex

	// SaveErr, when set, is returned by every Save call.
	SaveErr error

	// Saved records the names passed to Save, in order.
	Saved []string

	sources map[string]string
}

var _ store.Store = (*Store)(nil)

// Save implements store.Store.
func (s *Store) Save(_ context.Context, name, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved = append(s.Saved, name)
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.sources == nil {
		s.sources = make(map[string]string)
	}
	s.sources[name] = source
	return nil
}

// Load implements store.Store.
func (s *Store) Load(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return src, nil
}

// List implements store.Store.
func (s *Store) List(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.sources)), nil
}

// Delete implements store.Store.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[name]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	delete(s.sources, name)
	return nil
}
