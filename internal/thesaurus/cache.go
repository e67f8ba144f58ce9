package thesaurus

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Cache memoizes lookups of an underlying [Thesaurus]. Hits and misses are
// both remembered; transport errors are not, so a flaky backend is retried on
// the next lookup.
type Cache struct {
	next Thesaurus

	mu      sync.RWMutex
	entries map[string][]string
}

// Compile-time interface assertion.
var _ Thesaurus = (*Cache)(nil)

// NewCache wraps next with an unbounded in-memory cache.
func NewCache(next Thesaurus) *Cache {
	return &Cache{next: next, entries: make(map[string][]string)}
}

// Synonyms implements [Thesaurus].
func (c *Cache) Synonyms(ctx context.Context, word string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(word))

	c.mu.RLock()
	forms, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		if forms == nil {
			return nil, ErrNotFound
		}
		return forms, nil
	}

	forms, err := c.next.Synonyms(ctx, key)
	if err == nil && len(forms) == 0 {
		err = ErrNotFound
	}
	switch {
	case errors.Is(err, ErrNotFound):
		c.store(key, nil)
		return nil, err
	case err != nil:
		return nil, err
	}
	c.store(key, forms)
	return forms, nil
}

func (c *Cache) store(key string, forms []string) {
	c.mu.Lock()
	c.entries[key] = forms
	c.mu.Unlock()
}
