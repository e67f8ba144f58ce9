// Package mock provides a test double for the thesaurus.Thesaurus interface.
//
// Entries maps a lowercase word to the forms returned for it. Words missing
// from Entries yield thesaurus.ErrNotFound. Every lookup is recorded so tests
// can assert that a word was, or was not, looked up.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MrWong99/parseltongue/internal/thesaurus"
)

// Thesaurus is a mock implementation of thesaurus.Thesaurus.
type Thesaurus struct {
	mu sync.Mutex

	// Entries is the canned lookup table.
	Entries map[string][]string

	// Err, if non-nil, is returned by every lookup instead of Entries.
	Err error

	// Calls records every looked-up word in order.
	Calls []string
}

// Synonyms records the call and returns the canned entry.
func (m *Thesaurus) Synonyms(_ context.Context, word string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, word)
	if m.Err != nil {
		return nil, m.Err
	}
	forms, ok := m.Entries[strings.ToLower(word)]
	if !ok {
		return nil, fmt.Errorf("mock: %q: %w", word, thesaurus.ErrNotFound)
	}
	return append([]string(nil), forms...), nil
}

// Looked reports whether word was looked up at least once. Thread-safe.
func (m *Thesaurus) Looked(word string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Calls {
		if c == word {
			return true
		}
	}
	return false
}

// Reset clears all recorded calls. Thread-safe.
func (m *Thesaurus) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// Ensure Thesaurus implements thesaurus.Thesaurus at compile time.
var _ thesaurus.Thesaurus = (*Thesaurus)(nil)
