// Package thesaurus defines the dictionary lookup used to widen choice
// keywords with equivalent surface forms.
//
// Lookups are best-effort. A word with no entry yields [ErrNotFound]; callers
// treat that, and any transport failure, as an empty synonym set.
package thesaurus

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a thesaurus has no entry for a word.
var ErrNotFound = errors.New("thesaurus: no entry")

// Thesaurus returns words equivalent in meaning to a given word.
//
// The first element of a non-empty result is the canonical form of the first
// grouping (synset) containing the word. Implementations must be safe for
// concurrent use.
type Thesaurus interface {
	// Synonyms returns the equivalent forms of word. It returns [ErrNotFound]
	// (possibly wrapped) when the word is unknown.
	Synonyms(ctx context.Context, word string) ([]string, error)
}
