package resilience

import (
	"context"
	"errors"

	"github.com/MrWong99/parseltongue/internal/thesaurus"
)

// ThesaurusFallback implements [thesaurus.Thesaurus] over several backends,
// typically a remote dictionary followed by a local YAML file.
//
// A miss ([thesaurus.ErrNotFound]) moves on to the next backend without
// counting against the missing backend's breaker. Context cancellation is
// likewise not held against a backend.
type ThesaurusFallback struct {
	group *FallbackGroup[thesaurus.Thesaurus]
}

// Compile-time interface assertion.
var _ thesaurus.Thesaurus = (*ThesaurusFallback)(nil)

// NewThesaurusFallback creates a [ThesaurusFallback] with primary as the
// preferred backend. cfg.CircuitBreaker.IsFailure is overridden.
func NewThesaurusFallback(primary thesaurus.Thesaurus, primaryName string, cfg FallbackConfig) *ThesaurusFallback {
	cfg.CircuitBreaker.IsFailure = isThesaurusFailure
	return &ThesaurusFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers another backend.
func (f *ThesaurusFallback) AddFallback(name string, t thesaurus.Thesaurus) {
	f.group.AddFallback(name, t)
}

// Backends returns the backend names in try order.
func (f *ThesaurusFallback) Backends() []string { return f.group.Names() }

// Synonyms returns the first non-empty answer. If the last backend tried
// reported a miss the error matches [thesaurus.ErrNotFound].
func (f *ThesaurusFallback) Synonyms(ctx context.Context, word string) ([]string, error) {
	return ExecuteWithResult(f.group, func(t thesaurus.Thesaurus) ([]string, error) {
		forms, err := t.Synonyms(ctx, word)
		if err == nil && len(forms) == 0 {
			return nil, thesaurus.ErrNotFound
		}
		return forms, err
	})
}

func isThesaurusFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, thesaurus.ErrNotFound),
		errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}
