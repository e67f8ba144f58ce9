// Package synonym maps words to equivalent surface forms.
//
// Two sources are merged. A static [Table] maps common phrasings to canonical
// action words ("modify" to "edit") and is looked up by the word itself and
// then by its stem. An optional [thesaurus.Thesaurus] supplies further forms,
// but only for words that are not static keys: static entries always win and
// never trigger a dictionary lookup.
package synonym

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/MrWong99/parseltongue/internal/observe"
	"github.com/MrWong99/parseltongue/internal/textnorm"
	"github.com/MrWong99/parseltongue/internal/thesaurus"
)

// Option configures a [Resolver].
type Option func(*Resolver)

// WithTable replaces the static table. Default: [DefaultTable].
func WithTable(t Table) Option {
	return func(r *Resolver) { r.table = Table{}.Merge(t) }
}

// WithThesaurus sets the dictionary consulted for words missing from the
// static table. Default: none.
func WithThesaurus(t thesaurus.Thesaurus) Option {
	return func(r *Resolver) { r.thes = t }
}

// WithMetrics records thesaurus lookup outcomes on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// Resolver answers canonical-form and synonym-set queries. It is read-only
// after construction; concurrent use is safe when the thesaurus is.
type Resolver struct {
	table   Table
	thes    thesaurus.Thesaurus
	metrics *observe.Metrics
	log     *slog.Logger

	byStem  map[string]string
	reverse map[string][]string
}

// New returns a [Resolver].
func New(opts ...Option) *Resolver {
	r := &Resolver{table: DefaultTable(), log: slog.Default()}
	for _, o := range opts {
		o(r)
	}

	r.byStem = make(map[string]string, len(r.table))
	r.reverse = make(map[string][]string)
	keys := slices.Sorted(maps.Keys(r.table))
	for _, k := range keys {
		v := r.table[k]
		if s := textnorm.Stem(k); s != "" {
			if _, taken := r.byStem[s]; !taken {
				r.byStem[s] = v
			}
		}
		r.reverse[v] = append(r.reverse[v], k)
	}
	return r
}

// Static returns the canonical word for word from the static table. The word
// is tried verbatim (lowercased) and then as a stem.
func (r *Resolver) Static(word string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return "", false
	}
	if c, ok := r.table[w]; ok {
		return c, true
	}
	if c, ok := r.byStem[textnorm.Stem(w)]; ok {
		return c, true
	}
	return "", false
}

// Canonicalize returns the canonical term for word: the static mapping if
// one exists, else the head of the first thesaurus grouping, else word
// unchanged.
func (r *Resolver) Canonicalize(ctx context.Context, word string) string {
	if c, ok := r.Static(word); ok {
		return c
	}
	if forms := r.lookup(ctx, word); len(forms) > 0 {
		return forms[0]
	}
	return word
}

// SynonymsFor returns the sorted set of forms equivalent to word: the word
// itself, its static mapping, every static key mapping to it, and thesaurus
// forms when word is not a static key. A word is always its own synonym.
func (r *Resolver) SynonymsFor(ctx context.Context, word string) []string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return nil
	}
	set := map[string]struct{}{w: {}}

	canonical, static := r.Static(w)
	if static {
		set[canonical] = struct{}{}
	}
	for _, k := range r.reverse[w] {
		set[k] = struct{}{}
	}
	if !static {
		for _, f := range r.lookup(ctx, w) {
			set[f] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// lookup queries the thesaurus. Failures degrade to an empty result.
func (r *Resolver) lookup(ctx context.Context, word string) []string {
	if r.thes == nil {
		return nil
	}
	w := strings.ToLower(strings.TrimSpace(word))
	forms, err := r.thes.Synonyms(ctx, w)
	switch {
	case errors.Is(err, thesaurus.ErrNotFound):
		r.metrics.RecordThesaurusLookup(ctx, "miss")
		return nil
	case err != nil:
		r.metrics.RecordThesaurusLookup(ctx, "error")
		r.log.Debug("thesaurus lookup failed", "word", w, "err", err)
		return nil
	}
	r.metrics.RecordThesaurusLookup(ctx, "hit")

	out := make([]string, 0, len(forms))
	for _, f := range forms {
		f = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(f, "_", " ")))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
