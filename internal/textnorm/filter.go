package textnorm

// DefaultIgnoreWords are filler words that survive stop-word removal but never
// identify a menu choice.
var DefaultIgnoreWords = []string{"function", "want", "need", "like"}

// Filter removes configured ignore-words from a stem sequence. Ignore-words
// are compared by stem, so "needs" and "need" are both dropped.
//
// The zero value filters nothing. A Filter is read-only after construction and
// safe for concurrent use.
type Filter struct {
	stems map[string]struct{}
}

// NewFilter returns a [Filter] dropping the stems of words.
func NewFilter(words ...string) *Filter {
	f := &Filter{stems: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if s := Stem(w); s != "" {
			f.stems[s] = struct{}{}
		}
	}
	return f
}

// Apply returns stems without ignore-words, preserving order. The input slice
// is not modified.
func (f *Filter) Apply(stems []string) []string {
	if f == nil || len(f.stems) == 0 {
		return stems
	}
	out := make([]string, 0, len(stems))
	for _, s := range stems {
		if _, drop := f.stems[s]; drop {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Ignores reports whether stem is filtered.
func (f *Filter) Ignores(stem string) bool {
	if f == nil {
		return false
	}
	_, ok := f.stems[stem]
	return ok
}
