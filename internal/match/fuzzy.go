package match

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.80
	defaultFuzzyThreshold    = 0.90
)

// FuzzyOption configures a [Fuzzy] matcher.
type FuzzyOption func(*Fuzzy)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score accepted for a
// candidate that shares a Double Metaphone code with the input.
// Default: 0.80.
func WithPhoneticThreshold(threshold float64) FuzzyOption {
	return func(f *Fuzzy) { f.phoneticThreshold = threshold }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score accepted for a
// candidate with no phonetic overlap. Default: 0.90.
func WithFuzzyThreshold(threshold float64) FuzzyOption {
	return func(f *Fuzzy) { f.fuzzyThreshold = threshold }
}

// Fuzzy finds the closest known word to a misheard or misspelled token.
//
// Candidates sharing a Double Metaphone code with the token are ranked by
// Jaro-Winkler similarity against the phonetic threshold. A phonetic candidate
// always beats a purely orthographic one; the latter must clear the higher
// fuzzy threshold. Ties keep the earliest candidate, so results are
// deterministic for a fixed candidate order.
//
// Fuzzy is read-only after construction and safe for concurrent use.
type Fuzzy struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewFuzzy returns a [Fuzzy] matcher.
func NewFuzzy(opts ...FuzzyOption) *Fuzzy {
	f := &Fuzzy{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Closest returns the index into candidates of the best match for word, its
// score, and whether any candidate cleared its threshold.
func (f *Fuzzy) Closest(word string, candidates []string) (index int, score float64, ok bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" || len(candidates) == 0 {
		return -1, 0, false
	}
	wTokens := strings.Fields(w)
	wCodes := codesFor(wTokens)

	best := -1
	var bestScore float64
	bestPhonetic := false

	for i, cand := range candidates {
		c := strings.ToLower(strings.TrimSpace(cand))
		if c == "" {
			continue
		}
		cTokens := strings.Fields(c)
		phonetic := overlaps(wCodes, codesFor(cTokens))
		s := similarity(wTokens, cTokens, w, c)

		switch {
		case phonetic && s >= f.phoneticThreshold:
			if !bestPhonetic || s > bestScore {
				best, bestScore, bestPhonetic = i, s, true
			}
		case !phonetic && !bestPhonetic && s >= f.fuzzyThreshold:
			if s > bestScore {
				best, bestScore = i, s
			}
		}
	}
	if best < 0 {
		return -1, 0, false
	}
	return best, bestScore, true
}

// codesFor returns the Double Metaphone codes of tokens. Empty codes (words
// without consonants) are skipped.
func codesFor(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func overlaps(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// similarity is the best Jaro-Winkler score over the full strings, the
// space-stripped strings and every token pair.
func similarity(aTokens, bTokens []string, aFull, bFull string) float64 {
	score := matchr.JaroWinkler(aFull, bFull, false)

	if len(aTokens) > 1 || len(bTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(aTokens, ""), strings.Join(bTokens, ""), false); s > score {
			score = s
		}
	}
	for _, at := range aTokens {
		for _, bt := range bTokens {
			if s := matchr.JaroWinkler(at, bt, false); s > score {
				score = s
			}
		}
	}
	return score
}
