// Package textnorm reduces free-form utterances to ordered sequences of word
// stems.
//
// Normalization proceeds in four steps:
//
//  1. Accents are folded (NFD decomposition, combining marks removed) and the
//     text is lowercased.
//  2. The text is split on word boundaries. Apostrophes inside a word are kept
//     so contractions such as "don't" can be recognised as stop-words.
//  3. Stop-words are dropped. This always happens before stemming.
//  4. Every remaining token is reduced with the Snowball (Porter2) English
//     stemmer.
//
// The relative order of tokens is preserved. An empty result means the input
// conveyed no actionable content; [NormalizeStrict] reports that case as
// [ErrEmpty].
package textnorm

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmpty is returned by [NormalizeStrict] when the input contains nothing
// but stop-words, punctuation or whitespace.
var ErrEmpty = errors.New("textnorm: no actionable content")

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_']+`)

// Tokenize folds accents, lowercases text and splits it on word boundaries.
// Stop-words are not removed.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(fold(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		tok = strings.Trim(tok, "'")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Normalize returns the stems of every non stop-word token of text in their
// original order. The result has length zero when text carries no actionable
// content.
func Normalize(text string) []string {
	tokens := Tokenize(text)
	stems := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		stems = append(stems, Stem(tok))
	}
	return stems
}

// NormalizeStrict is like [Normalize] but returns [ErrEmpty] when no stems
// remain.
func NormalizeStrict(text string) ([]string, error) {
	stems := Normalize(text)
	if len(stems) == 0 {
		return nil, ErrEmpty
	}
	return stems, nil
}

// Stem reduces a single word to its Porter2 stem. The word is folded and
// lowercased first; words of two letters or fewer are returned unchanged.
func Stem(word string) string {
	w := strings.TrimSpace(fold(word))
	if w == "" {
		return ""
	}
	return english.Stem(w, true)
}

// Join renders stems as the space separated "interpreted" form of an
// utterance.
func Join(stems []string) string {
	return strings.Join(stems, " ")
}

func fold(s string) string {
	// A transform chain carries state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return lower(s)
	}
	return lower(out)
}

func lower(s string) string { return strings.ToLower(s) }
