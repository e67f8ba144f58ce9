package match

import (
	"context"
	"strings"

	"github.com/MrWong99/parseltongue/internal/textnorm"
)

// ParseYesNo interprets a yes/no answer. The whole answer and then each of its
// words are canonicalized through the synonym resolver; the first that maps to
// "yes" or "no" decides. ok is false when nothing does, and when a yes is
// negated ("not sure", "i don't think so, okay").
func (m *Matcher) ParseYesNo(ctx context.Context, raw string) (answer, ok bool) {
	tokens := textnorm.Tokenize(raw)
	if len(tokens) == 0 {
		return false, false
	}
	candidates := tokens
	if len(tokens) > 1 {
		candidates = append([]string{strings.Join(tokens, " ")}, tokens...)
	}
	for _, c := range candidates {
		word := c
		if word != "yes" && word != "no" {
			word = m.resolver.Canonicalize(ctx, c)
		}
		switch word {
		case "yes":
			if negated(tokens) {
				return false, false
			}
			return true, true
		case "no":
			return false, true
		}
	}
	return false, false
}

// negated reports whether tokens contain a negation. A lone "t" is the tail
// of a contraction written with a typographic apostrophe.
func negated(tokens []string) bool {
	for i, tok := range tokens {
		switch {
		case tok == "not", tok == "never", tok == "cannot", tok == "dont":
			return true
		case strings.HasSuffix(tok, "n't"):
			return true
		case tok == "t" && i > 0:
			return true
		}
	}
	return false
}
