// Package match resolves free-form user input to one of a set of menu
// choices.
//
// Resolution is deterministic and tries, in order, with the first success
// winning:
//
//  1. Numeric selection. The whole input is a number n (digits or a number
//     word) in [1, len(choices)]; the n-th choice in label order is chosen.
//  2. Administrative override. Reserved phrases such as "exit" or "set
//     logging level" are compared verbatim with the lowercased, trimmed raw
//     input before any normalization can strip or alter them.
//  3. Keyword-stem match. The input is normalized and ignore-words are
//     dropped. For each stem in input order, choices are tested in
//     declaration order against their keyword stem sets; the first hit wins.
//  4. Closest token. When enabled, each remaining input token is compared to
//     every keyword form with Double Metaphone and Jaro-Winkler similarity and
//     the best match above a high threshold is accepted.
//  5. Otherwise the result is unmatched and the caller must re-prompt.
package match

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MrWong99/parseltongue/internal/synonym"
	"github.com/MrWong99/parseltongue/internal/textnorm"
)

// Method records which resolution step produced a [Result].
type Method int

const (
	// MethodUnmatched means no step matched.
	MethodUnmatched Method = iota
	// MethodNumeric is selection by number.
	MethodNumeric
	// MethodAdmin is a reserved administrative phrase.
	MethodAdmin
	// MethodStem is a keyword-stem match.
	MethodStem
	// MethodFuzzy is the closest-token fallback.
	MethodFuzzy
)

// String returns the lowercase method name.
func (m Method) String() string {
	switch m {
	case MethodUnmatched:
		return "unmatched"
	case MethodNumeric:
		return "numeric"
	case MethodAdmin:
		return "admin"
	case MethodStem:
		return "stem"
	case MethodFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// Result is the outcome of [Matcher.Resolve].
type Result struct {
	// Choice is the resolved choice. It is the zero value when unmatched.
	Choice Choice
	// Method is the step that produced the result.
	Method Method
	// Token is the input stem or token that matched, if any.
	Token string
	// Score is the similarity of a fuzzy match, otherwise 0.
	Score float64
}

// Matched reports whether a choice was resolved.
func (r Result) Matched() bool { return r.Method != MethodUnmatched }

// Admin binds reserved phrases to a choice that is available in every menu.
type Admin struct {
	// Phrases are compared verbatim with the lowercased, trimmed input.
	Phrases []string
	// Choice is returned when a phrase matches.
	Choice Choice
}

// Option configures a [Matcher].
type Option func(*Matcher)

// WithResolver sets the synonym resolver used to widen keywords and to parse
// yes/no answers. Default: [synonym.New] with the built-in table.
func WithResolver(r *synonym.Resolver) Option {
	return func(m *Matcher) { m.resolver = r }
}

// WithIgnoreWords sets filler words dropped from normalized input.
// Default: [textnorm.DefaultIgnoreWords].
func WithIgnoreWords(words ...string) Option {
	return func(m *Matcher) { m.filter = textnorm.NewFilter(words...) }
}

// WithAdmin adds administrative overrides. They are tried in the order added,
// after the built-in "exit" override.
func WithAdmin(admins ...Admin) Option {
	return func(m *Matcher) { m.admins = append(m.admins, admins...) }
}

// WithFuzzy sets the closest-token matcher. A nil value disables the step.
// Default: [NewFuzzy] with default thresholds.
func WithFuzzy(f *Fuzzy) Option {
	return func(m *Matcher) { m.fuzzy = f }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) { m.log = l }
}

// Matcher resolves input against choice sets. It holds no per-call state and
// is safe for concurrent use.
type Matcher struct {
	resolver *synonym.Resolver
	filter   *textnorm.Filter
	admins   []Admin
	fuzzy    *Fuzzy
	log      *slog.Logger
}

// New returns a [Matcher].
func New(opts ...Option) *Matcher {
	m := &Matcher{
		filter: textnorm.NewFilter(textnorm.DefaultIgnoreWords...),
		admins: []Admin{{Phrases: []string{"exit", "force exit", "quit"}, Choice: ExitChoice()}},
		fuzzy:  NewFuzzy(),
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	if m.resolver == nil {
		m.resolver = synonym.New(synonym.WithLogger(m.log))
	}
	return m
}

// Resolver returns the synonym resolver in use.
func (m *Matcher) Resolver() *synonym.Resolver { return m.resolver }

// Resolve maps raw input to a choice of set. An unmatched result is not an
// error; the caller re-prompts.
func (m *Matcher) Resolve(ctx context.Context, raw string, set *ChoiceSet) Result {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" || set == nil {
		return Result{}
	}

	if n, ok := ParseNumber(text); ok {
		if c, ok := set.At(n); ok {
			return Result{Choice: c, Method: MethodNumeric, Token: text}
		}
		m.log.Debug("number out of range", "input", text, "choices", set.Len())
	}

	for _, a := range m.admins {
		for _, p := range a.Phrases {
			if text == strings.ToLower(strings.TrimSpace(p)) {
				return Result{Choice: a.Choice, Method: MethodAdmin, Token: text}
			}
		}
	}

	index := set.keywords(ctx, m.resolver)
	stems := m.filter.Apply(textnorm.Normalize(text))
	for _, st := range stems {
		for i, kw := range index {
			if _, ok := kw.stems[st]; ok {
				return Result{Choice: set.declared[i], Method: MethodStem, Token: st}
			}
		}
	}

	if m.fuzzy != nil {
		if r, ok := m.closest(text, set, index); ok {
			return r
		}
	}

	m.log.Debug("no choice matched", "input", text, "stems", stems)
	return Result{}
}

func (m *Matcher) closest(text string, set *ChoiceSet, index []keywordIndex) (Result, bool) {
	var (
		forms  []string
		owners []int
	)
	for i, kw := range index {
		for _, f := range kw.forms {
			forms = append(forms, f)
			owners = append(owners, i)
		}
	}

	var (
		best  Result
		found bool
	)
	for _, tok := range textnorm.Tokenize(text) {
		if textnorm.IsStopWord(tok) || m.filter.Ignores(textnorm.Stem(tok)) {
			continue
		}
		idx, score, ok := m.fuzzy.Closest(tok, forms)
		if ok && (!found || score > best.Score) {
			best = Result{Choice: set.declared[owners[idx]], Method: MethodFuzzy, Token: tok, Score: score}
			found = true
		}
	}
	return best, found
}

// numberWords are spoken forms of menu indexes as transcribed by STT.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
}

// ParseNumber accepts "3", "three", "number 3" and "option three". The whole
// input must be the number.
func ParseNumber(text string) (int, bool) {
	fields := strings.Fields(strings.Trim(text, ".!?"))
	if len(fields) == 2 && (fields[0] == "number" || fields[0] == "option" || fields[0] == "choice") {
		fields = fields[1:]
	}
	if len(fields) != 1 {
		return 0, false
	}
	f := fields[0]
	if n, ok := numberWords[f]; ok {
		return n, true
	}
	for _, r := range f {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(f)
	if err != nil {
		return 0, false
	}
	return n, true
}
