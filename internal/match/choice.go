package match

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MrWong99/parseltongue/internal/synonym"
	"github.com/MrWong99/parseltongue/internal/textnorm"
)

var (
	// ErrEmptyLabel is returned when a choice has a blank label.
	ErrEmptyLabel = errors.New("match: empty choice label")

	// ErrDuplicateLabel is returned when two choices share a label.
	ErrDuplicateLabel = errors.New("match: duplicate choice label")
)

// Kind distinguishes ordinary choices from the navigation entries every menu
// carries.
type Kind int

const (
	// KindAction is a user-defined choice with an [Action].
	KindAction Kind = iota
	// KindBack returns to the parent menu.
	KindBack
	// KindExit ends the whole session.
	KindExit
	// KindHelp re-announces the numbered choices.
	KindHelp
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindBack:
		return "back"
	case KindExit:
		return "exit"
	case KindHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Reserved labels of the navigation choices.
const (
	LabelBack = "go back"
	LabelExit = "exit"
	LabelHelp = "help"
)

// Args is the contextual keyword-argument bag handed to actions, for example
// the name of the function being edited.
type Args map[string]string

// ArgFunctionName is the [Args] key naming the enclosing function.
const ArgFunctionName = "function_name"

// ArgVariableName is the [Args] key naming the enclosing variable.
const ArgVariableName = "variable_name"

// Clone returns a shallow copy of a, never nil.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Action is the handler invoked when a choice is selected. A non-empty result
// is accumulated by the menu. A returned error is fatal to the session;
// recoverable problems should be announced by the action itself.
type Action func(ctx context.Context, args Args) (string, error)

// Choice is one selectable menu entry.
type Choice struct {
	// Label is the human-readable, unique name of the choice.
	Label string

	// Keywords are the words that select the choice. Each is widened through
	// the synonym resolver and stemmed.
	Keywords []string

	// Kind marks navigation entries. The zero value is [KindAction].
	Kind Kind

	// Action runs when the choice is selected. Navigation entries have none.
	Action Action
}

// BackChoice returns the reserved "go back" entry.
func BackChoice() Choice {
	return Choice{Label: LabelBack, Keywords: []string{"back", "previous"}, Kind: KindBack}
}

// ExitChoice returns the reserved "exit" entry.
func ExitChoice() Choice {
	return Choice{Label: LabelExit, Keywords: []string{"exit", "quit"}, Kind: KindExit}
}

// HelpChoice returns the reserved "help" entry.
func HelpChoice() Choice {
	return Choice{Label: LabelHelp, Keywords: []string{"help", "options"}, Kind: KindHelp}
}

// keywordIndex holds the derived matching data of one choice.
type keywordIndex struct {
	stems map[string]struct{}
	forms []string
}

// ChoiceSet is an immutable collection of choices with unique labels.
//
// Choices keep their declaration order for keyword matching and are also
// exposed in label-sorted order for numbered display and numeric selection.
// Keyword stem sets are computed on first use and cached for the lifetime of
// the set.
type ChoiceSet struct {
	declared []Choice
	sorted   []int

	once  sync.Once
	index []keywordIndex
}

// NewChoiceSet validates choices and returns a [ChoiceSet].
func NewChoiceSet(choices ...Choice) (*ChoiceSet, error) {
	seen := make(map[string]struct{}, len(choices))
	var errs []error
	for i, c := range choices {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			errs = append(errs, fmt.Errorf("choice %d: %w", i, ErrEmptyLabel))
			continue
		}
		if _, dup := seen[label]; dup {
			errs = append(errs, fmt.Errorf("choice %q: %w", label, ErrDuplicateLabel))
			continue
		}
		seen[label] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	s := &ChoiceSet{declared: slices.Clone(choices)}
	s.sorted = make([]int, len(choices))
	for i := range s.sorted {
		s.sorted[i] = i
	}
	slices.SortStableFunc(s.sorted, func(a, b int) int {
		return strings.Compare(s.declared[a].Label, s.declared[b].Label)
	})
	return s, nil
}

// MustChoiceSet is like [NewChoiceSet] but panics on invalid input. It is meant
// for menus defined in code.
func MustChoiceSet(choices ...Choice) *ChoiceSet {
	s, err := NewChoiceSet(choices...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of choices.
func (s *ChoiceSet) Len() int { return len(s.declared) }

// Declared returns the choices in declaration order.
func (s *ChoiceSet) Declared() []Choice { return slices.Clone(s.declared) }

// Sorted returns the choices ordered by label.
func (s *ChoiceSet) Sorted() []Choice {
	out := make([]Choice, len(s.sorted))
	for i, idx := range s.sorted {
		out[i] = s.declared[idx]
	}
	return out
}

// At returns the n-th choice (1-based) in label order.
func (s *ChoiceSet) At(n int) (Choice, bool) {
	if n < 1 || n > len(s.sorted) {
		return Choice{}, false
	}
	return s.declared[s.sorted[n-1]], true
}

// Lookup returns the choice with the given label.
func (s *ChoiceSet) Lookup(label string) (Choice, bool) {
	for _, c := range s.declared {
		if c.Label == label {
			return c, true
		}
	}
	return Choice{}, false
}

// Help renders the numbered, label-sorted list, one "N) Label." per line.
func (s *ChoiceSet) Help() []string {
	lines := make([]string, len(s.sorted))
	for i, idx := range s.sorted {
		lines[i] = fmt.Sprintf("%d) %s.", i+1, s.declared[idx].Label)
	}
	return lines
}

// With returns a new set holding s's choices followed by extra.
func (s *ChoiceSet) With(extra ...Choice) (*ChoiceSet, error) {
	return NewChoiceSet(append(s.Declared(), extra...)...)
}

// keywords returns the cached per-choice keyword index, building it with r on
// first use.
func (s *ChoiceSet) keywords(ctx context.Context, r *synonym.Resolver) []keywordIndex {
	s.once.Do(func() {
		s.index = make([]keywordIndex, len(s.declared))
		for i, c := range s.declared {
			s.index[i] = buildIndex(ctx, r, c.Keywords)
		}
	})
	return s.index
}

func buildIndex(ctx context.Context, r *synonym.Resolver, keywords []string) keywordIndex {
	idx := keywordIndex{stems: make(map[string]struct{})}
	seenForm := make(map[string]struct{})
	for _, kw := range keywords {
		forms := []string{strings.ToLower(strings.TrimSpace(kw))}
		if r != nil {
			forms = append(forms, r.SynonymsFor(ctx, kw)...)
		}
		for _, f := range forms {
			// Multi-word forms can never equal a single stem.
			if f == "" || strings.ContainsAny(f, " _-") {
				continue
			}
			if st := textnorm.Stem(f); st != "" {
				idx.stems[st] = struct{}{}
			}
			if _, dup := seenForm[f]; !dup {
				seenForm[f] = struct{}{}
				idx.forms = append(idx.forms, f)
			}
		}
	}
	return idx
}
