package synonym_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/MrWong99/parseltongue/internal/synonym"
	"github.com/MrWong99/parseltongue/internal/thesaurus/mock"
)

func TestCanonicalize_StaticTable(t *testing.T) {
	t.Parallel()

	r := synonym.New()
	ctx := context.Background()

	tests := []struct {
		word string
		want string
	}{
		{"modify", "edit"},
		{"Modifying", "edit"},
		{"changes", "edit"},
		{"create", "new"},
		{"starting", "new"},
		{"remove", "delete"},
		{"show", "display"},
		{"yeah", "yes"},
		{"okay", "yes"},
		{"nope", "no"},
		{"xyzzy", "xyzzy"},
		{"Edit", "Edit"},
	}
	for _, tc := range tests {
		if got := r.Canonicalize(ctx, tc.word); got != tc.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tc.word, got, tc.want)
		}
	}
}

func TestCanonicalize_StaticPrecedence(t *testing.T) {
	t.Parallel()

	thes := &mock.Thesaurus{Entries: map[string][]string{
		"create": {"produce", "create", "make"},
		"make":   {"produce", "make"},
	}}
	r := synonym.New(
		synonym.WithTable(synonym.Table{"create": "new"}),
		synonym.WithThesaurus(thes),
	)
	ctx := context.Background()

	if got := r.Canonicalize(ctx, "create"); got != "new" {
		t.Errorf("Canonicalize(create) = %q, want %q", got, "new")
	}
	if got := r.SynonymsFor(ctx, "create"); !slices.Equal(got, []string{"create", "new"}) {
		t.Errorf("SynonymsFor(create) = %v, want [create new]", got)
	}
	if thes.Looked("create") {
		t.Error("thesaurus was consulted for a static key")
	}

	if got := r.Canonicalize(ctx, "make"); got != "produce" {
		t.Errorf("Canonicalize(make) = %q, want thesaurus head %q", got, "produce")
	}
	if !thes.Looked("make") {
		t.Error("thesaurus was not consulted for a non-static word")
	}
}

func TestSynonymsFor_IncludesReverseMappings(t *testing.T) {
	t.Parallel()

	r := synonym.New()
	got := r.SynonymsFor(context.Background(), "edit")
	want := []string{"adjust", "alter", "change", "edit", "modify"}
	if !slices.Equal(got, want) {
		t.Errorf("SynonymsFor(edit) = %v, want %v", got, want)
	}
}

func TestSynonymsFor_FallsBackToWord(t *testing.T) {
	t.Parallel()

	thes := &mock.Thesaurus{}
	r := synonym.New(synonym.WithTable(synonym.Table{}), synonym.WithThesaurus(thes))

	got := r.SynonymsFor(context.Background(), "Logic")
	if !slices.Equal(got, []string{"logic"}) {
		t.Errorf("SynonymsFor(Logic) = %v, want [logic]", got)
	}
	if got := r.SynonymsFor(context.Background(), "  "); got != nil {
		t.Errorf("SynonymsFor(blank) = %v, want nil", got)
	}
}

func TestSynonymsFor_ThesaurusFormsMerged(t *testing.T) {
	t.Parallel()

	thes := &mock.Thesaurus{Entries: map[string][]string{
		"variable": {"variable", "var", "changeable_quantity"},
	}}
	r := synonym.New(synonym.WithThesaurus(thes))

	got := r.SynonymsFor(context.Background(), "variable")
	want := []string{"changeable quantity", "var", "variable"}
	if !slices.Equal(got, want) {
		t.Errorf("SynonymsFor(variable) = %v, want %v", got, want)
	}
}

func TestSynonymsFor_ThesaurusFailureIsEmpty(t *testing.T) {
	t.Parallel()

	thes := &mock.Thesaurus{Err: errors.New("dictionary offline")}
	r := synonym.New(synonym.WithThesaurus(thes))
	ctx := context.Background()

	if got := r.SynonymsFor(ctx, "line"); !slices.Equal(got, []string{"line"}) {
		t.Errorf("SynonymsFor(line) = %v, want [line]", got)
	}
	if got := r.Canonicalize(ctx, "line"); got != "line" {
		t.Errorf("Canonicalize(line) = %q, want line", got)
	}
}

func TestTable_Merge(t *testing.T) {
	t.Parallel()

	base := synonym.Table{"alter": "edit"}
	merged := base.Merge(synonym.Table{" Revise ": "EDIT", "": "x", "blank": " "})
	if merged["revise"] != "edit" {
		t.Errorf("merged[revise] = %q, want edit", merged["revise"])
	}
	if _, ok := merged["blank"]; ok {
		t.Error("entry with empty value was kept")
	}
	if len(base) != 1 {
		t.Errorf("Merge modified the receiver: %v", base)
	}
}
