package thesaurus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is an in-memory thesaurus built from groups of equivalent words. The
// first word of each group is its canonical form.
//
// A thesaurus file looks like:
//
//	synsets:
//	  - [edit, modify, alter, revise]
//	  - [display, show, list, print]
//
// File is read-only after construction and safe for concurrent use.
type File struct {
	synsets [][]string
	index   map[string][]int
}

// Compile-time interface assertion.
var _ Thesaurus = (*File)(nil)

type fileDoc struct {
	Synsets [][]string `yaml:"synsets"`
}

// NewFile builds a [File] thesaurus from synsets. Words are lowercased and
// trimmed; empty words and empty groups are dropped.
func NewFile(synsets [][]string) *File {
	f := &File{index: make(map[string][]int)}
	for _, group := range synsets {
		clean := make([]string, 0, len(group))
		for _, w := range group {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				clean = append(clean, w)
			}
		}
		if len(clean) == 0 {
			continue
		}
		idx := len(f.synsets)
		f.synsets = append(f.synsets, clean)
		for _, w := range clean {
			f.index[w] = append(f.index[w], idx)
		}
	}
	return f
}

// LoadFile reads a YAML thesaurus from path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: read %q: %w", path, err)
	}
	return ParseFile(bytes.NewReader(data))
}

// ParseFile decodes a YAML thesaurus from r. Unknown keys are rejected.
func ParseFile(r io.Reader) (*File, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("thesaurus: decode: %w", err)
	}
	return NewFile(doc.Synsets), nil
}

// Synonyms implements [Thesaurus]. Members of every group containing word are
// returned in file order without duplicates.
func (f *File) Synonyms(_ context.Context, word string) ([]string, error) {
	groups := f.index[strings.ToLower(strings.TrimSpace(word))]
	if len(groups) == 0 {
		return nil, fmt.Errorf("thesaurus: file: %q: %w", word, ErrNotFound)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		for _, w := range f.synsets[g] {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out, nil
}

// Len returns the number of synsets.
func (f *File) Len() int { return len(f.synsets) }
