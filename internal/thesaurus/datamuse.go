package thesaurus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultDatamuseURL = "https://api.datamuse.com"
	defaultDatamuseMax = 20
)

// DatamuseOption configures a [Datamuse] thesaurus.
type DatamuseOption func(*Datamuse)

// WithBaseURL overrides the API root. Mainly useful for tests.
func WithBaseURL(u string) DatamuseOption {
	return func(d *Datamuse) { d.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(c *http.Client) DatamuseOption {
	return func(d *Datamuse) { d.client = c }
}

// WithMaxResults caps the number of synonyms requested per word.
func WithMaxResults(n int) DatamuseOption {
	return func(d *Datamuse) {
		if n > 0 {
			d.max = n
		}
	}
}

// Datamuse looks up synonyms with the Datamuse words API
// (rel_syn, WordNet-derived). It is safe for concurrent use.
type Datamuse struct {
	baseURL string
	client  *http.Client
	max     int
}

// Compile-time interface assertion.
var _ Thesaurus = (*Datamuse)(nil)

// NewDatamuse returns a [Datamuse] thesaurus. Defaults: the public API root,
// a 5 second client timeout and at most 20 results.
func NewDatamuse(opts ...DatamuseOption) *Datamuse {
	d := &Datamuse{
		baseURL: defaultDatamuseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		max:     defaultDatamuseMax,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

type datamuseWord struct {
	Word  string `json:"word"`
	Score int    `json:"score"`
}

// Synonyms implements [Thesaurus]. The word itself leads the result so the
// canonical form of a known word is the word.
func (d *Datamuse) Synonyms(ctx context.Context, word string) ([]string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, fmt.Errorf("thesaurus: datamuse: empty word: %w", ErrNotFound)
	}

	q := url.Values{}
	q.Set("rel_syn", word)
	q.Set("max", strconv.Itoa(d.max))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/words?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: datamuse: build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: datamuse: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("thesaurus: datamuse: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var words []datamuseWord
	if err := json.NewDecoder(resp.Body).Decode(&words); err != nil {
		return nil, fmt.Errorf("thesaurus: datamuse: decode: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("thesaurus: datamuse: %q: %w", word, ErrNotFound)
	}

	out := make([]string, 0, len(words)+1)
	out = append(out, word)
	for _, w := range words {
		s := strings.ToLower(strings.TrimSpace(w.Word))
		if s != "" && s != word {
			out = append(out, s)
		}
	}
	return out, nil
}
