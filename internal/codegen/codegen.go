// Package codegen renders structured functions as Python source text.
//
// The output is only ever displayed or saved; it is never evaluated.
package codegen

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// ErrInvalidName is returned when a function or parameter name is not a
// Python identifier.
var ErrInvalidName = errors.New("codegen: invalid identifier")

// Indent is one indentation level.
const Indent = "    "

// Param is a function parameter with a default value given as a Python
// literal, for example "1", "'abc'" or "None".
type Param struct {
	Name  string
	Value string
}

// Line is one statement of the function body. Level is the nesting depth
// relative to the body, so 0 is directly inside the function.
type Line struct {
	Text  string
	Level int
}

// Return describes the final statement of a function. An empty Kind means
// the function returns nothing.
type Return struct {
	// Kind is "return" or "yield".
	Kind  string
	Value string
}

// Function is the structured form of a Python function.
type Function struct {
	Name        string
	Description string
	Params      []Param
	Lines       []Line
	Return      Return
}

const functionTemplate = `def {{.Name}}({{params .Params}}):
{{- with .Description}}
{{indent 0}}"""{{docstring .}}"""
{{- end}}
{{- range .Lines}}
{{indent .Level}}{{.Text}}
{{- end}}
{{- if .Return.Kind}}
{{indent 0}}{{.Return.Kind}}{{with .Return.Value}} {{.}}{{end}}
{{- else if not .Lines}}
{{indent 0}}pass
{{- end}}
`

var tmpl = template.Must(template.New("function").Funcs(template.FuncMap{
	"indent": func(level int) string {
		return strings.Repeat(Indent, max(level, 0)+1)
	},
	"params": func(ps []Param) string {
		parts := make([]string, len(ps))
		for i, p := range ps {
			parts[i] = p.Name + "=" + p.Value
		}
		return strings.Join(parts, ", ")
	},
	"docstring": func(s string) string {
		return strings.ReplaceAll(s, `"""`, `\"\"\"`)
	},
}).Parse(functionTemplate))

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Render returns the Python source of f.
func Render(f Function) (string, error) {
	if !identifier.MatchString(f.Name) {
		return "", fmt.Errorf("%w: function %q", ErrInvalidName, f.Name)
	}
	for _, p := range f.Params {
		if !identifier.MatchString(p.Name) {
			return "", fmt.Errorf("%w: parameter %q", ErrInvalidName, p.Name)
		}
	}
	switch f.Return.Kind {
	case "", "return", "yield":
	default:
		return "", fmt.Errorf("codegen: unknown return kind %q", f.Return.Kind)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, f); err != nil {
		return "", fmt.Errorf("codegen: render %s: %w", f.Name, err)
	}
	return b.String(), nil
}

// Identifier turns free text such as a spoken name into a Python identifier:
// words are lowercased and joined with underscores, other characters are
// dropped. It returns "" when nothing usable remains.
func Identifier(text string) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		var b strings.Builder
		for _, r := range w {
			if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			words = append(words, b.String())
		}
	}
	id := strings.Join(words, "_")
	if id != "" && id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}
