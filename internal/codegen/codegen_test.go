package codegen_test

import (
	"errors"
	"testing"

	"github.com/MrWong99/parseltongue/internal/codegen"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   codegen.Function
		want string
	}{
		{
			name: "empty body",
			fn:   codegen.Function{Name: "noop"},
			want: "def noop():\n    pass\n",
		},
		{
			name: "docstring only",
			fn:   codegen.Function{Name: "noop", Description: "does nothing"},
			want: "def noop():\n    \"\"\"does nothing\"\"\"\n    pass\n",
		},
		{
			name: "params lines and return",
			fn: codegen.Function{
				Name:        "total",
				Description: "adds things",
				Params:      []codegen.Param{{Name: "a", Value: "1"}, {Name: "b", Value: "2.5"}},
				Lines: []codegen.Line{
					{Text: "c = a + b"},
					{Text: "if c > 3:"},
					{Text: "c = 3", Level: 1},
				},
				Return: codegen.Return{Kind: "return", Value: "c"},
			},
			want: "def total(a=1, b=2.5):\n" +
				"    \"\"\"adds things\"\"\"\n" +
				"    c = a + b\n" +
				"    if c > 3:\n" +
				"        c = 3\n" +
				"    return c\n",
		},
		{
			name: "yield without lines",
			fn: codegen.Function{
				Name:   "gen",
				Params: []codegen.Param{{Name: "items", Value: "['a', 'b']"}},
				Return: codegen.Return{Kind: "yield", Value: "items"},
			},
			want: "def gen(items=['a', 'b']):\n    yield items\n",
		},
		{
			name: "bare return",
			fn:   codegen.Function{Name: "stop", Lines: []codegen.Line{{Text: "x = 1"}}, Return: codegen.Return{Kind: "return"}},
			want: "def stop():\n    x = 1\n    return\n",
		},
		{
			name: "docstring quotes escaped",
			fn:   codegen.Function{Name: "q", Description: `say """hi"""`},
			want: "def q():\n    \"\"\"say \\\"\\\"\\\"hi\\\"\\\"\\\"\"\"\"\n    pass\n",
		},
		{
			name: "negative level clamps",
			fn:   codegen.Function{Name: "n", Lines: []codegen.Line{{Text: "x = 1", Level: -3}}},
			want: "def n():\n    x = 1\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := codegen.Render(tc.fn)
			if err != nil {
				t.Fatalf("Render: unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Render:\ngot:\n%s\nwant:\n%s", got, tc.want)
			}
		})
	}
}

func TestRender_Invalid(t *testing.T) {
	t.Parallel()

	for _, fn := range []codegen.Function{
		{Name: ""},
		{Name: "two words"},
		{Name: "ok", Params: []codegen.Param{{Name: "1x", Value: "1"}}},
	} {
		if _, err := codegen.Render(fn); !errors.Is(err, codegen.ErrInvalidName) {
			t.Errorf("Render(%+v): err=%v, want ErrInvalidName", fn, err)
		}
	}
	if _, err := codegen.Render(codegen.Function{Name: "f", Return: codegen.Return{Kind: "raise"}}); err == nil {
		t.Error("Render with unknown return kind: want error")
	}
}

func TestIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"compute total", "compute_total"},
		{"  Compute   Total!  ", "compute_total"},
		{"x", "x"},
		{"2nd value", "_2nd_value"},
		{"my_var", "my_var"},
		{"?!", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := codegen.Identifier(tc.in); got != tc.want {
			t.Errorf("Identifier(%q): got=%q, want %q", tc.in, got, tc.want)
		}
	}
}
