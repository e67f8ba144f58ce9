package editor_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/MrWong99/parseltongue/internal/codegen"
	"github.com/MrWong99/parseltongue/internal/editor"
)

func TestWorkspace_Functions(t *testing.T) {
	t.Parallel()

	ws := editor.NewWorkspace()
	if err := ws.AddFunction("total", "adds"); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := ws.AddFunction("average", ""); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := ws.AddFunction("total", "again"); !errors.Is(err, editor.ErrExists) {
		t.Errorf("AddFunction duplicate: err=%v, want ErrExists", err)
	}
	if got := ws.Names(); !slices.Equal(got, []string{"average", "total"}) {
		t.Errorf("Names = %q, want [average total]", got)
	}

	if err := ws.DeleteFunction("average"); err != nil {
		t.Fatalf("DeleteFunction: %v", err)
	}
	if ws.Has("average") {
		t.Error("Has(average) after delete = true")
	}
	if err := ws.DeleteFunction("average"); !errors.Is(err, editor.ErrUndefined) {
		t.Errorf("DeleteFunction twice: err=%v, want ErrUndefined", err)
	}
}

func TestWorkspace_UndefinedNeverMutates(t *testing.T) {
	t.Parallel()

	ws := editor.NewWorkspace()
	_ = ws.AddFunction("f", "")
	_, _ = ws.AddLine("f", "x = 1")

	checks := []struct {
		name string
		err  error
	}{
		{"Function", func() error { _, err := ws.Function("nope"); return err }()},
		{"SetDescription", ws.SetDescription("nope", "d")},
		{"SetReturn", ws.SetReturn("nope", codegen.Return{Kind: "return"})},
		{"SetVariable", ws.SetVariable("nope", editor.Variable{Name: "a"})},
		{"Variable", func() error { _, err := ws.Variable("f", "missing"); return err }()},
		{"DeleteVariable", ws.DeleteVariable("f", "missing")},
		{"AddLine", func() error { _, err := ws.AddLine("nope", "y"); return err }()},
		{"EditLine", ws.EditLine("f", 2, "y")},
		{"EditLine zero", ws.EditLine("f", 0, "y")},
		{"DeleteLine", ws.DeleteLine("f", 5)},
		{"Lines", func() error { _, err := ws.Lines("nope"); return err }()},
	}
	for _, c := range checks {
		if !errors.Is(c.err, editor.ErrUndefined) {
			t.Errorf("%s: err=%v, want ErrUndefined", c.name, c.err)
		}
	}

	f, err := ws.Function("f")
	if err != nil {
		t.Fatalf("Function: %v", err)
	}
	if !slices.Equal(f.Lines, []string{"x = 1"}) || len(f.Params) != 0 || f.Description != "" {
		t.Errorf("function mutated: %+v", f)
	}
	if got := ws.Names(); !slices.Equal(got, []string{"f"}) {
		t.Errorf("Names = %q, want [f]", got)
	}
}

func TestWorkspace_Variables(t *testing.T) {
	t.Parallel()

	ws := editor.NewWorkspace()
	_ = ws.AddFunction("f", "")
	for _, v := range []editor.Variable{
		{Name: "a", Type: editor.TypeNumber, Value: "1"},
		{Name: "b", Type: editor.TypeText, Value: `"x"`},
		{Name: "a", Type: editor.TypeDecimal, Value: "1.5"},
	} {
		if err := ws.SetVariable("f", v); err != nil {
			t.Fatalf("SetVariable(%s): %v", v.Name, err)
		}
	}

	f, _ := ws.Function("f")
	want := []editor.Variable{
		{Name: "a", Type: editor.TypeDecimal, Value: "1.5"},
		{Name: "b", Type: editor.TypeText, Value: `"x"`},
	}
	if !slices.Equal(f.Params, want) {
		t.Errorf("Params = %+v, want %+v", f.Params, want)
	}

	if err := ws.DeleteVariable("f", "a"); err != nil {
		t.Fatalf("DeleteVariable: %v", err)
	}
	if _, err := ws.Variable("f", "a"); !errors.Is(err, editor.ErrUndefined) {
		t.Errorf("Variable after delete: err=%v, want ErrUndefined", err)
	}
}

func TestWorkspace_Lines(t *testing.T) {
	t.Parallel()

	ws := editor.NewWorkspace()
	_ = ws.AddFunction("f", "")
	for i, l := range []string{"a = 1", "b = 2", "c = a + b"} {
		n, err := ws.AddLine("f", l)
		if err != nil || n != i+1 {
			t.Fatalf("AddLine(%q) = %d, %v; want %d, nil", l, n, err, i+1)
		}
	}
	if err := ws.EditLine("f", 2, "b = 3"); err != nil {
		t.Fatalf("EditLine: %v", err)
	}
	if err := ws.DeleteLine("f", 1); err != nil {
		t.Fatalf("DeleteLine: %v", err)
	}
	got, _ := ws.Lines("f")
	if !slices.Equal(got, []string{"b = 3", "c = a + b"}) {
		t.Errorf("Lines = %q", got)
	}

	// Returned slices are copies.
	got[0] = "changed"
	again, _ := ws.Lines("f")
	if again[0] != "b = 3" {
		t.Error("Lines returned a slice aliasing workspace state")
	}
}

func TestFunction_Source(t *testing.T) {
	t.Parallel()

	f := editor.Function{
		Name:        "scale",
		Description: "scales a value",
		Params:      []editor.Variable{{Name: "x", Type: editor.TypeNumber, Value: "2"}},
		Lines:       []string{"y = x * 10"},
		Return:      codegen.Return{Kind: "return", Value: "y"},
	}
	got, err := f.Source()
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	want := "def scale(x=2):\n    \"\"\"scales a value\"\"\"\n    y = x * 10\n    return y\n"
	if got != want {
		t.Errorf("Source:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
