package editor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/MrWong99/parseltongue/internal/codegen"
)

var (
	// ErrUndefined is returned when a function, variable or line does not
	// exist. The workspace is left unchanged.
	ErrUndefined = errors.New("editor: not defined")

	// ErrExists is returned when adding a function whose name is taken.
	ErrExists = errors.New("editor: already defined")
)

// Variable is a function parameter with its cast default value.
type Variable struct {
	Name string
	Type VarType
	// Value is the Python literal produced by [Cast].
	Value string
}

// Function is a function under construction.
type Function struct {
	Name        string
	Description string
	Params      []Variable
	Lines       []string
	Return      codegen.Return
}

// Source renders f as Python.
func (f Function) Source() (string, error) {
	cf := codegen.Function{
		Name:        f.Name,
		Description: f.Description,
		Return:      f.Return,
	}
	for _, p := range f.Params {
		cf.Params = append(cf.Params, codegen.Param{Name: p.Name, Value: p.Value})
	}
	for _, l := range f.Lines {
		cf.Lines = append(cf.Lines, codegen.Line{Text: l})
	}
	return codegen.Render(cf)
}

func (f *Function) clone() Function {
	c := *f
	c.Params = slices.Clone(f.Params)
	c.Lines = slices.Clone(f.Lines)
	return c
}

// Workspace holds every function of an editing session. It replaces global
// registries so that independent sessions never share state. It is safe for
// concurrent use.
type Workspace struct {
	mu        sync.Mutex
	functions map[string]*Function
}

// NewWorkspace returns an empty [Workspace].
func NewWorkspace() *Workspace {
	return &Workspace{functions: make(map[string]*Function)}
}

func (w *Workspace) get(name string) (*Function, error) {
	f, ok := w.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: function %q", ErrUndefined, name)
	}
	return f, nil
}

// AddFunction defines an empty function.
func (w *Workspace) AddFunction(name, description string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.functions[name]; ok {
		return fmt.Errorf("%w: function %q", ErrExists, name)
	}
	w.functions[name] = &Function{Name: name, Description: description}
	return nil
}

// Has reports whether name is defined.
func (w *Workspace) Has(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.functions[name]
	return ok
}

// Function returns a copy of the named function.
func (w *Workspace) Function(name string) (Function, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(name)
	if err != nil {
		return Function{}, err
	}
	return f.clone(), nil
}

// Names returns the defined function names in ascending order.
func (w *Workspace) Names() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.functions))
}

// DeleteFunction removes the named function.
func (w *Workspace) DeleteFunction(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.get(name); err != nil {
		return err
	}
	delete(w.functions, name)
	return nil
}

// SetDescription replaces the docstring of a function.
func (w *Workspace) SetDescription(name, description string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(name)
	if err != nil {
		return err
	}
	f.Description = description
	return nil
}

// SetReturn sets the final return or yield statement.
func (w *Workspace) SetReturn(name string, r codegen.Return) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(name)
	if err != nil {
		return err
	}
	f.Return = r
	return nil
}

// SetVariable adds v to a function's parameters or replaces the parameter
// with the same name in place.
func (w *Workspace) SetVariable(function string, v Variable) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(function)
	if err != nil {
		return err
	}
	if i := slices.IndexFunc(f.Params, func(p Variable) bool { return p.Name == v.Name }); i >= 0 {
		f.Params[i] = v
		return nil
	}
	f.Params = append(f.Params, v)
	return nil
}

// Variable returns the named parameter of a function.
func (w *Workspace) Variable(function, name string) (Variable, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(function)
	if err != nil {
		return Variable{}, err
	}
	i := slices.IndexFunc(f.Params, func(p Variable) bool { return p.Name == name })
	if i < 0 {
		return Variable{}, fmt.Errorf("%w: variable %q of %q", ErrUndefined, name, function)
	}
	return f.Params[i], nil
}

// DeleteVariable removes the named parameter of a function.
func (w *Workspace) DeleteVariable(function, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(function)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(f.Params, func(p Variable) bool { return p.Name == name })
	if i < 0 {
		return fmt.Errorf("%w: variable %q of %q", ErrUndefined, name, function)
	}
	f.Params = slices.Delete(f.Params, i, i+1)
	return nil
}

// AddLine appends a logic line and returns its 1-based number.
func (w *Workspace) AddLine(function, text string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(function)
	if err != nil {
		return 0, err
	}
	f.Lines = append(f.Lines, text)
	return len(f.Lines), nil
}

// EditLine replaces line n (1-based).
func (w *Workspace) EditLine(function string, n int, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.line(function, n)
	if err != nil {
		return err
	}
	f.Lines[n-1] = text
	return nil
}

// DeleteLine removes line n (1-based).
func (w *Workspace) DeleteLine(function string, n int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.line(function, n)
	if err != nil {
		return err
	}
	f.Lines = slices.Delete(f.Lines, n-1, n)
	return nil
}

// Lines returns a copy of a function's logic lines.
func (w *Workspace) Lines(function string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.get(function)
	if err != nil {
		return nil, err
	}
	return slices.Clone(f.Lines), nil
}

func (w *Workspace) line(function string, n int) (*Function, error) {
	f, err := w.get(function)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(f.Lines) {
		return nil, fmt.Errorf("%w: line %d of %q", ErrUndefined, n, function)
	}
	return f, nil
}
