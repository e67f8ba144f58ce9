// Package editor is a voice-driven Python function editor built on the menu
// engine.
//
// The main menu creates, edits, deletes, displays and saves functions. A
// function is assembled from a name, a docstring, input variables with typed
// default values, free-form logic lines and an optional return or yield
// statement. All state lives in a [Workspace] owned by the [Editor].
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrWong99/parseltongue/internal/codegen"
	"github.com/MrWong99/parseltongue/internal/config"
	"github.com/MrWong99/parseltongue/internal/match"
	"github.com/MrWong99/parseltongue/internal/menu"
	"github.com/MrWong99/parseltongue/internal/prompt"
	"github.com/MrWong99/parseltongue/internal/store"
)

// Status messages.
const (
	MsgNoFunctions   = "No functions are defined yet."
	MsgInvalidName   = "That is not a valid name. Please try again."
	MsgNoStore       = "No function store is configured."
	MsgAddLogic      = "Great. Now let's add some logic lines."
	MsgNoLines       = "There are no lines yet."
	MsgNotANumber    = "That is not a line number."
	MsgValidationOn  = "Validation is now on."
	MsgValidationOff = "Validation is now off."
)

// Option configures an [Editor].
type Option func(*Editor)

// WithWorkspace sets the workspace. Default: a new empty workspace.
func WithWorkspace(ws *Workspace) Option {
	return func(ed *Editor) { ed.ws = ws }
}

// WithStore enables "Save a function". Default: none, saving is reported as
// unavailable.
func WithStore(s store.Store) Option {
	return func(ed *Editor) { ed.store = s }
}

// WithSettings sets the runtime settings changed by the administrative
// actions. Default: validation off, level info.
func WithSettings(s *config.Settings) Option {
	return func(ed *Editor) { ed.settings = s }
}

// WithMatchOptions adds options for the matcher the editor builds.
func WithMatchOptions(opts ...match.Option) Option {
	return func(ed *Editor) { ed.matchOpts = append(ed.matchOpts, opts...) }
}

// WithEngineOptions adds options for the menu engine the editor builds.
func WithEngineOptions(opts ...menu.Option) Option {
	return func(ed *Editor) { ed.engineOpts = append(ed.engineOpts, opts...) }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(ed *Editor) { ed.log = l }
}

// Editor runs the editing menus against one [prompt.Prompter].
type Editor struct {
	p          prompt.Prompter
	ws         *Workspace
	store      store.Store
	settings   *config.Settings
	matchOpts  []match.Option
	engineOpts []menu.Option
	log        *slog.Logger

	engine      *menu.Engine
	main        *menu.Menu
	logLevels   *match.ChoiceSet
	returnKinds *match.ChoiceSet
}

// New returns an [Editor]. It builds its own matcher, with the "set logging
// level" and "toggle validation" overrides registered next to "exit", and its
// own menu engine reading validation from the editor's settings.
func New(p prompt.Prompter, opts ...Option) *Editor {
	ed := &Editor{p: p, log: slog.Default()}
	for _, o := range opts {
		o(ed)
	}
	if ed.ws == nil {
		ed.ws = NewWorkspace()
	}
	if ed.settings == nil {
		ed.settings = config.NewSettings(config.Default(), nil)
	}

	matchOpts := append([]match.Option{match.WithLogger(ed.log)}, ed.matchOpts...)
	matchOpts = append(matchOpts, match.WithAdmin(ed.admin()...))
	engineOpts := append([]menu.Option{menu.WithLogger(ed.log)}, ed.engineOpts...)
	engineOpts = append(engineOpts, menu.WithMatcher(match.New(matchOpts...)), menu.WithSettings(ed.settings))
	ed.engine = menu.New(engineOpts...)
	ed.logLevels = logLevelChoices()
	ed.returnKinds = returnKindChoices()

	ed.main = &menu.Menu{
		Title: "Main",
		Choices: match.MustChoiceSet(
			match.Choice{Label: "Create a new function", Keywords: []string{"new"}, Action: ed.newFunction},
			match.Choice{Label: "Edit a function", Keywords: []string{"edit"}, Action: ed.editFunction},
			match.Choice{Label: "Delete a function", Keywords: []string{"delete"}, Action: ed.deleteFunction},
			match.Choice{Label: "Display a function", Keywords: []string{"display"}, Action: ed.displayFunction},
			match.Choice{Label: "Save a function", Keywords: []string{"save", "store", "write"}, Action: ed.saveFunction},
			match.Choice{Label: "Toggle validation", Keywords: []string{"validation", "toggle"}, Action: ed.toggleValidation},
		),
	}
	return ed
}

// Workspace returns the editor's workspace.
func (ed *Editor) Workspace() *Workspace { return ed.ws }

// Engine returns the menu engine.
func (ed *Editor) Engine() *menu.Engine { return ed.engine }

// Run runs the main menu until the user closes it or exits. The results are
// the sources of the functions created during the session.
func (ed *Editor) Run(ctx context.Context) ([]string, error) {
	ed.log.Info("editor session started")
	results, err := ed.engine.Run(ctx, ed.p, ed.main)
	ed.log.Info("editor session ended", "functions", len(ed.ws.Names()), "err", err)
	return results, err
}

func (ed *Editor) say(ctx context.Context, msg string) { ed.p.Announce(ctx, msg) }

func (ed *Editor) sayf(ctx context.Context, format string, args ...any) {
	ed.p.Announce(ctx, fmt.Sprintf(format, args...))
}

// askName asks until the answer yields a non-empty identifier.
func (ed *Editor) askName(ctx context.Context, msg string) (string, error) {
	for {
		raw, err := ed.engine.Ask(ctx, ed.p, msg, false)
		if err != nil {
			return "", err
		}
		if name := codegen.Identifier(raw); name != "" {
			return name, nil
		}
		ed.say(ctx, MsgInvalidName)
	}
}

// pickFunction offers the defined functions as choices. ok is false when
// there are none.
func (ed *Editor) pickFunction(ctx context.Context, msg string) (name string, ok bool, err error) {
	names := ed.ws.Names()
	if len(names) == 0 {
		ed.say(ctx, MsgNoFunctions)
		return "", false, nil
	}
	choices := make([]match.Choice, len(names))
	for i, n := range names {
		choices[i] = match.Choice{Label: n, Keywords: append(strings.Split(n, "_"), n)}
	}
	set, err := match.NewChoiceSet(choices...)
	if err != nil {
		return "", false, fmt.Errorf("editor: function choices: %w", err)
	}
	c, err := ed.engine.Choose(ctx, ed.p, msg, set)
	if err != nil {
		return "", false, err
	}
	return c.Label, true, nil
}

func (ed *Editor) source(ctx context.Context, name string) (string, bool) {
	f, err := ed.ws.Function(name)
	if err != nil {
		ed.sayf(ctx, "The function %q is not defined.", name)
		return "", false
	}
	src, err := f.Source()
	if err != nil {
		ed.log.Warn("render failed", "function", name, "err", err)
		ed.sayf(ctx, "Failed to render %q.", name)
		return "", false
	}
	return src, true
}
