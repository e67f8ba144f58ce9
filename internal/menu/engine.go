package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/parseltongue/internal/match"
	"github.com/MrWong99/parseltongue/internal/observe"
	"github.com/MrWong99/parseltongue/internal/prompt"
)

// Settings is the runtime configuration the engine consults. It is read
// before every confirmation decision.
type Settings interface {
	Validation() bool
}

type staticSettings bool

func (s staticSettings) Validation() bool { return bool(s) }

// Option configures an [Engine].
type Option func(*Engine)

// WithMatcher sets the matcher. Default: [match.New].
func WithMatcher(m *match.Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithSettings sets the settings source. Default: validation off.
func WithSettings(s Settings) Option {
	return func(e *Engine) { e.settings = s }
}

// WithMetrics records resolutions, actions and menu depth on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver registers fn to be called on every state change.
func WithObserver(fn func(Transition)) Option {
	return func(e *Engine) { e.observer = fn }
}

// Engine runs menus against a [prompt.Prompter]. It holds no per-menu state;
// each [Engine.Run] call owns its own loop.
type Engine struct {
	matcher  *match.Matcher
	settings Settings
	metrics  *observe.Metrics
	log      *slog.Logger
	observer func(Transition)
}

// New returns an [Engine].
func New(opts ...Option) *Engine {
	e := &Engine{
		settings: staticSettings(false),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.matcher == nil {
		e.matcher = match.New(match.WithLogger(e.log))
	}
	return e
}

// Matcher returns the matcher in use.
func (e *Engine) Matcher() *match.Matcher { return e.matcher }

// run is the state of one [Engine.Run] call.
type run struct {
	e       *Engine
	p       prompt.Prompter
	menu    *Menu
	set     *match.ChoiceSet
	title   string
	log     *slog.Logger
	state   State
	results []string
	display []string
}

func (r *run) to(s State) {
	if r.e.observer != nil {
		r.e.observer(Transition{Menu: r.title, From: r.state, To: s})
	}
	r.state = s
}

// Run drives m until the user declines to continue, goes back or exits, and
// returns the non-empty action results in order.
//
// The returned error is [ErrWentBack] (results discarded, nil slice),
// [ErrExit] (results so far), a prompt error such as [prompt.ErrClosed], or
// an error returned by an action.
func (e *Engine) Run(ctx context.Context, p prompt.Prompter, m *Menu) ([]string, error) {
	choices := m.Choices
	if choices == nil {
		choices = match.MustChoiceSet()
	}
	set, err := choices.With(match.BackChoice(), match.ExitChoice(), match.HelpChoice())
	if err != nil {
		return nil, fmt.Errorf("menu: %s: %w", m.Title, err)
	}

	r := &run{
		e:       e,
		p:       p,
		menu:    m,
		set:     set,
		title:   m.FullTitle(),
		display: slices.Clone(m.Display),
		state:   StateAwaitingInput,
	}
	r.log = e.log.With("menu", r.title)

	ctx, span := observe.StartSpan(ctx, "menu.Run", trace.WithAttributes(attribute.String("menu.title", r.title)))
	defer span.End()
	defer e.metrics.EnterMenu(ctx)()

	results, err := r.loop(ctx)
	span.SetAttributes(attribute.String("menu.final_state", r.state.String()))
	if err != nil && !errors.Is(err, ErrWentBack) && !errors.Is(err, ErrExit) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return results, err
}

func (r *run) loop(ctx context.Context) ([]string, error) {
	r.log.Debug("entering menu")
	r.p.Announce(ctx, r.title+".")
	r.help(ctx)

	for {
		r.show(ctx)
		c, err := r.e.choose(ctx, r.p, r.title, r.menu.prompt(), r.set, r.help, r.to)
		if err != nil {
			return r.results, err
		}

		switch c.Kind {
		case match.KindBack:
			if r.menu.Parent == nil {
				r.p.Announce(ctx, MsgNoParent)
				continue
			}
			r.to(StateWentBack)
			r.log.Debug("going back", "discarded_results", len(r.results))
			return nil, ErrWentBack
		case match.KindExit:
			r.to(StateExited)
			r.p.Announce(ctx, MsgExiting)
			return r.results, ErrExit
		}

		r.to(StateExecuting)
		r.p.Announce(ctx, MsgOkay)
		result, err := r.execute(ctx, c)
		switch {
		case errors.Is(err, ErrWentBack):
			// A sub-menu returned here.
			r.to(StateAwaitingInput)
			r.p.Announce(ctx, r.title+".")
			r.help(ctx)
			continue
		case err != nil:
			return r.results, err
		}
		if result != "" {
			r.results = append(r.results, result)
			r.display = append(r.display, result)
		}

		r.to(StateAwaitingContinue)
		more, err := r.e.YesNo(ctx, r.p, r.title+". Do you want to do anything else?")
		if err != nil {
			return r.results, err
		}
		if !more {
			r.to(StateExited)
			r.p.Announce(ctx, fmt.Sprintf("Closing the %s.", r.title))
			return r.results, nil
		}
		r.to(StateAwaitingInput)
	}
}

func (r *run) execute(ctx context.Context, c match.Choice) (string, error) {
	if c.Action == nil {
		r.log.Warn("choice has no action", "choice", c.Label)
		return "", nil
	}
	start := time.Now()
	result, err := c.Action(ctx, r.menu.Args.Clone())
	status := "ok"
	switch {
	case errors.Is(err, ErrWentBack):
		status = "back"
	case errors.Is(err, ErrExit):
		status = "exit"
	case err != nil:
		status = "error"
	}
	r.e.metrics.RecordAction(ctx, c.Label, status, time.Since(start))
	r.log.Debug("action finished", "choice", c.Label, "status", status, "duration", time.Since(start))
	if err != nil && status == "error" {
		return "", fmt.Errorf("menu: %s: %s: %w", r.title, c.Label, err)
	}
	return result, err
}

func (r *run) help(ctx context.Context) {
	r.p.Announce(ctx, MsgChoicesHead+"\n"+strings.Join(r.set.Help(), "\n"))
}

func (r *run) show(ctx context.Context) {
	if d, ok := r.p.(prompt.Displayer); ok && len(r.display) > 0 {
		d.Display(ctx, r.title, r.display)
	}
}
