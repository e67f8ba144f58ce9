package menu_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/MrWong99/parseltongue/internal/match"
	"github.com/MrWong99/parseltongue/internal/menu"
	"github.com/MrWong99/parseltongue/internal/prompt"
	"github.com/MrWong99/parseltongue/internal/prompt/mock"
)

type settings struct{ validation bool }

func (s settings) Validation() bool { return s.validation }

// recorder collects state transitions.
type recorder struct {
	mu          sync.Mutex
	transitions []menu.Transition
}

func (r *recorder) observe(t menu.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

func (r *recorder) last() menu.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transitions) == 0 {
		return menu.StateAwaitingInput
	}
	return r.transitions[len(r.transitions)-1].To
}

func (r *recorder) visited(s menu.State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.transitions, func(t menu.Transition) bool { return t.To == s })
}

// counter is an action that returns result and counts its calls.
type counter struct {
	mu     sync.Mutex
	calls  int
	args   []match.Args
	result string
	err    error
}

func (c *counter) action(_ context.Context, args match.Args) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.args = append(c.args, args)
	return c.result, c.err
}

func functionMenu(create, edit *counter) *menu.Menu {
	return &menu.Menu{
		Title: "Main",
		Choices: match.MustChoiceSet(
			match.Choice{Label: "Create a new function", Keywords: []string{"new"}, Action: create.action},
			match.Choice{Label: "Edit a function", Keywords: []string{"edit"}, Action: edit.action},
		),
		Args: match.Args{match.ArgFunctionName: "main"},
	}
}

func TestRun_NumericSelection(t *testing.T) {
	t.Parallel()

	create := &counter{result: "def main():"}
	edit := &counter{}
	p := &mock.Prompter{Responses: []string{"1", "no"}}
	e := menu.New()

	results, err := e.Run(context.Background(), p, functionMenu(create, edit))
	if err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}
	if create.calls != 1 || edit.calls != 0 {
		t.Errorf("calls: create=%d edit=%d, want 1, 0", create.calls, edit.calls)
	}
	if !slices.Equal(results, []string{"def main():"}) {
		t.Errorf("results = %q, want [def main():]", results)
	}
	if create.args[0][match.ArgFunctionName] != "main" {
		t.Errorf("action args = %v, want function_name=main", create.args[0])
	}
	for _, want := range []string{"Main Menu.", `You selected "Create a new function".`, menu.MsgOkay, "Closing the Main Menu."} {
		if p.Count(want) != 1 {
			t.Errorf("announcement %q seen %d times, want 1", want, p.Count(want))
		}
	}
	if got := p.PromptCalls[1].Msg; got != "Main Menu. Do you want to do anything else?" {
		t.Errorf("continuation prompt = %q", got)
	}
}

func TestRun_UnmatchedStaysAwaitingInput(t *testing.T) {
	t.Parallel()

	create, edit := &counter{result: "x"}, &counter{result: "y"}
	rec := &recorder{}
	p := &mock.Prompter{Responses: []string{"xyzzy"}}
	e := menu.New(menu.WithObserver(rec.observe))

	results, err := e.Run(context.Background(), p, functionMenu(create, edit))
	if !errors.Is(err, prompt.ErrClosed) {
		t.Fatalf("Run: err=%v, want ErrClosed", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %q, want none", results)
	}
	if n := p.Count(menu.MsgNoMatch); n != 1 {
		t.Errorf("no-match announcements = %d, want 1", n)
	}
	if got := rec.last(); got != menu.StateAwaitingInput {
		t.Errorf("final state = %v, want awaiting_input", got)
	}
	if rec.visited(menu.StateExecuting) {
		t.Error("engine reached executing on unmatched input")
	}
	if create.calls+edit.calls != 0 {
		t.Error("an action ran on unmatched input")
	}
}

func TestRun_HelpDoesNotConsumeTurn(t *testing.T) {
	t.Parallel()

	create, edit := &counter{}, &counter{result: "edited"}
	p := &mock.Prompter{Responses: []string{"help", "2", "no"}}

	results, err := menu.New().Run(context.Background(), p, functionMenu(create, edit))
	if err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}
	if !slices.Equal(results, []string{"edited"}) {
		t.Errorf("results = %q, want [edited]", results)
	}
	var helps int
	for _, a := range p.Announcements {
		if strings.HasPrefix(a, menu.MsgChoicesHead) {
			helps++
			if !strings.Contains(a, "1) Create a new function.") || !strings.Contains(a, "5) help.") {
				t.Errorf("help text = %q", a)
			}
		}
	}
	if helps != 2 {
		t.Errorf("help shown %d times, want 2", helps)
	}
}

func TestRun_ValidationRetriesOnNo(t *testing.T) {
	t.Parallel()

	create, edit := &counter{result: "c"}, &counter{result: "e"}
	p := &mock.Prompter{Responses: []string{"1", "nope", "edit a function", "yeah", "no"}}
	e := menu.New(menu.WithSettings(settings{validation: true}))

	results, err := e.Run(context.Background(), p, functionMenu(create, edit))
	if err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}
	if create.calls != 0 || edit.calls != 1 {
		t.Errorf("calls: create=%d edit=%d, want 0, 1", create.calls, edit.calls)
	}
	if !slices.Equal(results, []string{"e"}) {
		t.Errorf("results = %q, want [e]", results)
	}
	if n := p.Count(menu.MsgConfirm); n != 2 {
		t.Errorf("confirmations = %d, want 2", n)
	}
}

func TestRun_ContinueLoops(t *testing.T) {
	t.Parallel()

	create, edit := &counter{result: "c"}, &counter{result: ""}
	p := &mock.Prompter{Responses: []string{"create", "yes", "modify", "sure", "new", "no"}}

	results, err := menu.New().Run(context.Background(), p, functionMenu(create, edit))
	if err != nil {
		t.Fatalf("Run: unexpected error: %v", err)
	}
	if create.calls != 2 || edit.calls != 1 {
		t.Errorf("calls: create=%d edit=%d, want 2, 1", create.calls, edit.calls)
	}
	// Empty results are not accumulated.
	if !slices.Equal(results, []string{"c", "c"}) {
		t.Errorf("results = %q, want [c c]", results)
	}
	if len(p.DisplayCalls) == 0 {
		t.Fatal("display buffer never shown")
	}
	if got := p.DisplayCalls[len(p.DisplayCalls)-1].Lines; !slices.Equal(got, []string{"c"}) {
		t.Errorf("last display = %q, want [c]", got)
	}
}

func TestRun_GoBackWithoutParent(t *testing.T) {
	t.Parallel()

	p := &mock.Prompter{Responses: []string{"go back", "exit"}}
	rec := &recorder{}
	_, err := menu.New(menu.WithObserver(rec.observe)).Run(context.Background(), p, functionMenu(&counter{}, &counter{}))
	if !errors.Is(err, menu.ErrExit) {
		t.Fatalf("Run: err=%v, want ErrExit", err)
	}
	if p.Count(menu.MsgNoParent) != 1 {
		t.Errorf("no-parent announcements = %d, want 1", p.Count(menu.MsgNoParent))
	}
	if rec.visited(menu.StateWentBack) {
		t.Error("top-level menu went back")
	}
	if rec.last() != menu.StateExited {
		t.Errorf("final state = %v, want exited", rec.last())
	}
}

func TestRun_NestedGoBackDiscardsChildResults(t *testing.T) {
	t.Parallel()

	e := menu.New()
	newLine := &counter{result: "x = 1"}
	var childResults []string
	var childErr error

	var parent *menu.Menu
	parent = &menu.Menu{
		Title: "Main",
		Choices: match.MustChoiceSet(
			match.Choice{Label: "Edit a function", Keywords: []string{"edit"}, Action: func(ctx context.Context, args match.Args) (string, error) {
				child := parent.Child("Logic", match.MustChoiceSet(
					match.Choice{Label: "Create a new line", Keywords: []string{"new"}, Action: newLine.action},
				), match.Args{match.ArgVariableName: "x"})
				childResults, childErr = e.Run(ctx, promptFrom(ctx), child)
				return strings.Join(childResults, "\n"), childErr
			}},
		),
		Args: match.Args{match.ArgFunctionName: "main"},
	}

	p := &mock.Prompter{Responses: []string{"edit", "new", "yes", "go back", "exit"}}
	results, err := e.Run(withPrompter(context.Background(), p), p, parent)
	if !errors.Is(err, menu.ErrExit) {
		t.Fatalf("Run: err=%v, want ErrExit", err)
	}
	if !errors.Is(childErr, menu.ErrWentBack) || childResults != nil {
		t.Errorf("child returned %q, %v; want nil, ErrWentBack", childResults, childErr)
	}
	if len(results) != 0 {
		t.Errorf("parent results = %q, want none", results)
	}
	if newLine.calls != 1 {
		t.Errorf("child action calls = %d, want 1", newLine.calls)
	}
	if got := newLine.args[0]; got[match.ArgFunctionName] != "main" || got[match.ArgVariableName] != "x" {
		t.Errorf("child args = %v", got)
	}
	if p.Count("Main Menu.") != 2 {
		t.Errorf("parent title announced %d times, want 2 (entry and return)", p.Count("Main Menu."))
	}
}

func TestRun_ExitUnwindsAllLevels(t *testing.T) {
	t.Parallel()

	e := menu.New()
	var parent *menu.Menu
	parent = &menu.Menu{
		Title: "Main",
		Choices: match.MustChoiceSet(
			match.Choice{Label: "Edit a function", Keywords: []string{"edit"}, Action: func(ctx context.Context, _ match.Args) (string, error) {
				_, err := e.Run(ctx, promptFrom(ctx), parent.Child("Logic", nil, nil))
				return "", err
			}},
		),
	}

	p := &mock.Prompter{Responses: []string{"edit", "force exit", "1"}}
	_, err := e.Run(withPrompter(context.Background(), p), p, parent)
	if !errors.Is(err, menu.ErrExit) {
		t.Fatalf("Run: err=%v, want ErrExit", err)
	}
	if p.Remaining() != 1 {
		t.Errorf("remaining responses = %d, want 1 (exit must end the session)", p.Remaining())
	}
}

func TestRun_ActionErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	p := &mock.Prompter{Responses: []string{"1", "no"}}
	_, err := menu.New().Run(context.Background(), p, functionMenu(&counter{err: boom}, &counter{}))
	if !errors.Is(err, boom) {
		t.Fatalf("Run: err=%v, want boom", err)
	}
	if p.Remaining() != 1 {
		t.Errorf("remaining responses = %d, want 1", p.Remaining())
	}
}

func TestRun_ReservedLabelConflict(t *testing.T) {
	t.Parallel()

	m := &menu.Menu{Title: "Bad", Choices: match.MustChoiceSet(match.Choice{Label: "help", Keywords: []string{"help"}})}
	if _, err := menu.New().Run(context.Background(), &mock.Prompter{}, m); !errors.Is(err, match.ErrDuplicateLabel) {
		t.Fatalf("Run: err=%v, want ErrDuplicateLabel", err)
	}
}

func TestYesNo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		responses []string
		want      bool
		unclear   int
	}{
		{[]string{"yeah"}, true, 0},
		{[]string{"nope"}, false, 0},
		{[]string{"maybe", "yes please"}, true, 1},
		{[]string{"hmm", "what", "no"}, false, 2},
	}
	for _, tc := range tests {
		p := &mock.Prompter{Responses: tc.responses}
		got, err := menu.New().YesNo(context.Background(), p, "Continue?")
		if err != nil {
			t.Fatalf("YesNo(%q): unexpected error: %v", tc.responses, err)
		}
		if got != tc.want {
			t.Errorf("YesNo(%q): got=%v, want %v", tc.responses, got, tc.want)
		}
		if n := p.Count(menu.MsgNotYesNo); n != tc.unclear {
			t.Errorf("YesNo(%q): unclear announcements=%d, want %d", tc.responses, n, tc.unclear)
		}
		if tc.unclear > 0 && p.PromptCalls[1].Msg != menu.MsgSayYesNo {
			t.Errorf("YesNo(%q): re-ask = %q, want %q", tc.responses, p.PromptCalls[1].Msg, menu.MsgSayYesNo)
		}
	}
}

func TestAsk(t *testing.T) {
	t.Parallel()

	t.Run("no validation", func(t *testing.T) {
		t.Parallel()
		p := &mock.Prompter{Responses: []string{"Compute Total"}}
		got, err := menu.New().Ask(context.Background(), p, "What is the name?", false)
		if err != nil || got != "compute total" {
			t.Fatalf("Ask = %q, %v; want \"compute total\", nil", got, err)
		}
		if p.Count(`You said: "compute total".`) != 1 {
			t.Errorf("echo missing: %q", p.Announcements)
		}
	})

	t.Run("validation retries", func(t *testing.T) {
		t.Parallel()
		p := &mock.Prompter{Responses: []string{"totl", "no", "total", "yes"}}
		e := menu.New(menu.WithSettings(settings{validation: true}))
		got, err := e.Ask(context.Background(), p, "What is the name?", false)
		if err != nil || got != "total" {
			t.Fatalf("Ask = %q, %v; want \"total\", nil", got, err)
		}
	})
}

func TestChoose(t *testing.T) {
	t.Parallel()

	types := match.MustChoiceSet(
		match.Choice{Label: "number", Keywords: []string{"number", "integer"}},
		match.Choice{Label: "text", Keywords: []string{"text", "string"}},
	)

	p := &mock.Prompter{Responses: []string{"blorp", "integer"}}
	c, err := menu.New().Choose(context.Background(), p, "What type is it?", types)
	if err != nil {
		t.Fatalf("Choose: unexpected error: %v", err)
	}
	if c.Label != "number" {
		t.Errorf("Choose = %q, want number", c.Label)
	}
	if p.Count(menu.MsgNoMatch) != 1 {
		t.Errorf("no-match announcements = %d, want 1", p.Count(menu.MsgNoMatch))
	}

	p = &mock.Prompter{Responses: []string{"exit"}}
	if _, err := menu.New().Choose(context.Background(), p, "What type is it?", types); !errors.Is(err, menu.ErrExit) {
		t.Errorf("Choose(exit): err=%v, want ErrExit", err)
	}
}

func TestChoose_AdminActionRunsInPlace(t *testing.T) {
	t.Parallel()

	toggle := &counter{}
	m := match.New(match.WithAdmin(match.Admin{
		Phrases: []string{"toggle validation"},
		Choice:  match.Choice{Label: "Toggle validation", Action: toggle.action},
	}))
	types := match.MustChoiceSet(
		match.Choice{Label: "number", Keywords: []string{"number"}},
		match.Choice{Label: "text", Keywords: []string{"text"}},
	)

	p := &mock.Prompter{Responses: []string{"toggle validation", "text"}}
	c, err := menu.New(menu.WithMatcher(m)).Choose(context.Background(), p, "What type is it?", types)
	if err != nil {
		t.Fatalf("Choose: unexpected error: %v", err)
	}
	if c.Label != "text" {
		t.Errorf("Choose = %q, want text", c.Label)
	}
	if toggle.calls != 1 {
		t.Errorf("admin action calls = %d, want 1", toggle.calls)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	for s, want := range map[menu.State]string{
		menu.StateAwaitingInput:    "awaiting_input",
		menu.StateResolving:        "resolving",
		menu.StateExecuting:        "executing",
		menu.StateAwaitingContinue: "awaiting_continue",
		menu.StateExited:           "exited",
		menu.StateWentBack:         "went_back",
		menu.State(99):             "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
	if !menu.StateExited.Terminal() || menu.StateExecuting.Terminal() {
		t.Error("Terminal() mismatch")
	}
}

type prompterKey struct{}

func withPrompter(ctx context.Context, p prompt.Prompter) context.Context {
	return context.WithValue(ctx, prompterKey{}, p)
}

func promptFrom(ctx context.Context) prompt.Prompter {
	return ctx.Value(prompterKey{}).(prompt.Prompter)
}
