package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/parseltongue/internal/codegen"
	"github.com/MrWong99/parseltongue/internal/match"
	"github.com/MrWong99/parseltongue/internal/menu"
)

func returnKindChoices() *match.ChoiceSet {
	return match.MustChoiceSet(
		match.Choice{Label: "return", Keywords: []string{"return", "give"}},
		match.Choice{Label: "yield", Keywords: []string{"yield", "generate"}},
	)
}

// newFunction walks through name, description, input variables, logic lines
// and the return statement. Going back from a sub-menu abandons the walk;
// what was defined so far stays in the workspace.
func (ed *Editor) newFunction(ctx context.Context, _ match.Args) (string, error) {
	name, err := ed.askName(ctx, "What do you want to name the function?")
	if err != nil {
		return "", err
	}
	if ed.ws.Has(name) {
		replace, err := ed.engine.YesNo(ctx, ed.p, fmt.Sprintf("The function %q already exists. Do you want to replace it?", name))
		if err != nil {
			return "", err
		}
		if !replace {
			ed.sayf(ctx, "Kept the existing function %q.", name)
			return "", nil
		}
		if err := ed.ws.DeleteFunction(name); err != nil {
			return "", fmt.Errorf("editor: replace function: %w", err)
		}
	}

	desc, err := ed.engine.Ask(ctx, ed.p, "What do you want in the description?", false)
	if err != nil {
		return "", err
	}
	if err := ed.ws.AddFunction(name, desc); err != nil {
		return "", fmt.Errorf("editor: new function: %w", err)
	}
	ed.log.Info("function created", "function", name)
	ed.sayf(ctx, "The function is now named %q.", name)

	needsInput, err := ed.engine.YesNo(ctx, ed.p, "Does the function require input variables?")
	if err != nil {
		return "", err
	}
	if needsInput {
		if _, err := ed.runVariables(ctx, ed.main, name); err != nil {
			return "", err
		}
	}

	ed.say(ctx, MsgAddLogic)
	if _, err := ed.runLines(ctx, ed.main, name); err != nil {
		return "", err
	}

	if err := ed.askReturn(ctx, name); err != nil {
		return "", err
	}
	src, ok := ed.source(ctx, name)
	if !ok {
		return "", nil
	}
	ed.say(ctx, src)
	return src, nil
}

func (ed *Editor) askReturn(ctx context.Context, name string) error {
	returns, err := ed.engine.YesNo(ctx, ed.p, "Should the function return anything?")
	if err != nil {
		return err
	}
	if !returns {
		return ed.ws.SetReturn(name, codegen.Return{})
	}
	kind, err := ed.engine.Choose(ctx, ed.p, "Should this return or yield?", ed.returnKinds)
	if err != nil {
		return err
	}
	if f, err := ed.ws.Function(name); err == nil && len(f.Params) > 0 {
		ed.sayf(ctx, "The input variables are: %s.", paramNames(f.Params))
	}
	value, err := ed.engine.Ask(ctx, ed.p, fmt.Sprintf("What do you want to %s?", kind.Label), false)
	if err != nil {
		return err
	}
	return ed.ws.SetReturn(name, codegen.Return{Kind: kind.Label, Value: value})
}

func (ed *Editor) editFunction(ctx context.Context, _ match.Args) (string, error) {
	name, ok, err := ed.pickFunction(ctx, "Which function do you want to edit?")
	if err != nil || !ok {
		return "", err
	}

	fm := ed.main.Child("Edit Function", nil, match.Args{match.ArgFunctionName: name})
	fm.Choices = match.MustChoiceSet(
		match.Choice{Label: "Edit the description", Keywords: []string{"description", "docstring"}, Action: ed.editDescription},
		match.Choice{Label: "Edit the input variables", Keywords: []string{"variable", "input", "parameter"}, Action: func(ctx context.Context, args match.Args) (string, error) {
			_, err := ed.runVariables(ctx, fm, args[match.ArgFunctionName])
			return "", err
		}},
		match.Choice{Label: "Edit the logic", Keywords: []string{"logic", "line", "code"}, Action: func(ctx context.Context, args match.Args) (string, error) {
			_, err := ed.runLines(ctx, fm, args[match.ArgFunctionName])
			return "", err
		}},
		match.Choice{Label: "Edit the return value", Keywords: []string{"return", "output", "result", "yield"}, Action: func(ctx context.Context, args match.Args) (string, error) {
			return "", ed.askReturn(ctx, args[match.ArgFunctionName])
		}},
		match.Choice{Label: "Display the function", Keywords: []string{"display"}, Action: func(ctx context.Context, args match.Args) (string, error) {
			if src, ok := ed.source(ctx, args[match.ArgFunctionName]); ok {
				ed.say(ctx, src)
			}
			return "", nil
		}},
	)
	if src, ok := ed.source(ctx, name); ok {
		fm.Display = []string{src}
	}

	if _, err := ed.engine.Run(ctx, ed.p, fm); err != nil {
		return "", err
	}
	ed.sayf(ctx, "Finished editing %q.", name)
	return "", nil
}

func (ed *Editor) editDescription(ctx context.Context, args match.Args) (string, error) {
	name := args[match.ArgFunctionName]
	desc, err := ed.engine.Ask(ctx, ed.p, "What do you want in the description?", false)
	if err != nil {
		return "", err
	}
	if err := ed.ws.SetDescription(name, desc); err != nil {
		ed.sayf(ctx, "The function %q is not defined.", name)
		return "", nil
	}
	ed.sayf(ctx, "The function description is now: %s.", desc)
	return "", nil
}

func (ed *Editor) deleteFunction(ctx context.Context, _ match.Args) (string, error) {
	name, ok, err := ed.pickFunction(ctx, "Which function do you want to delete?")
	if err != nil || !ok {
		return "", err
	}
	sure, err := ed.engine.YesNo(ctx, ed.p, fmt.Sprintf("Are you sure that you want to delete %q?", name))
	if err != nil {
		return "", err
	}
	if !sure {
		ed.sayf(ctx, "Did not delete %q.", name)
		return "", nil
	}
	if err := ed.ws.DeleteFunction(name); err != nil {
		ed.sayf(ctx, "The function %q is not defined.", name)
		return "", nil
	}
	ed.log.Info("function deleted", "function", name)
	ed.sayf(ctx, "Successfully deleted %q.", name)
	return "", nil
}

func (ed *Editor) displayFunction(ctx context.Context, _ match.Args) (string, error) {
	name, ok, err := ed.pickFunction(ctx, "Which function do you want to display?")
	if err != nil || !ok {
		return "", err
	}
	if src, ok := ed.source(ctx, name); ok {
		ed.say(ctx, src)
	}
	return "", nil
}

// saveFunction stores the rendered source. Store failures are reported to
// the user and do not end the session.
func (ed *Editor) saveFunction(ctx context.Context, _ match.Args) (string, error) {
	if ed.store == nil {
		ed.say(ctx, MsgNoStore)
		return "", nil
	}
	name, ok, err := ed.pickFunction(ctx, "Which function do you want to save?")
	if err != nil || !ok {
		return "", err
	}
	src, ok := ed.source(ctx, name)
	if !ok {
		return "", nil
	}
	if err := ed.store.Save(ctx, name, src); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		ed.log.Warn("save failed", "function", name, "err", err)
		ed.sayf(ctx, "Failed to save %q.", name)
		return "", nil
	}
	ed.log.Info("function saved", "function", name)
	ed.sayf(ctx, "Saved %q.", name)
	return "", nil
}

// runVariables runs the input variable menu for a function below parent.
func (ed *Editor) runVariables(ctx context.Context, parent *menu.Menu, function string) ([]string, error) {
	m := parent.Child("Function Input", ed.variableChoices(), match.Args{match.ArgFunctionName: function})
	if f, err := ed.ws.Function(function); err == nil {
		for _, p := range f.Params {
			m.Display = append(m.Display, p.Name+"="+p.Value)
		}
	}
	return ed.engine.Run(ctx, ed.p, m)
}

// runLines runs the logic line menu for a function below parent.
func (ed *Editor) runLines(ctx context.Context, parent *menu.Menu, function string) ([]string, error) {
	m := parent.Child("Logic", ed.lineChoices(), match.Args{match.ArgFunctionName: function})
	if lines, err := ed.ws.Lines(function); err == nil {
		m.Display = lines
	}
	return ed.engine.Run(ctx, ed.p, m)
}
