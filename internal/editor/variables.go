package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrWong99/parseltongue/internal/codegen"
	"github.com/MrWong99/parseltongue/internal/match"
)

func (ed *Editor) variableChoices() *match.ChoiceSet {
	return match.MustChoiceSet(
		match.Choice{Label: "Create a new variable", Keywords: []string{"new"}, Action: ed.newVariable},
		match.Choice{Label: "Edit a variable", Keywords: []string{"edit"}, Action: ed.editVariable},
		match.Choice{Label: "Delete a variable", Keywords: []string{"delete"}, Action: ed.deleteVariable},
		match.Choice{Label: "Display a variable", Keywords: []string{"display"}, Action: ed.displayVariable},
	)
}

func (ed *Editor) newVariable(ctx context.Context, args match.Args) (string, error) {
	function := args[match.ArgFunctionName]
	name, err := ed.askName(ctx, "What do you want to name the variable?")
	if err != nil {
		return "", err
	}
	if existing, err := ed.ws.Variable(function, name); err == nil {
		replace, err := ed.engine.YesNo(ctx, ed.p, fmt.Sprintf("The variable %q already exists. Do you want to replace it?", name))
		if err != nil || !replace {
			return param(existing), err
		}
	}
	v, ok, err := ed.askValue(ctx, name)
	if err != nil || !ok {
		return "", err
	}
	if err := ed.ws.SetVariable(function, v); err != nil {
		return "", ed.undefined(ctx, err)
	}
	ed.log.Debug("variable set", "function", function, "variable", name, "type", v.Type)
	return param(v), nil
}

// askValue asks for the initial value and the type and casts the value. A
// failed cast is announced and ok is false.
func (ed *Editor) askValue(ctx context.Context, name string) (v Variable, ok bool, err error) {
	raw, err := ed.engine.Ask(ctx, ed.p, "What do you want as the initial value?", false)
	if err != nil {
		return Variable{}, false, err
	}
	c, err := ed.engine.Choose(ctx, ed.p, "What type should this variable be?", typeChoices)
	if err != nil {
		return Variable{}, false, err
	}
	t := VarType(c.Label)
	value, err := Cast(t, raw)
	if err != nil {
		ed.log.Debug("cast failed", "variable", name, "err", err)
		ed.sayf(ctx, "Failed to cast %q to a %q.", raw, t)
		return Variable{}, false, nil
	}
	return Variable{Name: name, Type: t, Value: value}, true, nil
}

func (ed *Editor) editVariable(ctx context.Context, args match.Args) (string, error) {
	function := args[match.ArgFunctionName]
	v, ok, err := ed.existingVariable(ctx, function, "Which variable do you want to edit?")
	if err != nil || !ok {
		return "", err
	}
	updated, ok, err := ed.askValue(ctx, v.Name)
	if err != nil || !ok {
		return "", err
	}
	if err := ed.ws.SetVariable(function, updated); err != nil {
		return "", ed.undefined(ctx, err)
	}
	ed.sayf(ctx, "Successfully updated %q.", v.Name)
	return param(updated), nil
}

func (ed *Editor) deleteVariable(ctx context.Context, args match.Args) (string, error) {
	function := args[match.ArgFunctionName]
	v, ok, err := ed.existingVariable(ctx, function, "Which variable do you want to delete?")
	if err != nil || !ok {
		return "", err
	}
	sure, err := ed.engine.YesNo(ctx, ed.p, fmt.Sprintf("Are you sure that you want to delete %q?", v.Name))
	if err != nil {
		return "", err
	}
	if !sure {
		ed.sayf(ctx, "Did not delete %q.", v.Name)
		return "", nil
	}
	if err := ed.ws.DeleteVariable(function, v.Name); err != nil {
		return "", ed.undefined(ctx, err)
	}
	ed.sayf(ctx, "Successfully deleted %q.", v.Name)
	return "", nil
}

func (ed *Editor) displayVariable(ctx context.Context, args match.Args) (string, error) {
	v, ok, err := ed.existingVariable(ctx, args[match.ArgFunctionName], "Which variable do you want to display?")
	if err != nil || !ok {
		return "", err
	}
	ed.sayf(ctx, "Name: %s. Type: %s. Value: %s.", v.Name, v.Type, v.Value)
	return "", nil
}

// existingVariable asks for a variable name and looks it up. An unknown name
// is announced and ok is false.
func (ed *Editor) existingVariable(ctx context.Context, function, msg string) (Variable, bool, error) {
	raw, err := ed.engine.Ask(ctx, ed.p, msg, false)
	if err != nil {
		return Variable{}, false, err
	}
	v, err := ed.ws.Variable(function, codegen.Identifier(raw))
	if err != nil {
		return Variable{}, false, ed.undefined(ctx, err)
	}
	return v, true, nil
}

// undefined announces an [ErrUndefined] failure and swallows it. Other
// errors are returned.
func (ed *Editor) undefined(ctx context.Context, err error) error {
	if !errors.Is(err, ErrUndefined) {
		return err
	}
	ed.log.Warn("undefined target", "err", err)
	ed.say(ctx, "The requested function or variable is not defined.")
	return nil
}

func param(v Variable) string { return v.Name + "=" + v.Value }

func paramNames(vs []Variable) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.Name
	}
	return strings.Join(names, ", ")
}
