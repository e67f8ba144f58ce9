package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrWong99/parseltongue/internal/match"
)

func (ed *Editor) lineChoices() *match.ChoiceSet {
	return match.MustChoiceSet(
		match.Choice{Label: "Create a new line", Keywords: []string{"new"}, Action: ed.newLine},
		match.Choice{Label: "Edit a line", Keywords: []string{"edit"}, Action: ed.editLine},
		match.Choice{Label: "Delete a line", Keywords: []string{"delete"}, Action: ed.deleteLine},
		match.Choice{Label: "Display all lines", Keywords: []string{"display"}, Action: ed.displayLines},
	)
}

func (ed *Editor) newLine(ctx context.Context, args match.Args) (string, error) {
	function := args[match.ArgFunctionName]
	text, err := ed.engine.Ask(ctx, ed.p, "What do you want this line of code to do?", false)
	if err != nil {
		return "", err
	}
	n, err := ed.ws.AddLine(function, text)
	if err != nil {
		return "", ed.undefined(ctx, err)
	}
	ed.log.Debug("line added", "function", function, "line", n)
	return text, nil
}

func (ed *Editor) editLine(ctx context.Context, args match.Args) (string, error) {
	function := args[match.ArgFunctionName]
	n, ok, err := ed.askLine(ctx, function, "Which line do you want to edit?")
	if err != nil || !ok {
		return "", err
	}
	text, err := ed.engine.Ask(ctx, ed.p, "What should the line say instead?", false)
	if err != nil {
		return "", err
	}
	if err := ed.ws.EditLine(function, n, text); err != nil {
		return "", ed.undefined(ctx, err)
	}
	ed.sayf(ctx, "Line %d is now: %s", n, text)
	return "", nil
}

func (ed *Editor) deleteLine(ctx context.Context, args match.Args) (string, error) {
	function := args[match.ArgFunctionName]
	n, ok, err := ed.askLine(ctx, function, "Which line do you want to delete?")
	if err != nil || !ok {
		return "", err
	}
	sure, err := ed.engine.YesNo(ctx, ed.p, fmt.Sprintf("Are you sure that you want to delete line %d?", n))
	if err != nil {
		return "", err
	}
	if !sure {
		ed.sayf(ctx, "Did not delete line %d.", n)
		return "", nil
	}
	if err := ed.ws.DeleteLine(function, n); err != nil {
		return "", ed.undefined(ctx, err)
	}
	ed.sayf(ctx, "Successfully deleted line %d.", n)
	return "", nil
}

func (ed *Editor) displayLines(ctx context.Context, args match.Args) (string, error) {
	lines, err := ed.ws.Lines(args[match.ArgFunctionName])
	if err != nil {
		return "", ed.undefined(ctx, err)
	}
	if len(lines) == 0 {
		ed.say(ctx, MsgNoLines)
		return "", nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%d) %s", i+1, l)
	}
	ed.say(ctx, strings.Join(out, "\n"))
	return "", nil
}

// askLine asks for an existing line number. Numbers that are not lines are
// announced and ok is false.
func (ed *Editor) askLine(ctx context.Context, function, msg string) (n int, ok bool, err error) {
	lines, err := ed.ws.Lines(function)
	if err != nil {
		return 0, false, ed.undefined(ctx, err)
	}
	if len(lines) == 0 {
		ed.say(ctx, MsgNoLines)
		return 0, false, nil
	}
	raw, err := ed.engine.Ask(ctx, ed.p, msg, false)
	if err != nil {
		return 0, false, err
	}
	n, ok = lineNumber(raw)
	if !ok {
		ed.say(ctx, MsgNotANumber)
		return 0, false, nil
	}
	if n < 1 || n > len(lines) {
		ed.sayf(ctx, "Line %d does not exist.", n)
		return 0, false, nil
	}
	return n, true, nil
}

func lineNumber(raw string) (int, bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "line"))
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	return match.ParseNumber(raw)
}
