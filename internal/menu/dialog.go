package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrWong99/parseltongue/internal/match"
	"github.com/MrWong99/parseltongue/internal/prompt"
)

func (e *Engine) validation() bool { return e.settings != nil && e.settings.Validation() }

// choose prompts until input resolves to a confirmed choice of set. Help is
// handled here without leaving the selection step. to may be nil.
func (e *Engine) choose(ctx context.Context, p prompt.Prompter, menu, msg string, set *match.ChoiceSet,
	help func(context.Context), to func(State)) (match.Choice, error) {
	if to == nil {
		to = func(State) {}
	}
	for {
		to(StateAwaitingInput)
		raw, err := p.Prompt(ctx, msg, false)
		if err != nil {
			return match.Choice{}, err
		}

		to(StateResolving)
		res := e.matcher.Resolve(ctx, raw, set)
		e.metrics.RecordResolution(ctx, menu, res.Method.String())
		if !res.Matched() {
			p.Announce(ctx, MsgNoMatch)
			continue
		}
		e.log.Debug("resolved choice", "input", raw, "choice", res.Choice.Label, "method", res.Method, "token", res.Token)

		if res.Choice.Kind == match.KindHelp {
			if help != nil {
				help(ctx)
			}
			continue
		}
		// Administrative overrides act immediately.
		if res.Method == match.MethodAdmin {
			return res.Choice, nil
		}

		p.Announce(ctx, fmt.Sprintf("You selected %q.", res.Choice.Label))
		if !e.validation() {
			return res.Choice, nil
		}
		ok, err := e.YesNo(ctx, p, MsgConfirm)
		if err != nil {
			return match.Choice{}, err
		}
		if ok {
			return res.Choice, nil
		}
	}
}

// Choose asks msg until the answer resolves to one of set's choices, without
// running a menu loop. It is used for one-off questions such as picking a
// variable type. An administrative exit returns [ErrExit].
func (e *Engine) Choose(ctx context.Context, p prompt.Prompter, msg string, set *match.ChoiceSet) (match.Choice, error) {
	help := func(ctx context.Context) {
		p.Announce(ctx, MsgChoicesHead+"\n"+strings.Join(set.Help(), "\n"))
	}
	help(ctx)
	for {
		c, err := e.choose(ctx, p, "", msg, set, help, nil)
		if err != nil {
			return match.Choice{}, err
		}
		if c.Kind == match.KindExit {
			return match.Choice{}, ErrExit
		}
		// Administrative actions run in place and the question is asked again.
		if _, member := set.Lookup(c.Label); !member && c.Action != nil {
			if _, err := c.Action(ctx, nil); err != nil {
				return match.Choice{}, err
			}
			continue
		}
		return c, nil
	}
}

// YesNo asks msg until the answer is understood as yes or no. An
// unrecognised answer is reported and the question is narrowed to an
// explicit yes/no request.
func (e *Engine) YesNo(ctx context.Context, p prompt.Prompter, msg string) (bool, error) {
	for {
		raw, err := p.Prompt(ctx, msg, false)
		if err != nil {
			return false, err
		}
		if answer, ok := e.matcher.ParseYesNo(ctx, raw); ok {
			return answer, nil
		}
		e.log.Debug("unrecognised yes/no answer", "input", raw)
		p.Announce(ctx, MsgNotYesNo)
		msg = MsgSayYesNo
	}
}

// Ask prompts for free text, echoes it and, when validation is on, repeats
// the question until the user confirms the answer.
func (e *Engine) Ask(ctx context.Context, p prompt.Prompter, msg string, interpret bool) (string, error) {
	for {
		answer, err := p.Prompt(ctx, msg, interpret)
		if err != nil {
			return "", err
		}
		p.Announce(ctx, fmt.Sprintf("You said: %q.", answer))
		if !e.validation() {
			return answer, nil
		}
		ok, err := e.YesNo(ctx, p, MsgConfirm)
		if err != nil {
			return "", err
		}
		if ok {
			return answer, nil
		}
	}
}
