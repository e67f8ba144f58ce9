package editor

import (
	"context"

	"github.com/MrWong99/parseltongue/internal/config"
	"github.com/MrWong99/parseltongue/internal/match"
)

// logLevelChoices is built per editor since a set caches its keyword index
// with the first matcher that resolves against it.
func logLevelChoices() *match.ChoiceSet {
	return match.MustChoiceSet(
		match.Choice{Label: string(config.LogDebug), Keywords: []string{"debug", "verbose"}},
		match.Choice{Label: string(config.LogInfo), Keywords: []string{"info", "information", "normal"}},
		match.Choice{Label: string(config.LogWarn), Keywords: []string{"warn", "warning"}},
		match.Choice{Label: string(config.LogError), Keywords: []string{"error", "quiet"}},
	)
}

// admin returns the overrides available in every menu next to "exit".
func (ed *Editor) admin() []match.Admin {
	return []match.Admin{
		{
			Phrases: []string{"set logging level", "set log level"},
			Choice:  match.Choice{Label: "Set logging level", Action: ed.setLogLevel},
		},
		{
			Phrases: []string{"toggle validation"},
			Choice:  match.Choice{Label: "Toggle validation", Action: ed.toggleValidation},
		},
	}
}

func (ed *Editor) setLogLevel(ctx context.Context, _ match.Args) (string, error) {
	c, err := ed.engine.Choose(ctx, ed.p, "Which logging level?", ed.logLevels)
	if err != nil {
		return "", err
	}
	if !ed.settings.SetLevel(config.LogLevel(c.Label)) {
		ed.sayf(ctx, "Failed to set the logging level to %s.", c.Label)
		return "", nil
	}
	ed.log.Info("log level changed", "level", c.Label)
	ed.sayf(ctx, "The logging level is now %s.", c.Label)
	return "", nil
}

func (ed *Editor) toggleValidation(ctx context.Context, _ match.Args) (string, error) {
	on := ed.settings.ToggleValidation()
	ed.log.Info("validation toggled", "validation", on)
	if on {
		ed.say(ctx, MsgValidationOn)
	} else {
		ed.say(ctx, MsgValidationOff)
	}
	return "", nil
}
