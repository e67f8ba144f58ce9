// Package menu runs interactive, nestable menus on top of the choice matcher.
//
// A menu announces its title and numbered choices, then loops: prompt,
// resolve, confirm (when validation is on), execute, and ask whether the user
// wants to do anything else. Every menu carries the reserved "go back",
// "exit" and "help" choices.
//
//	AwaitingInput -> Resolving -> Executing -> AwaitingContinue -> AwaitingInput
//	                    |                           |
//	                    +-> WentBack / Exited       +-> Exited
//
// Nested menus are plain nested calls to [Engine.Run] from inside an action.
// "go back" unwinds one level and discards the child's results; "exit"
// unwinds every level.
package menu

import (
	"errors"
	"strings"

	"github.com/MrWong99/parseltongue/internal/match"
)

var (
	// ErrWentBack is returned by [Engine.Run] when the user chose "go back".
	// The child's results are discarded. An action that runs a sub-menu may
	// return it unchanged; the parent menu then resumes its own loop.
	ErrWentBack = errors.New("menu: went back")

	// ErrExit is returned when the user chose "exit". It unwinds every level
	// of nesting and ends the session.
	ErrExit = errors.New("menu: exit")
)

// Status messages.
const (
	MsgNoMatch     = "I wasn't able to match any of the available options. Please try again."
	MsgNoParent    = "No previous menu exists."
	MsgNotYesNo    = "I didn't understand what you said."
	MsgSayYesNo    = `Please say "yes" or "no".`
	MsgConfirm     = "Is that correct?"
	MsgOkay        = "Okay."
	MsgExiting     = "Exiting."
	MsgChoose      = "Please make a selection now."
	MsgChoicesHead = "The available choices are:"
)

// State is the position of a running menu in its interaction loop.
type State int

const (
	StateAwaitingInput State = iota
	StateResolving
	StateExecuting
	StateAwaitingContinue
	StateExited
	StateWentBack
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateResolving:
		return "resolving"
	case StateExecuting:
		return "executing"
	case StateAwaitingContinue:
		return "awaiting_continue"
	case StateExited:
		return "exited"
	case StateWentBack:
		return "went_back"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the menu.
func (s State) Terminal() bool { return s == StateExited || s == StateWentBack }

// Transition is reported to the observer set with [WithObserver].
type Transition struct {
	Menu string
	From State
	To   State
}

// Menu describes one menu. The reserved choices are added by the engine and
// must not be declared.
type Menu struct {
	// Title is announced on entry. " Menu" is appended if missing.
	Title string

	// Choices are the user-defined entries.
	Choices *match.ChoiceSet

	// Args is handed to every action, for example the name of the function
	// being edited.
	Args match.Args

	// Parent is the menu this one was entered from, or nil at the top level.
	// It is only used to decide whether "go back" is possible.
	Parent *Menu

	// Prompt is the question asked for each selection. Default: [MsgChoose].
	Prompt string

	// Display seeds the display buffer shown above the prompt; results are
	// appended to it.
	Display []string
}

// FullTitle returns the title as announced.
func (m *Menu) FullTitle() string {
	t := strings.TrimSpace(m.Title)
	if !strings.HasSuffix(t, "Menu") {
		t += " Menu"
	}
	return t
}

func (m *Menu) prompt() string {
	if m.Prompt != "" {
		return m.Prompt
	}
	return MsgChoose
}

// Child returns a sub-menu whose parent is m and whose args extend m's.
func (m *Menu) Child(title string, choices *match.ChoiceSet, args match.Args) *Menu {
	merged := m.Args.Clone()
	for k, v := range args {
		merged[k] = v
	}
	return &Menu{Title: title, Choices: choices, Args: merged, Parent: m}
}
