// Package prompt defines the boundary between the interaction loop and the
// user: asking for an utterance and announcing status messages.
package prompt

import (
	"context"
	"errors"
)

// ErrClosed is returned by [Prompter.Prompt] when the input source is
// exhausted (end of file, closed microphone pipe).
var ErrClosed = errors.New("prompt: input closed")

// Messages shared by prompter implementations.
const (
	MsgNotUnderstood = "I wasn't able to figure out what you meant."
	MsgNothingHeard  = "I didn't hear anything. Please try again."
)

// Prompter supplies user utterances and renders status messages.
//
// Only one prompt is outstanding at a time; implementations need not be safe
// for concurrent use.
type Prompter interface {
	// Prompt announces msg and blocks until an utterance is available. With
	// interpret set the answer is reduced to its space-joined stems and an
	// answer without actionable content is re-prompted; otherwise the
	// lowercased, trimmed text is returned.
	Prompt(ctx context.Context, msg string, interpret bool) (string, error)

	// Announce renders msg to the user. It never waits for a response.
	Announce(ctx context.Context, msg string)
}

// Displayer is implemented by prompters that can show a block of text, such
// as the accumulated results of a menu, without speaking it.
type Displayer interface {
	Display(ctx context.Context, title string, lines []string)
}
