// Package mock provides a scripted prompt.Prompter for driving menus in tests.
//
// Responses are handed out in order, one per Prompt call. Once they run out
// Prompt returns prompt.ErrClosed, which ends any interaction loop. Every
// prompt and announcement is recorded.
//
// Example:
//
//	p := &mock.Prompter{Responses: []string{"1", "no"}}
//	results, err := engine.Run(ctx, p, m)
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/MrWong99/parseltongue/internal/prompt"
	"github.com/MrWong99/parseltongue/internal/textnorm"
)

// PromptCall records a single invocation of Prompter.Prompt.
type PromptCall struct {
	// Msg is the prompt message.
	Msg string
	// Interpret is the interpret flag passed to Prompt.
	Interpret bool
}

// DisplayCall records a single invocation of Prompter.Display.
type DisplayCall struct {
	Title string
	Lines []string
}

// Prompter is a scripted implementation of prompt.Prompter and
// prompt.Displayer.
type Prompter struct {
	mu sync.Mutex

	// Responses are returned by Prompt in order.
	Responses []string

	// PromptCalls records every call to Prompt.
	PromptCalls []PromptCall

	// Announcements records every announced message, including prompt
	// messages, in order.
	Announcements []string

	// DisplayCalls records every call to Display.
	DisplayCalls []DisplayCall

	next int
}

// Prompt records the call and returns the next scripted response, lowercased
// and trimmed. With interpret set, responses without actionable content are
// announced and skipped like the console does.
func (p *Prompter) Prompt(_ context.Context, msg string, interpret bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		p.PromptCalls = append(p.PromptCalls, PromptCall{Msg: msg, Interpret: interpret})
		p.Announcements = append(p.Announcements, msg)
		if p.next >= len(p.Responses) {
			return "", prompt.ErrClosed
		}
		text := strings.ToLower(strings.TrimSpace(p.Responses[p.next]))
		p.next++
		if !interpret {
			return text, nil
		}
		if stems, err := textnorm.NormalizeStrict(text); err == nil {
			return textnorm.Join(stems), nil
		}
		p.Announcements = append(p.Announcements, prompt.MsgNotUnderstood)
	}
}

// Announce records msg.
func (p *Prompter) Announce(_ context.Context, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Announcements = append(p.Announcements, msg)
}

// Display records the call.
func (p *Prompter) Display(_ context.Context, title string, lines []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.DisplayCalls = append(p.DisplayCalls, DisplayCall{Title: title, Lines: append([]string(nil), lines...)})
}

// Count returns how many announcements equal msg. Thread-safe.
func (p *Prompter) Count(msg string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, a := range p.Announcements {
		if a == msg {
			n++
		}
	}
	return n
}

// Remaining returns the number of unused responses. Thread-safe.
func (p *Prompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Responses) - p.next
}

// Ensure Prompter implements the prompt interfaces at compile time.
var (
	_ prompt.Prompter  = (*Prompter)(nil)
	_ prompt.Displayer = (*Prompter)(nil)
)
