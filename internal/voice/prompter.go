package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/MrWong99/parseltongue/internal/observe"
	"github.com/MrWong99/parseltongue/internal/prompt"
	"github.com/MrWong99/parseltongue/internal/textnorm"
)

// PrompterOption configures a [Prompter].
type PrompterOption func(*Prompter)

// WithSpeaker speaks every announcement. Without a speaker announcements are
// only printed.
func WithSpeaker(s *Speaker) PrompterOption {
	return func(p *Prompter) { p.speaker = s }
}

// WithPrompterMetrics counts utterances on m.
func WithPrompterMetrics(m *observe.Metrics) PrompterOption {
	return func(p *Prompter) { p.metrics = m }
}

// WithPrompterLogger sets the logger. Default: [slog.Default].
func WithPrompterLogger(l *slog.Logger) PrompterOption {
	return func(p *Prompter) { p.log = l }
}

// Prompter is a spoken [prompt.Prompter]. Everything it says or hears is
// also written to a console.
//
// Announced help lists ("1) Create a new function.") are remembered and
// passed to the recogniser as hints for the next prompts.
type Prompter struct {
	listener *Listener
	speaker  *Speaker
	console  *prompt.Console
	out      io.Writer
	metrics  *observe.Metrics
	log      *slog.Logger

	mu    sync.Mutex
	hints []string
}

var (
	_ prompt.Prompter  = (*Prompter)(nil)
	_ prompt.Displayer = (*Prompter)(nil)
)

// NewPrompter returns a [Prompter] listening with l and echoing to out.
func NewPrompter(l *Listener, out io.Writer, opts ...PrompterOption) *Prompter {
	p := &Prompter{
		listener: l,
		console:  prompt.NewConsole(strings.NewReader(""), out),
		out:      out,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Prompt implements [prompt.Prompter]. Timeouts are announced and listening
// resumes without repeating msg.
func (p *Prompter) Prompt(ctx context.Context, msg string, interpret bool) (string, error) {
	p.Announce(ctx, msg)
	for {
		heard, err := p.listener.Listen(ctx, p.currentHints())
		if errors.Is(err, ErrNothingHeard) {
			p.Announce(ctx, prompt.MsgNothingHeard)
			continue
		}
		if err != nil {
			return "", err
		}
		p.metrics.RecordUtterance(ctx, "voice")
		io.WriteString(p.out, "> "+heard+"\n")

		text := strings.ToLower(strings.TrimSpace(heard))
		if !interpret {
			return text, nil
		}
		if stems, err := textnorm.NormalizeStrict(text); err == nil {
			return textnorm.Join(stems), nil
		}
		p.Announce(ctx, prompt.MsgNotUnderstood)
	}
}

// Announce implements [prompt.Prompter]. Speech failures are logged and the
// message is still printed.
func (p *Prompter) Announce(ctx context.Context, msg string) {
	p.console.Announce(ctx, msg)
	p.rememberHints(msg)
	if p.speaker == nil {
		return
	}
	if err := p.speaker.Speak(ctx, msg); err != nil {
		p.log.Warn("speech output failed", "err", err)
	}
}

// Display implements [prompt.Displayer]. Displayed text is not spoken.
func (p *Prompter) Display(ctx context.Context, title string, lines []string) {
	p.console.Display(ctx, title, lines)
}

var helpLine = regexp.MustCompile(`(?m)^\d+\) (.+)\.$`)

func (p *Prompter) rememberHints(msg string) {
	matches := helpLine.FindAllStringSubmatch(msg, -1)
	if len(matches) == 0 {
		return
	}
	hints := make([]string, len(matches))
	for i, m := range matches {
		hints[i] = m[1]
	}
	p.mu.Lock()
	p.hints = hints
	p.mu.Unlock()
}

func (p *Prompter) currentHints() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hints
}
