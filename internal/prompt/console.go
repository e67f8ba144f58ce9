package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/MrWong99/parseltongue/internal/observe"
	"github.com/MrWong99/parseltongue/internal/textnorm"
)

// ConsoleOption configures a [Console].
type ConsoleOption func(*Console)

// WithMetrics counts answered prompts on m.
func WithMetrics(m *observe.Metrics) ConsoleOption {
	return func(c *Console) { c.metrics = m }
}

// WithPromptMarker sets the marker printed before reading a line.
// Default: "> ".
func WithPromptMarker(marker string) ConsoleOption {
	return func(c *Console) { c.marker = marker }
}

// Console is a line-oriented [Prompter] over a reader and a writer, usually
// stdin and stdout.
type Console struct {
	out     io.Writer
	marker  string
	metrics *observe.Metrics

	startOnce sync.Once
	closeOnce sync.Once
	in        *bufio.Scanner
	lines     chan string
	done      chan struct{}
	readErr   error
}

// Compile-time interface assertions.
var (
	_ Prompter  = (*Console)(nil)
	_ Displayer = (*Console)(nil)
)

// NewConsole returns a [Console] reading lines from in and writing to out.
func NewConsole(in io.Reader, out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		out:    out,
		marker: "> ",
		in:     bufio.NewScanner(in),
		lines:  make(chan string),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Prompt implements [Prompter].
func (c *Console) Prompt(ctx context.Context, msg string, interpret bool) (string, error) {
	for {
		c.Announce(ctx, msg)
		fmt.Fprint(c.out, c.marker)

		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}
		c.metrics.RecordUtterance(ctx, "console")

		text := strings.ToLower(strings.TrimSpace(line))
		if !interpret {
			return text, nil
		}
		if stems, err := textnorm.NormalizeStrict(text); err == nil {
			return textnorm.Join(stems), nil
		}
		c.Announce(ctx, MsgNotUnderstood)
	}
}

// Announce implements [Prompter].
func (c *Console) Announce(_ context.Context, msg string) {
	fmt.Fprintln(c.out, msg)
}

// Display implements [Displayer] by printing lines under an underlined title.
func (c *Console) Display(_ context.Context, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(c.out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
	for _, l := range lines {
		fmt.Fprintln(c.out, l)
	}
	fmt.Fprintln(c.out)
}

// Close stops the console. Pending and later prompts fail with [ErrClosed].
// The reader goroutine exits once its current read returns.
func (c *Console) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// readLine waits for the next input line or ctx cancellation. The scanner
// runs in its own goroutine because reads on a terminal cannot be
// interrupted.
func (c *Console) readLine(ctx context.Context) (string, error) {
	select {
	case <-c.done:
		return "", ErrClosed
	default:
	}
	c.startOnce.Do(func() {
		go func() {
			defer close(c.lines)
			for c.in.Scan() {
				select {
				case c.lines <- c.in.Text():
				case <-c.done:
					return
				}
			}
			c.readErr = c.in.Err()
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrClosed
	case line, ok := <-c.lines:
		if !ok {
			if c.readErr != nil {
				slog.Debug("console input failed", "err", c.readErr)
				return "", fmt.Errorf("%w: %w", ErrClosed, c.readErr)
			}
			return "", ErrClosed
		}
		return line, nil
	}
}
