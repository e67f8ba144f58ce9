// Package voice connects the interaction loop to a microphone and a speaker.
//
// A [Listener] streams PCM from a [Source] into a speech-to-text session and
// returns the first committed transcript. A [Speaker] synthesizes
// announcements and plays them through a [Sink]. [Prompter] combines both
// into a prompt.Prompter that also echoes everything to a console.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Source opens a stream of raw 16-bit little-endian PCM. Closing the stream
// stops capture.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink opens a PCM playback stream. Close blocks until playback finishes.
type Sink interface {
	Open(ctx context.Context) (io.WriteCloser, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context) (io.ReadCloser, error)

// Open implements [Source].
func (f SourceFunc) Open(ctx context.Context) (io.ReadCloser, error) { return f(ctx) }

// SinkFunc adapts a function to [Sink].
type SinkFunc func(ctx context.Context) (io.WriteCloser, error)

// Open implements [Sink].
func (f SinkFunc) Open(ctx context.Context) (io.WriteCloser, error) { return f(ctx) }

// CommandSource records by running a command, such as arecord, that writes
// PCM to stdout.
type CommandSource []string

// CommandSink plays by running a command, such as aplay, that reads PCM
// from stdin.
type CommandSink []string

var (
	_ Source = CommandSource(nil)
	_ Sink   = CommandSink(nil)
)

// Open starts the command. Closing the returned reader kills it.
func (c CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if len(c) == 0 {
		return nil, errors.New("voice: empty source command")
	}
	cmd := exec.CommandContext(ctx, c[0], c[1:]...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("voice: source %s: %w", c[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("voice: start source %s: %w", c[0], err)
	}
	return &recording{ReadCloser: out, cmd: cmd}, nil
}

type recording struct {
	io.ReadCloser
	cmd  *exec.Cmd
	once sync.Once
}

func (r *recording) Close() error {
	r.once.Do(func() {
		_ = r.cmd.Process.Kill()
		_ = r.cmd.Wait()
	})
	return nil
}

// Open starts the command. Closing the returned writer ends its input and
// waits for it to exit.
func (c CommandSink) Open(ctx context.Context) (io.WriteCloser, error) {
	if len(c) == 0 {
		return nil, errors.New("voice: empty sink command")
	}
	cmd := exec.CommandContext(ctx, c[0], c[1:]...)
	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("voice: sink %s: %w", c[0], err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("voice: start sink %s: %w", c[0], err)
	}
	return &playback{WriteCloser: in, cmd: cmd}, nil
}

type playback struct {
	io.WriteCloser
	cmd  *exec.Cmd
	once sync.Once
	err  error
}

func (p *playback) Close() error {
	p.once.Do(func() {
		_ = p.WriteCloser.Close()
		if err := p.cmd.Wait(); err != nil {
			p.err = fmt.Errorf("voice: sink %s: %w", p.cmd.Path, err)
		}
	})
	return p.err
}
