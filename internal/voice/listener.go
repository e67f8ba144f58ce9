package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/parseltongue/internal/observe"
	"github.com/MrWong99/parseltongue/internal/prompt"
	"github.com/MrWong99/parseltongue/pkg/provider/stt"
)

// ErrNothingHeard is returned by [Listener.Listen] when the listen timeout
// passes without a transcript.
var ErrNothingHeard = errors.New("voice: nothing heard")

// ListenerOption configures a [Listener].
type ListenerOption func(*Listener)

// WithProviderName sets the provider label used in metrics and logs.
func WithProviderName(name string) ListenerOption {
	return func(l *Listener) { l.name = name }
}

// WithStreamConfig sets the audio format and language of every session.
// Hints are filled in per call.
func WithStreamConfig(cfg stt.StreamConfig) ListenerOption {
	return func(l *Listener) { l.cfg = cfg }
}

// WithListenTimeout bounds one listening attempt. Default: 10s.
func WithListenTimeout(d time.Duration) ListenerOption {
	return func(l *Listener) { l.timeout = d }
}

// WithChunkSize sets the number of bytes read from the source per send.
// Default: 3200 (100 ms of 16 kHz mono).
func WithChunkSize(n int) ListenerOption {
	return func(l *Listener) { l.chunk = n }
}

// WithListenerMetrics records STT latency on m.
func WithListenerMetrics(m *observe.Metrics) ListenerOption {
	return func(l *Listener) { l.metrics = m }
}

// WithListenerLogger sets the logger. Default: [slog.Default].
func WithListenerLogger(log *slog.Logger) ListenerOption {
	return func(l *Listener) { l.log = log }
}

// Listener turns microphone audio into transcripts.
type Listener struct {
	provider stt.Provider
	source   Source
	name     string
	cfg      stt.StreamConfig
	timeout  time.Duration
	chunk    int
	metrics  *observe.Metrics
	log      *slog.Logger
}

// NewListener returns a [Listener] reading from source and transcribing with
// provider.
func NewListener(provider stt.Provider, source Source, opts ...ListenerOption) *Listener {
	l := &Listener{
		provider: provider,
		source:   source,
		name:     "stt",
		timeout:  10 * time.Second,
		chunk:    3200,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Listen opens one session, streams audio into it and returns the first
// non-empty final transcript. It returns [ErrNothingHeard] when the timeout
// passes first and [prompt.ErrClosed] when the source ends without speech.
func (l *Listener) Listen(ctx context.Context, hints []string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cfg := l.cfg
	cfg.Hints = hints
	start := time.Now()
	sess, err := l.provider.StartStream(attemptCtx, cfg)
	if err != nil {
		return "", fmt.Errorf("voice: start %s stream: %w", l.name, err)
	}

	rc, err := l.source.Open(attemptCtx)
	if err != nil {
		sess.Close()
		return "", fmt.Errorf("voice: open source: %w", err)
	}

	var (
		wg        sync.WaitGroup
		sourceEOF = make(chan struct{})
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.pump(rc, sess, sourceEOF)
	}()
	defer func() {
		rc.Close()
		sess.Close()
		wg.Wait()
	}()

	for {
		select {
		case t, ok := <-sess.Finals():
			if !ok {
				return "", l.ended(ctx, attemptCtx, sourceEOF)
			}
			text := strings.TrimSpace(t.Text)
			if text == "" {
				continue
			}
			l.metrics.RecordSTT(ctx, l.name, time.Since(start))
			l.log.Debug("transcript", "provider", l.name, "text", text, "confidence", t.Confidence)
			return text, nil
		case <-attemptCtx.Done():
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return "", ErrNothingHeard
		}
	}
}

// ended explains a session that closed without a transcript. A recorder
// killed by the attempt timeout also reaches end of input, so the timeout is
// checked first.
func (l *Listener) ended(ctx, attemptCtx context.Context, sourceEOF <-chan struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if attemptCtx.Err() != nil {
		return ErrNothingHeard
	}
	select {
	case <-sourceEOF:
		return prompt.ErrClosed
	default:
		return ErrNothingHeard
	}
}

// pump copies audio from rc into sess until either ends. At end of input
// the session is closed so that buffered speech is flushed.
func (l *Listener) pump(rc io.Reader, sess stt.Session, eof chan<- struct{}) {
	buf := make([]byte, l.chunk)
	for {
		n, err := io.ReadFull(rc, buf)
		if n > 0 {
			if sendErr := sess.SendAudio(buf[:n]); sendErr != nil {
				return
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			close(eof)
			_ = sess.Close()
			return
		}
		if err != nil {
			l.log.Debug("audio source stopped", "err", err)
			return
		}
	}
}
