package voice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrWong99/parseltongue/internal/observe"
	"github.com/MrWong99/parseltongue/pkg/provider/tts"
)

// SpeakerOption configures a [Speaker].
type SpeakerOption func(*Speaker)

// WithVoice selects the voice. Required by most providers.
func WithVoice(v tts.Voice) SpeakerOption {
	return func(s *Speaker) { s.voice = v }
}

// WithSpeakerName sets the provider label used in metrics and logs.
func WithSpeakerName(name string) SpeakerOption {
	return func(s *Speaker) { s.name = name }
}

// WithSpeakerMetrics records TTS latency on m.
func WithSpeakerMetrics(m *observe.Metrics) SpeakerOption {
	return func(s *Speaker) { s.metrics = m }
}

// WithSpeakerLogger sets the logger. Default: [slog.Default].
func WithSpeakerLogger(log *slog.Logger) SpeakerOption {
	return func(s *Speaker) { s.log = log }
}

// Speaker plays synthesized speech.
type Speaker struct {
	provider tts.Provider
	sink     Sink
	voice    tts.Voice
	name     string
	metrics  *observe.Metrics
	log      *slog.Logger
}

// NewSpeaker returns a [Speaker] synthesizing with provider into sink.
func NewSpeaker(provider tts.Provider, sink Sink, opts ...SpeakerOption) *Speaker {
	s := &Speaker{provider: provider, sink: sink, name: "tts", log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Speak synthesizes text and blocks until it has been played.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	start := time.Now()
	audio, err := s.provider.Synthesize(ctx, text, s.voice)
	if err != nil {
		return fmt.Errorf("voice: synthesize: %w", err)
	}
	w, err := s.sink.Open(ctx)
	if err != nil {
		for range audio {
		}
		return fmt.Errorf("voice: open sink: %w", err)
	}

	var writeErr error
	first := true
	for chunk := range audio {
		if first {
			s.metrics.RecordTTS(ctx, s.name, time.Since(start))
			first = false
		}
		// Keep draining after a failed write so the provider can finish.
		if writeErr == nil {
			_, writeErr = w.Write(chunk)
		}
	}
	closeErr := w.Close()
	if writeErr != nil {
		return fmt.Errorf("voice: play: %w", writeErr)
	}
	if closeErr != nil {
		return closeErr
	}
	s.log.Debug("spoke", "provider", s.name, "chars", len(text), "duration", time.Since(start))
	return nil
}
