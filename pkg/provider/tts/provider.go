// Package tts defines the text-to-speech boundary used to speak announcements.
//
// A Provider turns one piece of text into a stream of raw PCM chunks so that
// playback can start before synthesis finishes.
package tts

import "context"

// Voice selects a provider voice.
type Voice struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Speed scales the speaking rate; 0 or 1 is the provider default.
	Speed float64

	// Labels holds provider metadata (accent, gender, category).
	Labels map[string]string
}

// Provider synthesizes speech. Implementations must be safe for concurrent use.
type Provider interface {
	// Synthesize starts speaking text with voice and returns a channel of
	// 16-bit little-endian PCM chunks. The channel is closed when synthesis
	// completes, fails mid-stream, or ctx is cancelled. A non-nil error means
	// synthesis could not start.
	Synthesize(ctx context.Context, text string, voice Voice) (<-chan []byte, error)

	// ListVoices returns the voices available to the configured account.
	ListVoices(ctx context.Context) ([]Voice, error)
}
