// Package stt defines the speech-to-text boundary used by the voice prompter.
//
// A Provider opens a Session per utterance window. The caller streams raw
// 16-bit little-endian PCM into the session and reads committed transcripts
// from Finals. Providers that transcribe in batches (whisper.cpp) segment the
// stream on silence themselves.
package stt

import (
	"context"
	"errors"
	"time"
)

// ErrSessionClosed is returned by [Session.SendAudio] after Close.
var ErrSessionClosed = errors.New("stt: session closed")

// StreamConfig describes the audio format and recognition hints of a session.
type StreamConfig struct {
	// SampleRate is the audio sample rate in Hz. Zero selects the provider
	// default (16000 for whisper.cpp).
	SampleRate int

	// Channels is the number of interleaved channels. Zero means mono.
	Channels int

	// Language is the language code for recognition (e.g. "en"). Empty lets
	// the provider choose.
	Language string

	// Hints are words the user is likely to say, typically the labels of the
	// current menu. Providers that support an initial prompt use them to bias
	// recognition; others ignore them.
	Hints []string
}

// Transcript is a committed recognition result.
type Transcript struct {
	// Text is the recognised speech.
	Text string

	// Confidence is in [0, 1], or zero when the provider does not report it.
	Confidence float64

	// Duration is the length of the audio the transcript covers.
	Duration time.Duration
}

// Session is an open transcription stream. Implementations must be safe for
// concurrent use; SendAudio and Finals are typically used from different
// goroutines.
type Session interface {
	// SendAudio delivers a chunk of PCM audio. It returns [ErrSessionClosed]
	// once the session is closed.
	SendAudio(chunk []byte) error

	// Finals emits committed transcripts. It is closed when the session ends.
	Finals() <-chan Transcript

	// Close flushes pending audio, closes Finals and releases resources.
	// Calling Close more than once is safe.
	Close() error
}

// Provider opens transcription sessions.
type Provider interface {
	StartStream(ctx context.Context, cfg StreamConfig) (Session, error)
}
