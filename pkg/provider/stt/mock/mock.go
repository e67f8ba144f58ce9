// Package mock provides test doubles for the stt package interfaces.
//
// Provider hands out one scripted Session per StartStream call. Each session
// emits its transcript as soon as the first audio chunk arrives, which is
// enough to drive a listener end to end without a real recogniser. An empty
// script entry emits nothing, simulating a user who stays silent.
//
// Example:
//
//	p := &mock.Provider{Texts: []string{"", "edit a function"}}
//	sess, _ := p.StartStream(ctx, stt.StreamConfig{})
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/MrWong99/parseltongue/pkg/provider/stt"
)

// StartStreamCall records a single invocation of Provider.StartStream.
type StartStreamCall struct {
	Cfg stt.StreamConfig
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Texts are the transcripts of successive sessions. Sessions beyond the
	// end of Texts emit nothing.
	Texts []string

	// StartStreamErr, if non-nil, is returned by StartStream.
	StartStreamErr error

	// StartStreamCalls records every call to StartStream.
	StartStreamCalls []StartStreamCall

	// Sessions records every session handed out.
	Sessions []*Session
}

// StartStream records the call and returns the next scripted session.
func (p *Provider) StartStream(_ context.Context, cfg stt.StreamConfig) (stt.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StartStreamCalls = append(p.StartStreamCalls, StartStreamCall{Cfg: cfg})
	if p.StartStreamErr != nil {
		return nil, p.StartStreamErr
	}
	var text string
	if n := len(p.Sessions); n < len(p.Texts) {
		text = p.Texts[n]
	}
	s := NewSession(text)
	p.Sessions = append(p.Sessions, s)
	return s, nil
}

// CallCount returns the number of StartStream calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.StartStreamCalls)
}

var _ stt.Provider = (*Provider)(nil)

// Session is a mock implementation of stt.Session.
type Session struct {
	mu sync.Mutex

	text    string
	emitted bool
	closed  bool
	finals  chan stt.Transcript

	// SendAudioErr, if non-nil, is returned by every SendAudio call.
	SendAudioErr error

	// Chunks records a copy of every chunk passed to SendAudio.
	Chunks [][]byte

	// CloseCallCount is the number of times Close was called.
	CloseCallCount int
}

// NewSession returns a session that emits text after the first audio chunk.
// An empty text emits nothing.
func NewSession(text string) *Session {
	return &Session{text: text, finals: make(chan stt.Transcript, 1)}
}

// SendAudio records the chunk and emits the scripted transcript once.
func (s *Session) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return stt.ErrSessionClosed
	}
	s.Chunks = append(s.Chunks, slices.Clone(chunk))
	if s.SendAudioErr != nil {
		return s.SendAudioErr
	}
	if !s.emitted && s.text != "" {
		s.emitted = true
		s.finals <- stt.Transcript{Text: s.text, Confidence: 1}
	}
	return nil
}

// Finals implements stt.Session.
func (s *Session) Finals() <-chan stt.Transcript { return s.finals }

// Close closes Finals. Calling it more than once is safe.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCallCount++
	if !s.closed {
		s.closed = true
		close(s.finals)
	}
	return nil
}

// ChunkCount returns the number of recorded chunks. Thread-safe.
func (s *Session) ChunkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Chunks)
}

var _ stt.Session = (*Session)(nil)
