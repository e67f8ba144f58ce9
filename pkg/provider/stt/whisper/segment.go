package whisper

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/parseltongue/pkg/provider/stt"
)

// segmenter cuts a PCM stream into utterances on trailing silence. Leading
// silence is dropped. It is not safe for concurrent use.
type segmenter struct {
	sampleRate int
	channels   int
	threshold  float64
	silence    time.Duration
	maxLen     time.Duration

	buf       []byte
	hadSpeech bool
	quiet     time.Duration
}

// push adds chunk and returns a completed utterance once enough trailing
// silence was seen or the utterance grew past maxLen.
func (s *segmenter) push(chunk []byte) ([]byte, bool) {
	d := pcmDuration(chunk, s.sampleRate, s.channels)
	if rms(chunk) < s.threshold {
		if !s.hadSpeech {
			return nil, false
		}
		s.quiet += d
		s.buf = append(s.buf, chunk...)
		if s.quiet >= s.silence {
			return s.take()
		}
		return nil, false
	}

	s.hadSpeech = true
	s.quiet = 0
	s.buf = append(s.buf, chunk...)
	if s.maxLen > 0 && pcmDuration(s.buf, s.sampleRate, s.channels) >= s.maxLen {
		return s.take()
	}
	return nil, false
}

// take returns the buffered utterance, if it contains speech, and resets.
func (s *segmenter) take() ([]byte, bool) {
	pcm, ok := s.buf, s.hadSpeech && len(s.buf) > 0
	s.buf, s.hadSpeech, s.quiet = nil, false, 0
	return pcm, ok
}

// inferFunc transcribes one utterance.
type inferFunc func(ctx context.Context, pcm []byte) (string, error)

// session is the [stt.Session] shared by the HTTP and native providers. All
// segmenter state is confined to the run goroutine.
type session struct {
	seg   segmenter
	infer inferFunc
	log   *slog.Logger

	audioCh chan []byte
	finals  chan stt.Transcript
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

var _ stt.Session = (*session)(nil)

func startSession(ctx context.Context, seg segmenter, infer inferFunc, log *slog.Logger) *session {
	s := &session{
		seg:     seg,
		infer:   infer,
		log:     log,
		audioCh: make(chan []byte, 256),
		finals:  make(chan stt.Transcript, 16),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run(ctx)
	return s
}

// SendAudio implements [stt.Session].
func (s *session) SendAudio(chunk []byte) error {
	select {
	case <-s.done:
		return stt.ErrSessionClosed
	default:
	}
	select {
	case s.audioCh <- chunk:
		return nil
	case <-s.done:
		return stt.ErrSessionClosed
	}
}

// Finals implements [stt.Session].
func (s *session) Finals() <-chan stt.Transcript { return s.finals }

// Close implements [stt.Session]. Pending speech is transcribed before the
// Finals channel closes.
func (s *session) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

func (s *session) run(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.finals)

	// The last flush must not depend on ctx, which may already be done.
	flushPending := func() {
		pcm, ok := s.seg.take()
		if !ok {
			return
		}
		fc, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.emit(fc, pcm)
	}

	for {
		select {
		case <-ctx.Done():
			flushPending()
			return
		case <-s.done:
			flushPending()
			return
		case chunk := <-s.audioCh:
			if pcm, ok := s.seg.push(chunk); ok {
				s.emit(ctx, pcm)
			}
		}
	}
}

func (s *session) emit(ctx context.Context, pcm []byte) {
	text, err := s.infer(ctx, pcm)
	if err != nil {
		s.log.Warn("whisper: inference failed", "err", err)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t := stt.Transcript{Text: text, Duration: pcmDuration(pcm, s.seg.sampleRate, s.seg.channels)}
	select {
	case s.finals <- t:
	default:
		s.log.Warn("whisper: transcript dropped, finals buffer full")
	}
}
