package whisper

import (
	"encoding/binary"
	"testing"
	"time"
)

func tone(samples int, amplitude int16) []byte {
	buf := make([]byte, samples*2)
	for i := range samples {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}

func TestSegmenter(t *testing.T) {
	t.Parallel()

	newSeg := func() *segmenter {
		return &segmenter{
			sampleRate: 16000,
			channels:   1,
			threshold:  defaultThreshold,
			silence:    200 * time.Millisecond,
			maxLen:     time.Second,
		}
	}

	t.Run("leading silence dropped", func(t *testing.T) {
		t.Parallel()
		s := newSeg()
		if _, ok := s.push(tone(8000, 0)); ok {
			t.Fatal("push(silence) completed an utterance")
		}
		if len(s.buf) != 0 {
			t.Errorf("buffered %d bytes of leading silence", len(s.buf))
		}
	})

	t.Run("trailing silence completes", func(t *testing.T) {
		t.Parallel()
		s := newSeg()
		s.push(tone(1600, 5000))
		if _, ok := s.push(tone(1600, 0)); ok {
			t.Fatal("100ms of silence completed the utterance")
		}
		pcm, ok := s.push(tone(1600, 0))
		if !ok {
			t.Fatal("200ms of silence did not complete the utterance")
		}
		if got := pcmDuration(pcm, 16000, 1); got != 300*time.Millisecond {
			t.Errorf("utterance duration = %v, want 300ms", got)
		}
		if s.hadSpeech || s.buf != nil {
			t.Error("segmenter not reset after completion")
		}
	})

	t.Run("max length forces flush", func(t *testing.T) {
		t.Parallel()
		s := newSeg()
		if _, ok := s.push(tone(8000, 5000)); ok {
			t.Fatal("500ms of speech flushed early")
		}
		if _, ok := s.push(tone(8000, 5000)); !ok {
			t.Fatal("1s of speech did not force a flush")
		}
	})
}

func TestRMS(t *testing.T) {
	t.Parallel()
	if got := rms(nil); got != 0 {
		t.Errorf("rms(nil) = %f, want 0", got)
	}
	if got := rms(tone(100, 1000)); got != 1000 {
		t.Errorf("rms(square 1000) = %f, want 1000", got)
	}
}

func TestEncodeWAV(t *testing.T) {
	t.Parallel()
	wav := encodeWAV(tone(10, 1), 16000, 1)
	if len(wav) != 44+20 {
		t.Fatalf("len = %d, want 64", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Errorf("bad header %q", wav[:44])
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
}

func TestToMonoFloat32(t *testing.T) {
	t.Parallel()

	stereo := make([]byte, 8)
	binary.LittleEndian.PutUint16(stereo[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(stereo[2:], 0)
	binary.LittleEndian.PutUint16(stereo[4:], uint16(int16(-32768)))
	binary.LittleEndian.PutUint16(stereo[6:], uint16(int16(-32768)))

	got := toMonoFloat32(stereo, 2)
	want := []float32{0.25, -1}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %f, want %f", i, got[i], want[i])
		}
	}
}
