package whisper_test

import (
	"context"
	"os"
	"testing"

	"github.com/MrWong99/parseltongue/pkg/provider/stt"
	"github.com/MrWong99/parseltongue/pkg/provider/stt/whisper"
)

// testModelPath returns WHISPER_MODEL_PATH or skips the test.
func testModelPath(t *testing.T) string {
	t.Helper()
	p := os.Getenv("WHISPER_MODEL_PATH")
	if p == "" {
		t.Skip("WHISPER_MODEL_PATH not set; skipping native whisper test")
	}
	return p
}

func TestNewNative_EmptyPath(t *testing.T) {
	if _, err := whisper.NewNative(""); err == nil {
		t.Fatal("expected error for empty model path, got nil")
	}
}

func TestNewNative_InvalidPath(t *testing.T) {
	if _, err := whisper.NewNative("/nonexistent/model.bin"); err == nil {
		t.Fatal("expected error for invalid model path, got nil")
	}
}

func TestNativeSession_SilenceProducesNothing(t *testing.T) {
	p, err := whisper.NewNative(testModelPath(t), whisper.WithLanguage("en"))
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	defer p.Close()

	sess, err := p.StartStream(context.Background(), stt.StreamConfig{Hints: []string{"edit", "delete"}})
	if err != nil {
		t.Fatalf("StartStream: %v", err)
	}
	_ = sess.SendAudio(make([]byte, 32000))
	_ = sess.Close()

	if tr, ok := <-sess.Finals(); ok {
		t.Errorf("unexpected transcript %q from silence", tr.Text)
	}
}
