package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/MrWong99/parseltongue/pkg/provider/stt"
	sttmock "github.com/MrWong99/parseltongue/pkg/provider/stt/mock"
)

func TestSTTFallback_PrimarySuccess(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{Texts: []string{"edit"}}
	secondary := &sttmock.Provider{}
	fb := NewSTTFallback(primary, "whisper", FallbackConfig{CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3}})
	fb.AddFallback("whisper-native", secondary)

	sess, err := fb.StartStream(context.Background(), stt.StreamConfig{Hints: []string{"edit"}})
	if err != nil {
		t.Fatalf("StartStream: unexpected error: %v", err)
	}
	defer sess.Close()

	if primary.CallCount() != 1 || secondary.CallCount() != 0 {
		t.Errorf("calls: primary=%d secondary=%d, want 1, 0", primary.CallCount(), secondary.CallCount())
	}
	if got := primary.StartStreamCalls[0].Cfg.Hints; len(got) != 1 || got[0] != "edit" {
		t.Errorf("hints = %v, want [edit]", got)
	}
}

func TestSTTFallback_Failover(t *testing.T) {
	t.Parallel()

	primary := &sttmock.Provider{StartStreamErr: errors.New("connection refused")}
	secondary := &sttmock.Provider{Texts: []string{"delete"}}
	fb := NewSTTFallback(primary, "whisper", FallbackConfig{CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3}})
	fb.AddFallback("whisper-native", secondary)

	sess, err := fb.StartStream(context.Background(), stt.StreamConfig{})
	if err != nil {
		t.Fatalf("StartStream: unexpected error: %v", err)
	}
	defer sess.Close()

	_ = sess.SendAudio([]byte{1})
	if tr := <-sess.Finals(); tr.Text != "delete" {
		t.Errorf("transcript = %q, want delete", tr.Text)
	}
}

func TestSTTFallback_AllFail(t *testing.T) {
	t.Parallel()

	fb := NewSTTFallback(&sttmock.Provider{StartStreamErr: errors.New("down")}, "a", FallbackConfig{})
	fb.AddFallback("b", &sttmock.Provider{StartStreamErr: errors.New("also down")})

	if _, err := fb.StartStream(context.Background(), stt.StreamConfig{}); !errors.Is(err, ErrAllFailed) {
		t.Fatalf("StartStream: err=%v, want ErrAllFailed", err)
	}
}
