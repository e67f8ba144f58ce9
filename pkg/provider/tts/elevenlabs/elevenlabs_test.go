package elevenlabs_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/parseltongue/pkg/provider/tts"
	"github.com/MrWong99/parseltongue/pkg/provider/tts/elevenlabs"
)

type clientFrame struct {
	Text          string `json:"text"`
	XiAPIKey      string `json:"xi_api_key"`
	VoiceSettings *struct {
		Speed float64 `json:"speed"`
	} `json:"voice_settings"`
}

// startServer runs a fake stream-input endpoint. It collects the client
// frames, then answers with chunks followed by a final frame.
func startServer(t *testing.T, chunks [][]byte, got chan<- []clientFrame, path chan<- *http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path != nil {
			path <- r
		}
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		var frames []clientFrame
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var f clientFrame
			_ = json.Unmarshal(data, &f)
			frames = append(frames, f)
			if f.Text == "" {
				break
			}
		}
		if got != nil {
			got <- frames
		}
		for _, c := range chunks {
			msg, _ := json.Marshal(map[string]any{"audio": base64.StdEncoding.EncodeToString(c)})
			_ = conn.Write(ctx, websocket.MessageText, msg)
		}
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"audio":"","isFinal":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func drain(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	timeout := time.After(3 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return out.Bytes()
			}
			out.Write(c)
		case <-timeout:
			t.Fatal("timed out draining audio")
		}
	}
}

func TestNew_EmptyAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := elevenlabs.New(""); err == nil {
		t.Fatal("New(\"\"): expected error")
	}
}

func TestSynthesize_StreamsAudio(t *testing.T) {
	t.Parallel()

	frames := make(chan []clientFrame, 1)
	reqs := make(chan *http.Request, 1)
	srv := startServer(t, [][]byte{{1, 2}, {3, 4, 5}}, frames, reqs)

	p, _ := elevenlabs.New("secret", elevenlabs.WithBaseURL(srv.URL), elevenlabs.WithModel("m1"))
	ch, err := p.Synthesize(context.Background(), "Is that correct?", tts.Voice{ID: "v1", Speed: 1.1})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got := drain(t, ch); !bytes.Equal(got, []byte{1, 2, 3, 4, 5}) {
		t.Errorf("audio = %v, want [1 2 3 4 5]", got)
	}

	r := <-reqs
	if r.URL.Path != "/v1/text-to-speech/v1/stream-input" {
		t.Errorf("path = %q", r.URL.Path)
	}
	if q := r.URL.Query(); q.Get("model_id") != "m1" || q.Get("output_format") != "pcm_16000" {
		t.Errorf("query = %v", q)
	}

	fs := <-frames
	if len(fs) != 3 {
		t.Fatalf("client frames = %d, want 3", len(fs))
	}
	if fs[0].XiAPIKey != "secret" || fs[0].VoiceSettings == nil || fs[0].VoiceSettings.Speed != 1.1 {
		t.Errorf("first frame = %+v, want api key and speed", fs[0])
	}
	if fs[1].Text != "Is that correct? " {
		t.Errorf("text frame = %q", fs[1].Text)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	t.Parallel()

	p, _ := elevenlabs.New("k", elevenlabs.WithBaseURL("http://127.0.0.1:1"))
	ch, err := p.Synthesize(context.Background(), "   ", tts.Voice{ID: "v"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("expected closed channel for empty text")
	}
}

func TestSynthesize_RequiresVoice(t *testing.T) {
	t.Parallel()
	p, _ := elevenlabs.New("k")
	if _, err := p.Synthesize(context.Background(), "hi", tts.Voice{}); err == nil {
		t.Fatal("expected error for empty voice ID")
	}
}

func TestSynthesize_DialFailure(t *testing.T) {
	t.Parallel()
	p, _ := elevenlabs.New("k", elevenlabs.WithBaseURL("http://127.0.0.1:1"))
	if _, err := p.Synthesize(context.Background(), "hi", tts.Voice{ID: "v"}); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestListVoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/voices" || r.Header.Get("xi-api-key") != "k" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"voices":[{"voice_id":"a1","name":"Rachel","category":"premade","labels":{"accent":"american"}}]}`))
	}))
	defer srv.Close()

	p, _ := elevenlabs.New("k", elevenlabs.WithBaseURL(srv.URL))
	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 1 {
		t.Fatalf("len(voices) = %d, want 1", len(voices))
	}
	v := voices[0]
	if v.ID != "a1" || v.Name != "Rachel" || v.Labels["accent"] != "american" || v.Labels["category"] != "premade" {
		t.Errorf("voice = %+v", v)
	}
}

func TestListVoices_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := elevenlabs.New("k", elevenlabs.WithBaseURL(srv.URL))
	if _, err := p.ListVoices(context.Background()); err == nil {
		t.Fatal("expected error on 401")
	}
}
