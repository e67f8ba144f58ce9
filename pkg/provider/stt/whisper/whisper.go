// Package whisper provides whisper.cpp-backed speech-to-text.
//
// Two providers share the same session logic: [Provider] talks to a running
// whisper-server (POST /inference) and [NativeProvider] links the whisper.cpp
// Go bindings. whisper.cpp transcribes in batches, so sessions buffer PCM,
// cut utterances on trailing silence and submit each one as a single request.
//
// Usage:
//
//	p, err := whisper.New("http://localhost:8080", whisper.WithLanguage("en"))
//	sess, err := p.StartStream(ctx, stt.StreamConfig{Hints: []string{"edit", "delete"}})
//	sess.SendAudio(pcm)
//	t := <-sess.Finals()
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/MrWong99/parseltongue/pkg/provider/stt"
)

const (
	defaultLanguage     = "en"
	defaultSampleRate   = 16000
	defaultSilence      = 700 * time.Millisecond
	defaultMaxUtterance = 15 * time.Second

	// defaultThreshold is the RMS level, in 16-bit sample units, below which
	// a chunk counts as silence.
	defaultThreshold = 300.0
)

// settings holds the options shared by both providers.
type settings struct {
	model        string
	language     string
	sampleRate   int
	silence      time.Duration
	maxUtterance time.Duration
	threshold    float64
	httpClient   *http.Client
	log          *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		language:     defaultLanguage,
		sampleRate:   defaultSampleRate,
		silence:      defaultSilence,
		maxUtterance: defaultMaxUtterance,
		threshold:    defaultThreshold,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          slog.Default(),
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// segmenter returns a segmenter for cfg, falling back to provider defaults.
func (s settings) segmenter(cfg stt.StreamConfig) segmenter {
	seg := segmenter{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		threshold:  s.threshold,
		silence:    s.silence,
		maxLen:     s.maxUtterance,
	}
	if seg.sampleRate <= 0 {
		seg.sampleRate = s.sampleRate
	}
	if seg.channels <= 0 {
		seg.channels = 1
	}
	return seg
}

func (s settings) languageFor(cfg stt.StreamConfig) string {
	if cfg.Language != "" {
		return cfg.Language
	}
	return s.language
}

// Option configures a [Provider] or a [NativeProvider].
type Option func(*settings)

// WithModel sets the model name forwarded to whisper-server. Empty uses the
// model the server was started with. Ignored by [NativeProvider].
func WithModel(model string) Option {
	return func(s *settings) { s.model = model }
}

// WithLanguage sets the default recognition language. Default: "en".
func WithLanguage(lang string) Option {
	return func(s *settings) { s.language = lang }
}

// WithSampleRate sets the default input sample rate in Hz. Default: 16000.
func WithSampleRate(rate int) Option {
	return func(s *settings) { s.sampleRate = rate }
}

// WithSilence sets how much trailing silence ends an utterance.
// Default: 700ms.
func WithSilence(d time.Duration) Option {
	return func(s *settings) { s.silence = d }
}

// WithMaxUtterance forces a flush once an utterance reaches d. Default: 15s.
func WithMaxUtterance(d time.Duration) Option {
	return func(s *settings) { s.maxUtterance = d }
}

// WithThreshold sets the RMS silence threshold. Default: 300.
func WithThreshold(rms float64) Option {
	return func(s *settings) { s.threshold = rms }
}

// WithHTTPClient replaces the HTTP client. Ignored by [NativeProvider].
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithLogger sets the logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// Provider transcribes through a whisper-server HTTP endpoint.
type Provider struct {
	serverURL string
	settings
}

var _ stt.Provider = (*Provider)(nil)

// New returns a [Provider] for the whisper-server at serverURL
// (e.g. "http://localhost:8080").
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisper: serverURL must not be empty")
	}
	return &Provider{
		serverURL: strings.TrimRight(serverURL, "/"),
		settings:  newSettings(opts),
	}, nil
}

// StartStream implements [stt.Provider]. No request is made until the first
// utterance is complete.
func (p *Provider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: start stream: %w", err)
	}
	seg := p.segmenter(cfg)
	req := inferRequest{
		language:   p.languageFor(cfg),
		prompt:     strings.Join(cfg.Hints, ", "),
		sampleRate: seg.sampleRate,
		channels:   seg.channels,
	}
	return startSession(ctx, seg, func(ctx context.Context, pcm []byte) (string, error) {
		return p.infer(ctx, req, pcm)
	}, p.log), nil
}

type inferRequest struct {
	language   string
	prompt     string
	sampleRate int
	channels   int
}

// infer uploads pcm as a WAV file and returns the recognised text.
func (p *Provider) infer(ctx context.Context, r inferRequest, pcm []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("whisper: create form file: %w", err)
	}
	if _, err := fw.Write(encodeWAV(pcm, r.sampleRate, r.channels)); err != nil {
		return "", fmt.Errorf("whisper: write wav data: %w", err)
	}
	fields := []struct{ key, val string }{
		{"response_format", "json"},
		{"language", r.language},
		{"model", p.model},
		{"prompt", r.prompt},
	}
	for _, f := range fields {
		if f.val == "" {
			continue
		}
		if err := mw.WriteField(f.key, f.val); err != nil {
			return "", fmt.Errorf("whisper: write %s field: %w", f.key, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("whisper: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+"/inference", &body)
	if err != nil {
		return "", fmt.Errorf("whisper: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("whisper: server returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("whisper: decode response: %w", err)
	}
	return result.Text, nil
}
