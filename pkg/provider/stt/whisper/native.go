package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/MrWong99/parseltongue/pkg/provider/stt"
)

// NativeProvider transcribes in-process through the whisper.cpp bindings
// (cgo). libwhisper.a and whisper.h must be available at link time via
// LIBRARY_PATH and C_INCLUDE_PATH. The model is loaded once and shared by
// all sessions.
type NativeProvider struct {
	model whisperlib.Model
	settings
}

var _ stt.Provider = (*NativeProvider)(nil)

// NewNative loads the ggml model at modelPath. Call Close when done.
func NewNative(modelPath string, opts ...Option) (*NativeProvider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}
	return &NativeProvider{model: model, settings: newSettings(opts)}, nil
}

// Close releases the model.
func (p *NativeProvider) Close() error {
	if p.model == nil {
		return nil
	}
	return p.model.Close()
}

// StartStream implements [stt.Provider].
func (p *NativeProvider) StartStream(ctx context.Context, cfg stt.StreamConfig) (stt.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: start stream: %w", err)
	}
	seg := p.segmenter(cfg)
	lang := p.languageFor(cfg)
	prompt := strings.Join(cfg.Hints, ", ")
	return startSession(ctx, seg, func(ctx context.Context, pcm []byte) (string, error) {
		return p.infer(ctx, lang, prompt, toMonoFloat32(pcm, seg.channels))
	}, p.log), nil
}

// infer runs one transcription on a fresh context. Contexts are not safe for
// concurrent use; the model is.
func (p *NativeProvider) infer(ctx context.Context, lang, prompt string, samples []float32) (string, error) {
	wctx, err := p.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(lang); err != nil {
		p.log.Warn("whisper: unsupported language, using model default", "language", lang, "err", err)
	}
	if prompt != "" {
		wctx.SetInitialPrompt(prompt)
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
