// Command parseltongue is an interactive, voice- or text-driven editor that
// builds Python functions from spoken menu choices.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/parseltongue/internal/config"
	"github.com/MrWong99/parseltongue/internal/editor"
	"github.com/MrWong99/parseltongue/internal/health"
	"github.com/MrWong99/parseltongue/internal/match"
	"github.com/MrWong99/parseltongue/internal/menu"
	"github.com/MrWong99/parseltongue/internal/observe"
	"github.com/MrWong99/parseltongue/internal/prompt"
	"github.com/MrWong99/parseltongue/internal/resilience"
	"github.com/MrWong99/parseltongue/internal/store"
	"github.com/MrWong99/parseltongue/internal/store/postgres"
	"github.com/MrWong99/parseltongue/internal/synonym"
	"github.com/MrWong99/parseltongue/internal/thesaurus"
	"github.com/MrWong99/parseltongue/internal/voice"
	"github.com/MrWong99/parseltongue/pkg/provider/stt"
	"github.com/MrWong99/parseltongue/pkg/provider/stt/whisper"
	"github.com/MrWong99/parseltongue/pkg/provider/tts"
	"github.com/MrWong99/parseltongue/pkg/provider/tts/elevenlabs"
)

const defaultConfigPath = "parseltongue.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.StringP("config", "c", defaultConfigPath, "path to the YAML configuration file")
	envFile := flag.String("env-file", ".env", "dotenv file with secrets; ignored when missing")
	input := flag.StringP("input", "i", "", "input mode: console or voice (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	logFormat := flag.String("log-format", "", "log format: tint, text, json (overrides config)")
	validation := flag.Bool("validation", false, "confirm every choice and answer (overrides config)")
	storeDir := flag.String("store-dir", "", "directory of the file store (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics and /healthz on this address")
	flag.Parse()

	// ── Environment ───────────────────────────────────────────────────────────
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "parseltongue: load %s: %v\n", *envFile, err)
		return 1
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, os.ErrNotExist) && !flag.CommandLine.Changed("config"):
		cfg = config.Default()
	case err != nil:
		fmt.Fprintf(os.Stderr, "parseltongue: %v\n", err)
		return 1
	}
	config.ApplyEnv(cfg, os.LookupEnv)
	applyFlags(cfg, *input, *logLevel, *logFormat, *storeDir, *metricsAddr)
	if flag.CommandLine.Changed("validation") {
		cfg.Logic.Validation = *validation
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "parseltongue: invalid configuration:\n%v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	settings := config.NewSettings(cfg, level)
	logger := newLogger(cfg.Logging.Format, level)
	slog.SetDefault(logger)

	slog.Info("parseltongue starting",
		"config", *configPath,
		"input", cfg.Voice.Input,
		"store", cfg.Store.Kind,
		"log_level", cfg.Logging.Level,
		"validation", settings.Validation(),
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownOTel, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	resolver, err := buildResolver(cfg, reg, metrics)
	if err != nil {
		slog.Error("failed to build synonym resolver", "err", err)
		return 1
	}

	fns, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open function store", "err", err)
		return 1
	}
	defer closeStore()

	p, closePrompter, err := buildPrompter(cfg, reg, metrics)
	if err != nil {
		slog.Error("failed to set up input", "err", err)
		return 1
	}
	defer closePrompter()

	ed := editor.New(p,
		editor.WithStore(fns),
		editor.WithSettings(settings),
		editor.WithMatchOptions(matchOptions(cfg.Matching, resolver)...),
		editor.WithEngineOptions(menu.WithMetrics(metrics)),
	)

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	session, endSession := context.WithCancel(gctx)
	defer endSession()

	if cfg.Metrics.ListenAddr != "" {
		var checks []health.Check
		if pinger, ok := fns.(store.Pinger); ok {
			checks = append(checks, health.Check{Name: "store", Probe: pinger.Ping})
		}
		g.Go(func() error { return observe.Serve(session, cfg.Metrics.ListenAddr, metrics, checks...) })
	}
	g.Go(func() error {
		defer endSession()
		results, err := ed.Run(session)
		if len(results) > 0 {
			slog.Info("session produced functions", "count", len(results))
		}
		if errors.Is(err, menu.ErrExit) || errors.Is(err, prompt.ErrClosed) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// applyFlags overlays the non-empty flag values onto cfg.
func applyFlags(cfg *config.Config, input, level, format, storeDir, metricsAddr string) {
	if input != "" {
		cfg.Voice.Input = config.InputMode(input)
	}
	if level != "" {
		cfg.Logging.Level = config.LogLevel(level)
	}
	if format != "" {
		cfg.Logging.Format = config.LogFormat(format)
	}
	if storeDir != "" {
		cfg.Store.Kind = config.StoreFile
		cfg.Store.Dir = storeDir
	}
	if metricsAddr != "" {
		cfg.Metrics.ListenAddr = metricsAddr
	}
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := entry.Option("language", ""); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = entry.Option("model_path", "")
		}
		var opts []whisper.Option
		if lang := entry.Option("language", ""); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.NewNative(modelPath, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, elevenlabs.WithBaseURL(entry.BaseURL))
		}
		if outputFmt := entry.Option("output_format", ""); outputFmt != "" {
			opts = append(opts, elevenlabs.WithOutputFormat(outputFmt))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	// ── Thesaurus ─────────────────────────────────────────────────────────────

	reg.RegisterThesaurus("file", func(entry config.ProviderEntry) (thesaurus.Thesaurus, error) {
		path := entry.Option("path", "")
		if path == "" {
			return nil, errors.New("thesaurus file: options.path is required")
		}
		return thesaurus.LoadFile(path)
	})

	reg.RegisterThesaurus("datamuse", func(entry config.ProviderEntry) (thesaurus.Thesaurus, error) {
		var opts []thesaurus.DatamuseOption
		if entry.BaseURL != "" {
			opts = append(opts, thesaurus.WithBaseURL(entry.BaseURL))
		}
		return thesaurus.NewDatamuse(opts...), nil
	})

	for _, kind := range []string{"stt", "tts", "thesaurus"} {
		slog.Debug("registered providers", "kind", kind, "names", reg.Names(kind))
	}
}

// buildResolver creates the synonym resolver: the static table extended by
// the configured synonyms, backed by the configured thesauri in order.
func buildResolver(cfg *config.Config, reg *config.Registry, metrics *observe.Metrics) (*synonym.Resolver, error) {
	opts := []synonym.Option{
		synonym.WithTable(synonym.DefaultTable().Merge(cfg.Matching.Synonyms)),
		synonym.WithMetrics(metrics),
	}

	breaker := resilience.FallbackConfig{CircuitBreaker: resilience.CircuitBreakerConfig{
		MaxFailures:  cfg.Thesaurus.MaxFailures,
		ResetTimeout: cfg.Thesaurus.ResetTimeout,
	}}
	var chain *resilience.ThesaurusFallback
	for _, entry := range cfg.Thesaurus.Providers {
		t, err := reg.CreateThesaurus(entry)
		if err != nil {
			return nil, fmt.Errorf("create thesaurus %q: %w", entry.Name, err)
		}
		if chain == nil {
			chain = resilience.NewThesaurusFallback(t, entry.Name, breaker)
		} else {
			chain.AddFallback(entry.Name, t)
		}
		slog.Info("provider created", "kind", "thesaurus", "name", entry.Name)
	}
	if chain != nil {
		opts = append(opts, synonym.WithThesaurus(thesaurus.NewCache(chain)))
	}
	return synonym.New(opts...), nil
}

// matchOptions translates the matching section into matcher options.
func matchOptions(cfg config.MatchingConfig, resolver *synonym.Resolver) []match.Option {
	opts := []match.Option{match.WithResolver(resolver)}
	if cfg.IgnoreWords != nil {
		opts = append(opts, match.WithIgnoreWords(cfg.IgnoreWords...))
	}
	if cfg.Fuzzy.Disabled {
		opts = append(opts, match.WithFuzzy(nil))
	} else {
		var fo []match.FuzzyOption
		if cfg.Fuzzy.PhoneticThreshold > 0 {
			fo = append(fo, match.WithPhoneticThreshold(cfg.Fuzzy.PhoneticThreshold))
		}
		if cfg.Fuzzy.Threshold > 0 {
			fo = append(fo, match.WithFuzzyThreshold(cfg.Fuzzy.Threshold))
		}
		opts = append(opts, match.WithFuzzy(match.NewFuzzy(fo...)))
	}
	if len(cfg.ExitPhrases) > 0 {
		opts = append(opts, match.WithAdmin(match.Admin{Phrases: cfg.ExitPhrases, Choice: match.ExitChoice()}))
	}
	return opts
}

// openStore opens the configured function store. The returned func releases
// it.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Kind {
	case config.StorePostgres:
		s, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("function store ready", "kind", cfg.Kind)
		return s, s.Close, nil
	default:
		s, err := store.NewFile(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("function store ready", "kind", cfg.Kind, "dir", s.Dir())
		return s, func() {}, nil
	}
}

// buildPrompter returns the console prompter, or in voice mode a spoken
// prompter over the configured recognisers and synthesizer. The returned
// func stops the console or releases the providers.
func buildPrompter(cfg *config.Config, reg *config.Registry, metrics *observe.Metrics) (prompt.Prompter, func(), error) {
	if cfg.Voice.Input != config.InputVoice {
		c := prompt.NewConsole(os.Stdin, os.Stdout, prompt.WithMetrics(metrics))
		return c, func() { c.Close() }, nil
	}

	var closers []io.Closer
	release := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				slog.Warn("provider close error", "err", err)
			}
		}
	}

	var recogniser *resilience.STTFallback
	for _, entry := range cfg.Voice.STT {
		p, err := reg.CreateSTT(entry)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("create stt provider %q: %w", entry.Name, err)
		}
		if c, ok := p.(io.Closer); ok {
			closers = append(closers, c)
		}
		if recogniser == nil {
			recogniser = resilience.NewSTTFallback(p, entry.Name, resilience.FallbackConfig{})
		} else {
			recogniser.AddFallback(entry.Name, p)
		}
		slog.Info("provider created", "kind", "stt", "name", entry.Name, "model", entry.Model)
	}

	listener := voice.NewListener(recogniser, voice.CommandSource(cfg.Voice.Source),
		voice.WithProviderName(cfg.Voice.STT[0].Name),
		voice.WithStreamConfig(stt.StreamConfig{
			SampleRate: cfg.Voice.SampleRate,
			Language:   cfg.Voice.STT[0].Option("language", ""),
		}),
		voice.WithListenTimeout(cfg.Voice.ListenTimeout),
		voice.WithListenerMetrics(metrics),
	)

	opts := []voice.PrompterOption{voice.WithPrompterMetrics(metrics)}
	if entry := cfg.Voice.TTS; entry.Name != "" {
		p, err := reg.CreateTTS(entry)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("create tts provider %q: %w", entry.Name, err)
		}
		speaker := voice.NewSpeaker(
			resilience.NewTTSFallback(p, entry.Name, resilience.FallbackConfig{}),
			voice.CommandSink(cfg.Voice.Sink),
			voice.WithVoice(tts.Voice{ID: cfg.Voice.VoiceID}),
			voice.WithSpeakerName(entry.Name),
			voice.WithSpeakerMetrics(metrics),
		)
		opts = append(opts, voice.WithSpeaker(speaker))
		slog.Info("provider created", "kind", "tts", "name", entry.Name, "voice", cfg.Voice.VoiceID)
	}
	return voice.NewPrompter(listener, os.Stdout, opts...), release, nil
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(format config.LogFormat, level *slog.LevelVar) *slog.Logger {
	switch format {
	case config.LogFormatJSON:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	case config.LogFormatText:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: time.Kitchen}))
	}
}
