package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":       {"whisper", "whisper-native"},
	"tts":       {"elevenlabs"},
	"thesaurus": {"datamuse", "file"},
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatTint
	}
	if cfg.Voice.Input == "" {
		cfg.Voice.Input = InputConsole
	}
	if cfg.Voice.SampleRate == 0 {
		cfg.Voice.SampleRate = 16000
	}
	if cfg.Voice.ListenTimeout == 0 {
		cfg.Voice.ListenTimeout = 10 * time.Second
	}
	if len(cfg.Voice.Source) == 0 {
		cfg.Voice.Source = []string{"arecord", "-q", "-t", "raw", "-f", "S16_LE", "-c", "1", "-r", fmt.Sprint(cfg.Voice.SampleRate)}
	}
	if len(cfg.Voice.Sink) == 0 {
		cfg.Voice.Sink = []string{"aplay", "-q", "-t", "raw", "-f", "S16_LE", "-c", "1", "-r", fmt.Sprint(cfg.Voice.SampleRate)}
	}
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = StoreFile
	}
	if cfg.Store.Kind == StoreFile && cfg.Store.Dir == "" {
		cfg.Store.Dir = "functions"
	}
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and validates
// the result. An empty document yields [Default].
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays secrets and deployment settings from the environment.
// lookup is usually [os.LookupEnv]. Values already set in the file win for
// everything except secrets.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("PARSELTONGUE_LOG_LEVEL"); ok && v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v, ok := lookup("PARSELTONGUE_POSTGRES_DSN"); ok && v != "" {
		cfg.Store.PostgresDSN = v
	}
	if v, ok := lookup("PARSELTONGUE_METRICS_ADDR"); ok && cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = v
	}
	if v, ok := lookup("ELEVENLABS_API_KEY"); ok && cfg.Voice.TTS.Name == "elevenlabs" && cfg.Voice.TTS.APIKey == "" {
		cfg.Voice.TTS.APIKey = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Logging.Level != "" && !cfg.Logging.Level.IsValid() {
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "" && !cfg.Logging.Format.IsValid() {
		errs = append(errs, fmt.Errorf("logging.format %q is invalid; valid values: tint, text, json", cfg.Logging.Format))
	}

	fz := cfg.Matching.Fuzzy
	for name, v := range map[string]float64{"phonetic_threshold": fz.PhoneticThreshold, "threshold": fz.Threshold} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("matching.fuzzy.%s %.2f is out of range [0, 1]", name, v))
		}
	}
	for word, canon := range cfg.Matching.Synonyms {
		if word == "" || canon == "" {
			errs = append(errs, fmt.Errorf("matching.synonyms: entry %q -> %q has an empty side", word, canon))
		}
	}

	for i, p := range cfg.Thesaurus.Providers {
		prefix := fmt.Sprintf("thesaurus.providers[%d]", i)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		validateProviderName("thesaurus", p.Name)
		if p.Name == "file" && p.Option("path", "") == "" {
			errs = append(errs, fmt.Errorf("%s: provider \"file\" requires options.path", prefix))
		}
	}

	v := cfg.Voice
	if v.Input != "" && !v.Input.IsValid() {
		errs = append(errs, fmt.Errorf("voice.input %q is invalid; valid values: console, voice", v.Input))
	}
	for i, p := range v.STT {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("voice.stt[%d].name is required", i))
			continue
		}
		validateProviderName("stt", p.Name)
	}
	validateProviderName("tts", v.TTS.Name)
	if v.Input == InputVoice {
		if len(v.STT) == 0 {
			errs = append(errs, errors.New("voice.input \"voice\" requires at least one voice.stt provider"))
		}
		if len(v.Source) == 0 {
			errs = append(errs, errors.New("voice.input \"voice\" requires voice.source"))
		}
	}
	if v.TTS.Name != "" && v.VoiceID == "" {
		errs = append(errs, fmt.Errorf("voice.tts %q requires voice.voice_id", v.TTS.Name))
	}
	if v.TTS.Name != "" && v.Input != InputVoice {
		slog.Warn("voice.tts is configured but voice.input is not \"voice\"; announcements will still be spoken")
	}
	if v.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("voice.sample_rate %d must be positive", v.SampleRate))
	}
	if v.ListenTimeout < 0 {
		errs = append(errs, fmt.Errorf("voice.listen_timeout %s must be positive", v.ListenTimeout))
	}

	s := cfg.Store
	if s.Kind != "" && !s.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("store.kind %q is invalid; valid values: file, postgres", s.Kind))
	}
	if s.Kind == StorePostgres && s.PostgresDSN == "" {
		errs = append(errs, errors.New("store.kind \"postgres\" requires store.postgres_dsn or PARSELTONGUE_POSTGRES_DSN"))
	}
	if s.Kind == StoreFile && s.Dir == "" {
		errs = append(errs, errors.New("store.kind \"file\" requires store.dir"))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok || slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name; may be a typo or a provider registered elsewhere",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
