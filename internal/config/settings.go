package config

import (
	"log/slog"
	"sync/atomic"
)

// Settings is the mutable runtime view of the configuration. Menus read it
// before every confirmation and admin actions change it.
type Settings struct {
	validation atomic.Bool
	level      *slog.LevelVar
}

// NewSettings returns settings seeded from cfg. level may be nil, in which
// case log level changes only affect the returned value of [Settings.Level].
func NewSettings(cfg *Config, level *slog.LevelVar) *Settings {
	if level == nil {
		level = new(slog.LevelVar)
	}
	s := &Settings{level: level}
	s.validation.Store(cfg.Logic.Validation)
	if cfg.Logging.Level != "" {
		_ = level.UnmarshalText([]byte(cfg.Logging.Level))
	}
	return s
}

// Validation reports whether captured responses must be confirmed.
func (s *Settings) Validation() bool { return s.validation.Load() }

// SetValidation sets the validation flag.
func (s *Settings) SetValidation(on bool) { s.validation.Store(on) }

// ToggleValidation flips the validation flag and returns the new value.
func (s *Settings) ToggleValidation() bool {
	for {
		old := s.validation.Load()
		if s.validation.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Level returns the current log level.
func (s *Settings) Level() slog.Level { return s.level.Level() }

// SetLevel changes the log level of every logger built on the shared
// [slog.LevelVar].
func (s *Settings) SetLevel(l LogLevel) bool {
	if !l.IsValid() {
		return false
	}
	return s.level.UnmarshalText([]byte(l)) == nil
}
