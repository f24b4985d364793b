// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads runtime settings. Values are layered: built-in
// defaults, then an optional YAML file, then command-line flags the user set.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/fountain/internal/eventbus"
	"github.com/holomush/fountain/internal/hud"
	"github.com/holomush/fountain/internal/journal"
	"github.com/holomush/fountain/internal/logging"
	"github.com/holomush/fountain/internal/quest"
	"github.com/holomush/fountain/internal/script"
	"github.com/holomush/fountain/internal/simulation"
	"github.com/holomush/fountain/internal/xdg"
)

// Error codes.
const (
	CodeConfigLoad    = "CONFIG_LOAD"
	CodeConfigInvalid = "CONFIG_INVALID"
)

// Journal backends.
const (
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
)

// Config is the full runtime configuration.
type Config struct {
	Log        Log        `koanf:"log"`
	Simulation Simulation `koanf:"simulation"`
	Quest      Quest      `koanf:"quest"`
	HUD        HUD        `koanf:"hud"`
	Bus        Bus        `koanf:"bus"`
	Journal    Journal    `koanf:"journal"`
	Metrics    Metrics    `koanf:"metrics"`
}

// Log configures the slog handler.
type Log struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Simulation configures the fixed-step loop.
type Simulation struct {
	Tick          time.Duration `koanf:"tick"`
	MaxTicks      int           `koanf:"max_ticks"`
	ScriptTimeout time.Duration `koanf:"script_timeout"`
}

// Quest configures task retirement.
type Quest struct {
	VisibleDelay time.Duration `koanf:"visible_delay"`
	FadeDelay    time.Duration `koanf:"fade_delay"`
}

// HUD configures the text task display.
type HUD struct {
	FadeIn time.Duration `koanf:"fade_in"`
	Width  int           `koanf:"width"`
}

// Bus configures the event bus.
type Bus struct {
	HistorySize int `koanf:"history_size"`
}

// Journal configures task lifecycle recording.
type Journal struct {
	Backend     string        `koanf:"backend"`
	DatabaseURL string        `koanf:"database_url"`
	Retries     uint64        `koanf:"retries"`
	RetryBase   time.Duration `koanf:"retry_base"`
}

// Metrics configures the observability server.
type Metrics struct {
	Addr string `koanf:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{Format: logging.FormatJSON, Level: "info"},
		Simulation: Simulation{
			Tick:          simulation.DefaultStep,
			ScriptTimeout: script.DefaultTimeout,
		},
		Quest: Quest{
			VisibleDelay: quest.DefaultVisibleDelay,
			FadeDelay:    quest.DefaultFadeDelay,
		},
		HUD:     HUD{FadeIn: hud.DefaultFadeIn, Width: 48},
		Bus:     Bus{HistorySize: eventbus.DefaultHistorySize},
		Journal: Journal{Backend: JournalMemory, Retries: journal.DefaultRetries, RetryBase: journal.DefaultRetryBase},
		Metrics: Metrics{},
	}
}

// FlagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var FlagKeys = map[string]string{
	"log-format":   "log.format",
	"log-level":    "log.level",
	"tick":         "simulation.tick",
	"max-ticks":    "simulation.max_ticks",
	"journal":      "journal.backend",
	"database-url": "journal.database_url",
	"metrics-addr": "metrics.addr",
}

// Load merges defaults, the YAML file at path (skipped when empty) and the
// flags in fs that were changed on the command line. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, oops.In("config").
				Code(CodeConfigLoad).
				With("path", path).
				Wrapf(err, "load config file")
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return cfg, oops.In("config").Code(CodeConfigLoad).Wrapf(err, "load flags")
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.In("config").Code(CodeConfigLoad).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ResolvePath returns explicit when set, otherwise the XDG config file if it
// exists, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path, ok := xdg.ConfigFile(); ok {
		return path
	}
	return ""
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.Log.Format != logging.FormatJSON && c.Log.Format != logging.FormatText:
		return invalid("log.format", "must be 'json' or 'text', got %q", c.Log.Format)
	case c.Simulation.Tick <= 0:
		return invalid("simulation.tick", "must be positive, got %s", c.Simulation.Tick)
	case c.Simulation.MaxTicks < 0:
		return invalid("simulation.max_ticks", "must not be negative, got %d", c.Simulation.MaxTicks)
	case c.Quest.VisibleDelay < 0 || c.Quest.FadeDelay < 0:
		return invalid("quest", "retirement delays must not be negative")
	case c.HUD.Width < 8:
		return invalid("hud.width", "must be at least 8, got %d", c.HUD.Width)
	case c.Journal.Backend != JournalMemory && c.Journal.Backend != JournalPostgres:
		return invalid("journal.backend", "must be 'memory' or 'postgres', got %q", c.Journal.Backend)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "%v", err)
	}
	return nil
}

func invalid(key, format string, args ...any) error {
	return oops.In("config").
		Code(CodeConfigInvalid).
		With("key", key).
		Errorf(key+": "+format, args...)
}
