// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/fountain/internal/config"
	"github.com/holomush/fountain/internal/quest"
	"github.com/holomush/fountain/pkg/errutil"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fountain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-format", "json", "")
	fs.String("log-level", "info", "")
	fs.Duration("tick", 50*time.Millisecond, "")
	fs.Int("max-ticks", 0, "")
	fs.String("journal", "memory", "")
	fs.String("metrics-addr", "", "")
	fs.String("level", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, quest.DefaultVisibleDelay, cfg.Quest.VisibleDelay)
	assert.Equal(t, config.JournalMemory, cfg.Journal.Backend)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
log:
  format: text
  level: debug
simulation:
  tick: 100ms
  max_ticks: 500
quest:
  visible_delay: 1s
hud:
  width: 60
journal:
  backend: postgres
  database_url: postgres://localhost/fountain
  retries: 4
`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.Tick)
	assert.Equal(t, 500, cfg.Simulation.MaxTicks)
	assert.Equal(t, time.Second, cfg.Quest.VisibleDelay)
	assert.Equal(t, quest.DefaultFadeDelay, cfg.Quest.FadeDelay, "unset keys keep defaults")
	assert.Equal(t, 60, cfg.HUD.Width)
	assert.Equal(t, config.JournalPostgres, cfg.Journal.Backend)
	assert.Equal(t, "postgres://localhost/fountain", cfg.Journal.DatabaseURL)
	assert.Equal(t, uint64(4), cfg.Journal.Retries)
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	path := writeFile(t, "simulation:\n  tick: 100ms\nlog:\n  format: text\n")
	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--tick", "20ms", "--max-ticks", "7", "--level", "x.yaml"}))

	cfg, err := config.Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Simulation.Tick)
	assert.Equal(t, 7, cfg.Simulation.MaxTicks)
	assert.Equal(t, "text", cfg.Log.Format, "unchanged flag defaults do not override the file")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, config.CodeConfigLoad)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "log: [\n"), nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, config.CodeConfigLoad)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "journal:\n  backend: sqlite\n"), nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, config.CodeConfigInvalid)
		errutil.AssertErrorContext(t, err, "key", "journal.backend")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
	}{
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"zero tick", func(c *config.Config) { c.Simulation.Tick = 0 }, "simulation.tick"},
		{"negative max ticks", func(c *config.Config) { c.Simulation.MaxTicks = -1 }, "simulation.max_ticks"},
		{"negative fade", func(c *config.Config) { c.Quest.FadeDelay = -time.Second }, "quest"},
		{"narrow hud", func(c *config.Config) { c.HUD.Width = 4 }, "hud.width"},
		{"backend", func(c *config.Config) { c.Journal.Backend = "" }, "journal.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}

	assert.NoError(t, config.Default().Validate())
}

func TestResolvePath(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	assert.Equal(t, "/etc/fountain.yaml", config.ResolvePath("/etc/fountain.yaml"))
	assert.Empty(t, config.ResolvePath(""))

	path := filepath.Join(base, "fountain", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("hud:\n  width: 30\n"), 0o600))
	assert.Equal(t, path, config.ResolvePath(""))
}
