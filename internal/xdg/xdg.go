// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package xdg resolves the XDG Base Directory locations fountain reads from.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "fountain"

// ConfigFileName is the config file looked up in ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns $XDG_CONFIG_HOME/fountain, falling back to
// ~/.config/fountain.
func ConfigDir() string {
	return dir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/fountain, falling back to
// ~/.local/share/fountain. Level files may be placed in DataDir/levels.
func DataDir() string {
	return dir("XDG_DATA_HOME", ".local", "share")
}

// ConfigFile returns the default config file path and whether it exists.
func ConfigFile() (string, bool) {
	path := filepath.Join(ConfigDir(), ConfigFileName)
	info, err := os.Stat(path)
	return path, err == nil && !info.IsDir()
}

func dir(env string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" {
		base = filepath.Join(append([]string{os.Getenv("HOME")}, fallback...)...)
	}
	return filepath.Join(base, appName)
}
