// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		fn   func() string
		want string
	}{
		{
			name: "config from env",
			env:  map[string]string{"XDG_CONFIG_HOME": "/custom/config"},
			fn:   ConfigDir,
			want: "/custom/config/fountain",
		},
		{
			name: "config default",
			env:  map[string]string{"XDG_CONFIG_HOME": "", "HOME": "/home/testuser"},
			fn:   ConfigDir,
			want: "/home/testuser/.config/fountain",
		},
		{
			name: "data from env",
			env:  map[string]string{"XDG_DATA_HOME": "/custom/data"},
			fn:   DataDir,
			want: "/custom/data/fountain",
		},
		{
			name: "data default",
			env:  map[string]string{"XDG_DATA_HOME": "", "HOME": "/home/testuser"},
			fn:   DataDir,
			want: "/home/testuser/.local/share/fountain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, tt.fn())
		})
	}
}

func TestConfigFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	path, ok := ConfigFile()
	assert.False(t, ok)
	assert.Equal(t, filepath.Join(base, "fountain", ConfigFileName), path)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	_, ok = ConfigFile()
	assert.True(t, ok)
}
