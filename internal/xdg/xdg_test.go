// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

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
		env  string
		fn   func() string
		home string
	}{
		{"config", "XDG_CONFIG_HOME", ConfigDir, "/home/ann/.config/wyrd"},
		{"data", "XDG_DATA_HOME", DataDir, "/home/ann/.local/share/wyrd"},
		{"state", "XDG_STATE_HOME", StateDir, "/home/ann/.local/state/wyrd"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/env", func(t *testing.T) {
			t.Setenv(tt.env, "/custom")
			assert.Equal(t, "/custom/wyrd", tt.fn())
		})
		t.Run(tt.name+"/home", func(t *testing.T) {
			t.Setenv(tt.env, "")
			t.Setenv("HOME", "/home/ann")
			assert.Equal(t, tt.home, tt.fn())
		})
	}
}

func TestDefaultFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, "/cfg/wyrd/config.yaml", ConfigFile())
	assert.Equal(t, "/data/wyrd/world.yaml", WorldFile())
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(path))
	require.NoError(t, EnsureDir(path), "idempotent")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestEnsureDir_Failure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	assert.Error(t, EnsureDir(filepath.Join(file, "sub")))
}
