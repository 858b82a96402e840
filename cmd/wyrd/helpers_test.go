// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wyrdmud/wyrd/internal/auth"
	"github.com/wyrdmud/wyrd/internal/config"
	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/world"
)

var cheapParams = auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

// testConfig uses the file backend in a temp dir with only the telnet
// gateway enabled.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log:    config.LogConfig{Format: "json", Level: "info"},
		Telnet: config.TelnetConfig{Addr: "127.0.0.1:0"},
		Store: config.StoreConfig{
			Backend:   config.BackendFile,
			WorldFile: filepath.Join(t.TempDir(), "world.yaml"),
		},
		Generation: config.GenerationConfig{Model: "test", Timeout: time.Second},
		Split:      config.SplitConfig{Interval: time.Minute, Threshold: 4, RetryDelay: time.Millisecond},
	}
}

func testDeps(gen generation.Service) *Deps {
	return &Deps{
		Hasher: auth.NewArgon2idHasher(cheapParams),
		GeneratorFactory: func(generation.Config) (generation.Service, error) {
			return gen, nil
		},
	}
}

func writeWorld(t *testing.T, path string, snap world.Snapshot) {
	t.Helper()
	require.NoError(t, world.NewFileStore(path).Save(context.Background(), &snap))
}

func readWorld(t *testing.T, path string) *world.Snapshot {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	snap, err := world.DecodeSnapshot(data)
	require.NoError(t, err)
	return snap
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o600)
}
