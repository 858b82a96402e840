// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/regionsplit"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

// isolate points XDG paths at a temp dir and clears secret variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, name := range APIKeyEnv {
		t.Setenv(name, "")
	}
	t.Setenv(DatabaseURLEnv, "")
	return dir
}

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("", parseFlags(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":4000", cfg.Telnet.Addr)
	assert.True(t, cfg.Telnet.Color)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "data", "wyrd", "world.yaml"), cfg.Store.WorldFile)
	assert.Equal(t, generation.DefaultBaseURL, cfg.Generation.BaseURL)
	assert.Equal(t, regionsplit.DefaultThreshold, cfg.Split.Threshold)
	assert.Equal(t, regionsplit.DefaultInterval, cfg.Split.Interval)
	assert.False(t, cfg.Split.Enabled)
}

func TestLoad_FileThenFlags(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, `
log:
  format: text
telnet:
  addr: ":5000"
  color: false
split:
  threshold: 6
  interval: 30s
  exclude: ["spawn-*", "vault"]
  retry_delay: 2s
`)

	cfg, err := Load(path, parseFlags(t, "--telnet-addr", ":6000"))
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":6000", cfg.Telnet.Addr, "set flags override the file")
	assert.False(t, cfg.Telnet.Color, "flag defaults do not override the file")
	assert.Equal(t, 6, cfg.Split.Threshold)
	assert.Equal(t, 30*time.Second, cfg.Split.Interval)
	assert.Equal(t, []string{"spawn-*", "vault"}, cfg.Split.Exclude)
	assert.Equal(t, 2*time.Second, cfg.Split.RetryDelay)
}

func TestLoad_DefaultFileFromXDG(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", "wyrd")
	require.NoError(t, os.MkdirAll(cfgDir, 0o700))
	writeFile(t, cfgDir, "web:\n  addr: \"\"\n")

	cfg, err := Load("", parseFlags(t))
	require.NoError(t, err)
	assert.Empty(t, cfg.Web.Addr)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"), parseFlags(t))
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "telnet: [unclosed")
	_, err := Load(path, parseFlags(t))
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv(DatabaseURLEnv, "postgres://localhost/wyrd")

	cfg, err := Load("", parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "or-key", cfg.Generation.APIKey)
	assert.Equal(t, "postgres://localhost/wyrd", cfg.Store.DatabaseURL)

	t.Setenv("WYRD_GENERATION_API_KEY", "wyrd-key")
	cfg, err = Load("", parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "wyrd-key", cfg.Generation.APIKey, "the wyrd variable wins")
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad backend", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }},
		{"no gateways", func(c *Config) { c.Telnet.Addr = ""; c.Web.Addr = "" }},
		{"split without key", func(c *Config) { c.Split.Enabled = true }},
		{"split without model", func(c *Config) {
			c.Split.Enabled = true
			c.Generation.APIKey = "k"
			c.Generation.Model = ""
		}},
		{"zero threshold", func(c *Config) { c.Split.Threshold = 0 }},
		{"zero interval", func(c *Config) { c.Split.Interval = 0 }},
		{"bad glob", func(c *Config) { c.Split.Exclude = []string{"[unclosed"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("", parseFlags(t))
			require.NoError(t, err)
			tt.mutate(cfg)
			errutil.AssertErrorCode(t, cfg.Validate(), "INVALID_CONFIG")
		})
	}
}

func TestValidate_BadLogLevelKeepsConfigCode(t *testing.T) {
	isolate(t)
	cfg, err := Load("", parseFlags(t, "--log-level", "loud"))
	require.NoError(t, err)

	err = cfg.Validate()
	errutil.AssertErrorCode(t, err, "INVALID_CONFIG")
	errutil.AssertErrorContext(t, err, "log.level", "loud")
}

func TestValidate_SplitEnabled(t *testing.T) {
	isolate(t)
	t.Setenv("WYRD_GENERATION_API_KEY", "k")
	cfg, err := Load("", parseFlags(t, "--split-enabled", "--store-backend", "postgres", "--store-dsn", "postgres://db/wyrd"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestDerivedConfigs(t *testing.T) {
	isolate(t)
	cfg, err := Load("", parseFlags(t,
		"--log-level", "debug",
		"--gen-model", "m",
		"--gen-timeout", "5s",
		"--split-attempts", "4",
		"--split-exclude", "a*,b",
		"--split-cooldown", "1m",
	))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.Equal(t, "m", cfg.GenerationClient().Model)
	assert.Equal(t, regionsplit.Config{
		CallTimeout:         5 * time.Second,
		MaxInternalAttempts: 4,
		RetryDelay:          regionsplit.DefaultRetryDelay,
	}, cfg.Pipeline())
	sched := cfg.Scheduler()
	assert.Equal(t, []string{"a*", "b"}, sched.Exclude)
	assert.Equal(t, time.Minute, sched.Cooldown)
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "split.retry_delay", flagKey("split-retry-delay"))
	assert.Equal(t, "telnet.addr", flagKey("telnet-addr"))
	assert.Equal(t, "config", flagKey("config"))
}
