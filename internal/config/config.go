// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package config loads server configuration. Values come from flag
// defaults, then the YAML config file, then flags set on the command line.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/logging"
	"github.com/wyrdmud/wyrd/internal/regionsplit"
	"github.com/wyrdmud/wyrd/internal/xdg"
)

// Environment variables holding secrets, in lookup order.
var (
	APIKeyEnv      = []string{"WYRD_GENERATION_API_KEY", "OPENROUTER_API_KEY"}
	DatabaseURLEnv = "DATABASE_URL"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "anthropic/claude-3.5-haiku"

// Config is the full server configuration.
type Config struct {
	Log        LogConfig        `koanf:"log"`
	Telnet     TelnetConfig     `koanf:"telnet"`
	Web        WebConfig        `koanf:"web"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Store      StoreConfig      `koanf:"store"`
	Generation GenerationConfig `koanf:"gen"`
	Split      SplitConfig      `koanf:"split"`
}

// LogConfig selects the log format and level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// TelnetConfig configures the telnet gateway. An empty address disables it.
type TelnetConfig struct {
	Addr  string `koanf:"addr"`
	Color bool   `koanf:"color"`
}

// WebConfig configures the websocket gateway. An empty address disables it.
type WebConfig struct {
	Addr      string `koanf:"addr"`
	StaticDir string `koanf:"static"`
}

// MetricsConfig configures the observability endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// StoreConfig selects where accounts and the world are kept.
type StoreConfig struct {
	Backend     string `koanf:"backend"`
	WorldFile   string `koanf:"world"`
	DatabaseURL string `koanf:"dsn"`

	// Migrate applies pending schema migrations at startup.
	Migrate bool `koanf:"migrate"`
}

// GenerationConfig configures the text-generation endpoint.
type GenerationConfig struct {
	BaseURL     string        `koanf:"url"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	Temperature float64       `koanf:"temperature"`
	JSONMode    bool          `koanf:"json"`
	MaxRetries  int           `koanf:"retries"`
	Timeout     time.Duration `koanf:"timeout"`
}

// SplitConfig configures the region split scheduler and pipeline.
type SplitConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Interval   time.Duration `koanf:"interval"`
	Threshold  int           `koanf:"threshold"`
	Exclude    []string      `koanf:"exclude"`
	Cooldown   time.Duration `koanf:"cooldown"`
	Attempts   int           `koanf:"attempts"`
	RetryDelay time.Duration `koanf:"retry_delay"`
}

// RegisterFlags defines every configuration flag on flags with its default.
// Flag names map to config keys: the first dash separates the section and
// later dashes become underscores, so split-retry-delay is split.retry_delay.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("log-format", "json", "log format (json or text)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	flags.String("telnet-addr", ":4000", "telnet listen address (empty = disabled)")
	flags.Bool("telnet-color", true, "send ANSI colors to telnet clients")
	flags.String("web-addr", ":8080", "websocket listen address (empty = disabled)")
	flags.String("web-static", "", "directory of web client files served at /")
	flags.String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")

	flags.String("store-backend", BackendFile, "storage backend (file or postgres)")
	flags.String("store-world", "", "world file for the file backend (default: XDG_DATA_HOME/wyrd/world.yaml)")
	flags.String("store-dsn", "", "postgres connection URL (default: $"+DatabaseURLEnv+")")
	flags.Bool("store-migrate", true, "apply pending postgres migrations at startup")

	flags.String("gen-url", generation.DefaultBaseURL, "OpenAI-compatible API base URL")
	flags.String("gen-model", DefaultModel, "generation model")
	flags.Float64("gen-temperature", 0.7, "generation temperature")
	flags.Bool("gen-json", true, "request JSON-constrained output")
	flags.Int("gen-retries", 2, "transport retries per generation call")
	flags.Duration("gen-timeout", regionsplit.DefaultCallTimeout, "timeout for each generation call")

	flags.Bool("split-enabled", false, "run the region split scheduler")
	flags.Duration("split-interval", regionsplit.DefaultInterval, "time between split checks")
	flags.Int("split-threshold", regionsplit.DefaultThreshold, "connection count a room must exceed to be split")
	flags.StringSlice("split-exclude", nil, "glob patterns of room ids never split")
	flags.Duration("split-cooldown", 0, "skip time for a room whose split failed (default: 4 intervals)")
	flags.Int("split-attempts", regionsplit.DefaultMaxInternalAttempts, "internal-connection proposals per split")
	flags.Duration("split-retry-delay", regionsplit.DefaultRetryDelay, "pause between internal-connection proposals")
}

// flagKey maps a flag name to its config key.
func flagKey(name string) string {
	section, rest, ok := strings.Cut(name, "-")
	if !ok {
		return name
	}
	return section + "." + strings.ReplaceAll(rest, "-", "_")
}

// Load builds the configuration. path names the config file; when empty the
// XDG default is used and may be absent. flags must have been set up with
// RegisterFlags and parsed.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	load := true
	if path == "" {
		path = xdg.ConfigFile()
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			load = false
		}
	}
	if load {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrapf(err, "load config file")
		}
	}

	// Unchanged flags fill only keys the file left unset.
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		return flagKey(f.Name), posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "load flags")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "decode config")
	}
	cfg.applyEnv()
	if cfg.Store.WorldFile == "" {
		cfg.Store.WorldFile = xdg.WorldFile()
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.Generation.APIKey == "" {
		for _, name := range APIKeyEnv {
			if v := os.Getenv(name); v != "" {
				c.Generation.APIKey = v
				break
			}
		}
	}
	if c.Store.DatabaseURL == "" {
		c.Store.DatabaseURL = os.Getenv(DatabaseURLEnv)
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := oops.Code("INVALID_CONFIG")
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid.With("log.format", c.Log.Format).Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid.With("log.level", c.Log.Level).Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.WorldFile == "" {
			return invalid.Errorf("store.world is required for the file backend")
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return invalid.Errorf("store.dsn or %s is required for the postgres backend", DatabaseURLEnv)
		}
	default:
		return invalid.With("store.backend", c.Store.Backend).Errorf("store backend must be %q or %q", BackendFile, BackendPostgres)
	}
	if c.Telnet.Addr == "" && c.Web.Addr == "" {
		return invalid.Errorf("at least one of telnet.addr and web.addr is required")
	}
	if c.Split.Enabled {
		if c.Generation.APIKey == "" {
			return invalid.Errorf("a generation API key (%s) is required when splitting is enabled", strings.Join(APIKeyEnv, " or "))
		}
		if c.Generation.Model == "" {
			return invalid.Errorf("gen.model is required when splitting is enabled")
		}
	}
	if c.Split.Threshold < 1 {
		return invalid.With("split.threshold", c.Split.Threshold).Errorf("split threshold must be positive")
	}
	if c.Split.Interval <= 0 {
		return invalid.Errorf("split interval must be positive")
	}
	for _, pattern := range c.Split.Exclude {
		if _, err := glob.Compile(pattern); err != nil {
			return invalid.With("pattern", pattern).Wrapf(err, "invalid split exclude pattern")
		}
	}
	return nil
}

// LogLevel returns the parsed log level. Call after Validate.
func (c *Config) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// GenerationClient returns the generation client configuration.
func (c *Config) GenerationClient() generation.Config {
	return generation.Config{
		BaseURL:     c.Generation.BaseURL,
		APIKey:      c.Generation.APIKey,
		Model:       c.Generation.Model,
		Temperature: c.Generation.Temperature,
		JSONMode:    c.Generation.JSONMode,
		MaxRetries:  c.Generation.MaxRetries,
	}
}

// Pipeline returns the region split pipeline configuration.
func (c *Config) Pipeline() regionsplit.Config {
	return regionsplit.Config{
		CallTimeout:         c.Generation.Timeout,
		MaxInternalAttempts: c.Split.Attempts,
		RetryDelay:          c.Split.RetryDelay,
	}
}

// Scheduler returns the region split scheduler configuration.
func (c *Config) Scheduler() regionsplit.SchedulerConfig {
	return regionsplit.SchedulerConfig{
		Interval:  c.Split.Interval,
		Threshold: c.Split.Threshold,
		Exclude:   c.Split.Exclude,
		Cooldown:  c.Split.Cooldown,
	}
}
