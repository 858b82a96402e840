// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/wyrdmud/wyrd/internal/config"
	"github.com/wyrdmud/wyrd/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the wyrd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wyrd",
		Short: "wyrd - a text world that grows where players gather",
		Long: `wyrd is a multi-player text world served over telnet and websockets.
Rooms that draw a crowd are split into smaller generated regions while
players are inside them.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/wyrd/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSplitCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads configuration for cmd, whose flags were registered with
// config.RegisterFlags, and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.SetDefault("wyrd", version, cfg.Log.Format, cfg.LogLevel())
	return cfg, nil
}
