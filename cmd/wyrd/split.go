// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wyrdmud/wyrd/internal/config"
	"github.com/wyrdmud/wyrd/internal/regionsplit"
)

// NewSplitCmd creates the split subcommand.
func NewSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <room-id>",
		Short: "Split one room of the stored world",
		Long: `Split one room of the stored world into generated rooms and save the
result. The server must not be running against the same storage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runSplit(cmd.Context(), cfg, nil, args[0], cmd.OutOrStdout())
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runSplit(ctx context.Context, cfg *config.Config, deps *Deps, roomID string, out io.Writer) error {
	deps = deps.withDefaults()
	backend, err := deps.BackendOpener(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	worlds := observedStore{backend.Worlds}

	graph, err := loadWorld(ctx, worlds)
	if err != nil {
		return err
	}
	gen, err := deps.GeneratorFactory(cfg.GenerationClient())
	if err != nil {
		return err
	}
	pipeline, err := regionsplit.New(graph, gen,
		regionsplit.WithConfig(cfg.Pipeline()),
		regionsplit.WithStore(worlds),
	)
	if err != nil {
		return err
	}

	outcome, err := pipeline.Split(ctx, roomID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "split %s into %s (%d internal attempts)\n",
		roomID, strings.Join(outcome.Plan.RoomIDs(), ", "), outcome.InternalAttempts)
	return nil
}
