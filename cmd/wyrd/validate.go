// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wyrdmud/wyrd/internal/schema"
	"github.com/wyrdmud/wyrd/internal/world"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <world-file>...",
		Short: "Check world files",
		Long:  `Check world files against the world schema and the graph invariants.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, cmd.OutOrStdout())
		},
	}
}

func runValidate(paths []string, out io.Writer) error {
	failed := 0
	for _, path := range paths {
		if err := validateWorldFile(path, out); err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "%s: %s\n", path, schema.FormatError(err))
		}
	}
	if failed > 0 {
		return oops.Code("VALIDATION_FAILED").With("failed", failed).Errorf("%d of %d world files invalid", failed, len(paths))
	}
	return nil
}

func validateWorldFile(path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.With("path", path).Wrapf(err, "read world file")
	}
	snap, err := world.ValidateFile(data)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "%s: ok (%d rooms, spawn %s)\n", path, len(snap.Rooms), snap.Spawn)
	return nil
}
