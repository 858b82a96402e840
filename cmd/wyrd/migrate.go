// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package main

import (
	"fmt"
	"io"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wyrdmud/wyrd/internal/config"
	"github.com/wyrdmud/wyrd/internal/store"
)

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		Long:  `Apply, roll back, or inspect the embedded PostgreSQL schema migrations.`,
	}
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newMigrateSubCmd("up", "Apply all pending migrations", migrateUpAction))
	cmd.AddCommand(newMigrateSubCmd("down", "Roll back all migrations", migrateDownAction))
	cmd.AddCommand(newMigrateSubCmd("version", "Show the current schema version", migrateVersionAction))
	cmd.AddCommand(newMigrateSubCmd("status", "List applied and pending migrations", migrateStatusAction))
	return cmd
}

type migrateAction func(m Migrator, out io.Writer) error

func newMigrateSubCmd(use, short string, action migrateAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runMigrate(cfg, nil, action, cmd.OutOrStdout())
		},
	}
}

func runMigrate(cfg *config.Config, deps *Deps, action migrateAction, out io.Writer) error {
	if cfg.Store.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("store.dsn or %s is required", config.DatabaseURLEnv)
	}
	deps = deps.withDefaults()
	m, err := deps.MigratorFactory(cfg.Store.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return action(m, out)
}

func migrateUpAction(m Migrator, out io.Writer) error {
	if err := m.Up(); err != nil {
		return err
	}
	return printVersion(m, out)
}

func migrateDownAction(m Migrator, out io.Writer) error {
	if err := m.Down(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "all migrations rolled back")
	return nil
}

func migrateVersionAction(m Migrator, out io.Writer) error {
	return printVersion(m, out)
}

func migrateStatusAction(m Migrator, out io.Writer) error {
	applied, err := m.AppliedMigrations()
	if err != nil {
		return err
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}
	for _, v := range applied {
		_, _ = fmt.Fprintf(out, "applied  %s\n", migrationLabel(v))
	}
	for _, v := range pending {
		_, _ = fmt.Fprintf(out, "pending  %s\n", migrationLabel(v))
	}
	return nil
}

func printVersion(m Migrator, out io.Writer) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if v == 0 {
		_, _ = fmt.Fprintln(out, "schema version: none")
		return nil
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	_, _ = fmt.Fprintf(out, "schema version: %s%s\n", migrationLabel(v), suffix)
	return nil
}

func migrationLabel(v uint) string {
	name, err := store.MigrationName(v)
	if err != nil || name == "" {
		return fmt.Sprintf("%06d", v)
	}
	return name
}
