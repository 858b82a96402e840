// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package main

import (
	"context"

	"github.com/wyrdmud/wyrd/internal/auth"
	"github.com/wyrdmud/wyrd/internal/config"
	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/observability"
	"github.com/wyrdmud/wyrd/internal/store"
	"github.com/wyrdmud/wyrd/internal/world"
)

// Deps contains injectable dependencies for commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// BackendOpener opens the configured account and world storage.
	// Default: openBackend
	BackendOpener func(ctx context.Context, cfg *config.Config) (*Backend, error)

	// GeneratorFactory creates the text-generation client.
	// Default: generation.NewClient
	GeneratorFactory func(cfg generation.Config) (generation.Service, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) *observability.Server

	// MigratorFactory creates a schema migrator for a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(dsn string) (Migrator, error)

	// Hasher hashes account passwords.
	// Default: argon2id with auth.DefaultArgon2Params
	Hasher auth.PasswordHasher
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.BackendOpener == nil {
		out.BackendOpener = openBackend
	}
	if out.GeneratorFactory == nil {
		out.GeneratorFactory = func(cfg generation.Config) (generation.Service, error) {
			return generation.NewClient(cfg)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = observability.NewServer
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(dsn string) (Migrator, error) {
			return store.NewMigrator(dsn)
		}
	}
	if out.Hasher == nil {
		out.Hasher = auth.NewArgon2idHasher(auth.DefaultArgon2Params)
	}
	return &out
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	PendingMigrations() ([]uint, error)
	AppliedMigrations() ([]uint, error)
	Close() error
}

// Backend is the storage a server runs against.
type Backend struct {
	Worlds   world.SnapshotStore
	Accounts auth.AccountRepository
	Close    func()
}

// openBackend opens file or postgres storage. The file backend keeps
// accounts in memory.
func openBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Store.Backend != config.BackendPostgres {
		return &Backend{
			Worlds:   world.NewFileStore(cfg.Store.WorldFile),
			Accounts: auth.NewMemoryAccounts(),
			Close:    func() {},
		}, nil
	}

	if cfg.Store.Migrate {
		if err := migrateUp(cfg.Store.DatabaseURL); err != nil {
			return nil, err
		}
	}
	pool, err := store.Open(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Worlds:   store.NewWorldStore(pool),
		Accounts: store.NewAccountRepository(pool),
		Close:    pool.Close,
	}, nil
}

func migrateUp(dsn string) error {
	m, err := store.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

// observedStore counts every world save.
type observedStore struct {
	world.SnapshotStore
}

func (s observedStore) Save(ctx context.Context, snap *world.Snapshot) error {
	err := s.SnapshotStore.Save(ctx, snap)
	observability.RecordWorldSave(err)
	return err
}
