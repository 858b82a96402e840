// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

//go:build integration

package store_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/wyrdmud/wyrd/internal/auth"
	"github.com/wyrdmud/wyrd/internal/core"
	"github.com/wyrdmud/wyrd/internal/store"
	"github.com/wyrdmud/wyrd/internal/world"
)

var _ = Describe("Migrator", func() {
	It("steps down and back up", func() {
		migrator, err := store.NewMigrator(env.connStr)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(migrator.Close)

		latest, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(latest).To(BeNumerically(">", 0))

		Expect(migrator.Steps(-1)).To(Succeed())
		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal([]uint{latest}))

		Expect(migrator.Up()).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(latest))
	})
})

var _ = Describe("AccountRepository", func() {
	var repo *store.AccountRepository

	BeforeEach(func() {
		_, err := env.pool.Exec(env.ctx, `DELETE FROM accounts`)
		Expect(err).NotTo(HaveOccurred())
		repo = store.NewAccountRepository(env.pool)
	})

	newAccount := func(name string) *auth.Account {
		now := time.Now().UTC().Truncate(time.Microsecond)
		return &auth.Account{ID: core.NewULID(), Name: name, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
	}

	It("round-trips an account ignoring name case", func() {
		account := newAccount("Ann")
		Expect(repo.Create(env.ctx, account)).To(Succeed())

		got, err := repo.GetByName(env.ctx, "aNN")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(account.ID))
		Expect(got.Name).To(Equal("Ann"))
		Expect(got.LockedUntil).To(BeNil())
	})

	It("rejects a name that differs only in case", func() {
		Expect(repo.Create(env.ctx, newAccount("Ann"))).To(Succeed())
		err := repo.Create(env.ctx, newAccount("ANN"))
		Expect(err).To(MatchError(auth.ErrNameTaken))
	})

	It("records lockout state and location", func() {
		account := newAccount("Bob")
		Expect(repo.Create(env.ctx, account)).To(Succeed())

		until := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
		account.FailedAttempts = auth.LockoutThreshold
		account.LockedUntil = &until
		Expect(repo.Update(env.ctx, account)).To(Succeed())
		Expect(repo.SaveLocation(env.ctx, account.ID, "library")).To(Succeed())

		got, err := repo.GetByName(env.ctx, "bob")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.FailedAttempts).To(Equal(auth.LockoutThreshold))
		Expect(got.LockedUntil).NotTo(BeNil())
		Expect(got.LockedUntil.Equal(until)).To(BeTrue())
		Expect(got.LastRoom).To(Equal("library"))
	})

	It("reports missing accounts", func() {
		_, err := repo.GetByName(env.ctx, "nobody")
		Expect(err).To(MatchError(auth.ErrNotFound))
		Expect(repo.SaveLocation(env.ctx, core.NewULID(), "library")).To(MatchError(auth.ErrNotFound))
	})
})

var _ = Describe("WorldStore", func() {
	var ws *store.WorldStore

	BeforeEach(func() {
		_, err := env.pool.Exec(env.ctx, `DELETE FROM rooms`)
		Expect(err).NotTo(HaveOccurred())
		_, err = env.pool.Exec(env.ctx, `DELETE FROM world_meta`)
		Expect(err).NotTo(HaveOccurred())
		ws = store.NewWorldStore(env.pool)
	})

	It("reports an empty database", func() {
		_, err := ws.Load(env.ctx)
		Expect(err).To(MatchError(world.ErrNotFound))
	})

	It("replaces the stored world on every save", func() {
		graph, err := world.Load(world.DefaultSnapshot())
		Expect(err).NotTo(HaveOccurred())
		first := graph.Snapshot().WithoutPlayers()
		Expect(ws.Save(env.ctx, &first)).To(Succeed())

		got, err := ws.Load(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		want, err := world.EncodeSnapshot(first)
		Expect(err).NotTo(HaveOccurred())
		stored, err := world.EncodeSnapshot(*got)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(stored)).To(Equal(string(want)))

		smaller := world.Snapshot{
			Spawn: "hut",
			Rooms: []world.RoomRecord{{ID: "hut", Title: "Hut"}},
		}
		Expect(ws.Save(env.ctx, &smaller)).To(Succeed())
		got, err = ws.Load(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Spawn).To(Equal("hut"))
		Expect(got.Rooms).To(HaveLen(1))

		_, err = world.Load(*got)
		Expect(err).NotTo(HaveOccurred())
	})
})
