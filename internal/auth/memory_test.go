// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccounts()
	acct := &Account{ID: ulid.Make(), Name: "Ann", PasswordHash: "h1"}
	require.NoError(t, repo.Create(ctx, acct))
	assert.ErrorIs(t, repo.Create(ctx, &Account{ID: ulid.Make(), Name: "ANN"}), ErrNameTaken)

	got, err := repo.GetByName(ctx, "ann")
	require.NoError(t, err)
	got.PasswordHash = "mutated"
	again, err := repo.GetByName(ctx, "Ann")
	require.NoError(t, err)
	assert.Equal(t, "h1", again.PasswordHash, "callers get copies")

	until := time.Now().Add(time.Minute)
	again.PasswordHash = "h2"
	again.FailedAttempts = 3
	again.LockedUntil = &until
	require.NoError(t, repo.Update(ctx, again))
	require.NoError(t, repo.SaveLocation(ctx, acct.ID, "library"))

	stored, err := repo.GetByName(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "h2", stored.PasswordHash)
	assert.Equal(t, 3, stored.FailedAttempts)
	assert.Equal(t, "library", stored.LastRoom)

	_, err = repo.GetByName(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &Account{ID: ulid.Make()}), ErrNotFound)
}

func TestMemoryAccounts_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAccounts()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &Account{ID: ulid.Make(), Name: "Ann"})
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrNameTaken)
	}
	assert.Equal(t, 1, created)
}
