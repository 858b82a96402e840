// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Account is a registered player.
type Account struct {
	ID ulid.ULID
	// Name is the display name in Initial Caps. Lookups ignore case.
	Name         string
	PasswordHash string
	// LastRoom is where the player was when they last disconnected.
	LastRoom       string
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked reports whether the account is locked at now.
func (a *Account) IsLocked(now time.Time) bool {
	return IsLockedOut(a.LockedUntil, now)
}

// RecordFailure counts a failed login and locks the account at the threshold.
func (a *Account) RecordFailure(now time.Time) {
	a.FailedAttempts++
	a.LockedUntil = ComputeLockoutTime(a.FailedAttempts, now)
	a.UpdatedAt = now
}

// RecordSuccess clears the failure count and any lock.
func (a *Account) RecordSuccess(now time.Time) {
	a.FailedAttempts = 0
	a.LockedUntil = nil
	a.UpdatedAt = now
}

// AccountRepository persists accounts.
type AccountRepository interface {
	// Create stores a new account. Returns ErrNameTaken if the name is in
	// use, ignoring case.
	Create(ctx context.Context, account *Account) error
	// GetByName looks an account up by name, ignoring case. Returns
	// ErrNotFound if there is none.
	GetByName(ctx context.Context, name string) (*Account, error)
	// Update stores the login state and password hash of an account.
	Update(ctx context.Context, account *Account) error
	// SaveLocation records the room a player left from.
	SaveLocation(ctx context.Context, id ulid.ULID, roomID string) error
}
