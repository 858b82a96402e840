// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package auth

import "time"

// Lockout policy.
const (
	// LockoutThreshold is the number of consecutive failures that locks an account.
	LockoutThreshold = 7
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration = 15 * time.Minute
)

// IsLockedOut reports whether lockedUntil is after now.
func IsLockedOut(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && lockedUntil.After(now)
}

// ComputeLockoutTime returns when an account with the given failure count
// unlocks, or nil if it is below the threshold.
func ComputeLockoutTime(failures int, now time.Time) *time.Time {
	if failures < LockoutThreshold {
		return nil
	}
	until := now.Add(LockoutDuration)
	return &until
}
