// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package auth

import "errors"

var (
	// ErrNotFound is returned when a requested account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrNameTaken is returned by repositories when an account name is in use.
	ErrNameTaken = errors.New("account name taken")
)
