// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package auth manages player accounts: creation, password login with
// argon2id hashes and temporary lockout after repeated failures, and the room
// a player was in when they last left.
//
// Service implements core.Authenticator on top of an AccountRepository.
// MemoryAccounts serves development and tests; the postgres repository lives
// in internal/store.
package auth
