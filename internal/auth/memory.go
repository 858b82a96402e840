// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// MemoryAccounts is an in-process AccountRepository. Accounts last as long as
// the process.
type MemoryAccounts struct {
	mu     sync.RWMutex
	byID   map[ulid.ULID]*Account
	byName map[string]ulid.ULID
}

var _ AccountRepository = (*MemoryAccounts)(nil)

// NewMemoryAccounts creates an empty repository.
func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		byID:   make(map[ulid.ULID]*Account),
		byName: make(map[string]ulid.ULID),
	}
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

// Create implements AccountRepository.
func (m *MemoryAccounts) Create(_ context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := nameKey(account.Name)
	if _, taken := m.byName[key]; taken {
		return ErrNameTaken
	}
	stored := *account
	m.byID[account.ID] = &stored
	m.byName[key] = account.ID
	return nil
}

// GetByName implements AccountRepository. The returned account is a copy.
func (m *MemoryAccounts) GetByName(_ context.Context, name string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[nameKey(name)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m.byID[id]
	return &out, nil
}

// Update implements AccountRepository.
func (m *MemoryAccounts) Update(_ context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[account.ID]
	if !ok {
		return ErrNotFound
	}
	stored.PasswordHash = account.PasswordHash
	stored.FailedAttempts = account.FailedAttempts
	stored.LockedUntil = account.LockedUntil
	stored.UpdatedAt = account.UpdatedAt
	return nil
}

// SaveLocation implements AccountRepository.
func (m *MemoryAccounts) SaveLocation(_ context.Context, id ulid.ULID, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	stored.LastRoom = roomID
	return nil
}
