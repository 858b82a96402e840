// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/core"
	"github.com/wyrdmud/wyrd/internal/world"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 4

// dummyPasswordHash is verified against when the account does not exist, so
// unknown names take as long as wrong passwords. It never matches.
//
//nolint:gosec // G101: not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service authenticates players against stored accounts.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	now      func() time.Time
}

var _ core.Authenticator = (*Service)(nil)

// NewService creates an account service.
func NewService(accounts AccountRepository, hasher PasswordHasher) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{accounts: accounts, hasher: hasher, now: time.Now}, nil
}

func invalidCredentials() error {
	return oops.Code(core.CodeInvalidCredentials).Errorf("invalid name or password")
}

// Register creates an account and returns its identity.
func (s *Service) Register(ctx context.Context, name, password string) (core.Identity, error) {
	name = world.NormalizePlayerName(name)
	if err := world.ValidatePlayerName(name); err != nil {
		var verr *world.ValidationError
		reason := err.Error()
		if errors.As(err, &verr) {
			reason = "name " + verr.Message
		}
		return core.Identity{}, oops.Code(core.CodeInvalidName).
			With("reason", reason).
			Errorf("invalid player name")
	}
	if len(password) < MinPasswordLength {
		return core.Identity{}, oops.Code(core.CodeWeakPassword).
			With("min_length", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return core.Identity{}, oops.With("operation", "hash password").Wrap(err)
	}
	now := s.now().UTC()
	account := &Account{
		ID:           core.NewULID(),
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return core.Identity{}, oops.Code(core.CodeNameTaken).
				With("name", name).
				Errorf("name %q is taken", name)
		}
		return core.Identity{}, oops.With("operation", "create account").With("name", name).Wrap(err)
	}
	slog.InfoContext(ctx, "account created", "player_id", account.ID.String(), "name", name)
	return core.Identity{PlayerID: account.ID, Name: account.Name}, nil
}

// Login checks a password and returns the account's identity. Unknown names
// and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, name, password string) (core.Identity, error) {
	now := s.now().UTC()
	account, lookupErr := s.accounts.GetByName(ctx, name)
	target := dummyPasswordHash
	switch {
	case lookupErr == nil:
		target = account.PasswordHash
	case !errors.Is(lookupErr, ErrNotFound):
		return core.Identity{}, oops.With("operation", "get account by name").Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, target)
	if lookupErr != nil {
		return core.Identity{}, invalidCredentials()
	}
	if verifyErr != nil {
		return core.Identity{}, oops.With("operation", "verify password").
			With("player_id", account.ID.String()).
			Wrap(verifyErr)
	}
	if !valid {
		account.RecordFailure(now)
		if err := s.accounts.Update(ctx, account); err != nil {
			slog.WarnContext(ctx, "recording failed login", "player_id", account.ID.String(), "error", err)
		}
		return core.Identity{}, invalidCredentials()
	}
	// Checked after verification so a locked account costs the same.
	if account.IsLocked(now) {
		return core.Identity{}, oops.Code(core.CodeAccountLocked).
			With("player_id", account.ID.String()).
			With("locked_until", *account.LockedUntil).
			Errorf("account is temporarily locked")
	}

	account.RecordSuccess(now)
	if s.hasher.NeedsUpgrade(account.PasswordHash) {
		if hash, err := s.hasher.Hash(password); err == nil {
			account.PasswordHash = hash
		}
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		slog.WarnContext(ctx, "recording login", "player_id", account.ID.String(), "error", err)
	}
	return core.Identity{PlayerID: account.ID, Name: account.Name, LastRoom: account.LastRoom}, nil
}

// SaveLocation records where a player disconnected.
func (s *Service) SaveLocation(ctx context.Context, playerID ulid.ULID, roomID string) error {
	if err := s.accounts.SaveLocation(ctx, playerID, roomID); err != nil {
		return oops.With("player_id", playerID.String()).With("room_id", roomID).Wrap(err)
	}
	return nil
}
