// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Error codes for world graph failures.
const (
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodePlayerPresent      = "PLAYER_ALREADY_PRESENT"
	CodeNoSuchConnection   = "NO_SUCH_CONNECTION"
	CodeStaleTarget        = "STALE_TARGET"
	CodeInvalidMutation    = "INVALID_MUTATION"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
)

// Sentinel errors. Coded errors returned by this package wrap one of these,
// so callers can test with errors.Is.
var (
	// ErrNotFound indicates the requested room or player does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoSuchConnection indicates a room has no exit with the requested label.
	ErrNoSuchConnection = errors.New("no such connection")
	// ErrStaleTarget indicates the world changed between snapshot and apply.
	ErrStaleTarget = errors.New("stale target")
	// ErrInvariant indicates a world state that breaks a structural invariant.
	ErrInvariant = errors.New("invariant violated")
	// ErrInvalidMutation indicates a region mutation that is malformed in itself.
	ErrInvalidMutation = errors.New("invalid mutation")
)

func errRoomNotFound(id string) error {
	return oops.Code(CodeRoomNotFound).With("room_id", id).Wrapf(ErrNotFound, "room %q", id)
}

func errPlayerNotFound(id ulid.ULID) error {
	return oops.Code(CodePlayerNotFound).With("player_id", id.String()).Wrapf(ErrNotFound, "player %s", id)
}

func errNoSuchConnection(roomID string, dir Direction) error {
	return oops.Code(CodeNoSuchConnection).
		With("room_id", roomID).
		With("direction", dir.String()).
		Wrapf(ErrNoSuchConnection, "room %q has no exit %q", roomID, dir)
}

func errStale(reason, roomID string) error {
	return oops.Code(CodeStaleTarget).
		With("room_id", roomID).
		With("reason", reason).
		Wrapf(ErrStaleTarget, "%s: %s", roomID, reason)
}

func errInvalidMutation(format string, args ...any) error {
	return oops.Code(CodeInvalidMutation).Wrapf(ErrInvalidMutation, format, args...)
}

func errInvariant(format string, args ...any) error {
	return oops.Code(CodeInvariantViolation).Wrapf(ErrInvariant, format, args...)
}

// IsStale reports whether err signals a stale split target.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleTarget)
}
