// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"errors"

	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/core"
	"github.com/wyrdmud/wyrd/internal/world"
)

// Error codes for command dispatch failures.
const (
	CodeProtocolError    = core.CodeProtocolError
	CodeNoSuchConnection = world.CodeNoSuchConnection
	CodeNotInWorld       = "NOT_IN_WORLD"
)

// ErrNilWorld is returned when constructing a dispatcher without a world.
var ErrNilWorld = errors.New("world cannot be nil")

// ErrUnknownCommand creates a protocol error for an unrecognized verb.
func ErrUnknownCommand(verb string) error {
	return oops.Code(CodeProtocolError).
		With("verb", verb).
		Errorf("unknown command: %s", verb)
}

// ErrMissingArgument creates a protocol error for a verb used without its
// argument. prompt is shown to the player.
func ErrMissingArgument(verb, prompt string) error {
	return oops.Code(CodeProtocolError).
		With("verb", verb).
		With("prompt", prompt).
		Errorf("missing argument for %s", verb)
}

// ErrNotInWorld creates an error for a command from a player who is not placed.
func ErrNotInWorld(cause error) error {
	return oops.Code(CodeNotInWorld).
		With("cause", cause.Error()).
		Errorf("player not in world")
}

// IsClientError reports whether err should be shown to the acting player
// rather than logged as a server fault.
func IsClientError(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	switch oopsErr.Code() {
	case CodeProtocolError, CodeNoSuchConnection:
		return true
	default:
		return false
	}
}

// PlayerMessage extracts a player-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	ctx := oopsErr.Context()
	switch oopsErr.Code() {
	case CodeProtocolError:
		if prompt, ok := ctx["prompt"].(string); ok && prompt != "" {
			return prompt
		}
		if verb, ok := ctx["verb"].(string); ok && verb != "" {
			return "I don't know how to '" + verb + "'. Try 'help'."
		}
		return "I don't understand that."
	case CodeNoSuchConnection:
		return "You can't go that way."
	case CodeNotInWorld:
		return "You are nowhere. Try reconnecting."
	default:
		return "Something went wrong. Try again."
	}
}
