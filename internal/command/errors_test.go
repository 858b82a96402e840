// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/wyrdmud/wyrd/internal/world"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

func TestErrUnknownCommand(t *testing.T) {
	err := ErrUnknownCommand("dance")
	errutil.AssertErrorCode(t, err, CodeProtocolError)
	errutil.AssertErrorContext(t, err, "verb", "dance")
}

func TestErrMissingArgument(t *testing.T) {
	err := ErrMissingArgument("say", "Say what?")
	errutil.AssertErrorCode(t, err, CodeProtocolError)
	errutil.AssertErrorContext(t, err, "verb", "say")
	errutil.AssertErrorContext(t, err, "prompt", "Say what?")
}

func TestErrNotInWorld(t *testing.T) {
	err := ErrNotInWorld(world.ErrNotFound)
	errutil.AssertErrorCode(t, err, CodeNotInWorld)
	errutil.AssertErrorContext(t, err, "cause", "not found")
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"protocol error", ErrUnknownCommand("x"), true},
		{"wrapped protocol error", oops.With("line", "x").Wrap(ErrMissingArgument("go", "Go where?")), true},
		{"no such connection", oops.Code(world.CodeNoSuchConnection).Errorf("no exit"), true},
		{"not in world", ErrNotInWorld(errors.New("gone")), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsClientError(tt.err))
		})
	}
}

func TestPlayerMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing argument uses prompt", ErrMissingArgument("say", "Say what?"), "Say what?"},
		{"unknown verb", ErrUnknownCommand("dance"), "I don't know how to 'dance'. Try 'help'."},
		{"bare protocol error", oops.Code(CodeProtocolError).Errorf("bad"), "I don't understand that."},
		{"no such connection", oops.Code(CodeNoSuchConnection).Errorf("no exit"), "You can't go that way."},
		{"not in world", ErrNotInWorld(errors.New("gone")), "You are nowhere. Try reconnecting."},
		{"uncoded", errors.New("boom"), "Something went wrong. Try again."},
		{"nil", nil, "Something went wrong. Try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlayerMessage(tt.err))
		})
	}
}
