// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"github.com/wyrdmud/wyrd/internal/world"
)

// Action is one parsed player command. The set of actions is closed: every
// input line maps to exactly one of the types below, with Unknown as the
// catch-all.
type Action interface {
	// Name identifies the action kind in logs, traces, and metrics.
	Name() string
	sealed()
}

// Move walks through the exit with the given label.
type Move struct {
	Direction world.Direction
}

// Look describes the actor's current room.
type Look struct{}

// Say speaks to everyone in the room.
type Say struct {
	Text string
}

// Emote performs a visible action.
type Emote struct {
	Text string
}

// Help lists the available commands.
type Help struct{}

// Quit ends the session.
type Quit struct{}

// Unknown is input that matched no verb. Original keeps the full line so an
// exit with a multi-word label can still be recognized.
type Unknown struct {
	Verb     string
	Original string
}

// Name implements Action.
func (Move) Name() string { return "move" }

// Name implements Action.
func (Look) Name() string { return "look" }

// Name implements Action.
func (Say) Name() string { return "say" }

// Name implements Action.
func (Emote) Name() string { return "emote" }

// Name implements Action.
func (Help) Name() string { return "help" }

// Name implements Action.
func (Quit) Name() string { return "quit" }

// Name implements Action.
func (Unknown) Name() string { return "unknown" }

func (Move) sealed()    {}
func (Look) sealed()    {}
func (Say) sealed()     {}
func (Emote) sealed()   {}
func (Help) sealed()    {}
func (Quit) sealed()    {}
func (Unknown) sealed() {}
