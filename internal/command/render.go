// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/wyrdmud/wyrd/internal/core"
	"github.com/wyrdmud/wyrd/internal/world"
)

// RenderRoom formats a room view for the given viewer, who is left out of
// the list of people present.
func RenderRoom(view world.RoomView, viewer ulid.ULID) core.Message {
	var b strings.Builder
	b.WriteString(view.Description)

	if len(view.Directions) == 0 {
		b.WriteString("\nThere are no obvious exits.")
	} else {
		labels := make([]string, len(view.Directions))
		for i, d := range view.Directions {
			labels[i] = d.String()
		}
		b.WriteString("\nExits: " + strings.Join(labels, ", ") + ".")
	}

	if others := view.OccupantNames(viewer); len(others) > 0 {
		b.WriteString("\nAlso here: " + strings.Join(others, ", ") + ".")
	}
	return core.RoomMessage(view.Title, strings.TrimLeft(b.String(), "\n"))
}

const helpText = `Commands:
  look (l)                 describe your surroundings
  <direction> | go <dir>   walk through an exit (n, s, e, w, ne, nw, se, sw, u, d)
  say <text> | '<text>     speak to the room
  emote <text> | :<text>   act out an action
  quit                     leave the world`
