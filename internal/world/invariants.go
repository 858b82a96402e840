// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"slices"

	"github.com/oklog/ulid/v2"
)

// CheckInvariants verifies a snapshot against the structural rules every
// world state must satisfy:
//
//   - every exit target exists
//   - an exit with a known inverse label is answered by that inverse, and an
//     exit with any other label is answered by some exit back, unless one-way
//   - each room's occupants are exactly the players whose room it is
//   - every room is reachable from the spawn room
func CheckInvariants(snap Snapshot) error {
	rooms, players, err := buildState(snap)
	if err != nil {
		return err
	}
	// buildState derives occupancy, so a roster entry pointing at a missing
	// room is the only occupancy fault a snapshot can carry.
	return checkState(rooms, players, snap.Spawn)
}

func checkState(rooms map[string]*Room, players map[ulid.ULID]*Player, spawn string) error {
	if _, ok := rooms[spawn]; !ok {
		return errInvariant("spawn room %q does not exist", spawn)
	}

	for _, id := range sortedIDs(rooms) {
		room := rooms[id]
		for _, dir := range sortedDirections(room.Exits) {
			exit := room.Exits[dir]
			target, ok := rooms[exit.To]
			if !ok {
				return errInvariant("exit %q of %q leads to missing room %q", dir, id, exit.To)
			}
			if exit.OneWay {
				continue
			}
			if inv, known := dir.Inverse(); known {
				back, ok := target.Exits[inv]
				if !ok || back.To != id {
					return errInvariant("exit %q of %q has no reciprocal %q in %q", dir, id, inv, exit.To)
				}
				continue
			}
			if len(target.exitsTo(id)) == 0 {
				return errInvariant("exit %q of %q has no return exit from %q", dir, id, exit.To)
			}
		}
	}

	for pid, p := range players {
		room, ok := rooms[p.RoomID]
		if !ok {
			return errInvariant("player %s is in missing room %q", pid, p.RoomID)
		}
		if _, ok := room.Occupants[pid]; !ok {
			return errInvariant("player %s missing from occupants of %q", pid, p.RoomID)
		}
	}
	for id, room := range rooms {
		for pid := range room.Occupants {
			p, ok := players[pid]
			if !ok || p.RoomID != id {
				return errInvariant("room %q lists occupant %s who is elsewhere", id, pid)
			}
		}
	}

	if unreachable := unreachableFrom(rooms, spawn); len(unreachable) > 0 {
		return errInvariant("rooms unreachable from spawn %q: %v", spawn, unreachable)
	}
	return nil
}

// unreachableFrom returns, sorted, the rooms that cannot be reached from start
// by following exits.
func unreachableFrom(rooms map[string]*Room, start string) []string {
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		room, ok := rooms[id]
		if !ok {
			continue
		}
		for _, exit := range room.Exits {
			if !seen[exit.To] {
				seen[exit.To] = true
				queue = append(queue, exit.To)
			}
		}
	}
	var out []string
	for id := range rooms {
		if !seen[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func sortedIDs(rooms map[string]*Room) []string {
	ids := make([]string, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedDirections(exits map[Direction]Exit) []Direction {
	dirs := make([]Direction, 0, len(exits))
	for d := range exits {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs
}
