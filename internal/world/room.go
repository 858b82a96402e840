// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package world holds the authoritative in-memory world graph: rooms, the
// labeled connections between them, and which players occupy which room.
//
// The Graph is the only place Room and Player fields are mutated. Callers get
// value projections (RoomView, Snapshot) and never hold references into the
// live structure.
package world

import (
	"maps"
	"slices"

	"github.com/oklog/ulid/v2"
)

// Exit is one outgoing connection of a room.
type Exit struct {
	To     string
	OneWay bool
}

// Room is a node of the world graph.
type Room struct {
	ID          string
	Title       string
	Description string
	Exits       map[Direction]Exit
	Occupants   map[ulid.ULID]struct{}
}

// clone returns a deep copy of the room.
func (r *Room) clone() *Room {
	return &Room{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Exits:       maps.Clone(r.Exits),
		Occupants:   maps.Clone(r.Occupants),
	}
}

// exitsTo returns the labels of r's exits that lead to target, sorted.
func (r *Room) exitsTo(target string) []Direction {
	var out []Direction
	for dir, exit := range r.Exits {
		if exit.To == target {
			out = append(out, dir)
		}
	}
	slices.Sort(out)
	return out
}

// Player is a connected player placed in the world.
type Player struct {
	ID     ulid.ULID
	Name   string
	RoomID string
}

// Occupant is the public view of a player in a room.
type Occupant struct {
	ID   ulid.ULID
	Name string
}

// RoomView is a read-only projection of a room for rendering.
type RoomView struct {
	ID          string
	Title       string
	Description string
	Occupants   []Occupant
	Directions  []Direction
}

// OccupantNames returns the names of the occupants, optionally excluding one player.
func (v RoomView) OccupantNames(exclude ulid.ULID) []string {
	names := make([]string, 0, len(v.Occupants))
	for _, o := range v.Occupants {
		if o.ID == exclude {
			continue
		}
		names = append(names, o.Name)
	}
	return names
}

// HasDirection reports whether the room has an exit with the given label.
func (v RoomView) HasDirection(dir Direction) bool {
	return slices.Contains(v.Directions, dir)
}

// MoveResult describes a completed movement.
type MoveResult struct {
	Direction Direction
	From      RoomView
	To        RoomView
}
