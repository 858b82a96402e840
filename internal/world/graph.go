// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"cmp"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Graph is the authoritative world. All mutations run under one exclusive
// lock; reads share the read lock.
type Graph struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	players map[ulid.ULID]*Player
	spawn   string
	version uint64
}

// Load builds a graph from a snapshot. The snapshot must satisfy every
// invariant checked by CheckInvariants.
func Load(snap Snapshot) (*Graph, error) {
	rooms, players, err := buildState(snap)
	if err != nil {
		return nil, err
	}
	if err := checkState(rooms, players, snap.Spawn); err != nil {
		return nil, err
	}
	return &Graph{rooms: rooms, players: players, spawn: snap.Spawn}, nil
}

// Spawn returns the id of the room new players start in.
func (g *Graph) Spawn() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.spawn
}

// Version increments on every structural change.
func (g *Graph) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

// HasRoom reports whether a room with the given id exists.
func (g *Graph) HasRoom(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.rooms[id]
	return ok
}

// RoomCount returns the number of rooms.
func (g *Graph) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// Snapshot returns a deep value copy of the world.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return snapshotOf(g.rooms, g.players, g.spawn)
}

// Describe returns a read-only projection of a room.
func (g *Graph) Describe(roomID string) (RoomView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[roomID]
	if !ok {
		return RoomView{}, errRoomNotFound(roomID)
	}
	return g.viewLocked(room), nil
}

// viewLocked projects a room. Callers must hold g.mu.
func (g *Graph) viewLocked(room *Room) RoomView {
	view := RoomView{
		ID:          room.ID,
		Title:       room.Title,
		Description: room.Description,
		Directions:  sortedDirections(room.Exits),
	}
	for pid := range room.Occupants {
		if p, ok := g.players[pid]; ok {
			view.Occupants = append(view.Occupants, Occupant{ID: pid, Name: p.Name})
		}
	}
	slices.SortFunc(view.Occupants, func(a, b Occupant) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.ID.Compare(b.ID)
	})
	return view
}

// AddPlayer places a player in a room. An empty or missing room places the
// player at spawn. It returns the view of the room the player landed in.
func (g *Graph) AddPlayer(id ulid.ULID, name, roomID string) (RoomView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.players[id]; ok {
		return RoomView{}, oops.Code(CodePlayerPresent).
			With("player_id", id.String()).
			Errorf("player %s is already in the world", id)
	}
	room, ok := g.rooms[roomID]
	if !ok {
		room = g.rooms[g.spawn]
	}
	g.players[id] = &Player{ID: id, Name: name, RoomID: room.ID}
	room.Occupants[id] = struct{}{}
	return g.viewLocked(room), nil
}

// RemovePlayer takes a player out of the world and returns the room they were in.
func (g *Graph) RemovePlayer(id ulid.ULID) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return "", errPlayerNotFound(id)
	}
	if room, ok := g.rooms[p.RoomID]; ok {
		delete(room.Occupants, id)
	}
	delete(g.players, id)
	return p.RoomID, nil
}

// Player returns a copy of a player's state.
func (g *Graph) Player(id ulid.ULID) (Player, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.players[id]
	if !ok {
		return Player{}, errPlayerNotFound(id)
	}
	return *p, nil
}

// PlayerRoom returns the view of the room a player currently occupies.
func (g *Graph) PlayerRoom(id ulid.ULID) (RoomView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.players[id]
	if !ok {
		return RoomView{}, errPlayerNotFound(id)
	}
	return g.viewLocked(g.rooms[p.RoomID]), nil
}

// Occupants returns the ids of the players in a room, sorted.
func (g *Graph) Occupants(roomID string) ([]ulid.ULID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[roomID]
	if !ok {
		return nil, errRoomNotFound(roomID)
	}
	out := make([]ulid.ULID, 0, len(room.Occupants))
	for pid := range room.Occupants {
		out = append(out, pid)
	}
	slices.SortFunc(out, func(a, b ulid.ULID) int { return a.Compare(b) })
	return out, nil
}

// Move sends a player through the exit labeled dir. Occupancy of both rooms
// and the player's location change together under the lock.
func (g *Graph) Move(id ulid.ULID, dir Direction) (MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return MoveResult{}, errPlayerNotFound(id)
	}
	from := g.rooms[p.RoomID]
	exit, ok := from.Exits[dir]
	if !ok {
		return MoveResult{}, errNoSuchConnection(from.ID, dir)
	}
	to, ok := g.rooms[exit.To]
	if !ok {
		return MoveResult{}, errInvariant("exit %q of %q leads to missing room %q", dir, from.ID, exit.To)
	}
	delete(from.Occupants, id)
	to.Occupants[id] = struct{}{}
	p.RoomID = to.ID
	return MoveResult{Direction: dir, From: g.viewLocked(from), To: g.viewLocked(to)}, nil
}

// RoomLoad is the number of connections a room has.
type RoomLoad struct {
	RoomID      string
	Connections int
}

// Crowded returns the rooms with more than threshold exits, most crowded
// first, ties broken by id.
func (g *Graph) Crowded(threshold int) []RoomLoad {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []RoomLoad
	for id, room := range g.rooms {
		if len(room.Exits) > threshold {
			out = append(out, RoomLoad{RoomID: id, Connections: len(room.Exits)})
		}
	}
	slices.SortFunc(out, func(a, b RoomLoad) int {
		if c := cmp.Compare(b.Connections, a.Connections); c != 0 {
			return c
		}
		return cmp.Compare(a.RoomID, b.RoomID)
	})
	return out
}
