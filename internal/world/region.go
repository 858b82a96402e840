// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"maps"
	"slices"

	"github.com/oklog/ulid/v2"
)

// Neighbour describes a room adjacent to a region target.
type Neighbour struct {
	ID          string
	Title       string
	Description string
}

// IncomingExit is an exit of another room that leads into the target.
type IncomingExit struct {
	From      string
	Direction Direction
	OneWay    bool
}

// RegionSnapshot is a consistent copy of one room and its surroundings,
// taken under the read lock.
type RegionSnapshot struct {
	Room       RoomRecord
	Exits      map[Direction]Exit
	Occupants  int
	Neighbours map[string]Neighbour
	Incoming   []IncomingExit
	Version    uint64
}

// RoomSnapshot copies a room, its exits, the exits of other rooms that lead
// into it, and the titles of every adjacent room.
func (g *Graph) RoomSnapshot(roomID string) (RegionSnapshot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[roomID]
	if !ok {
		return RegionSnapshot{}, errRoomNotFound(roomID)
	}
	snap := RegionSnapshot{
		Room:       roomRecord(room),
		Exits:      maps.Clone(room.Exits),
		Occupants:  len(room.Occupants),
		Neighbours: make(map[string]Neighbour),
		Version:    g.version,
	}
	addNeighbour := func(id string) {
		if id == roomID {
			return
		}
		if n, ok := g.rooms[id]; ok {
			snap.Neighbours[id] = Neighbour{ID: n.ID, Title: n.Title, Description: n.Description}
		}
	}
	for _, exit := range room.Exits {
		addNeighbour(exit.To)
	}
	for _, id := range sortedIDs(g.rooms) {
		if id == roomID {
			continue
		}
		other := g.rooms[id]
		for _, dir := range other.exitsTo(roomID) {
			snap.Incoming = append(snap.Incoming, IncomingExit{From: id, Direction: dir, OneWay: other.Exits[dir].OneWay})
			addNeighbour(id)
		}
	}
	return snap, nil
}

// NewRoom is a room to be inserted by a region mutation.
type NewRoom struct {
	ID          string
	Title       string
	Description string
}

// Link is an exit to install. From and To may name new or surviving rooms.
// Installing a link on a surviving room may only replace an exit that led
// into a removed room.
type Link struct {
	From      string
	Direction Direction
	To        string
	OneWay    bool
}

// RegionMutation replaces a set of rooms with new ones in one step.
type RegionMutation struct {
	// Remove lists the rooms to delete.
	Remove []string
	// ExpectedExits, when set for a removed room, must equal that room's
	// current exits or the mutation is stale.
	ExpectedExits map[string]map[Direction]Exit
	Add           []NewRoom
	Links         []Link
	// RelocateTo receives the occupants of removed rooms and, if the spawn
	// room is removed, becomes the new spawn.
	RelocateTo string
}

// RegionResult reports what a committed region mutation did.
type RegionResult struct {
	Relocated  []ulid.ULID
	RelocateTo string
	Spawn      string
	Version    uint64
}

// MutateRegion applies a region mutation atomically. Every check runs on a
// staged copy; the live graph is replaced only when the staged state passes
// all invariants. On error the world is unchanged.
func (g *Graph) MutateRegion(m RegionMutation) (RegionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(m.Remove) == 0 {
		return RegionResult{}, errInvalidMutation("no rooms to remove")
	}
	removed := make(map[string]bool, len(m.Remove))
	for _, id := range m.Remove {
		room, ok := g.rooms[id]
		if !ok {
			return RegionResult{}, errStale("room no longer exists", id)
		}
		if want, ok := m.ExpectedExits[id]; ok && !maps.Equal(want, room.Exits) {
			return RegionResult{}, errStale("exits changed since snapshot", id)
		}
		removed[id] = true
	}

	next := make(map[string]*Room, len(g.rooms)+len(m.Add))
	for id, room := range g.rooms {
		if !removed[id] {
			next[id] = room
		}
	}
	added := make(map[string]bool, len(m.Add))
	for _, nr := range m.Add {
		if err := ValidateRoomID(nr.ID); err != nil {
			return RegionResult{}, errInvalidMutation("new room %q: %v", nr.ID, err)
		}
		if _, exists := next[nr.ID]; exists || removed[nr.ID] {
			return RegionResult{}, errInvalidMutation("new room %q clashes with an existing room", nr.ID)
		}
		next[nr.ID] = &Room{
			ID:          nr.ID,
			Title:       nr.Title,
			Description: nr.Description,
			Exits:       make(map[Direction]Exit),
			Occupants:   make(map[ulid.ULID]struct{}),
		}
		added[nr.ID] = true
	}

	// Surviving rooms are cloned before their first write.
	cloned := make(map[string]bool)
	writable := func(id string) *Room {
		if added[id] || cloned[id] {
			return next[id]
		}
		c := next[id].clone()
		next[id] = c
		cloned[id] = true
		return c
	}

	for _, l := range m.Links {
		if err := ValidateLabel(l.Direction); err != nil {
			return RegionResult{}, errInvalidMutation("link from %q: %v", l.From, err)
		}
		if _, ok := next[l.From]; !ok {
			return RegionResult{}, errStale("link source no longer exists", l.From)
		}
		if _, ok := next[l.To]; !ok {
			return RegionResult{}, errStale("link target no longer exists", l.To)
		}
		from := writable(l.From)
		if cur, ok := from.Exits[l.Direction]; ok && !removed[cur.To] && cur.To != l.To {
			if added[l.From] {
				return RegionResult{}, errInvalidMutation("new room %q has conflicting exits %q", l.From, l.Direction)
			}
			return RegionResult{}, errStale("exit "+l.Direction.String()+" now leads elsewhere", l.From)
		}
		from.Exits[l.Direction] = Exit{To: l.To, OneWay: l.OneWay}
	}

	// Any surviving exit still pointing into a removed room was created after
	// the snapshot the mutation was planned from.
	for _, id := range sortedIDs(next) {
		room := next[id]
		for _, dir := range sortedDirections(room.Exits) {
			if removed[room.Exits[dir].To] {
				return RegionResult{}, errStale("exit "+dir.String()+" still leads into a removed room", id)
			}
		}
	}

	result := RegionResult{RelocateTo: m.RelocateTo, Spawn: g.spawn}
	nextPlayers := g.players
	var moving []ulid.ULID
	for _, id := range m.Remove {
		for pid := range g.rooms[id].Occupants {
			moving = append(moving, pid)
		}
	}
	if len(moving) > 0 || removed[g.spawn] {
		if _, ok := next[m.RelocateTo]; !ok || removed[m.RelocateTo] {
			return RegionResult{}, errInvalidMutation("relocation target %q does not exist", m.RelocateTo)
		}
	}
	if len(moving) > 0 {
		slices.SortFunc(moving, func(a, b ulid.ULID) int { return a.Compare(b) })
		nextPlayers = maps.Clone(g.players)
		dest := writable(m.RelocateTo)
		for _, pid := range moving {
			p := *nextPlayers[pid]
			p.RoomID = m.RelocateTo
			nextPlayers[pid] = &p
			dest.Occupants[pid] = struct{}{}
		}
		result.Relocated = moving
	}
	if removed[g.spawn] {
		result.Spawn = m.RelocateTo
	}

	if err := checkState(next, nextPlayers, result.Spawn); err != nil {
		return RegionResult{}, err
	}

	g.rooms = next
	g.players = nextPlayers
	g.spawn = result.Spawn
	g.version++
	result.Version = g.version
	return result, nil
}
