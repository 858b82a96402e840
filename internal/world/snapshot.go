// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"cmp"
	"context"
	"slices"

	"github.com/oklog/ulid/v2"
)

// Snapshot is a value copy of the whole world, suitable for persistence and
// for checking invariants outside the lock.
type Snapshot struct {
	Spawn   string         `yaml:"spawn" json:"spawn" jsonschema:"description=ID of the room new players start in"`
	Rooms   []RoomRecord   `yaml:"rooms" json:"rooms" jsonschema:"minItems=1"`
	Players []PlayerRecord `yaml:"players,omitempty" json:"players,omitempty"`
}

// RoomRecord is the persisted form of a room.
type RoomRecord struct {
	ID          string       `yaml:"id" json:"id" jsonschema:"minLength=1"`
	Title       string       `yaml:"title" json:"title" jsonschema:"minLength=1"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Exits       []ExitRecord `yaml:"exits,omitempty" json:"exits,omitempty"`
}

// ExitRecord is the persisted form of an exit.
type ExitRecord struct {
	Direction Direction `yaml:"direction" json:"direction" jsonschema:"minLength=1"`
	To        string    `yaml:"to" json:"to" jsonschema:"minLength=1"`
	OneWay    bool      `yaml:"one_way,omitempty" json:"one_way,omitempty"`
}

// PlayerRecord places a player in a room.
type PlayerRecord struct {
	ID   string `yaml:"id" json:"id" jsonschema:"description=ULID of the player"`
	Name string `yaml:"name" json:"name"`
	Room string `yaml:"room" json:"room"`
}

// SnapshotStore persists and restores world snapshots.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// WithoutPlayers returns a copy of the snapshot with the player roster cleared.
// Live occupancy is not persisted between server runs.
func (s Snapshot) WithoutPlayers() Snapshot {
	s.Players = nil
	return s
}

// Room returns the record for id.
func (s Snapshot) Room(id string) (RoomRecord, bool) {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return RoomRecord{}, false
}

// ExitMap returns the record's exits keyed by label.
func (r RoomRecord) ExitMap() map[Direction]Exit {
	out := make(map[Direction]Exit, len(r.Exits))
	for _, e := range r.Exits {
		out[e.Direction] = Exit{To: e.To, OneWay: e.OneWay}
	}
	return out
}

func roomRecord(r *Room) RoomRecord {
	rec := RoomRecord{ID: r.ID, Title: r.Title, Description: r.Description}
	rec.Exits = exitRecords(r.Exits)
	return rec
}

func exitRecords(exits map[Direction]Exit) []ExitRecord {
	out := make([]ExitRecord, 0, len(exits))
	for dir, exit := range exits {
		out = append(out, ExitRecord{Direction: dir, To: exit.To, OneWay: exit.OneWay})
	}
	slices.SortFunc(out, func(a, b ExitRecord) int { return cmp.Compare(a.Direction, b.Direction) })
	return out
}

// snapshotOf builds a sorted snapshot from internal maps.
func snapshotOf(rooms map[string]*Room, players map[ulid.ULID]*Player, spawn string) Snapshot {
	snap := Snapshot{Spawn: spawn}
	snap.Rooms = make([]RoomRecord, 0, len(rooms))
	for _, r := range rooms {
		snap.Rooms = append(snap.Rooms, roomRecord(r))
	}
	slices.SortFunc(snap.Rooms, func(a, b RoomRecord) int { return cmp.Compare(a.ID, b.ID) })
	for _, p := range players {
		snap.Players = append(snap.Players, PlayerRecord{ID: p.ID.String(), Name: p.Name, Room: p.RoomID})
	}
	slices.SortFunc(snap.Players, func(a, b PlayerRecord) int { return cmp.Compare(a.ID, b.ID) })
	return snap
}

// buildState converts a snapshot to internal maps, deriving occupancy from
// the player roster.
func buildState(snap Snapshot) (map[string]*Room, map[ulid.ULID]*Player, error) {
	rooms := make(map[string]*Room, len(snap.Rooms))
	for _, rec := range snap.Rooms {
		if err := ValidateRoomID(rec.ID); err != nil {
			return nil, nil, errInvariant("room %q: %v", rec.ID, err)
		}
		if _, dup := rooms[rec.ID]; dup {
			return nil, nil, errInvariant("duplicate room id %q", rec.ID)
		}
		room := &Room{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Exits:       make(map[Direction]Exit, len(rec.Exits)),
			Occupants:   make(map[ulid.ULID]struct{}),
		}
		for _, e := range rec.Exits {
			if err := ValidateLabel(e.Direction); err != nil {
				return nil, nil, errInvariant("room %q: %v", rec.ID, err)
			}
			if _, dup := room.Exits[e.Direction]; dup {
				return nil, nil, errInvariant("room %q has duplicate exit %q", rec.ID, e.Direction)
			}
			room.Exits[e.Direction] = Exit{To: e.To, OneWay: e.OneWay}
		}
		rooms[rec.ID] = room
	}

	players := make(map[ulid.ULID]*Player, len(snap.Players))
	for _, rec := range snap.Players {
		id, err := ulid.Parse(rec.ID)
		if err != nil {
			return nil, nil, errInvariant("player %q: invalid id: %v", rec.Name, err)
		}
		if _, dup := players[id]; dup {
			return nil, nil, errInvariant("duplicate player id %s", id)
		}
		players[id] = &Player{ID: id, Name: rec.Name, RoomID: rec.Room}
		if room, ok := rooms[rec.Room]; ok {
			room.Occupants[id] = struct{}{}
		}
	}
	return rooms, players, nil
}
