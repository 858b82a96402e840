// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/world"
)

// WorldStore implements world.SnapshotStore using PostgreSQL. Save replaces
// the whole stored world in one transaction.
type WorldStore struct {
	pool poolIface
	now  func() time.Time
}

var _ world.SnapshotStore = (*WorldStore)(nil)

// NewWorldStore creates a world store.
func NewWorldStore(pool poolIface) *WorldStore {
	return &WorldStore{pool: pool, now: time.Now}
}

// Load reads the stored world. It returns world.ErrNotFound when nothing has
// been saved yet.
func (s *WorldStore) Load(ctx context.Context) (*world.Snapshot, error) {
	var snap world.Snapshot
	err := s.pool.QueryRow(ctx, `SELECT spawn FROM world_meta`).Scan(&snap.Spawn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(world.CodeRoomNotFound).Wrapf(world.ErrNotFound, "no stored world")
	}
	if err != nil {
		return nil, oops.Code("WORLD_LOAD_FAILED").With("operation", "read world meta").Wrap(err)
	}

	// Byte order, matching the order snapshots are built in.
	rows, err := s.pool.Query(ctx, `SELECT id, title, description FROM rooms ORDER BY id COLLATE "C"`)
	if err != nil {
		return nil, oops.Code("WORLD_LOAD_FAILED").With("operation", "query rooms").Wrap(err)
	}
	snap.Rooms, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (world.RoomRecord, error) {
		var rec world.RoomRecord
		err := row.Scan(&rec.ID, &rec.Title, &rec.Description)
		return rec, err
	})
	if err != nil {
		return nil, oops.Code("WORLD_LOAD_FAILED").With("operation", "scan rooms").Wrap(err)
	}

	index := make(map[string]int, len(snap.Rooms))
	for i, r := range snap.Rooms {
		index[r.ID] = i
	}

	rows, err = s.pool.Query(ctx, `SELECT room_id, label, to_room, one_way FROM exits ORDER BY room_id COLLATE "C", label COLLATE "C"`)
	if err != nil {
		return nil, oops.Code("WORLD_LOAD_FAILED").With("operation", "query exits").Wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			roomID, label string
			exit          world.ExitRecord
		)
		if err := rows.Scan(&roomID, &label, &exit.To, &exit.OneWay); err != nil {
			return nil, oops.Code("WORLD_LOAD_FAILED").With("operation", "scan exit").Wrap(err)
		}
		exit.Direction = world.Direction(label)
		i, ok := index[roomID]
		if !ok {
			return nil, oops.Code(world.CodeInvariantViolation).
				With("room_id", roomID).
				Errorf("exit %q belongs to unknown room %q", exit.Direction, roomID)
		}
		snap.Rooms[i].Exits = append(snap.Rooms[i].Exits, exit)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("WORLD_LOAD_FAILED").With("operation", "iterate exits").Wrap(err)
	}
	return &snap, nil
}

// Save replaces the stored world with snap. Players are not stored.
func (s *WorldStore) Save(ctx context.Context, snap *world.Snapshot) error {
	roomRows := make([][]any, 0, len(snap.Rooms))
	var exitRows [][]any
	for _, r := range snap.Rooms {
		roomRows = append(roomRows, []any{r.ID, r.Title, r.Description})
		for _, e := range r.Exits {
			exitRows = append(exitRows, []any{r.ID, string(e.Direction), e.To, e.OneWay})
		}
	}

	err := inTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		// Exits cascade with their rooms.
		if _, err := tx.Exec(ctx, `DELETE FROM rooms`); err != nil {
			return oops.With("operation", "clear rooms").Wrap(err)
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"rooms"},
			[]string{"id", "title", "description"}, pgx.CopyFromRows(roomRows)); err != nil {
			return oops.With("operation", "copy rooms").With("rooms", len(roomRows)).Wrap(err)
		}
		if len(exitRows) > 0 {
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"exits"},
				[]string{"room_id", "label", "to_room", "one_way"}, pgx.CopyFromRows(exitRows)); err != nil {
				return oops.With("operation", "copy exits").With("exits", len(exitRows)).Wrap(err)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO world_meta (id, spawn, updated_at) VALUES (TRUE, $1, $2)
			ON CONFLICT (id) DO UPDATE SET spawn = EXCLUDED.spawn, updated_at = EXCLUDED.updated_at
		`, snap.Spawn, s.now().UTC()); err != nil {
			return oops.With("operation", "write world meta").Wrap(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("WORLD_SAVE_FAILED").With("rooms", len(roomRows)).Wrap(err)
	}
	return nil
}
