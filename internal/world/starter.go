// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	_ "embed"
)

//go:embed starter.yaml
var starterWorld []byte

// DefaultSnapshot returns the built-in starter world used when no world has
// been stored yet.
func DefaultSnapshot() Snapshot {
	snap, err := DecodeSnapshot(starterWorld)
	if err != nil {
		panic("embedded starter world is invalid: " + err.Error())
	}
	return *snap
}
