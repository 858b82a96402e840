// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import "github.com/wyrdmud/wyrd/internal/schema"

var fileSchema = schema.New("world",
	"World",
	"Rooms, exits and spawn point of a wyrd world",
	func() any { return &Snapshot{} })

// Schema returns the validator for world files.
func Schema() *schema.Validator {
	return fileSchema
}

// ValidateFile checks a YAML world document against the schema, decodes it,
// and checks the graph invariants.
func ValidateFile(data []byte) (*Snapshot, error) {
	if err := fileSchema.ValidateYAML(data); err != nil {
		return nil, err
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	if err := CheckInvariants(*snap); err != nil {
		return nil, err
	}
	return snap, nil
}
