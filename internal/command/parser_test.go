// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wyrdmud/wyrd/internal/world"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		verb  string
		args  string
	}{
		{"verb only", "look", "look", ""},
		{"verb and args", "say hello there", "say", "hello there"},
		{"preserves internal whitespace", "say  hello   world", "say", "hello   world"},
		{"lower-cases verb", "SAY Hi", "say", "Hi"},
		{"tab separator", "say\thi", "say", "hi"},
		{"quote shorthand", "'hello", "'", "hello"},
		{"colon shorthand", ":grins", ":", "grins"},
		{"empty", "   ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := Tokenize(tt.input)
			assert.Equal(t, tt.verb, cmd.Verb)
			assert.Equal(t, tt.args, cmd.Args)
			assert.Equal(t, tt.input, cmd.Raw)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Action
	}{
		{"north", Move{Direction: world.North}},
		{"N", Move{Direction: world.North}},
		{"sw", Move{Direction: world.Southwest}},
		{"go up", Move{Direction: world.Up}},
		{"move a rusty door", Move{Direction: "a rusty door"}},
		{"go", Move{}},
		{"l", Look{}},
		{"look", Look{}},
		{"describe", Look{}},
		{"say hello", Say{Text: "hello"}},
		{"'hello", Say{Text: "hello"}},
		{"say", Say{}},
		{"emote smiles", Emote{Text: "smiles"}},
		{"/me waves", Emote{Text: "waves"}},
		{":waves", Emote{Text: "waves"}},
		{"help", Help{}},
		{"quit", Quit{}},
		{"dance wildly", Unknown{Verb: "dance", Original: "dance wildly"}},
		{"north now", Unknown{Verb: "north", Original: "north now"}},
		{"a rusty door", Unknown{Verb: "a", Original: "a rusty door"}},
		{"", Unknown{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestActionNames(t *testing.T) {
	names := map[string]Action{
		"move":    Move{},
		"look":    Look{},
		"say":     Say{},
		"emote":   Emote{},
		"help":    Help{},
		"quit":    Quit{},
		"unknown": Unknown{},
	}
	for want, a := range names {
		assert.Equal(t, want, a.Name())
	}
}
