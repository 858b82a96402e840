// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Direction is the label of a connection leaving a room. Labels come from an
// open set: the compass points below have known inverses, anything else
// ("a rusty door") must be paired explicitly on both ends.
type Direction string

// Standard directions.
const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
	Up        Direction = "up"
	Down      Direction = "down"
	In        Direction = "in"
	Out       Direction = "out"
)

var inverses = map[Direction]Direction{
	North:     South,
	South:     North,
	East:      West,
	West:      East,
	Northeast: Southwest,
	Southwest: Northeast,
	Northwest: Southeast,
	Southeast: Northwest,
	Up:        Down,
	Down:      Up,
	In:        Out,
	Out:       In,
}

var abbreviations = map[string]Direction{
	"n":  North,
	"s":  South,
	"e":  East,
	"w":  West,
	"ne": Northeast,
	"nw": Northwest,
	"se": Southeast,
	"sw": Southwest,
	"u":  Up,
	"d":  Down,
}

// standardOrder is the preference order used when allocating labels for new
// connections.
var standardOrder = []Direction{
	North, South, East, West,
	Northeast, Southwest, Northwest, Southeast,
	Up, Down, In, Out,
}

// String returns the label.
func (d Direction) String() string {
	return string(d)
}

// Inverse returns the conventional reverse label, if the direction has one.
func (d Direction) Inverse() (Direction, bool) {
	inv, ok := inverses[d]
	return inv, ok
}

// IsStandard reports whether d is one of the compass/vertical directions.
func (d Direction) IsStandard() bool {
	_, ok := inverses[d]
	return ok
}

// Normalize lower-cases a label and collapses internal whitespace.
func Normalize(s string) Direction {
	// Casers keep state and must not be shared between goroutines.
	lower := cases.Lower(language.Und).String(s)
	return Direction(strings.Join(strings.Fields(lower), " "))
}

// ParseDirection normalizes s and expands abbreviations such as "ne".
func ParseDirection(s string) Direction {
	d := Normalize(s)
	if full, ok := abbreviations[string(d)]; ok {
		return full
	}
	return d
}

// IsDirectionWord reports whether s names a standard direction or one of its
// abbreviations.
func IsDirectionWord(s string) bool {
	return ParseDirection(s).IsStandard()
}

// StandardDirections returns the standard directions in allocation order.
func StandardDirections() []Direction {
	out := make([]Direction, len(standardOrder))
	copy(out, standardOrder)
	return out
}
