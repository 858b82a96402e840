// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"strings"

	"github.com/wyrdmud/wyrd/internal/world"
)

// ParsedCommand represents a tokenized input line.
type ParsedCommand struct {
	Verb string // first whitespace-delimited token, lower-cased
	Args string // unparsed argument string (preserves internal whitespace)
	Raw  string // original input
}

// Tokenize splits raw input into verb and arguments. The leading quote and
// colon shorthands for say and emote count as a verb of their own even
// without a following space.
func Tokenize(input string) ParsedCommand {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ParsedCommand{Raw: input}
	}
	if trimmed[0] == '\'' || trimmed[0] == ':' || trimmed[0] == '"' {
		return ParsedCommand{
			Verb: trimmed[:1],
			Args: strings.TrimLeft(trimmed[1:], " \t"),
			Raw:  input,
		}
	}

	idx := strings.IndexAny(trimmed, " \t")
	if idx == -1 {
		return ParsedCommand{Verb: strings.ToLower(trimmed), Raw: input}
	}
	return ParsedCommand{
		Verb: strings.ToLower(trimmed[:idx]),
		Args: strings.TrimLeft(trimmed[idx+1:], " \t"),
		Raw:  input,
	}
}

type verbKind int

const (
	verbGo verbKind = iota + 1
	verbLook
	verbSay
	verbEmote
	verbHelp
	verbQuit
)

var verbs = map[string]verbKind{
	"go":       verbGo,
	"move":     verbGo,
	"walk":     verbGo,
	"l":        verbLook,
	"look":     verbLook,
	"describe": verbLook,
	"say":      verbSay,
	"'":        verbSay,
	`"`:        verbSay,
	"emote":    verbEmote,
	"/me":      verbEmote,
	":":        verbEmote,
	"help":     verbHelp,
	"?":        verbHelp,
	"quit":     verbQuit,
	"logout":   verbQuit,
}

// Parse maps an input line to an action. It never fails: anything that does
// not match the verb table becomes Unknown.
func Parse(input string) Action {
	cmd := Tokenize(input)
	if cmd.Verb == "" {
		return Unknown{Original: strings.TrimSpace(input)}
	}
	if cmd.Args == "" && world.IsDirectionWord(cmd.Verb) {
		return Move{Direction: world.ParseDirection(cmd.Verb)}
	}
	switch verbs[cmd.Verb] {
	case verbGo:
		return Move{Direction: world.ParseDirection(cmd.Args)}
	case verbLook:
		return Look{}
	case verbSay:
		return Say{Text: cmd.Args}
	case verbEmote:
		return Emote{Text: cmd.Args}
	case verbHelp:
		return Help{}
	case verbQuit:
		return Quit{}
	default:
		return Unknown{Verb: cmd.Verb, Original: strings.TrimSpace(input)}
	}
}
