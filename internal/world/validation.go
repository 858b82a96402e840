// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package world

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxRoomIDLength      = 64
	MaxTitleLength       = 100
	MaxDescriptionLength = 4000
	MaxLabelLength       = 50

	// Player name limits
	MinPlayerNameLength = 2
	MaxPlayerNameLength = 32
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// roomIDRegex matches slug-style room ids such as "inner-cavern" or "lake_2".
var roomIDRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}_.:-]*$`)

// ValidateRoomID checks that a room id is a non-empty slug without whitespace.
func ValidateRoomID(id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if !utf8.ValidString(id) {
		return &ValidationError{Field: "id", Message: "must be valid UTF-8"}
	}
	if len(id) > MaxRoomIDLength {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("exceeds maximum length of %d", MaxRoomIDLength)}
	}
	if !roomIDRegex.MatchString(id) {
		return &ValidationError{Field: "id", Message: "must be a slug without whitespace"}
	}
	return nil
}

// ValidateTitle checks that a room title is valid.
// Titles must be non-empty, valid UTF-8, no control characters, and within length limit.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if !utf8.ValidString(title) {
		return &ValidationError{Field: "title", Message: "must be valid UTF-8"}
	}
	if len(title) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("exceeds maximum length of %d", MaxTitleLength)}
	}
	if hasControlChars(title) {
		return &ValidationError{Field: "title", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateDescription checks that a description is valid.
// Descriptions may be empty, must be valid UTF-8, no control characters (except newline/tab), and within length limit.
func ValidateDescription(desc string) error {
	if desc == "" {
		return nil
	}
	if !utf8.ValidString(desc) {
		return &ValidationError{Field: "description", Message: "must be valid UTF-8"}
	}
	if len(desc) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("exceeds maximum length of %d", MaxDescriptionLength)}
	}
	if hasControlCharsExceptWhitespace(desc) {
		return &ValidationError{Field: "description", Message: "cannot contain control characters (except newline/tab)"}
	}
	return nil
}

// ValidateLabel checks that a direction label is usable as an exit name.
func ValidateLabel(label Direction) error {
	s := string(label)
	if s == "" {
		return &ValidationError{Field: "direction", Message: "cannot be empty"}
	}
	if s != strings.TrimSpace(s) {
		return &ValidationError{Field: "direction", Message: "cannot have leading or trailing spaces"}
	}
	if len(s) > MaxLabelLength {
		return &ValidationError{Field: "direction", Message: fmt.Sprintf("exceeds maximum length of %d", MaxLabelLength)}
	}
	if hasControlChars(s) {
		return &ValidationError{Field: "direction", Message: "cannot contain control characters"}
	}
	if Normalize(s) != label {
		return &ValidationError{Field: "direction", Message: "must be lower case"}
	}
	return nil
}

// playerNameRegex matches names with only Unicode letters and single spaces between words.
var playerNameRegex = regexp.MustCompile(`^[\p{L}]+( [\p{L}]+)*$`)

// ValidatePlayerName checks that a player display name is valid.
// Letters and single spaces only, 2-32 characters, no surrounding whitespace.
func ValidatePlayerName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if name != strings.TrimSpace(name) {
		return &ValidationError{Field: "name", Message: "cannot have leading or trailing spaces"}
	}
	if utf8.RuneCountInString(name) < MinPlayerNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at least %d characters", MinPlayerNameLength)}
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxPlayerNameLength)}
	}
	if !playerNameRegex.MatchString(name) {
		return &ValidationError{Field: "name", Message: "must contain letters and spaces only"}
	}
	return nil
}

// NormalizePlayerName converts a player name to Initial Caps format.
//
// Example: "alaric" -> "Alaric", "jOhN sMiTh" -> "John Smith"
func NormalizePlayerName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// hasControlChars returns true if the string contains control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// hasControlCharsExceptWhitespace returns true if the string contains control characters
// other than newline, carriage return, and tab.
func hasControlCharsExceptWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return true
		}
	}
	return false
}
