// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package core

import (
	"github.com/oklog/ulid/v2"
)

// MsgType selects the semantic color class of a notification.
type MsgType string

// Message types.
const (
	MsgServer MsgType = "server"
	MsgRoom   MsgType = "room"
	MsgError  MsgType = "error"
	MsgSay    MsgType = "say"
	MsgEmote  MsgType = "emote"
)

// Default colors per message type.
var defaultColors = map[MsgType]string{
	MsgServer: "blue",
	MsgRoom:   "green",
	MsgError:  "red",
	MsgSay:    "yellow",
	MsgEmote:  "cyan",
}

// Color returns the default message color for the type.
func (t MsgType) Color() string {
	return defaultColors[t]
}

// Message is one server-to-client notification. It is serialized as a
// single JSON object per notification.
type Message struct {
	MsgType      MsgType `json:"msg_type"`
	Message      string  `json:"message"`
	MsgSrc       string  `json:"msg_src,omitempty"`
	Title        string  `json:"title,omitempty"`
	TitleColor   string  `json:"title_color,omitempty"`
	MessageColor string  `json:"message_color,omitempty"`
	Scroll       bool    `json:"scroll,omitempty"`
}

// IsZero reports whether the message carries nothing to deliver.
func (m Message) IsZero() bool {
	return m.MsgType == "" && m.Message == ""
}

// ServerMessage creates a system notification.
func ServerMessage(text string) Message {
	return Message{MsgType: MsgServer, Message: text}
}

// ErrorMessage creates an error notification for the acting session.
func ErrorMessage(text string) Message {
	return Message{MsgType: MsgError, Message: text}
}

// RoomMessage creates a room description with a highlighted title.
func RoomMessage(title, text string) Message {
	return Message{MsgType: MsgRoom, Title: title, TitleColor: "bright_green", Message: text}
}

// SayMessage creates speech attributed to src.
func SayMessage(src, text string) Message {
	return Message{MsgType: MsgSay, MsgSrc: src, Message: text}
}

// EmoteMessage creates an action attributed to src.
func EmoteMessage(src, text string) Message {
	return Message{MsgType: MsgEmote, MsgSrc: src, Message: src + " " + text}
}

// ArriveMessage announces a player entering a room.
func ArriveMessage(name string) Message {
	return EmoteMessage(name, "arrives.")
}

// LeaveMessage announces a player leaving a room.
func LeaveMessage(name string) Message {
	return EmoteMessage(name, "leaves.")
}

// RoomBroadcast is a message for every occupant of a room.
type RoomBroadcast struct {
	RoomID  string
	Message Message
	// Exclude is left out of the fan-out; the zero ULID excludes no one.
	Exclude ulid.ULID
}

// Result is the outcome of one player command. The dispatcher never
// delivers anything itself; the session manager fans Broadcasts out after
// the command has resolved.
type Result struct {
	ToActor    Message
	Broadcasts []RoomBroadcast
	Quit       bool
}
