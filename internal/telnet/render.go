// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package telnet

import (
	"strings"

	"github.com/wyrdmud/wyrd/internal/core"
)

const (
	ansiReset       = "\x1b[0m"
	ansiClearScreen = "\x1b[2J\x1b[H"
)

var ansiColors = map[string]string{
	"black":          "\x1b[30m",
	"red":            "\x1b[31m",
	"green":          "\x1b[32m",
	"yellow":         "\x1b[33m",
	"blue":           "\x1b[34m",
	"magenta":        "\x1b[35m",
	"cyan":           "\x1b[36m",
	"white":          "\x1b[37m",
	"bright_black":   "\x1b[90m",
	"bright_red":     "\x1b[91m",
	"bright_green":   "\x1b[92m",
	"bright_yellow":  "\x1b[93m",
	"bright_blue":    "\x1b[94m",
	"bright_magenta": "\x1b[95m",
	"bright_cyan":    "\x1b[96m",
	"bright_white":   "\x1b[97m",
}

// Render formats a notification for a terminal. Lines end in CRLF. With
// color off, scroll and color hints are ignored.
func Render(msg core.Message, color bool) string {
	var b strings.Builder
	if color && msg.Scroll {
		b.WriteString(ansiClearScreen)
	}
	if msg.Title != "" {
		writeColored(&b, msg.Title, msg.TitleColor, color)
	}
	messageColor := msg.MessageColor
	if messageColor == "" {
		messageColor = msg.MsgType.Color()
	}
	if msg.Message != "" {
		writeColored(&b, msg.Message, messageColor, color)
	}
	return b.String()
}

func writeColored(b *strings.Builder, text, colorName string, color bool) {
	code, ok := ansiColors[colorName]
	for _, line := range strings.Split(text, "\n") {
		if color && ok {
			b.WriteString(code)
			b.WriteString(line)
			b.WriteString(ansiReset)
		} else {
			b.WriteString(line)
		}
		b.WriteString("\r\n")
	}
}
