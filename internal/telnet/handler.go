// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package telnet

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wyrdmud/wyrd/internal/core"
)

// maxLineLength bounds a single input line.
const maxLineLength = 4096

// ConnectionHandler bridges one telnet connection to a core session.
type ConnectionHandler struct {
	conn     net.Conn
	sessions SessionOpener
	color    bool
}

// NewConnectionHandler creates a new handler.
func NewConnectionHandler(conn net.Conn, sessions SessionOpener, color bool) *ConnectionHandler {
	return &ConnectionHandler{conn: conn, sessions: sessions, color: color}
}

// Handle serves the connection until the client disconnects, the session
// ends, or ctx is cancelled.
func (h *ConnectionHandler) Handle(ctx context.Context) {
	session := h.sessions.Open(ctx, Transport)
	log := slog.With("session_id", session.ID.String(), "remote", h.conn.RemoteAddr().String())
	log.DebugContext(ctx, "telnet connection opened")

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		h.readLoop(ctx, session, log)
	}()

	h.writeLoop(ctx, session, log)

	h.sessions.Close(session)
	if err := h.conn.Close(); err != nil {
		log.Debug("error closing connection", "error", err)
	}
	<-readDone
}

// readLoop submits each input line to the session, closing the session when
// the client goes away.
func (h *ConnectionHandler) readLoop(ctx context.Context, session *core.Session, log *slog.Logger) {
	defer h.sessions.Close(session)
	scanner := bufio.NewScanner(h.conn)
	scanner.Buffer(make([]byte, 0, 1024), maxLineLength)
	for scanner.Scan() {
		line := sanitize(scanner.Text())
		if err := session.Submit(ctx, line); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		log.DebugContext(ctx, "connection read error", "error", err)
	}
}

// writeLoop renders notifications until the session is done. Messages
// queued before the session ended are still flushed.
func (h *ConnectionHandler) writeLoop(ctx context.Context, session *core.Session, log *slog.Logger) {
	for {
		select {
		case msg := <-session.Outbox():
			if !h.write(msg, log) {
				return
			}
		case <-session.Done():
			h.drain(session, log)
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *ConnectionHandler) drain(session *core.Session, log *slog.Logger) {
	for {
		select {
		case msg := <-session.Outbox():
			if !h.write(msg, log) {
				return
			}
		default:
			return
		}
	}
}

func (h *ConnectionHandler) write(msg core.Message, log *slog.Logger) bool {
	if _, err := io.WriteString(h.conn, Render(msg, h.color)); err != nil {
		log.Debug("failed to send message to client", "error", err)
		return false
	}
	return true
}

// sanitize drops telnet negotiation bytes, which are not valid UTF-8, and
// control characters.
func sanitize(line string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r == utf8.RuneError, unicode.IsControl(r):
			return -1
		}
		return r
	}, line)
}
