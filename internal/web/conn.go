// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package web

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wyrdmud/wyrd/internal/core"
)

// connection bridges one websocket to a core session.
type connection struct {
	ws       *websocket.Conn
	sessions SessionOpener
}

func newConnection(ws *websocket.Conn, sessions SessionOpener) *connection {
	return &connection{ws: ws, sessions: sessions}
}

func (c *connection) serve(ctx context.Context) {
	session := c.sessions.Open(ctx, Transport)
	log := slog.With("session_id", session.ID.String(), "remote", c.ws.RemoteAddr().String())
	log.DebugContext(ctx, "websocket connection opened")

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		c.readLoop(ctx, session, log)
	}()

	c.writeLoop(ctx, session, log)

	c.sessions.Close(session)
	deadline := time.Now().Add(writeWait)
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.ws.WriteControl(websocket.CloseMessage, closeMsg, deadline); err != nil {
		log.Debug("error sending close frame", "error", err)
	}
	if err := c.ws.Close(); err != nil {
		log.Debug("error closing websocket", "error", err)
	}
	<-readDone
}

func (c *connection) readLoop(ctx context.Context, session *core.Session, log *slog.Logger) {
	defer c.sessions.Close(session)
	c.ws.SetReadLimit(maxMessageBytes)
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.DebugContext(ctx, "websocket read error", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		line := strings.TrimRight(string(data), "\r\n")
		if err := session.Submit(ctx, line); err != nil {
			return
		}
	}
}

func (c *connection) writeLoop(ctx context.Context, session *core.Session, log *slog.Logger) {
	for {
		select {
		case msg := <-session.Outbox():
			if !c.write(msg, log) {
				return
			}
		case <-session.Done():
			for {
				select {
				case msg := <-session.Outbox():
					if !c.write(msg, log) {
						return
					}
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *connection) write(msg core.Message, log *slog.Logger) bool {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false
	}
	if err := c.ws.WriteJSON(msg); err != nil {
		log.Debug("failed to send message to client", "error", err)
		return false
	}
	return true
}
