// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package core

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// State is the lifecycle stage of a session.
type State int32

// Session states. Disconnected is terminal.
const (
	StateConnecting State = iota
	StateAuthenticating
	StateActive
	StateDisconnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateActive:
		return "active"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Identity is an authenticated player.
type Identity struct {
	PlayerID ulid.ULID
	Name     string
	// LastRoom is where the player was when they last disconnected.
	LastRoom string
}

// Session is one client connection. Lines submitted to it are processed one
// at a time, in arrival order, by the session's actor goroutine.
type Session struct {
	ID        ulid.ULID
	Transport string

	state     atomic.Int32
	inbox     chan string
	outbox    chan Message
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	identity *Identity
}

func newSession(transport string, inboxSize, outboxSize int) *Session {
	return &Session{
		ID:        NewULID(),
		Transport: transport,
		inbox:     make(chan string, inboxSize),
		outbox:    make(chan Message, outboxSize),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Identity returns a copy of the authenticated identity, if any.
func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) setIdentity(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
}

// Outbox carries notifications for the client. It is never closed; writers
// stop when Done is closed.
func (s *Session) Outbox() <-chan Message {
	return s.outbox
}

// Done is closed once the session has fully disconnected.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Submit queues a line for processing. It blocks while the inbox is full.
func (s *Session) Submit(ctx context.Context, line string) error {
	select {
	case <-s.closing:
		return ErrSessionClosed
	default:
	}
	select {
	case s.inbox <- line:
		return nil
	case <-s.closing:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver queues a notification without blocking. A full outbox drops the
// message.
func (s *Session) deliver(msg Message) {
	if msg.IsZero() {
		return
	}
	select {
	case s.outbox <- msg:
	default:
		MessagesDropped.WithLabelValues(s.Transport).Inc()
		slog.Warn("message dropped: session outbox full",
			"session_id", s.ID.String(),
			"msg_type", string(msg.MsgType),
		)
	}
}

// close signals the actor to stop. Safe to call more than once.
func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.closing) })
}
