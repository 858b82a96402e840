// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package core

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/world"
)

// WorldGraph is the part of the world the session layer needs.
type WorldGraph interface {
	AddPlayer(id ulid.ULID, name, roomID string) (world.RoomView, error)
	RemovePlayer(id ulid.ULID) (string, error)
	Occupants(roomID string) ([]ulid.ULID, error)
}

// Dispatcher turns one line of player input into a result.
type Dispatcher interface {
	Dispatch(ctx context.Context, playerID ulid.ULID, line string) Result
}

// Authenticator resolves login lines into identities and remembers where
// players were when they left.
type Authenticator interface {
	Login(ctx context.Context, name, password string) (Identity, error)
	Register(ctx context.Context, name, password string) (Identity, error)
	SaveLocation(ctx context.Context, playerID ulid.ULID, roomID string) error
}

// Greeting is sent to every new session.
const Greeting = "Welcome to wyrd. Type 'connect <name> <password>' or 'create <name> <password>'."

const authUsage = "connect <name> <password> | create <name> <password>"

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithInboxSize sets the per-session command queue length.
func WithInboxSize(n int) SessionOption {
	return func(sm *SessionManager) {
		if n > 0 {
			sm.inboxSize = n
		}
	}
}

// WithOutboxSize sets the per-session notification buffer length.
func WithOutboxSize(n int) SessionOption {
	return func(sm *SessionManager) {
		if n > 0 {
			sm.outboxSize = n
		}
	}
}

// SessionManager owns one actor per connected session. It routes lines to
// the dispatcher and fans results out to the sessions of affected rooms.
type SessionManager struct {
	world      WorldGraph
	dispatcher Dispatcher
	auth       Authenticator
	inboxSize  int
	outboxSize int

	// mu guards the maps and is taken before any world lock when both are held.
	mu       sync.RWMutex
	sessions map[ulid.ULID]*Session
	players  map[ulid.ULID]*Session
	wg       sync.WaitGroup
}

// NewSessionManager creates a session manager.
func NewSessionManager(w WorldGraph, d Dispatcher, a Authenticator, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		world:      w,
		dispatcher: d,
		auth:       a,
		inboxSize:  64,
		outboxSize: 128,
		sessions:   make(map[ulid.ULID]*Session),
		players:    make(map[ulid.ULID]*Session),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Open starts a session for a new connection. The actor runs until the
// session quits, Close is called, or ctx is cancelled.
func (sm *SessionManager) Open(ctx context.Context, transport string) *Session {
	s := newSession(transport, sm.inboxSize, sm.outboxSize)
	s.setState(StateConnecting)

	sm.mu.Lock()
	sm.sessions[s.ID] = s
	sm.mu.Unlock()
	SessionsOpened.WithLabelValues(transport).Inc()

	s.deliver(ServerMessage(Greeting))
	s.setState(StateAuthenticating)

	sm.wg.Add(1)
	go sm.run(ctx, s)
	return s
}

// Close ends a session. The actor removes the player from the world.
func (sm *SessionManager) Close(s *Session) {
	s.close()
}

// Wait blocks until every session actor has finished.
func (sm *SessionManager) Wait() {
	sm.wg.Wait()
}

// Shutdown closes every session and waits for the actors or ctx.
func (sm *SessionManager) Shutdown(ctx context.Context) error {
	sm.mu.RLock()
	for _, s := range sm.sessions {
		s.deliver(ServerMessage("The server is shutting down."))
		s.close()
	}
	sm.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		sm.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return oops.Wrapf(ctx.Err(), "waiting for sessions")
	}
}

// ActivePlayers returns the number of authenticated sessions.
func (sm *SessionManager) ActivePlayers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.players)
}

// Deliver sends a message to a player's session, if connected.
func (sm *SessionManager) Deliver(playerID ulid.ULID, msg Message) {
	sm.mu.RLock()
	s := sm.players[playerID]
	sm.mu.RUnlock()
	if s != nil {
		s.deliver(msg)
	}
}

// Broadcast sends msg to every session whose player occupies roomID,
// except the excluded player.
func (sm *SessionManager) Broadcast(roomID string, msg Message, exclude ulid.ULID) {
	occupants, err := sm.world.Occupants(roomID)
	if err != nil {
		slog.Debug("broadcast to missing room", "room_id", roomID, "error", err)
		return
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, pid := range occupants {
		if pid == exclude {
			continue
		}
		if s := sm.players[pid]; s != nil {
			s.deliver(msg)
		}
	}
}

// NotifyRelocated tells players moved by a region split where they are now.
func (sm *SessionManager) NotifyRelocated(ctx context.Context, players []ulid.ULID, roomID string) {
	for _, pid := range players {
		sm.Deliver(pid, Message{
			MsgType: MsgServer,
			Message: "The world shifts around you, and you find yourself somewhere new.",
			Scroll:  true,
		})
		sm.Deliver(pid, sm.dispatcher.Dispatch(ctx, pid, "look").ToActor)
		slog.DebugContext(ctx, "relocation delivered", "player_id", pid.String(), "room_id", roomID)
	}
}

func (sm *SessionManager) run(ctx context.Context, s *Session) {
	defer sm.wg.Done()
	defer sm.finish(ctx, s)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closing:
			return
		case line := <-s.inbox:
			if quit := sm.handle(ctx, s, line); quit {
				return
			}
		}
	}
}

// handle processes one line. It returns true when the session should end.
func (sm *SessionManager) handle(ctx context.Context, s *Session, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	switch s.State() {
	case StateAuthenticating:
		sm.authenticate(ctx, s, line)
		return false
	case StateActive:
		id, _ := s.Identity()
		if !sm.owns(s, id.PlayerID) {
			slog.DebugContext(ctx, "dropping input from superseded session",
				"session_id", s.ID.String(), "player_id", id.PlayerID.String())
			return true
		}
		res := sm.dispatcher.Dispatch(ctx, id.PlayerID, line)
		s.deliver(res.ToActor)
		for _, b := range res.Broadcasts {
			sm.Broadcast(b.RoomID, b.Message, b.Exclude)
		}
		return res.Quit
	default:
		return false
	}
}

func (sm *SessionManager) authenticate(ctx context.Context, s *Session, line string) {
	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])
	if verb == "quit" {
		s.deliver(ServerMessage("Goodbye."))
		s.close()
		return
	}
	if len(fields) != 3 || (verb != "connect" && verb != "create") {
		s.deliver(ErrorMessage(authFailureMessage(ErrProtocol(line, authUsage))))
		return
	}

	var (
		id  Identity
		err error
	)
	if verb == "create" {
		id, err = sm.auth.Register(ctx, fields[1], fields[2])
	} else {
		id, err = sm.auth.Login(ctx, fields[1], fields[2])
	}
	if err != nil {
		slog.InfoContext(ctx, "authentication failed", "session_id", s.ID.String(), "verb", verb, "error", err)
		s.deliver(ErrorMessage(authFailureMessage(err)))
		return
	}

	previous, roomID, err := sm.attach(s, id)
	if err != nil {
		slog.ErrorContext(ctx, "placing player failed", "player_id", id.PlayerID.String(), "error", err)
		s.deliver(ErrorMessage("Something went wrong. Try again."))
		return
	}
	s.setIdentity(id)
	s.setState(StateActive)
	SessionsActive.Inc()

	if previous != nil {
		previous.deliver(ServerMessage("You have connected from elsewhere."))
		previous.close()
	} else {
		sm.Broadcast(roomID, ArriveMessage(id.Name), id.PlayerID)
	}
	slog.InfoContext(ctx, "player connected",
		"session_id", s.ID.String(),
		"player_id", id.PlayerID.String(),
		"room_id", roomID,
		"takeover", previous != nil,
	)
	s.deliver(ServerMessage("Welcome, " + id.Name + "."))
	s.deliver(sm.dispatcher.Dispatch(ctx, id.PlayerID, "look").ToActor)
}

// owns reports whether s still holds playerID. A session loses its player
// when another session connects as the same account.
func (sm *SessionManager) owns(s *Session, playerID ulid.ULID) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.players[playerID] == s
}

// attach binds a player to a session. A player already held by another
// session is taken over in place; otherwise the player enters the world.
func (sm *SessionManager) attach(s *Session, id Identity) (*Session, string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if prev := sm.players[id.PlayerID]; prev != nil {
		sm.players[id.PlayerID] = s
		prevID, _ := prev.Identity()
		return prev, prevID.LastRoom, nil
	}
	view, err := sm.world.AddPlayer(id.PlayerID, id.Name, id.LastRoom)
	if err != nil {
		return nil, "", err
	}
	sm.players[id.PlayerID] = s
	return nil, view.ID, nil
}

// finish runs once per session when its actor exits.
func (sm *SessionManager) finish(ctx context.Context, s *Session) {
	s.close()
	id, authed := s.Identity()

	var roomID string
	sm.mu.Lock()
	owned := authed && sm.players[id.PlayerID] == s
	if owned {
		delete(sm.players, id.PlayerID)
		var err error
		roomID, err = sm.world.RemovePlayer(id.PlayerID)
		if err != nil {
			slog.WarnContext(ctx, "removing player from world", "player_id", id.PlayerID.String(), "error", err)
		}
	}
	delete(sm.sessions, s.ID)
	sm.mu.Unlock()

	if authed {
		SessionsActive.Dec()
	}
	if owned && roomID != "" {
		sm.Broadcast(roomID, LeaveMessage(id.Name), id.PlayerID)
		// The connection context may already be cancelled.
		if err := sm.auth.SaveLocation(context.WithoutCancel(ctx), id.PlayerID, roomID); err != nil {
			slog.WarnContext(ctx, "saving player location", "player_id", id.PlayerID.String(), "error", err)
		}
	}
	s.setState(StateDisconnected)
	close(s.done)
	slog.InfoContext(ctx, "session closed", "session_id", s.ID.String(), "transport", s.Transport)
}
