// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package core

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wyrdmud/wyrd/internal/world"
)

// echoDispatcher answers every line with an echo and announces "wave" to
// the actor's room.
type echoDispatcher struct {
	graph *world.Graph

	mu    sync.Mutex
	lines []string
}

func (d *echoDispatcher) Dispatch(_ context.Context, playerID ulid.ULID, line string) Result {
	d.mu.Lock()
	d.lines = append(d.lines, line)
	d.mu.Unlock()

	view, err := d.graph.PlayerRoom(playerID)
	if err != nil {
		return Result{ToActor: ErrorMessage(err.Error())}
	}
	switch line {
	case "look":
		return Result{ToActor: RoomMessage(view.Title, view.Description)}
	case "wave":
		return Result{
			ToActor:    EmoteMessage("You", "wave."),
			Broadcasts: []RoomBroadcast{{RoomID: view.ID, Message: SayMessage("someone", "waves"), Exclude: playerID}},
		}
	case "quit":
		return Result{ToActor: ServerMessage("Goodbye."), Quit: true}
	default:
		return Result{ToActor: ServerMessage("echo: " + line)}
	}
}

func (d *echoDispatcher) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...)
}

type memoryAuth struct {
	mu    sync.Mutex
	ids   map[string]Identity
	saved map[ulid.ULID]string
}

func newMemoryAuth() *memoryAuth {
	return &memoryAuth{ids: make(map[string]Identity), saved: make(map[ulid.ULID]string)}
}

func (a *memoryAuth) Login(_ context.Context, name, password string) (Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.ids[strings.ToLower(name)]
	if !ok || password != "pw" {
		return Identity{}, oops.Code(CodeInvalidCredentials).Errorf("invalid credentials")
	}
	id.LastRoom = a.saved[id.PlayerID]
	return id, nil
}

func (a *memoryAuth) Register(_ context.Context, name, _ string) (Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.ids[strings.ToLower(name)]; ok {
		return Identity{}, oops.Code(CodeNameTaken).Errorf("name taken")
	}
	id := Identity{PlayerID: NewULID(), Name: name}
	a.ids[strings.ToLower(name)] = id
	return id, nil
}

func (a *memoryAuth) SaveLocation(_ context.Context, playerID ulid.ULID, roomID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved[playerID] = roomID
	return nil
}

func (a *memoryAuth) location(playerID ulid.ULID) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved[playerID]
}

func testGraph(t *testing.T) *world.Graph {
	t.Helper()
	g, err := world.Load(world.Snapshot{
		Spawn: "hall",
		Rooms: []world.RoomRecord{
			{ID: "hall", Title: "Hall", Description: "A long hall.", Exits: []world.ExitRecord{{Direction: world.Up, To: "attic"}}},
			{ID: "attic", Title: "Attic", Description: "Dusty.", Exits: []world.ExitRecord{{Direction: world.Down, To: "hall"}}},
		},
	})
	require.NoError(t, err)
	return g
}

type harness struct {
	graph *world.Graph
	disp  *echoDispatcher
	auth  *memoryAuth
	sm    *SessionManager
}

func newHarness(t *testing.T, opts ...SessionOption) *harness {
	t.Helper()
	g := testGraph(t)
	h := &harness{graph: g, disp: &echoDispatcher{graph: g}, auth: newMemoryAuth()}
	h.sm = NewSessionManager(g, h.disp, h.auth, opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, h.sm.Shutdown(ctx))
	})
	return h
}

func recv(t *testing.T, s *Session) Message {
	t.Helper()
	select {
	case msg := <-s.Outbox():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

// login opens a session, creates the named player, and drains the login output.
func (h *harness) login(t *testing.T, name string) *Session {
	t.Helper()
	s := h.sm.Open(context.Background(), "test")
	assert.Equal(t, Greeting, recv(t, s).Message)
	require.NoError(t, s.Submit(context.Background(), "create "+name+" pw"))
	assert.Equal(t, "Welcome, "+name+".", recv(t, s).Message)
	assert.Equal(t, MsgRoom, recv(t, s).MsgType)
	require.Eventually(t, func() bool { return s.State() == StateActive }, time.Second, 5*time.Millisecond)
	return s
}

func TestSession_LifecycleStates(t *testing.T) {
	defer goleak.VerifyNone(t)
	h := newHarness(t)

	s := h.sm.Open(context.Background(), "test")
	recv(t, s)
	assert.Equal(t, StateAuthenticating, s.State())

	require.NoError(t, s.Submit(context.Background(), "create Ann pw"))
	recv(t, s)
	recv(t, s)
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, 1, h.sm.ActivePlayers())

	require.NoError(t, s.Submit(context.Background(), "quit"))
	assert.Equal(t, "Goodbye.", recv(t, s).Message)
	<-s.Done()
	assert.Equal(t, StateDisconnected, s.State())
	assert.Equal(t, 0, h.sm.ActivePlayers())
	assert.ErrorIs(t, s.Submit(context.Background(), "look"), ErrSessionClosed)
}

func TestSession_AuthErrors(t *testing.T) {
	h := newHarness(t)
	s := h.sm.Open(context.Background(), "test")
	recv(t, s)

	tests := []struct {
		line string
		want string
	}{
		{"hello", "Usage: " + authUsage},
		{"connect Ann", "Usage: " + authUsage},
		{"connect Ann pw", "Invalid name or password."},
	}
	for _, tt := range tests {
		require.NoError(t, s.Submit(context.Background(), tt.line))
		msg := recv(t, s)
		assert.Equal(t, MsgError, msg.MsgType, tt.line)
		assert.Equal(t, tt.want, msg.Message, tt.line)
	}
	assert.Equal(t, StateAuthenticating, s.State())
}

func TestSession_ProcessesLinesInOrder(t *testing.T) {
	h := newHarness(t)
	s := h.login(t, "Ann")

	for i := range 20 {
		require.NoError(t, s.Submit(context.Background(), "say "+string(rune('a'+i))))
	}
	for i := range 20 {
		assert.Equal(t, "echo: say "+string(rune('a'+i)), recv(t, s).Message)
	}
}

func TestSession_BroadcastExcludesActor(t *testing.T) {
	h := newHarness(t)
	ann := h.login(t, "Ann")
	bob := h.login(t, "Bob")

	// Ann sees Bob arrive.
	arrive := recv(t, ann)
	assert.Equal(t, "Bob arrives.", arrive.Message)
	assert.Equal(t, MsgEmote, arrive.MsgType)

	require.NoError(t, bob.Submit(context.Background(), "wave"))
	assert.Equal(t, "You wave.", recv(t, bob).Message)
	assert.Equal(t, "waves", recv(t, ann).Message)

	select {
	case msg := <-bob.Outbox():
		t.Fatalf("actor received own broadcast: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSession_DisconnectRemovesPlayerAndRemembersRoom(t *testing.T) {
	h := newHarness(t)
	ann := h.login(t, "Ann")
	bob := h.login(t, "Bob")
	recv(t, ann) // Bob arrives.
	id, ok := bob.Identity()
	require.True(t, ok)

	h.sm.Close(bob)
	<-bob.Done()

	assert.Equal(t, "Bob leaves.", recv(t, ann).Message)
	occ, err := h.graph.Occupants("hall")
	require.NoError(t, err)
	assert.Len(t, occ, 1)
	assert.Equal(t, "hall", h.auth.location(id.PlayerID))

	again := h.sm.Open(context.Background(), "test")
	recv(t, again)
	require.NoError(t, again.Submit(context.Background(), "connect Bob pw"))
	assert.Equal(t, "Welcome, Bob.", recv(t, again).Message)
	again2, _ := again.Identity()
	assert.Equal(t, id.PlayerID, again2.PlayerID)
}

func TestSession_TakeoverKeepsPlayerInWorld(t *testing.T) {
	h := newHarness(t)
	first := h.login(t, "Ann")
	id, _ := first.Identity()

	second := h.sm.Open(context.Background(), "test")
	recv(t, second)
	require.NoError(t, second.Submit(context.Background(), "connect Ann pw"))
	assert.Equal(t, "Welcome, Ann.", recv(t, second).Message)

	assert.Equal(t, "You have connected from elsewhere.", recv(t, first).Message)
	<-first.Done()

	p, err := h.graph.Player(id.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, "hall", p.RoomID)
	assert.Equal(t, 1, h.sm.ActivePlayers())
}

func TestSession_SupersededSessionDropsQueuedInput(t *testing.T) {
	h := newHarness(t)
	first := h.login(t, "Ann")

	second := h.sm.Open(context.Background(), "test")
	recv(t, second)
	require.NoError(t, second.Submit(context.Background(), "connect Ann pw"))
	assert.Equal(t, "Welcome, Ann.", recv(t, second).Message)
	assert.Equal(t, MsgRoom, recv(t, second).MsgType)
	<-first.Done()

	// A line the old actor picked up before it saw the takeover.
	first.setState(StateActive)
	assert.True(t, h.sm.handle(context.Background(), first, "wave"))
	assert.NotContains(t, h.disp.seen(), "wave")

	require.NoError(t, second.Submit(context.Background(), "wave"))
	assert.Equal(t, "You", recv(t, second).MsgSrc)
	assert.Contains(t, h.disp.seen(), "wave")
}

func TestSession_OutboxOverflowDrops(t *testing.T) {
	h := newHarness(t, WithOutboxSize(2))
	s := h.sm.Open(context.Background(), "test")
	for range 10 {
		s.deliver(ServerMessage("spam"))
	}
	assert.Len(t, s.Outbox(), 2)
}

func TestNotifyRelocated(t *testing.T) {
	h := newHarness(t)
	ann := h.login(t, "Ann")
	id, _ := ann.Identity()

	h.sm.NotifyRelocated(context.Background(), []ulid.ULID{id.PlayerID}, "hall")
	msg := recv(t, ann)
	assert.True(t, msg.Scroll)
	assert.Equal(t, MsgServer, msg.MsgType)
	look := recv(t, ann)
	assert.Equal(t, "Hall", look.Title)
}

func TestShutdown_StopsActors(t *testing.T) {
	defer goleak.VerifyNone(t)
	g := testGraph(t)
	sm := NewSessionManager(g, &echoDispatcher{graph: g}, newMemoryAuth())
	for range 5 {
		sm.Open(context.Background(), "test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sm.Shutdown(ctx))
}

func TestMessageTypeColors(t *testing.T) {
	assert.Equal(t, "blue", MsgServer.Color())
	assert.Equal(t, "green", MsgRoom.Color())
	assert.Equal(t, "red", MsgError.Color())
	assert.Equal(t, "yellow", MsgSay.Color())
	assert.Equal(t, "cyan", MsgEmote.Color())
}
