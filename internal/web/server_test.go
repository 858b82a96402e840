// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrdmud/wyrd/internal/auth"
	"github.com/wyrdmud/wyrd/internal/command"
	"github.com/wyrdmud/wyrd/internal/core"
	"github.com/wyrdmud/wyrd/internal/world"
)

var cheapParams = auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func newTestManager(t *testing.T) *core.SessionManager {
	t.Helper()
	graph, err := world.Load(world.DefaultSnapshot())
	require.NoError(t, err)
	dispatcher, err := command.NewDispatcher(graph)
	require.NoError(t, err)
	accounts, err := auth.NewService(auth.NewMemoryAccounts(), auth.NewArgon2idHasher(cheapParams))
	require.NoError(t, err)
	sm := core.NewSessionManager(graph, dispatcher, accounts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, sm.Shutdown(ctx))
	})
	return sm
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) core.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg core.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, line string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(line)))
}

func TestWebsocket_Session(t *testing.T) {
	sm := newTestManager(t)
	srv := httptest.NewServer(NewServer("", sm).Handler(t.Context()))
	t.Cleanup(srv.Close)
	conn := dial(t, srv)

	greeting := readMessage(t, conn)
	assert.Equal(t, core.MsgServer, greeting.MsgType)
	assert.Equal(t, core.Greeting, greeting.Message)

	send(t, conn, "create ann secret")
	assert.Equal(t, "Welcome, Ann.", readMessage(t, conn).Message)
	room := readMessage(t, conn)
	assert.Equal(t, core.MsgRoom, room.MsgType)
	assert.Equal(t, "The Crossroads", room.Title)
	assert.Equal(t, "bright_green", room.TitleColor)

	send(t, conn, "say hi")
	say := readMessage(t, conn)
	assert.Equal(t, core.MsgSay, say.MsgType)
	assert.Equal(t, `You say, "hi"`, say.Message)

	send(t, conn, "quit")
	assert.Equal(t, "Goodbye.", readMessage(t, conn).Message)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Eventually(t, func() bool { return sm.ActivePlayers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebsocket_WireFormat(t *testing.T) {
	sm := newTestManager(t)
	srv := httptest.NewServer(NewServer("", sm).Handler(t.Context()))
	t.Cleanup(srv.Close)
	conn := dial(t, srv)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"msg_type":"server","message":"`+core.Greeting+`"}`, string(raw))
}

func TestWebsocket_ClientHangsUp(t *testing.T) {
	sm := newTestManager(t)
	srv := httptest.NewServer(NewServer("", sm).Handler(t.Context()))
	t.Cleanup(srv.Close)
	conn := dial(t, srv)
	readMessage(t, conn)
	send(t, conn, "create bob secret")
	readMessage(t, conn)
	readMessage(t, conn)
	require.Equal(t, 1, sm.ActivePlayers())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return sm.ActivePlayers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_StaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>wyrd</h1>"), 0o600))
	srv := httptest.NewServer(NewServer("", nil, WithStaticDir(dir)).Handler(t.Context()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	sm := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer("127.0.0.1:0", sm)
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	require.Eventually(t, func() bool { return s.Addr() != "" }, time.Second, 5*time.Millisecond)

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+s.Addr()+"/ws", nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()
	readMessage(t, conn)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
