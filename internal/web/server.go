// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package web provides the websocket gateway. Each text frame from the
// client is one input line; each notification is sent as one JSON object.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/core"
)

// Transport is the session transport label for websocket connections.
const Transport = "websocket"

const (
	writeWait       = 10 * time.Second
	maxMessageBytes = 4096
	shutdownTimeout = 5 * time.Second
)

// SessionOpener starts sessions for new connections.
type SessionOpener interface {
	Open(ctx context.Context, transport string) *core.Session
	Close(s *core.Session)
}

// Server serves the websocket endpoint at /ws and, optionally, a static
// client from a directory at /.
type Server struct {
	addr      string
	sessions  SessionOpener
	staticDir string
	upgrader  websocket.Upgrader

	mu       sync.RWMutex
	listener net.Listener
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithStaticDir serves files from dir at the root path.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// NewServer creates a new websocket server.
func NewServer(addr string, sessions SessionOpener, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the HTTP routes served by the gateway.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		s.serveWS(ctx, w, r)
	})
	if s.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

// Run listens and serves until ctx is cancelled. It returns after every
// connection has finished.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return oops.With("addr", s.addr).Wrapf(err, "web listen")
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.InfoContext(ctx, "web server started", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return oops.Wrapf(err, "web serve")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Hijacked websocket connections are not tracked by Shutdown.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("web server shutdown", "error", err)
		}
	}
	s.wg.Wait()
	return nil
}

func (s *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.DebugContext(r.Context(), "websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	newConnection(conn, s.sessions).serve(ctx)
}
