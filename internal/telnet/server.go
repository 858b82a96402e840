// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package telnet provides the line-oriented telnet gateway. Notifications are
// rendered as ANSI-colored text.
package telnet

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/core"
)

// Transport is the session transport label for telnet connections.
const Transport = "telnet"

// SessionOpener starts sessions for new connections.
type SessionOpener interface {
	Open(ctx context.Context, transport string) *core.Session
	Close(s *core.Session)
}

// Server is a telnet server.
type Server struct {
	addr     string
	sessions SessionOpener
	color    bool

	mu       sync.RWMutex
	listener net.Listener
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithColor enables or disables ANSI colors. Enabled by default.
func WithColor(enabled bool) Option {
	return func(s *Server) { s.color = enabled }
}

// NewServer creates a new telnet server.
func NewServer(addr string, sessions SessionOpener, opts ...Option) *Server {
	s := &Server{addr: addr, sessions: sessions, color: true}
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

// Run listens and serves connections until ctx is cancelled. It returns
// after every connection handler has finished.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return oops.With("addr", s.addr).Wrapf(err, "telnet listen")
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	slog.InfoContext(ctx, "telnet server started", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			slog.Debug("error closing listener", "error", err)
		}
	}()
	defer s.wg.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				slog.ErrorContext(ctx, "accept failed", "error", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
		}
		handler := NewConnectionHandler(conn, s.sessions, s.color)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			handler.Handle(ctx)
		}()
	}
}
