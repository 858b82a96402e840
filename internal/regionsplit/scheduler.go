// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package regionsplit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/world"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

// Scheduler defaults.
const (
	DefaultInterval  = 5 * time.Minute
	DefaultThreshold = 4
)

// Splitter runs one split.
type Splitter interface {
	Split(ctx context.Context, roomID string) (*Outcome, error)
}

// Crowding reports rooms with more than threshold connections, most crowded
// first.
type Crowding interface {
	Crowded(threshold int) []world.RoomLoad
}

// SchedulerConfig controls which rooms are split and how often.
type SchedulerConfig struct {
	Interval time.Duration
	// Threshold is the connection count a room must exceed to be split.
	Threshold int
	// Exclude holds glob patterns of room ids never split.
	Exclude []string
	// Cooldown is how long a room that failed to split is skipped.
	// Defaults to four intervals.
	Cooldown time.Duration
}

// Scheduler periodically splits the most crowded eligible room. Splits run
// one at a time.
type Scheduler struct {
	splitter Splitter
	rooms    Crowding
	cfg      SchedulerConfig
	excludes []glob.Glob
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	backoff map[string]time.Time
}

// NewScheduler creates a scheduler. Exclusion patterns are compiled up front.
func NewScheduler(s Splitter, rooms Crowding, cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 4 * cfg.Interval
	}
	sch := &Scheduler{
		splitter: s,
		rooms:    rooms,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
		backoff:  make(map[string]time.Time),
	}
	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, oops.With("pattern", pattern).Wrapf(err, "compile split exclusion")
		}
		sch.excludes = append(sch.excludes, g)
	}
	return sch, nil
}

// Run splits one room per interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	s.logger.InfoContext(ctx, "split scheduler started",
		"interval", s.cfg.Interval, "threshold", s.cfg.Threshold)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Next returns the room the next tick would split, or "" if none qualifies.
func (s *Scheduler) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, load := range s.rooms.Crowded(s.cfg.Threshold) {
		if s.excluded(load.RoomID) {
			continue
		}
		if until, ok := s.backoff[load.RoomID]; ok {
			if now.Before(until) {
				continue
			}
			delete(s.backoff, load.RoomID)
		}
		return load.RoomID
	}
	return ""
}

// Tick splits the next eligible room, if any, and returns its id.
func (s *Scheduler) Tick(ctx context.Context) string {
	roomID := s.Next()
	if roomID == "" {
		return ""
	}
	_, err := s.splitter.Split(ctx, roomID)
	switch {
	case err == nil:
	case IsStale(err):
	default:
		errutil.LogErrorContext(ctx, s.logger, "region split failed", err)
		s.mu.Lock()
		s.backoff[roomID] = s.now().Add(s.cfg.Cooldown)
		s.mu.Unlock()
	}
	return roomID
}

func (s *Scheduler) excluded(roomID string) bool {
	for _, g := range s.excludes {
		if g.Match(roomID) {
			return true
		}
	}
	return false
}
