// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wyrdmud/wyrd/internal/auth"
	"github.com/wyrdmud/wyrd/internal/command"
	"github.com/wyrdmud/wyrd/internal/config"
	"github.com/wyrdmud/wyrd/internal/core"
	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/observability"
	"github.com/wyrdmud/wyrd/internal/regionsplit"
	"github.com/wyrdmud/wyrd/internal/telnet"
	"github.com/wyrdmud/wyrd/internal/web"
	"github.com/wyrdmud/wyrd/internal/world"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the world server",
		Long: `Run the world server: the telnet and websocket gateways, the region
split scheduler, and the metrics/health endpoint.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, nil)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// runServe runs the server until ctx is cancelled or a component fails.
func runServe(ctx context.Context, cfg *config.Config, deps *Deps) error {
	a, err := newApp(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer a.close()
	return a.run(ctx)
}

// app holds the wired server components.
type app struct {
	cfg       *config.Config
	deps      *Deps
	backend   *Backend
	worlds    world.SnapshotStore
	graph     *world.Graph
	sessions  *core.SessionManager
	scheduler *regionsplit.Scheduler
	telnet    *telnet.Server
	web       *web.Server
	obs       *observability.Server
	ready     atomic.Bool
}

func newApp(ctx context.Context, cfg *config.Config, deps *Deps) (*app, error) {
	deps = deps.withDefaults()
	a := &app{cfg: cfg, deps: deps}

	backend, err := deps.BackendOpener(ctx, cfg)
	if err != nil {
		return nil, oops.Wrapf(err, "open storage")
	}
	a.backend = backend
	a.worlds = observedStore{backend.Worlds}

	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	graph, err := loadWorld(ctx, a.worlds)
	if err != nil {
		return err
	}
	a.graph = graph

	dispatcher, err := command.NewDispatcher(graph)
	if err != nil {
		return err
	}
	accounts, err := auth.NewService(a.backend.Accounts, a.deps.Hasher)
	if err != nil {
		return err
	}
	a.sessions = core.NewSessionManager(graph, dispatcher, accounts)

	if a.cfg.Split.Enabled {
		gen, err := a.deps.GeneratorFactory(a.cfg.GenerationClient())
		if err != nil {
			return oops.Wrapf(err, "create generation client")
		}
		pipeline, err := regionsplit.New(graph, gen,
			regionsplit.WithConfig(a.cfg.Pipeline()),
			regionsplit.WithNotifier(a.sessions),
			regionsplit.WithStore(a.worlds),
		)
		if err != nil {
			return err
		}
		a.scheduler, err = regionsplit.NewScheduler(pipeline, graph, a.cfg.Scheduler())
		if err != nil {
			return err
		}
	}

	if a.cfg.Telnet.Addr != "" {
		a.telnet = telnet.NewServer(a.cfg.Telnet.Addr, a.sessions, telnet.WithColor(a.cfg.Telnet.Color))
	}
	if a.cfg.Web.Addr != "" {
		var opts []web.Option
		if a.cfg.Web.StaticDir != "" {
			opts = append(opts, web.WithStaticDir(a.cfg.Web.StaticDir))
		}
		a.web = web.NewServer(a.cfg.Web.Addr, a.sessions, opts...)
	}
	if a.cfg.Metrics.Addr != "" {
		a.obs = a.deps.ObservabilityServerFactory(a.cfg.Metrics.Addr, a.ready.Load)
		reg := a.obs.Registerer()
		core.RegisterMetrics(reg)
		command.RegisterMetrics(reg)
		regionsplit.RegisterMetrics(reg)
		generation.RegisterMetrics(reg)
		a.obs.TrackWorld(a.graph)
	}
	return nil
}

// loadWorld restores the stored world, falling back to the starter world
// when nothing has been stored yet.
func loadWorld(ctx context.Context, worlds world.SnapshotStore) (*world.Graph, error) {
	snap, err := worlds.Load(ctx)
	switch {
	case errors.Is(err, world.ErrNotFound):
		slog.InfoContext(ctx, "no stored world, using the starter world")
		starter := world.DefaultSnapshot()
		snap = &starter
	case err != nil:
		return nil, oops.Wrapf(err, "load world")
	}
	graph, err := world.Load(snap.WithoutPlayers())
	if err != nil {
		return nil, oops.Wrapf(err, "load world")
	}
	slog.InfoContext(ctx, "world loaded", "rooms", graph.RoomCount(), "spawn", graph.Spawn())
	return graph, nil
}

func (a *app) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.obs != nil {
		obsErr, err := a.obs.Start()
		if err != nil {
			return oops.Wrapf(err, "start observability server")
		}
		g.Go(func() error {
			select {
			case err := <-obsErr:
				if err != nil {
					return oops.Wrapf(err, "observability server")
				}
			case <-gctx.Done():
			}
			return nil
		})
	}
	if a.telnet != nil {
		g.Go(func() error { return a.telnet.Run(gctx) })
	}
	if a.web != nil {
		g.Go(func() error { return a.web.Run(gctx) })
	}
	if a.scheduler != nil {
		g.Go(func() error { return a.scheduler.Run(gctx) })
	}

	a.ready.Store(true)
	slog.InfoContext(ctx, "server ready",
		"telnet_addr", a.cfg.Telnet.Addr,
		"web_addr", a.cfg.Web.Addr,
		"split_enabled", a.cfg.Split.Enabled,
	)

	runErr := g.Wait()
	a.ready.Store(false)
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.sessions.Shutdown(shutdownCtx); err != nil {
		slog.Warn("sessions did not finish", "error", err)
	}
	snap := a.graph.Snapshot()
	if err := a.worlds.Save(shutdownCtx, &snap); err != nil {
		errutil.LogErrorContext(shutdownCtx, slog.Default(), "save world at shutdown", err)
		runErr = errors.Join(runErr, err)
	}
	if a.obs != nil {
		if err := a.obs.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return runErr
}

func (a *app) close() {
	if a.backend != nil && a.backend.Close != nil {
		a.backend.Close()
	}
}
