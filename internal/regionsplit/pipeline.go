// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package regionsplit replaces an overcrowded room with a handful of smaller
// rooms proposed by the generation service.
//
// A run reads a snapshot of the target, drives three generation stages with
// the world unlocked, validates each stage output, and then applies the whole
// result with a single world.Graph.MutateRegion call. Until that call
// succeeds the world is untouched. If the target changed after the snapshot
// was taken the run ends as a stale no-op and may be retried later.
package regionsplit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/world"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

var tracer = otel.Tracer("wyrd/regionsplit")

// Stage names used in errors and metrics, beyond the generation stages.
const (
	StageSnapshot = "snapshot"
	StageApply    = "apply"
)

// Defaults for Config fields left at zero.
const (
	DefaultCallTimeout         = 60 * time.Second
	DefaultMaxInternalAttempts = 3
	DefaultRetryDelay          = 500 * time.Millisecond
)

// World is the part of the world graph a split needs.
type World interface {
	RoomSnapshot(roomID string) (world.RegionSnapshot, error)
	HasRoom(id string) bool
	MutateRegion(m world.RegionMutation) (world.RegionResult, error)
	Snapshot() world.Snapshot
}

// Notifier tells relocated players where they ended up.
type Notifier interface {
	NotifyRelocated(ctx context.Context, players []ulid.ULID, roomID string)
}

// Config bounds a split run.
type Config struct {
	// CallTimeout bounds each generation call.
	CallTimeout time.Duration
	// MaxInternalAttempts is how many internal-connection proposals are
	// requested before giving up.
	MaxInternalAttempts int
	// RetryDelay is the pause between internal-connection attempts.
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.MaxInternalAttempts <= 0 {
		c.MaxInternalAttempts = DefaultMaxInternalAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// Outcome describes a split run.
type Outcome struct {
	RoomID string
	State  State
	// Plan is set once every stage has been validated.
	Plan *Plan
	// Result is set when the split committed.
	Result world.RegionResult
	// InternalAttempts counts internal-connection proposals requested.
	InternalAttempts int
}

// Pipeline runs region splits. It holds no per-run state, so one Pipeline
// may serve concurrent runs.
type Pipeline struct {
	world    World
	gen      generation.Service
	notifier Notifier
	store    world.SnapshotStore
	cfg      Config
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig sets the run bounds.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) {
		p.cfg = cfg.withDefaults()
	}
}

// WithNotifier sets who is told about relocated players.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

// WithStore persists the world after every committed split.
func WithStore(s world.SnapshotStore) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New creates a split pipeline.
func New(w World, gen generation.Service, opts ...Option) (*Pipeline, error) {
	if w == nil {
		return nil, oops.Errorf("world is required")
	}
	if gen == nil {
		return nil, oops.Errorf("generation service is required")
	}
	p := &Pipeline{
		world:  w,
		gen:    gen,
		cfg:    Config{}.withDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Split replaces roomID with newly generated rooms. On any error the world is
// unchanged. A stale target returns an error satisfying IsStale; callers
// treat it as a no-op.
func (p *Pipeline) Split(ctx context.Context, roomID string) (out *Outcome, err error) {
	ctx, span := tracer.Start(ctx, "regionsplit.split",
		trace.WithAttributes(attribute.String("room.id", roomID)))
	out = &Outcome{RoomID: roomID, State: Idle}
	defer func() {
		Splits.WithLabelValues(OutcomeFor(err)).Inc()
		if err != nil {
			out.State = Aborted
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.SetAttributes(attribute.String("split.state", out.State.String()))
		span.End()
	}()

	snap, err := p.world.RoomSnapshot(roomID)
	if err != nil {
		return out, oops.With("stage", StageSnapshot).Wrap(err)
	}
	rc := roomContext(snap)

	out.State = Proposing
	span.AddEvent(Proposing.String())
	rooms, err := p.propose(ctx, rc)
	if err != nil {
		return out, err
	}

	out.State = ConnectingInternal
	span.AddEvent(ConnectingInternal.String())
	edges, attempts, err := p.connectInternal(ctx, rc, rooms)
	out.InternalAttempts = attempts
	if err != nil {
		return out, err
	}

	out.State = Distributing
	span.AddEvent(Distributing.String())
	conns := collectConnections(snap)
	assigned, err := p.distribute(ctx, snap, rooms, conns)
	if err != nil {
		return out, err
	}

	out.State = Validated
	out.Plan = buildPlan(snap, rooms, edges, conns, assigned)

	out.State = Applying
	span.AddEvent(Applying.String())
	start := time.Now()
	res, err := p.world.MutateRegion(out.Plan.Mutation())
	observeStage(StageApply, start)
	if err != nil {
		if IsStale(err) {
			p.logger.InfoContext(ctx, "region split skipped, target changed",
				"room_id", roomID, "error", err)
		}
		return out, err
	}
	out.State = Committed
	out.Result = res

	p.logger.InfoContext(ctx, "region split committed",
		"room_id", roomID,
		"new_rooms", out.Plan.RoomIDs(),
		"relocated", len(res.Relocated),
		"version", res.Version,
	)
	if p.notifier != nil && len(res.Relocated) > 0 {
		p.notifier.NotifyRelocated(ctx, res.Relocated, res.RelocateTo)
	}
	p.persist(ctx)
	return out, nil
}

// call runs one generation call bounded by CallTimeout.
func call[T any](ctx context.Context, p *Pipeline, stage string, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	defer cancel()
	start := time.Now()
	v, err := fn(callCtx)
	observeStage(stage, start)
	return v, err
}

// classify maps a generation call failure to a split error. Malformed
// payloads are stage output failures; everything else, timeouts included,
// is a service failure.
func classify(stage, roomID string, err error) error {
	if errors.Is(err, generation.ErrInvalidPayload) {
		return errValidationCause(stage, roomID, err)
	}
	return errGeneration(stage, roomID, err)
}

func (p *Pipeline) propose(ctx context.Context, rc generation.RoomContext) ([]generation.Location, error) {
	proposal, err := call(ctx, p, generation.StageLocations, func(ctx context.Context) (generation.LocationProposal, error) {
		return p.gen.ProposeLocations(ctx, rc)
	})
	if err != nil {
		return nil, classify(generation.StageLocations, rc.ID, err)
	}
	if err := checkProposal(proposal.NewLocations, p.world.HasRoom); err != nil {
		return nil, errValidationCause(generation.StageLocations, rc.ID, err)
	}
	return proposal.NewLocations, nil
}

// connectInternal returns the internal edges among rooms. Two rooms are
// joined directly; otherwise proposals are requested until one validates or
// MaxInternalAttempts is reached.
func (p *Pipeline) connectInternal(ctx context.Context, rc generation.RoomContext, rooms []generation.Location) ([]edge, int, error) {
	if len(rooms) == MinRooms {
		return twoRoomEdges(), 0, nil
	}

	var (
		edges    []edge
		attempts int
		lastErr  error
	)
	backoff := retry.WithMaxRetries(uint64(p.cfg.MaxInternalAttempts-1), retry.NewConstant(p.cfg.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		ic, err := call(ctx, p, generation.StageInternal, func(ctx context.Context) (generation.InternalConnections, error) {
			return p.gen.ProposeInternalConnections(ctx, rooms, rc)
		})
		if err != nil {
			lastErr = classify(generation.StageInternal, rc.ID, err)
			if IsValidationError(lastErr) {
				return retry.RetryableError(lastErr)
			}
			return lastErr
		}
		got, err := internalEdges(rooms, ic)
		if err != nil {
			lastErr = errValidationCause(generation.StageInternal, rc.ID, err)
			p.logger.DebugContext(ctx, "internal connections rejected",
				"room_id", rc.ID, "attempt", attempts, "error", err)
			return retry.RetryableError(lastErr)
		}
		edges = got
		return nil
	})
	InternalAttempts.Observe(float64(attempts))
	if err != nil {
		if ctx.Err() != nil {
			return nil, attempts, errGeneration(generation.StageInternal, rc.ID, ctx.Err())
		}
		if lastErr != nil {
			return nil, attempts, lastErr
		}
		return nil, attempts, errGeneration(generation.StageInternal, rc.ID, err)
	}
	return edges, attempts, nil
}

// distribute assigns every external connection to one new room. A target
// with no external connections needs no call.
func (p *Pipeline) distribute(ctx context.Context, snap world.RegionSnapshot, rooms []generation.Location, conns []connection) (map[string]string, error) {
	roomID := snap.Room.ID
	if len(conns) == 0 {
		return map[string]string{}, nil
	}
	dist, err := call(ctx, p, generation.StageDistribution, func(ctx context.Context) (generation.Distribution, error) {
		return p.gen.DistributeConnections(ctx, rooms, externalConnections(snap, conns))
	})
	if err != nil {
		return nil, classify(generation.StageDistribution, roomID, err)
	}
	assigned, err := checkDistribution(rooms, conns, dist)
	if err != nil {
		return nil, errValidationCause(generation.StageDistribution, roomID, err)
	}
	return assigned, nil
}

// persist saves the world after a commit. Failures are logged; the commit
// stands.
func (p *Pipeline) persist(ctx context.Context) {
	if p.store == nil {
		return
	}
	snap := p.world.Snapshot()
	if err := p.store.Save(ctx, &snap); err != nil {
		errutil.LogErrorContext(ctx, p.logger, "persist world after split", err)
	}
}
