// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wyrdmud/wyrd/internal/core"
	"github.com/wyrdmud/wyrd/internal/world"
	"github.com/wyrdmud/wyrd/pkg/errutil"
)

var tracer = otel.Tracer("wyrd/command")

// World is the part of the world graph commands act on.
type World interface {
	Move(id ulid.ULID, dir world.Direction) (world.MoveResult, error)
	PlayerRoom(id ulid.ULID) (world.RoomView, error)
	Player(id ulid.ULID) (world.Player, error)
}

// Dispatcher parses input lines and executes them against the world.
type Dispatcher struct {
	world        World
	exitCommands bool
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithExitCommands controls whether a line that matches an exit label of the
// current room is treated as movement. Enabled by default.
func WithExitCommands(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.exitCommands = enabled
	}
}

// NewDispatcher creates a command dispatcher for the given world.
func NewDispatcher(w World, opts ...DispatcherOption) (*Dispatcher, error) {
	if w == nil {
		return nil, ErrNilWorld
	}
	d := &Dispatcher{world: w, exitCommands: true}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch parses and executes one line. Client-facing failures become a
// single error-typed message for the actor with no broadcast.
func (d *Dispatcher) Dispatch(ctx context.Context, playerID ulid.ULID, line string) core.Result {
	res, err := d.Execute(ctx, playerID, Parse(line))
	if err == nil {
		return res
	}
	if !IsClientError(err) {
		errutil.LogErrorContext(ctx, slog.Default(), "command failed", err)
	}
	return core.Result{ToActor: core.ErrorMessage(PlayerMessage(err))}
}

// Execute runs an action for a player. The returned result is only
// meaningful when err is nil.
func (d *Dispatcher) Execute(ctx context.Context, playerID ulid.ULID, action Action) (res core.Result, err error) {
	rec := NewMetricsRecorder(action.Name())
	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.action", action.Name()),
			attribute.String("player.id", playerID.String()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		rec.Record(err)
	}()

	player, err := d.world.Player(playerID)
	if err != nil {
		return core.Result{}, ErrNotInWorld(err)
	}

	switch a := action.(type) {
	case Move:
		return d.move(ctx, player, a.Direction)
	case Look:
		view, err := d.world.PlayerRoom(playerID)
		if err != nil {
			return core.Result{}, ErrNotInWorld(err)
		}
		return core.Result{ToActor: RenderRoom(view, playerID)}, nil
	case Say:
		if a.Text == "" {
			return core.Result{}, ErrMissingArgument("say", "What do you want to say?")
		}
		return d.say(player, a.Text), nil
	case Emote:
		if a.Text == "" {
			return core.Result{}, ErrMissingArgument("emote", "What do you want to do?")
		}
		msg := core.EmoteMessage(player.Name, a.Text)
		return core.Result{
			ToActor:    msg,
			Broadcasts: []core.RoomBroadcast{{RoomID: player.RoomID, Message: msg, Exclude: playerID}},
		}, nil
	case Help:
		return core.Result{ToActor: core.ServerMessage(helpText)}, nil
	case Quit:
		return core.Result{ToActor: core.ServerMessage("Goodbye."), Quit: true}, nil
	case Unknown:
		return d.unknown(ctx, player, a)
	default:
		return core.Result{}, ErrUnknownCommand(action.Name())
	}
}

func (d *Dispatcher) move(ctx context.Context, player world.Player, dir world.Direction) (core.Result, error) {
	if dir == "" {
		return core.Result{}, ErrMissingArgument("go", "Where do you want to go?")
	}
	res, err := d.world.Move(player.ID, dir)
	if err != nil {
		return core.Result{}, err
	}
	slog.DebugContext(ctx, "player moved",
		"player_id", player.ID.String(),
		"from", res.From.ID,
		"to", res.To.ID,
		"direction", dir.String(),
	)
	return core.Result{
		ToActor: RenderRoom(res.To, player.ID),
		Broadcasts: []core.RoomBroadcast{
			{RoomID: res.From.ID, Message: core.EmoteMessage(player.Name, fmt.Sprintf("leaves %s.", dir)), Exclude: player.ID},
			{RoomID: res.To.ID, Message: core.ArriveMessage(player.Name), Exclude: player.ID},
		},
	}, nil
}

func (d *Dispatcher) say(player world.Player, text string) core.Result {
	toActor := core.SayMessage(player.Name, fmt.Sprintf("You say, %q", text))
	toRoom := core.SayMessage(player.Name, fmt.Sprintf("%s says, %q", player.Name, text))
	return core.Result{
		ToActor:    toActor,
		Broadcasts: []core.RoomBroadcast{{RoomID: player.RoomID, Message: toRoom, Exclude: player.ID}},
	}
}

// unknown treats a line naming an exit of the current room as movement and
// rejects everything else without touching the world.
func (d *Dispatcher) unknown(ctx context.Context, player world.Player, a Unknown) (core.Result, error) {
	if d.exitCommands && a.Original != "" {
		view, err := d.world.PlayerRoom(player.ID)
		if err == nil {
			if label := world.Normalize(a.Original); view.HasDirection(label) {
				return d.move(ctx, player, label)
			}
		}
	}
	return core.Result{}, ErrUnknownCommand(a.Verb)
}
