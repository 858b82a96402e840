// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package generationtest provides a scripted generation.Service for tests.
package generationtest

import (
	"context"
	"sync"

	"github.com/wyrdmud/wyrd/internal/generation"
)

// Fake answers generation calls from scripted responses. Internal
// connection responses are consumed in order, one per call; the last one
// repeats once the script runs out.
type Fake struct {
	Locations    generation.LocationProposal
	LocationsErr error

	Internal    []generation.InternalConnections
	InternalErr error

	Distribution    generation.Distribution
	DistributionErr error

	// Block, when set, makes every call wait until ctx is done.
	Block bool

	mu           sync.Mutex
	calls        map[string]int
	lastConns    []generation.ExternalConnection
	lastLocation generation.RoomContext
}

var _ generation.Service = (*Fake)(nil)

func (f *Fake) record(stage string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[stage]++
	return f.calls[stage]
}

func (f *Fake) wait(ctx context.Context) error {
	if !f.Block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

// Calls returns how many times the given stage was invoked.
func (f *Fake) Calls(stage string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[stage]
}

// LastConnections returns the connections passed to the last distribution call.
func (f *Fake) LastConnections() []generation.ExternalConnection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]generation.ExternalConnection(nil), f.lastConns...)
}

// LastTarget returns the room context passed to the last location call.
func (f *Fake) LastTarget() generation.RoomContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLocation
}

// ProposeLocations implements generation.Service.
func (f *Fake) ProposeLocations(ctx context.Context, target generation.RoomContext) (generation.LocationProposal, error) {
	f.record(generation.StageLocations)
	f.mu.Lock()
	f.lastLocation = target
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return generation.LocationProposal{}, err
	}
	return f.Locations, f.LocationsErr
}

// ProposeInternalConnections implements generation.Service.
func (f *Fake) ProposeInternalConnections(ctx context.Context, _ []generation.Location, _ generation.RoomContext) (generation.InternalConnections, error) {
	n := f.record(generation.StageInternal)
	if err := f.wait(ctx); err != nil {
		return generation.InternalConnections{}, err
	}
	if f.InternalErr != nil {
		return generation.InternalConnections{}, f.InternalErr
	}
	if len(f.Internal) == 0 {
		return generation.InternalConnections{}, nil
	}
	if n > len(f.Internal) {
		n = len(f.Internal)
	}
	return f.Internal[n-1], nil
}

// DistributeConnections implements generation.Service.
func (f *Fake) DistributeConnections(ctx context.Context, _ []generation.Location, conns []generation.ExternalConnection) (generation.Distribution, error) {
	f.record(generation.StageDistribution)
	f.mu.Lock()
	f.lastConns = append([]generation.ExternalConnection(nil), conns...)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return generation.Distribution{}, err
	}
	return f.Distribution, f.DistributionErr
}
