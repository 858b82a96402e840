// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package generation defines the contract with the external content
// generation service used by region splits, and an OpenAI-compatible
// client implementing it.
//
// Responses are untrusted. Every payload is checked against a JSON Schema
// before it is decoded; shape failures wrap ErrInvalidPayload, and transport
// failures or timeouts wrap ErrUnavailable.
package generation

import (
	"context"
	"errors"
)

var (
	// ErrInvalidPayload indicates a response that does not have the expected shape.
	ErrInvalidPayload = errors.New("invalid generation payload")
	// ErrUnavailable indicates the service could not produce a response.
	ErrUnavailable = errors.New("generation service unavailable")
)

// Location is a proposed new room.
type Location struct {
	ID          string `json:"id" jsonschema:"minLength=1,description=Short kebab-case identifier"`
	Title       string `json:"title" jsonschema:"minLength=1"`
	Description string `json:"description"`
}

// Neighbour is a room adjacent to the one being split, given for flavor.
type Neighbour struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// RoomContext describes the room being split.
type RoomContext struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Connections []string    `json:"connections"`
	Neighbours  []Neighbour `json:"neighbours"`
	Occupants   int         `json:"occupants"`
}

// ExternalConnection is one connection of the original room to the rest of
// the world, annotated with its remote endpoint.
type ExternalConnection struct {
	ID                string `json:"id"`
	Label             string `json:"label"`
	RemoteID          string `json:"remote_id"`
	RemoteTitle       string `json:"remote_title"`
	RemoteDescription string `json:"remote_description,omitempty"`
	// Incoming is set for an exit of the remote room with no matching exit
	// back out of the original room.
	Incoming bool `json:"incoming,omitempty"`
}

// LocationProposal is the ProposeLocations response.
type LocationProposal struct {
	NewLocations []Location `json:"new_locations"`
}

// InternalConnections is the ProposeInternalConnections response: for each
// new room, the new rooms it connects to.
type InternalConnections struct {
	InternalConnections map[string][]string `json:"internal_connections"`
}

// Assignment maps one original connection to one new room.
type Assignment struct {
	ConnectionID string
	RoomID       string
}

// Distribution is the DistributeConnections response. Assignments keep the
// order and any duplicates of the raw response so they can be rejected.
type Distribution struct {
	Assignments []Assignment
}

// Service is the generation service contract.
type Service interface {
	// ProposeLocations proposes the rooms that replace target.
	ProposeLocations(ctx context.Context, target RoomContext) (LocationProposal, error)
	// ProposeInternalConnections proposes how the new rooms connect to each other.
	ProposeInternalConnections(ctx context.Context, rooms []Location, target RoomContext) (InternalConnections, error)
	// DistributeConnections assigns each original connection to one new room.
	DistributeConnections(ctx context.Context, rooms []Location, conns []ExternalConnection) (Distribution, error)
}
