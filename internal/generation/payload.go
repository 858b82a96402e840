// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/wyrdmud/wyrd/internal/schema"
)

// Stage names, used in errors, logs, and metrics.
const (
	StageLocations    = "propose_locations"
	StageInternal     = "internal_connections"
	StageDistribution = "distribute_connections"
)

// distributionPayload is the wire shape of a Distribution.
type distributionPayload struct {
	ConnectionAssignments map[string]string `json:"connection_assignments"`
}

var (
	locationsSchema = schema.New("generation-locations",
		"Proposed Locations",
		"Rooms proposed to replace an overcrowded room",
		func() any { return &LocationProposal{} })
	internalSchema = schema.New("generation-internal-connections",
		"Internal Connections",
		"Adjacency among newly proposed rooms",
		func() any { return &InternalConnections{} })
	distributionSchema = schema.New("generation-distribution",
		"Connection Distribution",
		"Assignment of each original connection to one new room",
		func() any { return &distributionPayload{} })
)

// Schemas returns the validators for every generation response payload.
func Schemas() []*schema.Validator {
	return []*schema.Validator{locationsSchema, internalSchema, distributionSchema}
}

func invalid(stage string, err error) error {
	return oops.With("stage", stage).Wrapf(fmt.Errorf("%w: %w", ErrInvalidPayload, err), "%s response", stage)
}

// DecodeLocations validates and decodes a ProposeLocations response.
func DecodeLocations(data []byte) (LocationProposal, error) {
	var out LocationProposal
	if err := locationsSchema.ValidateJSON(data); err != nil {
		return out, invalid(StageLocations, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, invalid(StageLocations, err)
	}
	return out, nil
}

// DecodeInternalConnections validates and decodes a ProposeInternalConnections response.
func DecodeInternalConnections(data []byte) (InternalConnections, error) {
	var out InternalConnections
	if err := internalSchema.ValidateJSON(data); err != nil {
		return out, invalid(StageInternal, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, invalid(StageInternal, err)
	}
	return out, nil
}

// DecodeDistribution validates and decodes a DistributeConnections response.
// The assignment object is read token by token so that a connection assigned
// twice is preserved rather than silently collapsed.
func DecodeDistribution(data []byte) (Distribution, error) {
	var out Distribution
	if err := distributionSchema.ValidateJSON(data); err != nil {
		return out, invalid(StageDistribution, err)
	}
	assignments, err := readAssignments(data)
	if err != nil {
		return out, invalid(StageDistribution, err)
	}
	out.Assignments = assignments
	return out, nil
}

func readAssignments(data []byte) ([]Assignment, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var out []Assignment
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if key != "connection_assignments" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			conn, err := dec.Token()
			if err != nil {
				return nil, err
			}
			var room string
			if err := dec.Decode(&room); err != nil {
				return nil, err
			}
			out = append(out, Assignment{ConnectionID: conn.(string), RoomID: room})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// ExtractJSON pulls the JSON object out of a model reply, tolerating code
// fences and surrounding prose.
func ExtractJSON(content string) []byte {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return []byte(strings.TrimSpace(s))
}
