// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package regionsplit

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wyrdmud/wyrd/internal/generation"
	"github.com/wyrdmud/wyrd/internal/world"
)

// Room count bounds for a proposal.
const (
	MinRooms = 2
	MaxRooms = 5
)

// incomingPrefix marks connection ids of exits that lead into the target
// without a matching exit back out of it.
const incomingPrefix = "from:"

// connection is one link between the target and the rest of the world: an
// exit of the target, the remote exit leading back, or both.
type connection struct {
	ID     string
	Remote string

	Out       world.Direction
	OutOneWay bool

	Back       world.Direction
	BackOneWay bool
}

// collectConnections lists the target's external connections. Outgoing exits
// are keyed by label. Remote exits back into the target are paired with an
// outgoing exit, inverse labels first; the rest are keyed
// "from:<room>:<label>". Exits from the target to itself are dropped.
func collectConnections(snap world.RegionSnapshot) []connection {
	target := snap.Room.ID
	byRemote := make(map[string][]world.IncomingExit)
	for _, in := range snap.Incoming {
		byRemote[in.From] = append(byRemote[in.From], in)
	}
	claimed := make(map[string]map[world.Direction]bool)
	claim := func(in world.IncomingExit) {
		if claimed[in.From] == nil {
			claimed[in.From] = make(map[world.Direction]bool)
		}
		claimed[in.From][in.Direction] = true
	}

	labels := slices.Sorted(maps.Keys(snap.Exits))
	var conns []connection
	for _, dir := range labels {
		exit := snap.Exits[dir]
		if exit.To == target {
			continue
		}
		conns = append(conns, connection{ID: string(dir), Remote: exit.To, Out: dir, OutOneWay: exit.OneWay})
	}

	pair := func(c *connection, in world.IncomingExit) {
		c.Back = in.Direction
		c.BackOneWay = in.OneWay
		claim(in)
	}
	// Exact inverses first so a loose pairing never steals a reciprocal.
	for i := range conns {
		inv, ok := conns[i].Out.Inverse()
		if !ok {
			continue
		}
		for _, in := range byRemote[conns[i].Remote] {
			if in.Direction == inv && !claimed[in.From][in.Direction] {
				pair(&conns[i], in)
				break
			}
		}
	}
	for i := range conns {
		if conns[i].Back != "" {
			continue
		}
		for _, in := range byRemote[conns[i].Remote] {
			if !claimed[in.From][in.Direction] {
				pair(&conns[i], in)
				break
			}
		}
	}

	for _, in := range snap.Incoming {
		if claimed[in.From][in.Direction] {
			continue
		}
		conns = append(conns, connection{
			ID:         incomingPrefix + in.From + ":" + string(in.Direction),
			Remote:     in.From,
			Back:       in.Direction,
			BackOneWay: in.OneWay,
		})
	}
	return conns
}

// roomContext builds the generation input describing the target.
func roomContext(snap world.RegionSnapshot) generation.RoomContext {
	rc := generation.RoomContext{
		ID:          snap.Room.ID,
		Title:       snap.Room.Title,
		Description: snap.Room.Description,
		Connections: []string{},
		Neighbours:  []generation.Neighbour{},
		Occupants:   snap.Occupants,
	}
	for _, dir := range slices.Sorted(maps.Keys(snap.Exits)) {
		rc.Connections = append(rc.Connections, string(dir))
	}
	for _, id := range slices.Sorted(maps.Keys(snap.Neighbours)) {
		n := snap.Neighbours[id]
		rc.Neighbours = append(rc.Neighbours, generation.Neighbour{ID: n.ID, Title: n.Title, Description: n.Description})
	}
	return rc
}

// externalConnections annotates connections with their remote endpoints for
// the distribution stage.
func externalConnections(snap world.RegionSnapshot, conns []connection) []generation.ExternalConnection {
	out := make([]generation.ExternalConnection, 0, len(conns))
	for _, c := range conns {
		ec := generation.ExternalConnection{
			ID:       c.ID,
			Label:    string(c.Out),
			RemoteID: c.Remote,
		}
		if c.Out == "" {
			ec.Label = string(c.Back)
			ec.Incoming = true
		}
		if n, ok := snap.Neighbours[c.Remote]; ok {
			ec.RemoteTitle = n.Title
			ec.RemoteDescription = n.Description
		}
		out = append(out, ec)
	}
	return out
}

// checkProposal validates the proposed rooms. exists reports whether a room
// id is already taken in the world.
func checkProposal(rooms []generation.Location, exists func(string) bool) error {
	if len(rooms) < MinRooms || len(rooms) > MaxRooms {
		return fmt.Errorf("proposed %d rooms, want between %d and %d", len(rooms), MinRooms, MaxRooms)
	}
	seen := make(map[string]bool, len(rooms))
	for i, r := range rooms {
		if err := world.ValidateRoomID(r.ID); err != nil {
			return fmt.Errorf("room %d id %q: %w", i, r.ID, err)
		}
		if seen[r.ID] {
			return fmt.Errorf("room id %q proposed twice", r.ID)
		}
		seen[r.ID] = true
		if exists(r.ID) {
			return fmt.Errorf("room id %q already exists", r.ID)
		}
		if err := world.ValidateTitle(r.Title); err != nil {
			return fmt.Errorf("room %q: %w", r.ID, err)
		}
		if err := world.ValidateDescription(r.Description); err != nil {
			return fmt.Errorf("room %q: %w", r.ID, err)
		}
	}
	return nil
}

// edge is an undirected internal connection between two proposed rooms,
// by proposal index with A < B.
type edge struct {
	A, B int
}

// twoRoomEdges is the internal graph used when exactly two rooms were
// proposed.
func twoRoomEdges() []edge {
	return []edge{{A: 0, B: 1}}
}

// internalEdges validates a proposed adjacency and returns it as a sorted,
// symmetric edge set. Every room must have an edge and the rooms must form
// one connected component.
func internalEdges(rooms []generation.Location, ic generation.InternalConnections) ([]edge, error) {
	index := make(map[string]int, len(rooms))
	for i, r := range rooms {
		index[r.ID] = i
	}
	set := make(map[edge]bool)
	for _, from := range slices.Sorted(maps.Keys(ic.InternalConnections)) {
		i, ok := index[from]
		if !ok {
			return nil, fmt.Errorf("unknown room %q", from)
		}
		for _, to := range ic.InternalConnections[from] {
			j, ok := index[to]
			if !ok {
				return nil, fmt.Errorf("room %q connects to unknown room %q", from, to)
			}
			if i == j {
				return nil, fmt.Errorf("room %q connects to itself", from)
			}
			set[edge{A: min(i, j), B: max(i, j)}] = true
		}
	}

	adj := make([][]int, len(rooms))
	for e := range set {
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}
	for i, r := range rooms {
		if len(adj[i]) == 0 {
			return nil, fmt.Errorf("room %q is isolated", r.ID)
		}
	}
	seen := make([]bool, len(rooms))
	seen[0] = true
	stack := []int{0}
	reached := 1
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range adj[n] {
			if !seen[m] {
				seen[m] = true
				reached++
				stack = append(stack, m)
			}
		}
	}
	if reached != len(rooms) {
		return nil, fmt.Errorf("internal connections split the rooms into disconnected groups")
	}

	edges := slices.Collect(maps.Keys(set))
	slices.SortFunc(edges, func(x, y edge) int {
		if x.A != y.A {
			return x.A - y.A
		}
		return x.B - y.B
	})
	return edges, nil
}

// checkDistribution validates the assignment of connections to new rooms and
// returns it keyed by connection id. The assignment must be total over conns,
// name each connection once, and only target proposed rooms.
func checkDistribution(rooms []generation.Location, conns []connection, dist generation.Distribution) (map[string]string, error) {
	inSet := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		inSet[r.ID] = true
	}
	known := make(map[string]bool, len(conns))
	for _, c := range conns {
		known[c.ID] = true
	}
	out := make(map[string]string, len(conns))
	for _, a := range dist.Assignments {
		if !known[a.ConnectionID] {
			return nil, fmt.Errorf("unknown connection %q", a.ConnectionID)
		}
		if prev, dup := out[a.ConnectionID]; dup {
			return nil, fmt.Errorf("connection %q assigned twice (%q and %q)", a.ConnectionID, prev, a.RoomID)
		}
		if !inSet[a.RoomID] {
			return nil, fmt.Errorf("connection %q assigned to unknown room %q", a.ConnectionID, a.RoomID)
		}
		out[a.ConnectionID] = a.RoomID
	}
	var missing []string
	for _, c := range conns {
		if _, ok := out[c.ID]; !ok {
			missing = append(missing, c.ID)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("connections not assigned: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Plan is a validated split, ready to apply.
type Plan struct {
	Target string
	Rooms  []generation.Location
	// Assignments maps each external connection id to its new room.
	Assignments map[string]string
	Internal    []world.Link
	External    []world.Link
	RelocateTo  string

	expected map[world.Direction]world.Exit
}

// RoomIDs returns the new room ids in proposal order.
func (p *Plan) RoomIDs() []string {
	ids := make([]string, len(p.Rooms))
	for i, r := range p.Rooms {
		ids[i] = r.ID
	}
	return ids
}

// Mutation returns the world mutation that applies the plan.
func (p *Plan) Mutation() world.RegionMutation {
	m := world.RegionMutation{
		Remove:        []string{p.Target},
		ExpectedExits: map[string]map[world.Direction]world.Exit{p.Target: p.expected},
		RelocateTo:    p.RelocateTo,
	}
	for _, r := range p.Rooms {
		m.Add = append(m.Add, world.NewRoom{ID: r.ID, Title: r.Title, Description: r.Description})
	}
	m.Links = append(m.Links, p.External...)
	m.Links = append(m.Links, p.Internal...)
	return m
}

// buildPlan rewires every external connection onto its assigned room, keeping
// labels on both ends, then labels the internal edges around them.
func buildPlan(snap world.RegionSnapshot, rooms []generation.Location, edges []edge, conns []connection, assigned map[string]string) *Plan {
	p := &Plan{
		Target:      snap.Room.ID,
		Rooms:       rooms,
		Assignments: assigned,
		RelocateTo:  rooms[0].ID,
		expected:    maps.Clone(snap.Exits),
	}

	taken := make(map[string]map[world.Direction]bool, len(rooms))
	for _, r := range rooms {
		taken[r.ID] = make(map[world.Direction]bool)
	}
	for _, c := range conns {
		room := assigned[c.ID]
		if c.Out != "" {
			p.External = append(p.External, world.Link{From: room, Direction: c.Out, To: c.Remote, OneWay: c.OutOneWay})
			taken[room][c.Out] = true
		}
		if c.Back != "" {
			p.External = append(p.External, world.Link{From: c.Remote, Direction: c.Back, To: room, OneWay: c.BackOneWay})
		}
	}
	settleReturns(p.External)

	for _, e := range edges {
		a, b := rooms[e.A], rooms[e.B]
		there, back := internalLabels(taken[a.ID], taken[b.ID], a.Title, b.Title)
		taken[a.ID][there] = true
		taken[b.ID][back] = true
		p.Internal = append(p.Internal,
			world.Link{From: a.ID, Direction: there, To: b.ID},
			world.Link{From: b.ID, Direction: back, To: a.ID},
		)
	}
	return p
}

// settleReturns marks a two-way link with a free-form label as one-way when
// the split left no exit in the other direction between the same two rooms.
// Standard labels always travel with their reciprocal and need no change.
func settleReturns(links []world.Link) {
	pairs := make(map[[2]string]bool, len(links))
	for _, l := range links {
		pairs[[2]string{l.From, l.To}] = true
	}
	for i, l := range links {
		if l.OneWay || l.Direction.IsStandard() {
			continue
		}
		if !pairs[[2]string{l.To, l.From}] {
			links[i].OneWay = true
		}
	}
}

// internalLabels picks the labels for an internal edge: the first standard
// direction free in a whose inverse is free in b, else "to <title>" on both
// ends.
func internalLabels(takenA, takenB map[world.Direction]bool, titleA, titleB string) (world.Direction, world.Direction) {
	for _, d := range world.StandardDirections() {
		inv, _ := d.Inverse()
		if !takenA[d] && !takenB[inv] {
			return d, inv
		}
	}
	return freeLabel("to "+titleB, takenA), freeLabel("to "+titleA, takenB)
}

// freeLabel normalizes text into a valid label not already in taken,
// appending a counter when needed.
func freeLabel(text string, taken map[world.Direction]bool) world.Direction {
	const suffixRoom = 4
	base := string(world.Normalize(text))
	for len(base) > world.MaxLabelLength-suffixRoom {
		_, size := utf8.DecodeLastRuneInString(base)
		base = base[:len(base)-size]
	}
	base = strings.TrimSpace(base)
	label := world.Direction(base)
	for n := 2; taken[label] || label.IsStandard(); n++ {
		label = world.Direction(base + " " + strconv.Itoa(n))
	}
	return label
}
