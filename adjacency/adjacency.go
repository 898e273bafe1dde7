// Package adjacency extracts the vertices at the far end of edges that touch
// a set of seed vertices.
package adjacency

import "github.com/elasticjava/gaffer/element"

// Resolver matches edges against a fixed seed set and direction.
// It is read-only after construction and safe for concurrent use.
type Resolver struct {
	seeds     map[any]struct{}
	direction element.Direction
}

// NewResolver returns a resolver for seeds following edges in direction.
func NewResolver(seeds []element.EntitySeed, direction element.Direction) *Resolver {
	set := make(map[any]struct{}, len(seeds))
	for _, s := range seeds {
		set[element.VertexKey(s.Vertex)] = struct{}{}
	}
	return &Resolver{seeds: set, direction: direction}
}

// OtherEnds returns the vertices adjacent to the seeds through e.
//
// Undirected edges match a seed at either end. A directed edge matches a seed
// at its source unless the direction is Incoming, and at its destination
// unless the direction is Outgoing. A seed matched at the destination yields
// the source and vice versa. When both ends yield the same vertex it is
// returned once.
func (r *Resolver) OtherEnds(e *element.Edge) []element.EntitySeed {
	matchSource := !e.Directed || r.direction != element.DirectionIncoming
	matchDestination := !e.Directed || r.direction != element.DirectionOutgoing

	var fromDestination, fromSource *element.EntitySeed
	if matchDestination && r.contains(e.Destination) {
		fromDestination = &element.EntitySeed{Vertex: e.Source}
	}
	if matchSource && r.contains(e.Source) {
		fromSource = &element.EntitySeed{Vertex: e.Destination}
	}

	var out []element.EntitySeed
	if fromDestination != nil {
		out = append(out, *fromDestination)
	}
	if fromSource != nil {
		if fromDestination == nil || element.VertexKey(fromDestination.Vertex) != element.VertexKey(fromSource.Vertex) {
			out = append(out, *fromSource)
		}
	}
	return out
}

func (r *Resolver) contains(v any) bool {
	_, ok := r.seeds[element.VertexKey(v)]
	return ok
}

// Adjacent returns, edge by edge, the vertices adjacent to seeds. A vertex
// reached through several edges appears once per edge.
func Adjacent(seeds []element.EntitySeed, edges []*element.Edge, direction element.Direction) []element.EntitySeed {
	r := NewResolver(seeds, direction)
	var out []element.EntitySeed
	for _, e := range edges {
		out = append(out, r.OtherEnds(e)...)
	}
	return out
}

// AdjacentSet is Adjacent with duplicates removed, keeping first-seen order.
func AdjacentSet(seeds []element.EntitySeed, edges []*element.Edge, direction element.Direction) []element.EntitySeed {
	seen := make(map[any]struct{})
	var out []element.EntitySeed
	for _, s := range Adjacent(seeds, edges, direction) {
		k := element.VertexKey(s.Vertex)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
