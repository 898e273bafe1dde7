package testutil

import (
	"github.com/elasticjava/gaffer/adjacency"
	"github.com/elasticjava/gaffer/aggregator"
	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/schema"
)

// Reference is an in-memory model of a graph store: elements aggregated by
// identity, in first-seen order. It is not safe for concurrent use.
type Reference struct {
	schema *schema.Schema
	conv   *keycodec.Converter
	index  map[string]int
	elems  []element.Element
}

// NewReference creates an empty model for s.
func NewReference(s *schema.Schema) (*Reference, error) {
	conv, err := keycodec.NewConverter(s)
	if err != nil {
		return nil, err
	}
	return &Reference{schema: s, conv: conv, index: make(map[string]int)}, nil
}

// Add aggregates elems into the model.
func (r *Reference) Add(elems ...element.Element) error {
	for _, e := range elems {
		keys, err := r.conv.EncodeKeys(e)
		if err != nil {
			return err
		}
		id := string(keys[0])
		i, ok := r.index[id]
		if !ok {
			r.index[id] = len(r.elems)
			r.elems = append(r.elems, e.CloneElement())
			continue
		}
		merged, err := aggregator.Merge(r.schema, r.elems[i], e)
		if err != nil {
			return err
		}
		r.elems[i] = merged
	}
	return nil
}

// Elements returns the aggregated elements.
func (r *Reference) Elements() []element.Element {
	return append([]element.Element(nil), r.elems...)
}

// Adjacent returns what a store scan of each seed's row yields for
// GetAdjacentIDs: every edge touching the seed, less directed edges pointing
// against direction, resolved against that seed alone.
func (r *Reference) Adjacent(seeds []element.EntitySeed, direction element.Direction) []element.EntitySeed {
	var out []element.EntitySeed
	for _, s := range seeds {
		resolver := adjacency.NewResolver([]element.EntitySeed{s}, direction)
		k := element.VertexKey(s.Vertex)
		for _, e := range r.elems {
			edge, ok := e.(*element.Edge)
			if !ok {
				continue
			}
			atSource := element.VertexKey(edge.Source) == k
			atDestination := element.VertexKey(edge.Destination) == k
			if !atSource && !atDestination {
				continue
			}
			if edge.Directed {
				// a self-loop only has its correct-way key
				incoming := atDestination && !atSource
				if direction == element.DirectionOutgoing && incoming {
					continue
				}
				if direction == element.DirectionIncoming && !incoming {
					continue
				}
			}
			out = append(out, resolver.OtherEnds(edge)...)
		}
	}
	return out
}
