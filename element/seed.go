package element

import (
	"fmt"
	"strings"
)

// Direction restricts which edges of a seed are followed.
type Direction uint8

const (
	// DirectionEither follows edges regardless of orientation (BOTH).
	DirectionEither Direction = iota
	// DirectionIncoming follows directed edges that end at the seed.
	DirectionIncoming
	// DirectionOutgoing follows directed edges that start at the seed.
	DirectionOutgoing
)

func (d Direction) String() string {
	switch d {
	case DirectionEither:
		return "EITHER"
	case DirectionIncoming:
		return "INCOMING"
	case DirectionOutgoing:
		return "OUTGOING"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ParseDirection parses EITHER/BOTH, INCOMING or OUTGOING (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "EITHER", "BOTH":
		return DirectionEither, nil
	case "INCOMING":
		return DirectionIncoming, nil
	case "OUTGOING":
		return DirectionOutgoing, nil
	default:
		return DirectionEither, fmt.Errorf("element: unknown direction %q", s)
	}
}

// DirectedType restricts edges by directedness.
type DirectedType uint8

const (
	DirectedEither DirectedType = iota
	DirectedOnly
	UndirectedOnly
)

func (d DirectedType) String() string {
	switch d {
	case DirectedOnly:
		return "DIRECTED"
	case UndirectedOnly:
		return "UNDIRECTED"
	default:
		return "EITHER"
	}
}

// Seed is a query starting point: an EntitySeed or an EdgeSeed.
type Seed interface {
	seed()
}

// EntitySeed identifies a vertex.
type EntitySeed struct {
	Vertex any
}

func (EntitySeed) seed() {}

func (s EntitySeed) String() string { return fmt.Sprintf("EntitySeed[vertex=%v]", s.Vertex) }

// EdgeSeed identifies the edges between two vertices.
type EdgeSeed struct {
	Source      any
	Destination any
	Directed    DirectedType
}

func (EdgeSeed) seed() {}

// Seeds wraps vertices as entity seeds.
func Seeds(vertices ...any) []EntitySeed {
	out := make([]EntitySeed, len(vertices))
	for i, v := range vertices {
		out[i] = EntitySeed{Vertex: v}
	}
	return out
}

// AsSeeds converts a slice of concrete seeds to a slice of Seed.
func AsSeeds[S Seed](seeds []S) []Seed {
	out := make([]Seed, len(seeds))
	for i, s := range seeds {
		out[i] = s
	}
	return out
}
