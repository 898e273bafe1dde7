// Package element defines the graph element model: entities, edges and the
// seeds used to start queries and traversals.
//
// Vertex identifiers and property values are opaque to this package. Their
// encoding is governed by the schema's serialisers.
package element

import (
	"fmt"
	"reflect"
)

// Properties holds the property values of an element keyed by property name.
type Properties map[string]any

// Clone returns a shallow copy of p. A nil map clones to nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Identifier names the identity components of an element that validator
// selections can refer to besides plain properties.
type Identifier string

const (
	IdentifierVertex      Identifier = "VERTEX"
	IdentifierSource      Identifier = "SOURCE"
	IdentifierDestination Identifier = "DESTINATION"
	IdentifierDirected    Identifier = "DIRECTED"
)

// Element is implemented by *Entity and *Edge.
type Element interface {
	// ElementGroup returns the schema group the element belongs to.
	ElementGroup() string
	// ElementProperties returns the (mutable) property map.
	ElementProperties() Properties
	// IdentifierValue returns the value of an identity component.
	IdentifierValue(id Identifier) (any, bool)
	// CloneElement returns a copy with a cloned property map.
	CloneElement() Element
}

// Entity is a vertex-anchored element.
type Entity struct {
	Group      string
	Vertex     any
	Properties Properties
}

// NewEntity returns an entity with an empty property map.
func NewEntity(group string, vertex any) *Entity {
	return &Entity{Group: group, Vertex: vertex, Properties: Properties{}}
}

// ElementGroup implements Element.
func (e *Entity) ElementGroup() string { return e.Group }

// ElementProperties implements Element.
func (e *Entity) ElementProperties() Properties { return e.Properties }

// IdentifierValue implements Element.
func (e *Entity) IdentifierValue(id Identifier) (any, bool) {
	if id == IdentifierVertex {
		return e.Vertex, true
	}
	return nil, false
}

// CloneElement implements Element.
func (e *Entity) CloneElement() Element {
	c := *e
	c.Properties = e.Properties.Clone()
	return &c
}

// WithProperty sets a property and returns the entity for chaining.
func (e *Entity) WithProperty(name string, value any) *Entity {
	if e.Properties == nil {
		e.Properties = Properties{}
	}
	e.Properties[name] = value
	return e
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity[group=%s vertex=%v properties=%v]", e.Group, e.Vertex, e.Properties)
}

// Edge connects two vertices. Undirected edges have no meaningful orientation.
type Edge struct {
	Group       string
	Source      any
	Destination any
	Directed    bool
	Properties  Properties
}

// NewEdge returns an edge with an empty property map.
func NewEdge(group string, source, destination any, directed bool) *Edge {
	return &Edge{
		Group:       group,
		Source:      source,
		Destination: destination,
		Directed:    directed,
		Properties:  Properties{},
	}
}

// ElementGroup implements Element.
func (e *Edge) ElementGroup() string { return e.Group }

// ElementProperties implements Element.
func (e *Edge) ElementProperties() Properties { return e.Properties }

// IdentifierValue implements Element.
func (e *Edge) IdentifierValue(id Identifier) (any, bool) {
	switch id {
	case IdentifierSource:
		return e.Source, true
	case IdentifierDestination:
		return e.Destination, true
	case IdentifierDirected:
		return e.Directed, true
	default:
		return nil, false
	}
}

// CloneElement implements Element.
func (e *Edge) CloneElement() Element {
	c := *e
	c.Properties = e.Properties.Clone()
	return &c
}

// WithProperty sets a property and returns the edge for chaining.
func (e *Edge) WithProperty(name string, value any) *Edge {
	if e.Properties == nil {
		e.Properties = Properties{}
	}
	e.Properties[name] = value
	return e
}

// IsSelfLoop reports whether both endpoints are the same vertex.
func (e *Edge) IsSelfLoop() bool {
	return VertexKey(e.Source) == VertexKey(e.Destination)
}

func (e *Edge) String() string {
	return fmt.Sprintf("Edge[group=%s source=%v destination=%v directed=%t properties=%v]",
		e.Group, e.Source, e.Destination, e.Directed, e.Properties)
}

// SameIdentity reports whether a and b have the same group and the same
// vertex (entities) or endpoints and directedness (edges). Undirected edges
// match in either orientation. Properties are ignored.
func SameIdentity(a, b Element) bool {
	if a == nil || b == nil || a.ElementGroup() != b.ElementGroup() {
		return false
	}
	switch x := a.(type) {
	case *Entity:
		y, ok := b.(*Entity)
		return ok && VertexKey(x.Vertex) == VertexKey(y.Vertex)
	case *Edge:
		y, ok := b.(*Edge)
		if !ok || x.Directed != y.Directed {
			return false
		}
		xs, xd := VertexKey(x.Source), VertexKey(x.Destination)
		ys, yd := VertexKey(y.Source), VertexKey(y.Destination)
		if xs == ys && xd == yd {
			return true
		}
		return !x.Directed && xs == yd && xd == ys
	default:
		return false
	}
}

// Equal reports whether a and b have the same identity and equal properties.
func Equal(a, b Element) bool {
	if !SameIdentity(a, b) {
		return false
	}
	pa, pb := a.ElementProperties(), b.ElementProperties()
	if len(pa) != len(pb) {
		return false
	}
	for k, va := range pa {
		vb, ok := pb[k]
		if !ok || !reflect.DeepEqual(va, vb) {
			return false
		}
	}
	return true
}
