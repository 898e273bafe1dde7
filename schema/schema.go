// Package schema declares element groups, property types and the per-property
// serialisers, aggregate functions and validators that govern them.
//
// A Schema is immutable once built and may be shared by any number of
// goroutines.
package schema

import (
	"sort"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/function"
	"github.com/elasticjava/gaffer/serialisation"
)

// Position selects where a property is stored.
type Position string

const (
	// PositionValue stores the property in the value payload. Values of such
	// properties are merged on key collision.
	PositionValue Position = "VALUE"
	// PositionColumnQualifier stores the property in the key qualifier, making
	// it part of the element's identity (a group-by property).
	PositionColumnQualifier Position = "COLUMN_QUALIFIER"
)

// Kind distinguishes entity groups from edge groups.
type Kind uint8

const (
	KindEntity Kind = iota + 1
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// TypeDefinition declares a property type. The exported fields are the
// declaration; capabilities are resolved once when the schema is built.
// Definitions returned by a Schema are shared by every reader and must not
// be modified.
type TypeDefinition struct {
	Class             string
	Serialiser        string
	Position          Position
	AggregateFunction *function.Spec
	Validators        []function.Spec

	name       string
	serialiser serialisation.Serialiser
	aggregate  function.AggregateFunction
	validators []function.Predicate
}

// Name returns the type name.
func (t *TypeDefinition) Name() string { return t.name }

// SerialiserImpl returns the resolved serialiser.
func (t *TypeDefinition) SerialiserImpl() serialisation.Serialiser { return t.serialiser }

// Aggregate returns the resolved aggregate function or nil.
func (t *TypeDefinition) Aggregate() function.AggregateFunction { return t.aggregate }

// Predicates returns the resolved type-level validators.
func (t *TypeDefinition) Predicates() []function.Predicate { return t.validators }

// InQualifier reports whether values of this type are stored in the key.
func (t *TypeDefinition) InQualifier() bool { return t.Position == PositionColumnQualifier }

// Property binds a property name to a type name.
type Property struct {
	Name string
	Type string
}

// Step is one entry of an explicit validator or aggregator chain.
type Step struct {
	Selection []string
	Function  function.Spec
}

// AggregateStep is a resolved aggregator chain entry.
type AggregateStep struct {
	Selection []string
	Function  function.AggregateFunction
}

// ValidateStep is a resolved validator chain entry. Selection entries name
// properties or element identifiers (VERTEX, SOURCE, DESTINATION, DIRECTED).
type ValidateStep struct {
	Selection []string
	Predicate function.Predicate
}

// ElementDefinition declares an entity or edge group. Definitions returned
// by a Schema are shared by every reader and must not be modified.
type ElementDefinition struct {
	// Properties in declaration order.
	Properties []Property
	// Validator is an optional explicit validator chain.
	Validator []Step
	// Aggregator is an optional explicit aggregator chain. When nil the chain
	// is derived from the property types.
	Aggregator []Step

	name       string
	kind       Kind
	types      map[string]*TypeDefinition
	qualifiers []string
	values     []string
	aggSteps   []AggregateStep
	valSteps   []ValidateStep
}

// Name returns the group name.
func (d *ElementDefinition) Name() string { return d.name }

// Kind reports whether the group holds entities or edges.
func (d *ElementDefinition) Kind() Kind { return d.kind }

// PropertyType returns the resolved type of a property.
func (d *ElementDefinition) PropertyType(property string) (*TypeDefinition, bool) {
	t, ok := d.types[property]
	return t, ok
}

// QualifierProperties returns the group-by properties in declaration order.
func (d *ElementDefinition) QualifierProperties() []string { return d.qualifiers }

// ValueProperties returns the value-position properties in declaration order.
func (d *ElementDefinition) ValueProperties() []string { return d.values }

// Schema is an immutable, validated set of group and type definitions.
type Schema struct {
	entities             map[string]*ElementDefinition
	edges                map[string]*ElementDefinition
	types                map[string]*TypeDefinition
	vertexSerialiserName string
	vertexSerialiser     serialisation.Serialiser
}

// Group returns the definition of an entity or edge group. The result is
// read-only.
func (s *Schema) Group(name string) (*ElementDefinition, bool) {
	if d, ok := s.entities[name]; ok {
		return d, true
	}
	d, ok := s.edges[name]
	return d, ok
}

// Entity returns the definition of an entity group.
func (s *Schema) Entity(name string) (*ElementDefinition, bool) {
	d, ok := s.entities[name]
	return d, ok
}

// Edge returns the definition of an edge group.
func (s *Schema) Edge(name string) (*ElementDefinition, bool) {
	d, ok := s.edges[name]
	return d, ok
}

// EntityGroups returns the entity group names in sorted order.
func (s *Schema) EntityGroups() []string { return sortedNames(s.entities) }

// EdgeGroups returns the edge group names in sorted order.
func (s *Schema) EdgeGroups() []string { return sortedNames(s.edges) }

// Type returns a type definition by name.
func (s *Schema) Type(name string) (*TypeDefinition, bool) {
	t, ok := s.types[name]
	return t, ok
}

// VertexSerialiser returns the serialiser used for vertex identifiers.
func (s *Schema) VertexSerialiser() serialisation.Serialiser { return s.vertexSerialiser }

// ResolveProperty returns the type definition governing group.property.
func (s *Schema) ResolveProperty(group, property string) (*TypeDefinition, error) {
	d, ok := s.Group(group)
	if !ok {
		return nil, &UnknownPropertyError{Group: group, Property: property}
	}
	t, ok := d.types[property]
	if !ok {
		return nil, &UnknownPropertyError{Group: group, Property: property}
	}
	return t, nil
}

// AggregatorFor returns the aggregator chain of a group: the explicit chain
// when one is declared, otherwise one step per value property whose type has
// an aggregate function, in declaration order.
func (s *Schema) AggregatorFor(group string) ([]AggregateStep, error) {
	d, ok := s.Group(group)
	if !ok {
		return nil, ErrUnknownGroup
	}
	return d.aggSteps, nil
}

// ValidatorFor returns the validator chain of a group: its explicit steps
// followed by the type-level validators of each property.
func (s *Schema) ValidatorFor(group string) ([]ValidateStep, error) {
	d, ok := s.Group(group)
	if !ok {
		return nil, ErrUnknownGroup
	}
	return d.valSteps, nil
}

// KindOf reports the schema kind an element must have.
func KindOf(e element.Element) Kind {
	switch e.(type) {
	case *element.Entity:
		return KindEntity
	case *element.Edge:
		return KindEdge
	default:
		return 0
	}
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
