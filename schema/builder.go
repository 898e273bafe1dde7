package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/function"
	"github.com/elasticjava/gaffer/serialisation"
)

var groupNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type namedType struct {
	name string
	def  TypeDefinition
}

type namedGroup struct {
	name string
	def  ElementDefinition
}

// Builder is an immutable fluent schema builder. Each method returns a new
// builder; declarations of the same name are merged and must agree.
//
// Example:
//
//	s, err := schema.NewBuilder().
//	    VertexSerialiser("string").
//	    Type("count", schema.TypeDefinition{Class: "int64", Serialiser: "ordered-int64",
//	        AggregateFunction: &function.Spec{Class: "Sum"}}).
//	    Edge("follows", schema.ElementDefinition{Properties: []schema.Property{{Name: "count", Type: "count"}}}).
//	    Build()
type Builder struct {
	registry         *serialisation.Registry
	vertexSerialiser string
	types            []namedType
	entities         []namedGroup
	edges            []namedGroup
	errs             []error
}

// NewBuilder returns an empty builder using serialisation.Default.
func NewBuilder() Builder {
	return Builder{}
}

// Registry sets the serialiser registry used to resolve serialiser names.
func (b Builder) Registry(r *serialisation.Registry) Builder {
	b.registry = r
	return b
}

// VertexSerialiser sets the serialiser name for vertex identifiers.
// Defaults to "string".
func (b Builder) VertexSerialiser(name string) Builder {
	if b.vertexSerialiser != "" && name != "" && b.vertexSerialiser != name {
		b.errs = append(slices.Clip(b.errs), &DefinitionError{
			Subject: "vertexSerialiser",
			Reason:  fmt.Sprintf("conflicting serialisers %q and %q", b.vertexSerialiser, name),
		})
		return b
	}
	if name != "" {
		b.vertexSerialiser = name
	}
	return b
}

// Type declares a property type. def is copied; later changes to it or to
// the specs it points to do not affect the builder.
func (b Builder) Type(name string, def TypeDefinition) Builder {
	def = def.declaration()
	b.types = append(slices.Clip(b.types), namedType{name: name, def: def})
	return b
}

// Entity declares an entity group.
func (b Builder) Entity(group string, def ElementDefinition) Builder {
	b.entities = append(slices.Clip(b.entities), namedGroup{name: group, def: cloneDefinition(def)})
	return b
}

// Edge declares an edge group.
func (b Builder) Edge(group string, def ElementDefinition) Builder {
	b.edges = append(slices.Clip(b.edges), namedGroup{name: group, def: cloneDefinition(def)})
	return b
}

// Merge adds every declaration of an existing schema.
func (b Builder) Merge(s *Schema) Builder {
	if s == nil {
		return b
	}
	b = b.VertexSerialiser(s.vertexSerialiserName)
	for _, name := range sortedNames(s.types) {
		b = b.Type(name, s.types[name].declaration())
	}
	for _, name := range s.EntityGroups() {
		b = b.Entity(name, s.entities[name].declaration())
	}
	for _, name := range s.EdgeGroups() {
		b = b.Edge(name, s.edges[name].declaration())
	}
	return b
}

// Build validates the declarations and resolves every type capability.
// All problems are reported together.
func (b Builder) Build() (*Schema, error) {
	var result *multierror.Error
	for _, err := range b.errs {
		result = multierror.Append(result, err)
	}

	reg := b.registry
	if reg == nil {
		reg = serialisation.Default
	}

	s := &Schema{
		entities:             make(map[string]*ElementDefinition),
		edges:                make(map[string]*ElementDefinition),
		types:                make(map[string]*TypeDefinition),
		vertexSerialiserName: b.vertexSerialiser,
	}

	vs := b.vertexSerialiser
	if vs == "" {
		vs = serialisation.String{}.Name()
	}
	if ser, ok := reg.Lookup(vs); ok {
		s.vertexSerialiser = ser
	} else {
		result = multierror.Append(result, &DefinitionError{
			Subject: "vertexSerialiser",
			Reason:  fmt.Sprintf("unknown serialiser %q", vs),
		})
	}

	for _, nt := range b.mergedTypes(&result) {
		t, err := resolveType(nt.name, nt.def, reg)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		s.types[nt.name] = t
	}

	entities := mergedGroups(b.entities, &result)
	edges := mergedGroups(b.edges, &result)
	for _, ng := range entities {
		s.addGroup(KindEntity, ng, &result)
	}
	for _, ng := range edges {
		if _, clash := s.entities[ng.name]; clash {
			result = multierror.Append(result, &DefinitionError{
				Subject: "group " + ng.name,
				Reason:  "declared as both an entity and an edge group",
			})
			continue
		}
		s.addGroup(KindEdge, ng, &result)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return s, nil
}

func (b Builder) mergedTypes(result **multierror.Error) []namedType {
	seen := make(map[string]int)
	var out []namedType
	for _, nt := range b.types {
		if i, ok := seen[nt.name]; ok {
			if !reflect.DeepEqual(out[i].def, nt.def) {
				*result = multierror.Append(*result, &DefinitionError{
					Subject: "type " + nt.name,
					Reason:  "conflicting definitions",
				})
			}
			continue
		}
		seen[nt.name] = len(out)
		out = append(out, nt)
	}
	return out
}

func mergedGroups(in []namedGroup, result **multierror.Error) []namedGroup {
	seen := make(map[string]int)
	var out []namedGroup
	for _, ng := range in {
		if i, ok := seen[ng.name]; ok {
			if !reflect.DeepEqual(out[i].def, ng.def) {
				*result = multierror.Append(*result, &DefinitionError{
					Subject: "group " + ng.name,
					Reason:  "conflicting definitions",
				})
			}
			continue
		}
		seen[ng.name] = len(out)
		out = append(out, ng)
	}
	return out
}

func resolveType(name string, def TypeDefinition, reg *serialisation.Registry) (*TypeDefinition, error) {
	var result *multierror.Error
	subject := "type " + name

	t := def.declaration()
	t.name = name
	t.serialiser, t.aggregate, t.validators = nil, nil, nil

	if t.Class != "" && !function.KnownClass(t.Class) {
		result = multierror.Append(result, &DefinitionError{Subject: subject, Reason: fmt.Sprintf("unknown class %q", t.Class)})
	}
	switch t.Position {
	case "", PositionValue, PositionColumnQualifier:
	default:
		result = multierror.Append(result, &DefinitionError{Subject: subject, Reason: fmt.Sprintf("unknown position %q", t.Position)})
	}
	if t.Serialiser == "" {
		result = multierror.Append(result, &DefinitionError{Subject: subject, Reason: "serialiser is required"})
	} else if ser, ok := reg.Lookup(t.Serialiser); ok {
		t.serialiser = ser
	} else {
		result = multierror.Append(result, &DefinitionError{Subject: subject, Reason: fmt.Sprintf("unknown serialiser %q", t.Serialiser)})
	}
	if t.AggregateFunction != nil {
		f, err := function.NewAggregate(*t.AggregateFunction)
		if err != nil {
			result = multierror.Append(result, &DefinitionError{Subject: subject, Reason: "aggregate function", Err: err})
		}
		t.aggregate = f
	}
	for _, spec := range t.Validators {
		p, err := function.NewPredicate(spec)
		if err != nil {
			result = multierror.Append(result, &DefinitionError{Subject: subject, Reason: "validator", Err: err})
			continue
		}
		t.validators = append(t.validators, p)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Schema) addGroup(kind Kind, ng namedGroup, result **multierror.Error) {
	subject := "group " + ng.name
	fail := func(err error) { *result = multierror.Append(*result, err) }

	if !groupNamePattern.MatchString(ng.name) {
		fail(&DefinitionError{Subject: subject, Reason: "group names must be non-empty and alphanumeric"})
		return
	}

	d := ng.def
	d.name = ng.name
	d.kind = kind
	d.types = make(map[string]*TypeDefinition, len(d.Properties))
	d.qualifiers, d.values, d.aggSteps, d.valSteps = nil, nil, nil, nil

	ok := true
	for _, p := range d.Properties {
		if _, dup := d.types[p.Name]; dup {
			fail(&DefinitionError{Subject: subject, Reason: fmt.Sprintf("duplicate property %q", p.Name)})
			ok = false
			continue
		}
		t, found := s.types[p.Type]
		if !found {
			fail(&UnknownPropertyError{Group: ng.name, Property: p.Name, Type: p.Type})
			ok = false
			continue
		}
		d.types[p.Name] = t
		if t.InQualifier() {
			d.qualifiers = append(d.qualifiers, p.Name)
		} else {
			d.values = append(d.values, p.Name)
		}
	}

	if d.Aggregator != nil {
		for _, step := range d.Aggregator {
			if len(step.Selection) == 0 {
				fail(&DefinitionError{Subject: subject, Reason: "aggregator step has an empty selection"})
				ok = false
				continue
			}
			for _, sel := range step.Selection {
				t, found := d.types[sel]
				switch {
				case !found:
					fail(&UnknownPropertyError{Group: ng.name, Property: sel})
					ok = false
				case t.InQualifier():
					fail(&DefinitionError{Subject: subject, Reason: fmt.Sprintf("cannot aggregate group-by property %q", sel)})
					ok = false
				}
			}
			f, err := function.NewAggregate(step.Function)
			if err != nil {
				fail(&DefinitionError{Subject: subject, Reason: "aggregator", Err: err})
				ok = false
				continue
			}
			d.aggSteps = append(d.aggSteps, AggregateStep{Selection: slices.Clone(step.Selection), Function: f})
		}
	} else {
		for _, name := range d.values {
			if f := d.types[name].aggregate; f != nil {
				d.aggSteps = append(d.aggSteps, AggregateStep{Selection: []string{name}, Function: f})
			}
		}
	}

	for _, step := range d.Validator {
		if len(step.Selection) == 0 {
			fail(&DefinitionError{Subject: subject, Reason: "validator step has an empty selection"})
			ok = false
			continue
		}
		for _, sel := range step.Selection {
			if _, found := d.types[sel]; found || identifierAllowed(kind, sel) {
				continue
			}
			fail(&UnknownPropertyError{Group: ng.name, Property: sel})
			ok = false
		}
		p, err := function.NewPredicate(step.Function)
		if err != nil {
			fail(&DefinitionError{Subject: subject, Reason: "validator", Err: err})
			ok = false
			continue
		}
		d.valSteps = append(d.valSteps, ValidateStep{Selection: slices.Clone(step.Selection), Predicate: p})
	}
	for _, prop := range d.Properties {
		t, found := d.types[prop.Name]
		if !found {
			continue
		}
		for _, p := range t.validators {
			d.valSteps = append(d.valSteps, ValidateStep{Selection: []string{prop.Name}, Predicate: p})
		}
	}

	if !ok {
		return
	}
	if kind == KindEntity {
		s.entities[ng.name] = &d
	} else {
		s.edges[ng.name] = &d
	}
}

func identifierAllowed(kind Kind, sel string) bool {
	switch element.Identifier(sel) {
	case element.IdentifierVertex:
		return kind == KindEntity
	case element.IdentifierSource, element.IdentifierDestination, element.IdentifierDirected:
		return kind == KindEdge
	}
	return false
}

func cloneDefinition(def ElementDefinition) ElementDefinition {
	return ElementDefinition{
		Properties: slices.Clone(def.Properties),
		Validator:  cloneSteps(def.Validator),
		Aggregator: cloneSteps(def.Aggregator),
	}
}

func cloneSteps(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = Step{Selection: slices.Clone(s.Selection), Function: s.Function.Canonical()}
	}
	return out
}

func (d *ElementDefinition) declaration() ElementDefinition {
	return cloneDefinition(*d)
}

// declaration returns a deep copy of the exported fields with function specs
// in canonical form.
func (t *TypeDefinition) declaration() TypeDefinition {
	d := TypeDefinition{
		Class:      t.Class,
		Serialiser: t.Serialiser,
		Position:   t.Position,
	}
	if t.AggregateFunction != nil {
		f := t.AggregateFunction.Canonical()
		d.AggregateFunction = &f
	}
	if t.Validators != nil {
		d.Validators = make([]function.Spec, len(t.Validators))
		for i, v := range t.Validators {
			d.Validators[i] = v.Canonical()
		}
	}
	return d
}
