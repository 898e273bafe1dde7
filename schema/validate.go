package schema

import (
	"fmt"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/function"
)

// Validate checks an element against its group definition: the group must
// exist with the right kind, every property must be declared and of its
// type's class, identifiers must be serialisable as vertices, and every
// validator step must pass.
func (s *Schema) Validate(e element.Element) error {
	if e == nil {
		return &ValidationError{Reason: "nil element"}
	}
	group := e.ElementGroup()
	d, ok := s.Group(group)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownGroup, group)
	}
	if d.kind != KindOf(e) {
		return &ValidationError{Group: group, Reason: fmt.Sprintf("group holds %s elements", d.kind)}
	}

	for _, id := range identifiersOf(d.kind) {
		v, _ := e.IdentifierValue(id)
		if id == element.IdentifierDirected {
			continue
		}
		if v == nil {
			return &ValidationError{Group: group, Reason: fmt.Sprintf("%s is nil", id)}
		}
		if !s.vertexSerialiser.CanHandle(v) {
			return &ValidationError{Group: group, Reason: fmt.Sprintf("%s %v (%T) is not handled by vertex serialiser %s", id, v, v, s.vertexSerialiser.Name())}
		}
	}

	for name, v := range e.ElementProperties() {
		t, ok := d.types[name]
		if !ok {
			return &UnknownPropertyError{Group: group, Property: name}
		}
		if v == nil {
			continue
		}
		if t.Class != "" && !function.InstanceOf(t.Class, v) {
			return &ValidationError{Group: group, Reason: fmt.Sprintf("property %q: %T is not a %s", name, v, t.Class)}
		}
		if !t.serialiser.CanHandle(v) {
			return &ValidationError{Group: group, Reason: fmt.Sprintf("property %q: %T is not handled by serialiser %s", name, v, t.serialiser.Name())}
		}
	}

	for _, step := range d.valSteps {
		for _, sel := range step.Selection {
			if !step.Predicate.Test(selectValue(e, sel)) {
				return &ValidationError{Group: group, Reason: fmt.Sprintf("%s failed %s", sel, step.Predicate.Spec().Class)}
			}
		}
	}
	return nil
}

func selectValue(e element.Element, sel string) any {
	if v, ok := e.IdentifierValue(element.Identifier(sel)); ok {
		return v
	}
	return e.ElementProperties()[sel]
}

func identifiersOf(k Kind) []element.Identifier {
	if k == KindEntity {
		return []element.Identifier{element.IdentifierVertex}
	}
	return []element.Identifier{element.IdentifierSource, element.IdentifierDestination, element.IdentifierDirected}
}
