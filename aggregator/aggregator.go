// Package aggregator merges elements that share an identity, property by
// property, using the aggregate functions declared by the schema.
package aggregator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/schema"
)

var (
	// ErrGroupMismatch is returned when merging elements of different groups.
	ErrGroupMismatch = errors.New("aggregator: elements belong to different groups")
	// ErrIdentityMismatch is returned when merging elements with different
	// vertices, endpoints or group-by values.
	ErrIdentityMismatch = errors.New("aggregator: elements have different identities")
)

// Merge combines a and b, where b is the more recently written element.
// Each property with an aggregate function is merged with it; a property
// present on only one side passes through unchanged; any other property takes
// b's value when b has one. The result is a new element; a and b are not
// modified.
func Merge(s *schema.Schema, a, b element.Element) (element.Element, error) {
	if a == nil || b == nil {
		return nil, errors.New("aggregator: nil element")
	}
	if a.ElementGroup() != b.ElementGroup() {
		return nil, fmt.Errorf("%w: %q and %q", ErrGroupMismatch, a.ElementGroup(), b.ElementGroup())
	}
	def, ok := s.Group(a.ElementGroup())
	if !ok {
		return nil, fmt.Errorf("aggregator: %w %q", schema.ErrUnknownGroup, a.ElementGroup())
	}
	if !element.SameIdentity(a, b) || !sameQualifiers(def, a, b) {
		return nil, ErrIdentityMismatch
	}
	steps, err := s.AggregatorFor(def.Name())
	if err != nil {
		return nil, err
	}

	out := a.CloneElement()
	props := out.ElementProperties()
	if props == nil {
		props = element.Properties{}
		setProperties(out, props)
	}
	pa, pb := a.ElementProperties(), b.ElementProperties()

	aggregated := make(map[string]bool)
	for _, step := range steps {
		for _, name := range step.Selection {
			aggregated[name] = true
			va, oka := present(pa, name)
			vb, okb := present(pb, name)
			switch {
			case oka && okb:
				v, err := step.Function.Apply(va, vb)
				if err != nil {
					return nil, fmt.Errorf("aggregator: group %q property %q: %w", def.Name(), name, err)
				}
				props[name] = v
			case okb:
				props[name] = vb
			}
		}
	}
	for name, vb := range pb {
		if aggregated[name] || vb == nil {
			continue
		}
		props[name] = vb
	}
	return out, nil
}

// Reduce folds elements left to right with Merge.
func Reduce(s *schema.Schema, elements ...element.Element) (element.Element, error) {
	if len(elements) == 0 {
		return nil, errors.New("aggregator: nothing to reduce")
	}
	acc := elements[0].CloneElement()
	for _, e := range elements[1:] {
		var err error
		if acc, err = Merge(s, acc, e); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// ValueMerger returns a function that merges two value payloads stored under
// the same key, for use on store write collisions.
func ValueMerger(c *keycodec.Converter) func(key, existing, incoming []byte) ([]byte, error) {
	return func(key, existing, incoming []byte) ([]byte, error) {
		a, err := c.Decode(key, existing)
		if err != nil {
			return nil, err
		}
		b, err := c.Decode(key, incoming)
		if err != nil {
			return nil, err
		}
		merged, err := Merge(c.Schema(), a, b)
		if err != nil {
			return nil, err
		}
		return c.EncodeValue(merged)
	}
}

func present(p element.Properties, name string) (any, bool) {
	v, ok := p[name]
	return v, ok && v != nil
}

func sameQualifiers(def *schema.ElementDefinition, a, b element.Element) bool {
	pa, pb := a.ElementProperties(), b.ElementProperties()
	for _, name := range def.QualifierProperties() {
		va, _ := present(pa, name)
		vb, _ := present(pb, name)
		if !reflect.DeepEqual(va, vb) {
			return false
		}
	}
	return true
}

func setProperties(e element.Element, p element.Properties) {
	switch x := e.(type) {
	case *element.Entity:
		x.Properties = p
	case *element.Edge:
		x.Properties = p
	}
}
