package function

import (
	"fmt"

	"github.com/elasticjava/gaffer/serialisation"
)

func incompatible(name string, a, b any) error {
	return fmt.Errorf("%w: %s(%T, %T)", ErrIncompatibleValues, name, a, b)
}

// Sum adds integers or floats. Mixed int/float operands produce a float.
type Sum struct{}

func (Sum) Spec() Spec { return Spec{Class: "Sum"} }

func (Sum) Apply(a, b any) (any, error) {
	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			return ai + bi, nil
		}
	}
	af, aok := asFloat64(a)
	bf, bok := asFloat64(b)
	if !aok || !bok {
		return nil, incompatible("Sum", a, b)
	}
	return af + bf, nil
}

// Max keeps the larger of two numbers or strings.
type Max struct{}

func (Max) Spec() Spec { return Spec{Class: "Max"} }

func (Max) Apply(a, b any) (any, error) {
	c, ok := compare(a, b)
	if !ok {
		return nil, incompatible("Max", a, b)
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

// Min keeps the smaller of two numbers or strings.
type Min struct{}

func (Min) Spec() Spec { return Spec{Class: "Min"} }

func (Min) Apply(a, b any) (any, error) {
	c, ok := compare(a, b)
	if !ok {
		return nil, incompatible("Min", a, b)
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

// And is logical conjunction.
type And struct{}

func (And) Spec() Spec { return Spec{Class: "And"} }

func (And) Apply(a, b any) (any, error) {
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if !aok || !bok {
		return nil, incompatible("And", a, b)
	}
	return ab && bb, nil
}

// Or is logical disjunction.
type Or struct{}

func (Or) Spec() Spec { return Spec{Class: "Or"} }

func (Or) Apply(a, b any) (any, error) {
	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if !aok || !bok {
		return nil, incompatible("Or", a, b)
	}
	return ab || bb, nil
}

// SetUnion unions two string sets; the result is sorted and de-duplicated.
type SetUnion struct{}

func (SetUnion) Spec() Spec { return Spec{Class: "SetUnion"} }

func (SetUnion) Apply(a, b any) (any, error) {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if !aok || !bok {
		return nil, incompatible("SetUnion", a, b)
	}
	merged := make([]string, 0, len(as)+len(bs))
	merged = append(merged, as...)
	merged = append(merged, bs...)
	return serialisation.NormaliseSet(merged), nil
}

// Concat joins strings with Separator (default ","). It is associative but
// not commutative.
type Concat struct {
	Separator string
}

func (c Concat) Spec() Spec { return Spec{Class: "Concat", Separator: c.Separator} }

func (c Concat) Apply(a, b any) (any, error) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if !aok || !bok {
		return nil, incompatible("Concat", a, b)
	}
	sep := c.Separator
	if sep == "" {
		sep = ","
	}
	return as + sep + bs, nil
}
