package function

import "reflect"

// Exists admits any non-nil value.
type Exists struct{}

func (Exists) Spec() Spec { return Spec{Class: "Exists"} }
func (Exists) Test(v any) bool { return v != nil }

// IsA admits values of a value class.
type IsA struct {
	Class string
}

func (p IsA) Spec() Spec { return Spec{Class: "IsA", Type: p.Class} }
func (p IsA) Test(v any) bool { return v != nil && InstanceOf(p.Class, v) }

// IsMoreThan admits values greater than (or equal to) Value.
type IsMoreThan struct {
	Value     any
	OrEqualTo bool
}

func (p IsMoreThan) Spec() Spec {
	return Spec{Class: "IsMoreThan", Value: p.Value, OrEqualTo: p.OrEqualTo}
}

func (p IsMoreThan) Test(v any) bool {
	c, ok := compare(v, p.Value)
	return ok && (c > 0 || (p.OrEqualTo && c == 0))
}

// IsLessThan admits values smaller than (or equal to) Value.
type IsLessThan struct {
	Value     any
	OrEqualTo bool
}

func (p IsLessThan) Spec() Spec {
	return Spec{Class: "IsLessThan", Value: p.Value, OrEqualTo: p.OrEqualTo}
}

func (p IsLessThan) Test(v any) bool {
	c, ok := compare(v, p.Value)
	return ok && (c < 0 || (p.OrEqualTo && c == 0))
}

// IsEqual admits values equal to Value. Numbers compare numerically.
type IsEqual struct {
	Value any
}

func (p IsEqual) Spec() Spec { return Spec{Class: "IsEqual", Value: p.Value} }

func (p IsEqual) Test(v any) bool { return equalValues(v, p.Value) }

// IsIn admits values equal to any of Values.
type IsIn struct {
	Values []any
}

func (p IsIn) Spec() Spec { return Spec{Class: "IsIn", Values: p.Values} }

func (p IsIn) Test(v any) bool {
	for _, x := range p.Values {
		if equalValues(v, x) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}
