// Package function provides the binary aggregate functions and unary
// predicates referenced by schemas, together with their interchange form.
package function

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownFunction is returned when a Spec names an unregistered class.
var ErrUnknownFunction = errors.New("unknown function")

// ErrIncompatibleValues is returned when an aggregate function receives
// values it cannot combine.
var ErrIncompatibleValues = errors.New("incompatible values")

// Spec is the interchange form of a function: its class name plus the
// parameters that class uses.
type Spec struct {
	Class     string `json:"class"`
	Value     any    `json:"value,omitempty"`
	Values    []any  `json:"values,omitempty"`
	OrEqualTo bool   `json:"orEqualTo,omitempty"`
	Type      string `json:"type,omitempty"`
	Separator string `json:"separator,omitempty"`
}

// Canonical returns a deep copy of s whose numeric parameters have a single
// representation: integral numbers within float64's exact range as int64,
// other numbers as float64. JSON numbers decoded with UseNumber are converted
// the same way, so a spec built in Go and its parsed interchange form are
// equal.
func (s Spec) Canonical() Spec {
	s.Value = canonicalValue(s.Value)
	if s.Values != nil {
		values := make([]any, len(s.Values))
		for i, v := range s.Values {
			values[i] = canonicalValue(v)
		}
		s.Values = values
	}
	return s
}

// number is satisfied by json.Number from both the standard library and
// go-json.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

const maxExactFloat = 1 << 53

func canonicalValue(v any) any {
	switch x := v.(type) {
	case number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return canonicalValue(f)
		}
		return v
	case float64:
		if x == math.Trunc(x) && math.Abs(x) <= maxExactFloat {
			return int64(x)
		}
		return x
	case float32:
		return canonicalValue(float64(x))
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x)
		}
		return x
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return x
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = canonicalValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = canonicalValue(e)
		}
		return out
	}
	if i, ok := asInt64(v); ok {
		return i
	}
	return v
}

// AggregateFunction merges two values of the same property.
// Implementations must be pure.
type AggregateFunction interface {
	Spec() Spec
	Apply(a, b any) (any, error)
}

// Predicate tests a single value.
type Predicate interface {
	Spec() Spec
	Test(v any) bool
}

type aggregateFactory func(Spec) (AggregateFunction, error)

type predicateFactory func(Spec) (Predicate, error)

var aggregates = map[string]aggregateFactory{
	"Sum":      func(Spec) (AggregateFunction, error) { return Sum{}, nil },
	"Max":      func(Spec) (AggregateFunction, error) { return Max{}, nil },
	"Min":      func(Spec) (AggregateFunction, error) { return Min{}, nil },
	"And":      func(Spec) (AggregateFunction, error) { return And{}, nil },
	"Or":       func(Spec) (AggregateFunction, error) { return Or{}, nil },
	"SetUnion": func(Spec) (AggregateFunction, error) { return SetUnion{}, nil },
	"Concat": func(s Spec) (AggregateFunction, error) {
		return Concat{Separator: s.Separator}, nil
	},
}

var predicates = map[string]predicateFactory{
	"Exists": func(Spec) (Predicate, error) { return Exists{}, nil },
	"IsA": func(s Spec) (Predicate, error) {
		if !KnownClass(s.Type) {
			return nil, fmt.Errorf("IsA: unknown class %q", s.Type)
		}
		return IsA{Class: s.Type}, nil
	},
	"IsMoreThan": func(s Spec) (Predicate, error) {
		if s.Value == nil {
			return nil, errors.New("IsMoreThan: value is required")
		}
		return IsMoreThan{Value: s.Value, OrEqualTo: s.OrEqualTo}, nil
	},
	"IsLessThan": func(s Spec) (Predicate, error) {
		if s.Value == nil {
			return nil, errors.New("IsLessThan: value is required")
		}
		return IsLessThan{Value: s.Value, OrEqualTo: s.OrEqualTo}, nil
	},
	"IsEqual": func(s Spec) (Predicate, error) { return IsEqual{Value: s.Value}, nil },
	"IsIn":    func(s Spec) (Predicate, error) { return IsIn{Values: s.Values}, nil },
}

// NewAggregate builds the aggregate function described by s.
func NewAggregate(s Spec) (AggregateFunction, error) {
	f, ok := aggregates[s.Class]
	if !ok {
		return nil, fmt.Errorf("%w: aggregate %q", ErrUnknownFunction, s.Class)
	}
	return f(s)
}

// NewPredicate builds the predicate described by s.
func NewPredicate(s Spec) (Predicate, error) {
	f, ok := predicates[s.Class]
	if !ok {
		return nil, fmt.Errorf("%w: predicate %q", ErrUnknownFunction, s.Class)
	}
	return f(s)
}

// AggregateClasses lists the registered aggregate class names.
func AggregateClasses() []string { return sortedKeys(aggregates) }

// PredicateClasses lists the registered predicate class names.
func PredicateClasses() []string { return sortedKeys(predicates) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
