package function

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregates(t *testing.T) {
	tests := []struct {
		name string
		f    AggregateFunction
		a, b any
		want any
	}{
		{"sum ints", Sum{}, int64(2), int64(3), int64(5)},
		{"sum mixed ints", Sum{}, 2, int64(3), int64(5)},
		{"sum floats", Sum{}, 1.5, 2, 3.5},
		{"max", Max{}, int64(2), int64(9), int64(9)},
		{"max strings", Max{}, "b", "a", "b"},
		{"min", Min{}, int64(2), int64(9), int64(2)},
		{"and", And{}, true, false, false},
		{"or", Or{}, true, false, true},
		{"set union", SetUnion{}, []string{"b", "a"}, []string{"c", "a"}, []string{"a", "b", "c"}},
		{"concat default separator", Concat{}, "x", "y", "x,y"},
		{"concat separator", Concat{Separator: "|"}, "x", "y", "x|y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.f.Apply(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateIncompatible(t *testing.T) {
	for _, f := range []AggregateFunction{Sum{}, Max{}, Min{}, And{}, Or{}, SetUnion{}, Concat{}} {
		_, err := f.Apply(struct{}{}, "x")
		assert.ErrorIs(t, err, ErrIncompatibleValues, f.Spec().Class)
	}
}

func TestSumIsCommutativeAndAssociative(t *testing.T) {
	values := []int64{-7, 0, 3, 1 << 40}
	sum := Sum{}
	for _, a := range values {
		for _, b := range values {
			ab, _ := sum.Apply(a, b)
			ba, _ := sum.Apply(b, a)
			assert.Equal(t, ab, ba)
			for _, c := range values {
				left, _ := sum.Apply(ab, c)
				bc, _ := sum.Apply(b, c)
				right, _ := sum.Apply(a, bc)
				assert.Equal(t, left, right)
			}
		}
	}
}

func TestConcatIsAssociativeNotCommutative(t *testing.T) {
	c := Concat{}
	ab, _ := c.Apply("a", "b")
	ba, _ := c.Apply("b", "a")
	assert.NotEqual(t, ab, ba)

	left, _ := c.Apply(ab, "c")
	bc, _ := c.Apply("b", "c")
	right, _ := c.Apply("a", bc)
	assert.Equal(t, left, right)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		p    Predicate
		v    any
		want bool
	}{
		{"exists", Exists{}, 1, true},
		{"exists nil", Exists{}, nil, false},
		{"isa int64", IsA{Class: ClassInt64}, 5, true},
		{"isa mismatch", IsA{Class: ClassString}, 5, false},
		{"more than", IsMoreThan{Value: 0}, int64(1), true},
		{"more than float bound", IsMoreThan{Value: 0.5}, int64(1), true},
		{"not more than", IsMoreThan{Value: 1}, int64(1), false},
		{"more than or equal", IsMoreThan{Value: 1, OrEqualTo: true}, int64(1), true},
		{"less than", IsLessThan{Value: "m"}, "a", true},
		{"less than wrong type", IsLessThan{Value: 3}, "a", false},
		{"equal numeric", IsEqual{Value: float64(2)}, int64(2), true},
		{"equal slices", IsEqual{Value: []string{"a"}}, []string{"a"}, true},
		{"in", IsIn{Values: []any{"a", "b"}}, "b", true},
		{"not in", IsIn{Values: []any{"a", "b"}}, "c", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Test(tt.v))
		})
	}
}

func TestSpecRoundTrip(t *testing.T) {
	for _, class := range AggregateClasses() {
		f, err := NewAggregate(Spec{Class: class})
		require.NoError(t, err)
		assert.Equal(t, class, f.Spec().Class)
	}

	p, err := NewPredicate(Spec{Class: "IsMoreThan", Value: 3, OrEqualTo: true})
	require.NoError(t, err)
	assert.Equal(t, Spec{Class: "IsMoreThan", Value: 3, OrEqualTo: true}, p.Spec())

	_, err = NewAggregate(Spec{Class: "Median"})
	assert.ErrorIs(t, err, ErrUnknownFunction)
	_, err = NewPredicate(Spec{Class: "IsMoreThan"})
	assert.Error(t, err)
	_, err = NewPredicate(Spec{Class: "IsA", Type: "complex"})
	assert.Error(t, err)
}

func TestSpecCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "int", in: 3, want: int64(3)},
		{name: "int64 beyond float precision", in: int64(9007199254740993), want: int64(9007199254740993)},
		{name: "integral float", in: 200.0, want: int64(200)},
		{name: "fraction", in: 1.5, want: 1.5},
		{name: "float32", in: float32(0.5), want: 0.5},
		{name: "json number", in: json.Number("9007199254740993"), want: int64(9007199254740993)},
		{name: "json fraction", in: json.Number("2.25"), want: 2.25},
		{name: "string", in: "7", want: "7"},
		{name: "nil", in: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Spec{Class: "IsEqual", Value: tt.in}.Canonical().Value)
		})
	}

	in := Spec{Class: "IsIn", Values: []any{1, "a", []any{json.Number("2")}}}
	out := in.Canonical()
	assert.Equal(t, []any{int64(1), "a", []any{int64(2)}}, out.Values)
	out.Values[1] = "b"
	assert.Equal(t, "a", in.Values[1])
}
