package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/function"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder().
		Type("count", schema.TypeDefinition{Class: function.ClassInt64, Serialiser: "ordered-int64",
			AggregateFunction: &function.Spec{Class: "Sum"}}).
		Type("names", schema.TypeDefinition{Class: function.ClassString, Serialiser: "string",
			AggregateFunction: &function.Spec{Class: "Concat"}}).
		Type("note", schema.TypeDefinition{Class: function.ClassString, Serialiser: "string"}).
		Type("day", schema.TypeDefinition{Class: function.ClassString, Serialiser: "string",
			Position: schema.PositionColumnQualifier}).
		Entity("node", schema.ElementDefinition{Properties: []schema.Property{
			{Name: "count", Type: "count"}, {Name: "names", Type: "names"}, {Name: "note", Type: "note"},
		}}).
		Entity("other", schema.ElementDefinition{Properties: []schema.Property{{Name: "count", Type: "count"}}}).
		Edge("link", schema.ElementDefinition{Properties: []schema.Property{
			{Name: "day", Type: "day"}, {Name: "count", Type: "count"},
		}}).
		Build()
	require.NoError(t, err)
	return s
}

func node(count int64) *element.Entity {
	return element.NewEntity("node", "v").WithProperty("count", count)
}

func TestMerge(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name string
		a, b element.Element
		want element.Properties
	}{
		{"sum", node(2), node(3), element.Properties{"count": int64(5)}},
		{"one side only", node(2), element.NewEntity("node", "v"), element.Properties{"count": int64(2)}},
		{"other side only", element.NewEntity("node", "v"), node(4), element.Properties{"count": int64(4)}},
		{
			"latest wins without function",
			node(1).WithProperty("note", "old"),
			node(1).WithProperty("note", "new"),
			element.Properties{"count": int64(2), "note": "new"},
		},
		{
			"latest keeps earlier value when absent",
			node(1).WithProperty("note", "old"),
			node(1),
			element.Properties{"count": int64(2), "note": "old"},
		},
		{
			"concat keeps order",
			element.NewEntity("node", "v").WithProperty("names", "a"),
			element.NewEntity("node", "v").WithProperty("names", "b"),
			element.Properties{"names": "a,b"},
		},
		{
			"undirected edges in either orientation",
			element.NewEdge("link", "x", "y", false).WithProperty("count", int64(1)),
			element.NewEdge("link", "y", "x", false).WithProperty("count", int64(1)),
			element.Properties{"count": int64(2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(s, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ElementProperties())
			assert.True(t, element.SameIdentity(tt.a, got))
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	s := testSchema(t)
	a, b := node(1), node(2)
	_, err := Merge(s, a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.Properties["count"])
	assert.Equal(t, int64(2), b.Properties["count"])
}

func TestMergeErrors(t *testing.T) {
	s := testSchema(t)

	_, err := Merge(s, node(1), element.NewEntity("other", "v"))
	assert.ErrorIs(t, err, ErrGroupMismatch)

	_, err = Merge(s, node(1), element.NewEntity("node", "w"))
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	_, err = Merge(s,
		element.NewEdge("link", "x", "y", true).WithProperty("day", "mon"),
		element.NewEdge("link", "x", "y", true).WithProperty("day", "tue"))
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	_, err = Merge(s, element.NewEdge("link", "x", "y", true), element.NewEdge("link", "y", "x", true))
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	_, err = Merge(s, node(1), element.NewEntity("node", "v").WithProperty("count", "x"))
	assert.Error(t, err)

	_, err = Merge(s, nil, node(1))
	assert.Error(t, err)
}

func TestMergeIsCommutativeAndAssociativeForSum(t *testing.T) {
	s := testSchema(t)
	values := []int64{-3, 0, 1, 1000}

	for _, x := range values {
		for _, y := range values {
			xy, err := Merge(s, node(x), node(y))
			require.NoError(t, err)
			yx, err := Merge(s, node(y), node(x))
			require.NoError(t, err)
			assert.True(t, element.Equal(xy, yx))

			for _, z := range values {
				left, err := Merge(s, xy, node(z))
				require.NoError(t, err)
				yz, err := Merge(s, node(y), node(z))
				require.NoError(t, err)
				right, err := Merge(s, node(x), yz)
				require.NoError(t, err)
				assert.True(t, element.Equal(left, right))
			}
		}
	}
}

func TestConcatIsNotCommutative(t *testing.T) {
	s := testSchema(t)
	a := element.NewEntity("node", "v").WithProperty("names", "a")
	b := element.NewEntity("node", "v").WithProperty("names", "b")

	ab, err := Merge(s, a, b)
	require.NoError(t, err)
	ba, err := Merge(s, b, a)
	require.NoError(t, err)
	assert.False(t, element.Equal(ab, ba))
}

func TestReduce(t *testing.T) {
	s := testSchema(t)
	got, err := Reduce(s, node(1), node(2), node(3))
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.ElementProperties()["count"])

	_, err = Reduce(s)
	assert.Error(t, err)
}

func TestValueMerger(t *testing.T) {
	s := testSchema(t)
	c, err := keycodec.NewConverter(s)
	require.NoError(t, err)

	a, err := c.Encode(node(2))
	require.NoError(t, err)
	b, err := c.Encode(node(5))
	require.NoError(t, err)

	merged, err := ValueMerger(c)(a[0].Key, a[0].Value, b[0].Value)
	require.NoError(t, err)

	got, err := c.Decode(a[0].Key, merged)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ElementProperties()["count"])
}
