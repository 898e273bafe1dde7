package gaffer_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticjava/gaffer"
	"github.com/elasticjava/gaffer/blobstore"
	"github.com/elasticjava/gaffer/catalog"
	"github.com/elasticjava/gaffer/config"
	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/function"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/schema"
	"github.com/elasticjava/gaffer/store/memkv"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder().
		VertexSerialiser("string").
		Type("count", schema.TypeDefinition{
			Class:             function.ClassInt64,
			Serialiser:        "ordered-int64",
			AggregateFunction: &function.Spec{Class: "Sum"},
		}).
		Type("age", schema.TypeDefinition{
			Class:      function.ClassInt64,
			Serialiser: "ordered-int64",
			Validators: []function.Spec{{Class: "IsLessThan", Value: 200}},
		}).
		Entity("Person", schema.ElementDefinition{
			Properties: []schema.Property{{Name: "age", Type: "age"}, {Name: "count", Type: "count"}},
		}).
		Edge("knows", schema.ElementDefinition{
			Properties: []schema.Property{{Name: "weight", Type: "count"}},
		}).
		Edge("created", schema.ElementDefinition{
			Properties: []schema.Property{{Name: "weight", Type: "count"}},
		}).
		Build()
	require.NoError(t, err)
	return s
}

func person(name string, age int64) *element.Entity {
	return element.NewEntity("Person", name).WithProperty("age", age).WithProperty("count", int64(1))
}

func edge(group, src, dst string, directed bool, weight int64) *element.Edge {
	return element.NewEdge(group, src, dst, directed).WithProperty("weight", weight)
}

// fixture:
//
//	alice -knows-> bob -knows-> carol
//	alice -created- dave
func fixture() []element.Element {
	return []element.Element{
		person("alice", 30),
		person("bob", 40),
		edge("knows", "alice", "bob", true, 1),
		edge("knows", "bob", "carol", true, 2),
		edge("created", "dave", "alice", false, 5),
	}
}

func openGraph(t *testing.T, opts ...gaffer.Option) *gaffer.Graph {
	t.Helper()
	g, err := gaffer.Open(context.Background(), testSchema(t), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func loadedGraph(t *testing.T, opts ...gaffer.Option) *gaffer.Graph {
	t.Helper()
	g := openGraph(t, opts...)
	require.NoError(t, g.AddElements(context.Background(), fixture()...))
	return g
}

// describe renders elements compactly; undirected endpoints are sorted.
func describe(elems []element.Element) []string {
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		switch x := e.(type) {
		case *element.Entity:
			out = append(out, fmt.Sprintf("%s[%v]", x.Group, x.Vertex))
		case *element.Edge:
			if x.Directed {
				out = append(out, fmt.Sprintf("%s[%v->%v]", x.Group, x.Source, x.Destination))
				continue
			}
			a, b := fmt.Sprint(x.Source), fmt.Sprint(x.Destination)
			if b < a {
				a, b = b, a
			}
			out = append(out, fmt.Sprintf("%s[%s-%s]", x.Group, a, b))
		}
	}
	return out
}

func vertices(seeds []element.EntitySeed) []any {
	out := make([]any, len(seeds))
	for i, s := range seeds {
		out[i] = s.Vertex
	}
	return out
}

func TestGetElements(t *testing.T) {
	g := loadedGraph(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		seeds []element.Seed
		opts  []gaffer.QueryOption
		want  []string
	}{
		{
			name:  "entity seed",
			seeds: element.AsSeeds(element.Seeds("alice")),
			want:  []string{"Person[alice]", "knows[alice->bob]", "created[alice-dave]"},
		},
		{
			name:  "entities only",
			seeds: element.AsSeeds(element.Seeds("alice")),
			opts:  []gaffer.QueryOption{gaffer.WithEdges(false)},
			want:  []string{"Person[alice]"},
		},
		{
			name:  "edges only",
			seeds: element.AsSeeds(element.Seeds("alice")),
			opts:  []gaffer.QueryOption{gaffer.WithEntities(false)},
			want:  []string{"knows[alice->bob]", "created[alice-dave]"},
		},
		{
			name:  "outgoing",
			seeds: element.AsSeeds(element.Seeds("bob")),
			opts:  []gaffer.QueryOption{gaffer.WithEntities(false), gaffer.WithDirection(element.DirectionOutgoing)},
			want:  []string{"knows[bob->carol]"},
		},
		{
			name:  "incoming",
			seeds: element.AsSeeds(element.Seeds("bob")),
			opts:  []gaffer.QueryOption{gaffer.WithEntities(false), gaffer.WithDirection(element.DirectionIncoming)},
			want:  []string{"knows[alice->bob]"},
		},
		{
			name:  "incoming keeps undirected",
			seeds: element.AsSeeds(element.Seeds("alice")),
			opts:  []gaffer.QueryOption{gaffer.WithEntities(false), gaffer.WithDirection(element.DirectionIncoming)},
			want:  []string{"created[alice-dave]"},
		},
		{
			name:  "directed only",
			seeds: element.AsSeeds(element.Seeds("alice")),
			opts:  []gaffer.QueryOption{gaffer.WithEntities(false), gaffer.WithDirectedType(element.DirectedOnly)},
			want:  []string{"knows[alice->bob]"},
		},
		{
			name:  "undirected only",
			seeds: element.AsSeeds(element.Seeds("alice")),
			opts:  []gaffer.QueryOption{gaffer.WithDirectedType(element.UndirectedOnly)},
			want:  []string{"Person[alice]", "created[alice-dave]"},
		},
		{
			name:  "edge group",
			seeds: element.AsSeeds(element.Seeds("alice")),
			opts:  []gaffer.QueryOption{gaffer.WithGroups("created")},
			want:  []string{"created[alice-dave]"},
		},
		{
			name:  "entity group",
			seeds: element.AsSeeds(element.Seeds("alice")),
			opts:  []gaffer.QueryOption{gaffer.WithGroups("Person")},
			want:  []string{"Person[alice]"},
		},
		{
			name:  "vertex without entity",
			seeds: element.AsSeeds(element.Seeds("carol")),
			want:  []string{"knows[bob->carol]"},
		},
		{
			name:  "unknown vertex",
			seeds: element.AsSeeds(element.Seeds("zoe")),
			want:  []string{},
		},
		{
			name:  "edge between two seeds is returned per seed",
			seeds: element.AsSeeds(element.Seeds("alice", "bob")),
			opts:  []gaffer.QueryOption{gaffer.WithGroups("knows")},
			want:  []string{"knows[alice->bob]", "knows[alice->bob]", "knows[bob->carol]"},
		},
		{
			name:  "edge seed",
			seeds: []element.Seed{element.EdgeSeed{Source: "alice", Destination: "bob"}},
			want:  []string{"knows[alice->bob]"},
		},
		{
			name:  "edge seed against direction",
			seeds: []element.Seed{element.EdgeSeed{Source: "bob", Destination: "alice"}},
			want:  []string{},
		},
		{
			name:  "undirected edge seed either orientation",
			seeds: []element.Seed{element.EdgeSeed{Source: "dave", Destination: "alice", Directed: element.UndirectedOnly}},
			want:  []string{"created[alice-dave]"},
		},
		{
			name:  "directed edge seed excludes undirected",
			seeds: []element.Seed{element.EdgeSeed{Source: "alice", Destination: "dave", Directed: element.DirectedOnly}},
			want:  []string{},
		},
		{
			name:  "pointer seeds",
			seeds: []element.Seed{&element.EntitySeed{Vertex: "carol"}, &element.EdgeSeed{Source: "bob", Destination: "carol"}},
			want:  []string{"knows[bob->carol]", "knows[bob->carol]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.GetElements(ctx, tt.seeds, tt.opts...)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, describe(got))
		})
	}
}

func TestGetElementsProperties(t *testing.T) {
	g := loadedGraph(t)

	got, err := g.GetElements(context.Background(), []element.Seed{element.EdgeSeed{Source: "bob", Destination: "carol"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ElementProperties()["weight"])
}

func TestGetElementsUnknownGroup(t *testing.T) {
	g := loadedGraph(t)

	_, err := g.GetElements(context.Background(), element.AsSeeds(element.Seeds("alice")), gaffer.WithGroups("nope"))
	assert.ErrorIs(t, err, gaffer.ErrUnknownGroup)
}

func TestGetAllElements(t *testing.T) {
	want := []string{"Person[alice]", "Person[bob]", "knows[alice->bob]", "knows[bob->carol]", "created[alice-dave]"}

	for _, partitions := range []int{1, 4} {
		t.Run(fmt.Sprintf("partitions=%d", partitions), func(t *testing.T) {
			g := loadedGraph(t, gaffer.WithPartitions(partitions))
			assert.Equal(t, partitions, g.Partitions())

			got, err := g.GetAllElements(context.Background())
			require.NoError(t, err)
			assert.ElementsMatch(t, want, describe(got))

			got, err = g.GetAllElements(context.Background(), gaffer.WithEdges(false))
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"Person[alice]", "Person[bob]"}, describe(got))

			got, err = g.GetAllElements(context.Background(), gaffer.WithEntities(false), gaffer.WithDirectedType(element.UndirectedOnly))
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"created[alice-dave]"}, describe(got))

			got, err = g.GetAllElements(context.Background(), gaffer.WithGroups("knows"))
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"knows[alice->bob]", "knows[bob->carol]"}, describe(got))
		})
	}
}

func TestGetAdjacentIDs(t *testing.T) {
	g := loadedGraph(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		seeds []element.EntitySeed
		opts  []gaffer.QueryOption
		want  []any
	}{
		{name: "either", seeds: element.Seeds("alice"), want: []any{"bob", "dave"}},
		{name: "outgoing", seeds: element.Seeds("bob"), opts: []gaffer.QueryOption{gaffer.WithDirection(element.DirectionOutgoing)}, want: []any{"carol"}},
		{name: "incoming", seeds: element.Seeds("bob"), opts: []gaffer.QueryOption{gaffer.WithDirection(element.DirectionIncoming)}, want: []any{"alice"}},
		{name: "undirected matches both ends", seeds: element.Seeds("dave"), opts: []gaffer.QueryOption{gaffer.WithDirection(element.DirectionOutgoing)}, want: []any{"alice"}},
		{name: "group", seeds: element.Seeds("alice"), opts: []gaffer.QueryOption{gaffer.WithGroups("created")}, want: []any{"dave"}},
		{name: "entities never contribute", seeds: element.Seeds("alice"), opts: []gaffer.QueryOption{gaffer.WithEdges(false)}, want: []any{"bob", "dave"}},
		{name: "no edges", seeds: element.Seeds("zoe"), want: []any{}},
		{name: "edge between two seeds", seeds: element.Seeds("alice", "bob"), want: []any{"bob", "dave", "alice", "carol"}},
		{name: "edge between two seeds outgoing", seeds: element.Seeds("alice", "bob"), opts: []gaffer.QueryOption{gaffer.WithDirection(element.DirectionOutgoing), gaffer.WithGroups("knows")}, want: []any{"bob", "carol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.GetAdjacentIDs(ctx, tt.seeds, tt.opts...)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, vertices(got))
		})
	}
}

func TestTraverse(t *testing.T) {
	g := loadedGraph(t)
	ctx := context.Background()

	got, err := g.Traverse(ctx, element.Seeds("alice"), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"bob", "dave"}, vertices(got))

	got, err = g.Traverse(ctx, element.Seeds("alice"), 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"alice", "carol"}, vertices(got))

	got, err = g.Traverse(ctx, element.Seeds("alice"), 2, gaffer.WithExcludeVisited(true))
	require.NoError(t, err)
	assert.Equal(t, []any{"carol"}, vertices(got))

	got, err = g.Traverse(ctx, element.Seeds("alice"), 2, gaffer.WithDirection(element.DirectionOutgoing), gaffer.WithGroups("knows"))
	require.NoError(t, err)
	assert.Equal(t, []any{"carol"}, vertices(got))

	got, err = g.Traverse(ctx, element.Seeds("carol"), 3, gaffer.WithDirection(element.DirectionOutgoing))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = g.Traverse(ctx, element.Seeds("alice"), 0)
	assert.ErrorIs(t, err, gaffer.ErrInvalidConfiguration)
}

func TestIntegerVertices(t *testing.T) {
	s, err := schema.NewBuilder().
		VertexSerialiser("ordered-int64").
		Entity("node", schema.ElementDefinition{}).
		Edge("link", schema.ElementDefinition{}).
		Build()
	require.NoError(t, err)
	g, err := gaffer.Open(context.Background(), s, gaffer.WithPartitions(3))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	ctx := context.Background()

	require.NoError(t, g.AddElements(ctx,
		element.NewEntity("node", 1),
		element.NewEdge("link", 1, 2, true),
		element.NewEdge("link", 2, 3, true),
	))

	adj, err := g.GetAdjacentIDs(ctx, element.Seeds(1))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2)}, vertices(adj))

	adj, err = g.GetAdjacentIDs(ctx, element.Seeds(int32(2)), gaffer.WithDirection(element.DirectionIncoming))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, vertices(adj))

	got, err := g.GetElements(ctx, []element.Seed{element.EdgeSeed{Source: 1, Destination: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"link[1->2]"}, describe(got))

	got, err = g.GetElements(ctx, []element.Seed{element.EdgeSeed{Source: 2, Destination: 1}})
	require.NoError(t, err)
	assert.Empty(t, got)

	reached, err := g.Traverse(ctx, element.Seeds(1), 2, gaffer.WithExcludeVisited(true))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3)}, vertices(reached))
}

func TestAddElementsAggregates(t *testing.T) {
	g := loadedGraph(t)
	ctx := context.Background()

	require.NoError(t, g.AddElements(ctx,
		person("alice", 31),
		edge("knows", "alice", "bob", true, 10),
		edge("created", "alice", "dave", false, 1),
	))
	require.NoError(t, g.AddElements(ctx, person("alice", 32), person("alice", 33)))

	got, err := g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")))
	require.NoError(t, err)
	require.Len(t, got, 3)

	props := map[string]element.Properties{}
	for i, d := range describe(got) {
		props[d] = got[i].ElementProperties()
	}
	assert.Equal(t, int64(4), props["Person[alice]"]["count"])
	assert.Equal(t, int64(33), props["Person[alice]"]["age"])
	assert.Equal(t, int64(11), props["knows[alice->bob]"]["weight"])
	assert.Equal(t, int64(6), props["created[alice-dave]"]["weight"])

	// the incorrect-way key under bob is aggregated too
	got, err = g.GetElements(ctx, []element.Seed{element.EntitySeed{Vertex: "bob"}}, gaffer.WithGroups("knows"), gaffer.WithDirection(element.DirectionIncoming))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].ElementProperties()["weight"])
}

func TestAddElementsSelfLoop(t *testing.T) {
	g := openGraph(t)
	ctx := context.Background()
	require.NoError(t, g.AddElements(ctx, edge("knows", "alice", "alice", true, 1)))

	got, err := g.GetAllElements(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"knows[alice->alice]"}, describe(got))

	got, err = g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAddElementsValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects the batch", func(t *testing.T) {
		g := openGraph(t)
		err := g.AddElements(ctx, person("alice", 30), person("bob", 300))
		assert.ErrorIs(t, err, gaffer.ErrInvalidElement)

		got, err := g.GetAllElements(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown group", func(t *testing.T) {
		g := openGraph(t)
		err := g.AddElements(ctx, element.NewEntity("Robot", "r2"))
		assert.ErrorIs(t, err, gaffer.ErrUnknownGroup)
	})

	t.Run("unknown property", func(t *testing.T) {
		g := openGraph(t)
		err := g.AddElements(ctx, person("alice", 30).WithProperty("colour", "red"))
		assert.ErrorIs(t, err, gaffer.ErrUnknownProperty)
	})

	t.Run("skip invalid", func(t *testing.T) {
		metrics := &gaffer.BasicMetricsCollector{}
		g := openGraph(t, gaffer.WithSkipInvalid(true), gaffer.WithMetricsCollector(metrics))
		require.NoError(t, g.AddElements(ctx, person("alice", 30), person("bob", 300), element.NewEntity("Robot", "r2")))

		got, err := g.GetAllElements(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Person[alice]"}, describe(got))

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.AddCount)
		assert.Equal(t, int64(3), stats.AddElements)
		assert.Equal(t, int64(2), stats.AddSkipped)
		assert.Equal(t, int64(1), stats.QueryCount)
		assert.Equal(t, int64(1), stats.QueryResults)
	})
}

func TestCompression(t *testing.T) {
	for _, c := range []keycodec.Compression{keycodec.CompressionNone, keycodec.CompressionLZ4, keycodec.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			g := loadedGraph(t, gaffer.WithCompression(c))
			got, err := g.GetElements(context.Background(), []element.Seed{element.EdgeSeed{Source: "dave", Destination: "alice"}})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, int64(5), got[0].ElementProperties()["weight"])
		})
	}
}

func TestMalformedKeyAbortsScan(t *testing.T) {
	kv := memkv.New()
	g := openGraph(t, gaffer.WithStores(kv))
	ctx := context.Background()
	require.NoError(t, g.AddElements(ctx, person("alice", 30)))

	// a key under alice's row with a valid flag but a missing group field
	require.NoError(t, kv.Put(ctx, []byte("alice\x00\x01"), nil))

	_, err := g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")))
	assert.ErrorIs(t, err, gaffer.ErrMalformedKey)

	_, err = g.GetAllElements(ctx)
	assert.ErrorIs(t, err, gaffer.ErrMalformedKey)
}

func TestClosedGraph(t *testing.T) {
	g := loadedGraph(t)
	ctx := context.Background()
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())

	assert.ErrorIs(t, g.AddElements(ctx, person("carol", 20)), gaffer.ErrClosed)
	_, err := g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")))
	assert.ErrorIs(t, err, gaffer.ErrClosed)
	_, err = g.GetAllElements(ctx)
	assert.ErrorIs(t, err, gaffer.ErrClosed)
	_, err = g.GetAdjacentIDs(ctx, element.Seeds("alice"))
	assert.ErrorIs(t, err, gaffer.ErrClosed)
	_, err = g.Traverse(ctx, element.Seeds("alice"), 1)
	assert.ErrorIs(t, err, gaffer.ErrClosed)
}

func TestOpenWithCatalog(t *testing.T) {
	ctx := context.Background()
	cat := catalog.New(blobstore.NewMemoryStore())

	_, err := gaffer.Open(ctx, nil, gaffer.WithCatalog(cat, "social"))
	assert.ErrorIs(t, err, gaffer.ErrNotFound)

	first, err := gaffer.Open(ctx, testSchema(t), gaffer.WithCatalog(cat, "social"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := gaffer.Open(ctx, nil, gaffer.WithCatalog(cat, "social"))
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, testSchema(t).EdgeGroups(), second.Schema().EdgeGroups())

	revisions, err := cat.Revisions(ctx, "social")
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestOpenWithoutSchema(t *testing.T) {
	_, err := gaffer.Open(context.Background(), nil)
	assert.ErrorIs(t, err, gaffer.ErrNoSchema)
}

func TestOpenWithProperties(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		props config.StoreProperties
	}{
		{name: "memory", props: config.StoreProperties{Backend: config.BackendMemory, Partitions: 2}},
		{name: "badger in memory", props: config.StoreProperties{Backend: config.BackendBadger, InMemory: true, Partitions: 2}},
		{name: "badger on disk", props: config.StoreProperties{Backend: config.BackendBadger, Path: filepath.Join(dir, "badger"), Partitions: 2}},
		{name: "bolt", props: config.StoreProperties{Backend: config.BackendBolt, Path: filepath.Join(dir, "bolt", "graph.db"), Partitions: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := config.Default()
			p.Backend = tt.props.Backend
			p.Path = tt.props.Path
			p.InMemory = tt.props.InMemory
			p.Partitions = tt.props.Partitions
			p.Compression = "zstd"

			g, err := gaffer.OpenWithProperties(context.Background(), p, testSchema(t), gaffer.WithLogger(gaffer.NoopLogger()))
			require.NoError(t, err)
			defer g.Close()
			assert.Equal(t, tt.props.Partitions, g.Partitions())

			require.NoError(t, g.AddElements(context.Background(), fixture()...))
			require.NoError(t, g.AddElements(context.Background(), edge("knows", "alice", "bob", true, 4)))

			got, err := g.GetAllElements(context.Background(), gaffer.WithGroups("knows"))
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"knows[alice->bob]", "knows[bob->carol]"}, describe(got))

			adj, err := g.GetAdjacentIDs(context.Background(), element.Seeds("bob"), gaffer.WithDirection(element.DirectionIncoming))
			require.NoError(t, err)
			assert.Equal(t, []any{"alice"}, vertices(adj))

			got, err = g.GetElements(context.Background(), []element.Seed{element.EdgeSeed{Source: "alice", Destination: "bob"}})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, int64(5), got[0].ElementProperties()["weight"])
		})
	}
}

func TestOpenWithPropertiesInvalid(t *testing.T) {
	p := config.Default()
	p.Backend = config.BackendBolt

	_, err := gaffer.OpenWithProperties(context.Background(), p, testSchema(t))
	assert.ErrorIs(t, err, gaffer.ErrInvalidConfiguration)
}

func TestOpenFromFile(t *testing.T) {
	dir := t.TempDir()
	schemaJSON, err := testSchema(t).ToJSON(true)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "schema.json"), schemaJSON)
	writeFile(t, filepath.Join(dir, "store.yaml"), []byte(`
backend: bolt
path: `+filepath.Join(dir, "graph.db")+`
partitions: 2
schema:
  - schema.json
log:
  level: error
`))

	g, err := gaffer.OpenFromFile(context.Background(), filepath.Join(dir, "store.yaml"), gaffer.WithLogger(gaffer.NoopLogger()))
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, 2, g.Partitions())
	assert.Equal(t, []string{"Person"}, g.Schema().EntityGroups())
}

func TestWithUserIsPropagated(t *testing.T) {
	ctx := gaffer.WithUser(context.Background(), gaffer.User{ID: "analyst", DataAuths: []string{"public"}})
	assert.Equal(t, "analyst", gaffer.UserFrom(ctx).ID)
	assert.Equal(t, gaffer.UnknownUserID, gaffer.UserFrom(context.Background()).ID)

	g := loadedGraph(t)
	_, err := g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")))
	require.NoError(t, err)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o600))
}
