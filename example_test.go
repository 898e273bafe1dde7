package gaffer_test

import (
	"context"
	"fmt"
	"log"

	"github.com/elasticjava/gaffer"
	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/schema"
)

const exampleSchema = `{
  "entities": {"person": {"properties": {"count": "count"}}},
  "edges": {"knows": {"properties": {"count": "count"}}},
  "types": {
    "count": {"class": "int64", "serialiser": "ordered-int64", "aggregateFunction": {"class": "Sum"}}
  },
  "vertexSerialiser": "string"
}`

// Example demonstrates ingest with aggregation and a seeded query.
func Example() {
	ctx := context.Background()

	s, err := schema.FromJSON([]byte(exampleSchema))
	if err != nil {
		log.Fatal(err)
	}
	g, err := gaffer.Open(ctx, s)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	err = g.AddElements(ctx,
		element.NewEntity("person", "alice").WithProperty("count", int64(1)),
		element.NewEntity("person", "alice").WithProperty("count", int64(2)),
		element.NewEdge("knows", "alice", "bob", true).WithProperty("count", int64(1)),
	)
	if err != nil {
		log.Fatal(err)
	}

	out, err := g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")), gaffer.WithEdges(false))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out[0].ElementProperties()["count"])
	// Output: 3
}

// ExampleGraph_GetAdjacentIDs demonstrates following outgoing edges.
func ExampleGraph_GetAdjacentIDs() {
	ctx := context.Background()

	s, err := schema.FromJSON([]byte(exampleSchema))
	if err != nil {
		log.Fatal(err)
	}
	g, err := gaffer.Open(ctx, s, gaffer.WithPartitions(4))
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	err = g.AddElements(ctx,
		element.NewEdge("knows", "alice", "bob", true),
		element.NewEdge("knows", "carol", "alice", true),
	)
	if err != nil {
		log.Fatal(err)
	}

	ids, err := g.GetAdjacentIDs(ctx, element.Seeds("alice"), gaffer.WithDirection(element.DirectionOutgoing))
	if err != nil {
		log.Fatal(err)
	}
	for _, id := range ids {
		fmt.Println(id.Vertex)
	}
	// Output: bob
}

// ExampleGraph_NewBulkWriter demonstrates buffered ingest.
func ExampleGraph_NewBulkWriter() {
	ctx := context.Background()

	s, err := schema.FromJSON([]byte(exampleSchema))
	if err != nil {
		log.Fatal(err)
	}
	g, err := gaffer.Open(ctx, s, gaffer.WithBulkBuffer(100))
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	w := g.NewBulkWriter()
	for range 10 {
		if err := w.Add(ctx, element.NewEntity("person", "alice").WithProperty("count", int64(1))); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Println(w.Buffered())
	if err := w.Close(ctx); err != nil {
		log.Fatal(err)
	}

	out, err := g.GetAllElements(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out[0].ElementProperties()["count"])
	// Output:
	// 1
	// 10
}
