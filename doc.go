// Package gaffer is an embedded property-graph store built on ordered
// key-value storage.
//
// Entities (vertices with properties) and edges (directed or undirected,
// with properties) are grouped, typed and aggregated according to a
// schema. Every element is stored under byte-sortable keys whose final byte
// records what kind of element the key holds, so scans can skip entities,
// edges of a given directedness or edges pointing the wrong way without
// decoding them. Elements sharing an identity are aggregated on write.
//
// # Quick Start
//
//	s, _ := schema.FromJSON(schemaJSON)
//	g, _ := gaffer.Open(ctx, s)
//	defer g.Close()
//
//	_ = g.AddElements(ctx,
//	    element.NewEntity("person", "alice").WithProperty("count", int64(1)),
//	    element.NewEdge("knows", "alice", "bob", true).WithProperty("count", int64(1)),
//	)
//
//	out, _ := g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")), gaffer.WithDirection(element.DirectionOutgoing))
//	ids, _ := g.GetAdjacentIDs(ctx, element.Seeds("alice"))
//
// # Storage
//
// Without further options a graph lives in memory. Use WithStores to supply
// one store.KV per partition (see store/badgerkv and store/boltkv), or
// OpenWithProperties to open the backends described by a YAML properties
// file (see package config). Row vertices are hashed to partitions, so all
// keys of a vertex live together.
//
// # Schema Catalog
//
// WithCatalog publishes the schema to a blob store on Open, or fetches it
// when Open is called without one, so every process serving a graph agrees
// on the same schema bytes.
package gaffer
