// Package testutil provides testing utilities for graph stores.
//
// This package is intended for use in tests and benchmarks only.
// It generates random graphs and keeps an in-memory reference model to
// check query results against.
//
// # Random Graphs
//
//	rng := testutil.NewRNG(seed)
//	elems := rng.Graph(testutil.GraphOptions{Vertices: 100, Edges: 500, Skew: 1.2})
//
// # Reference Model
//
//	ref, _ := testutil.NewReference(s)
//	_ = ref.Add(elems...)
//	want := ref.Adjacent(seeds, element.DirectionOutgoing)
package testutil
