package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/elasticjava/gaffer/element"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Zipf returns a Zipfian-distributed value in [0, n): P(k) ∝ 1/k^s.
// s=0 is uniform; larger s concentrates draws on low values.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}
	if s == 0 {
		return r.rand.Intn(n)
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// Vertex returns the name of the i-th generated vertex. Names sort in index
// order.
func Vertex(i int) string {
	return fmt.Sprintf("v%05d", i)
}

// GraphOptions describes a random graph.
type GraphOptions struct {
	// Vertices is the number of distinct vertices.
	Vertices int
	// Edges is the number of edges generated. Repeated endpoints produce
	// duplicates that aggregate on write.
	Edges int
	// EntityGroup, when set, adds one entity per vertex.
	EntityGroup string
	// EdgeGroups are drawn uniformly. Defaults to a single "edge" group.
	EdgeGroups []string
	// DirectedRatio is the fraction of directed edges.
	DirectedRatio float64
	// Skew is the Zipf exponent for endpoint choice; 0 is uniform.
	Skew float64
	// CountProperty, when set, is given the value 1 on every element.
	CountProperty string
}

// Graph generates entities and edges per o.
func (r *RNG) Graph(o GraphOptions) []element.Element {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := o.EdgeGroups
	if len(groups) == 0 {
		groups = []string{"edge"}
	}
	withCount := func(p element.Properties) element.Properties {
		if o.CountProperty != "" {
			p[o.CountProperty] = int64(1)
		}
		return p
	}

	out := make([]element.Element, 0, o.Vertices+o.Edges)
	if o.EntityGroup != "" {
		for i := range o.Vertices {
			out = append(out, &element.Entity{
				Group:      o.EntityGroup,
				Vertex:     Vertex(i),
				Properties: withCount(element.Properties{}),
			})
		}
	}
	for range o.Edges {
		out = append(out, &element.Edge{
			Group:       groups[r.rand.Intn(len(groups))],
			Source:      Vertex(r.zipfLocked(o.Vertices, o.Skew)),
			Destination: Vertex(r.zipfLocked(o.Vertices, o.Skew)),
			Directed:    r.rand.Float64() < o.DirectedRatio,
			Properties:  withCount(element.Properties{}),
		})
	}
	return out
}
