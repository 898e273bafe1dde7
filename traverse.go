package gaffer

import (
	"context"
	"fmt"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/internal/vertexset"
)

// Traverse follows edges from seeds for the given number of hops and returns
// the distinct vertices reached on the last hop, in discovery order.
//
// With WithExcludeVisited(true) a vertex reached on an earlier hop, or given
// as a seed, is not revisited. Traversal stops early when a hop reaches no
// new vertices.
func (g *Graph) Traverse(ctx context.Context, seeds []element.EntitySeed, hops int, opts ...QueryOption) ([]element.EntitySeed, error) {
	var out []element.EntitySeed
	err := g.observe(ctx, OpTraverse, len(seeds), func(*Logger) (int, error) {
		if hops < 1 {
			return 0, fmt.Errorf("%w: hops must be at least 1, got %d", ErrInvalidConfiguration, hops)
		}
		p, err := g.plan(false, edgesOnly(opts))
		if err != nil {
			return 0, err
		}

		in := vertexset.NewInterner()
		visited := vertexset.New()
		for _, s := range seeds {
			visited.Add(in.ID(s.Vertex))
		}

		frontier := seeds
		for hop := 0; hop < hops && len(frontier) > 0; hop++ {
			adj, err := g.adjacent(ctx, frontier, p)
			if err != nil {
				return 0, err
			}
			next := vertexset.New()
			for _, s := range adj {
				next.Add(in.ID(s.Vertex))
			}
			if p.opts.excludeVisited {
				next.AndNot(visited)
			}
			visited.Or(next)
			frontier = element.Seeds(next.Vertices(in)...)
		}
		out = frontier
		return len(out), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
