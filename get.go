package gaffer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/elasticjava/gaffer/adjacency"
	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/store"
)

// GetAllElements returns every stored element admitted by opts. Each edge is
// returned once. Partitions are scanned concurrently and their results
// concatenated in partition order.
func (g *Graph) GetAllElements(ctx context.Context, opts ...QueryOption) ([]element.Element, error) {
	var out []element.Element
	err := g.observe(ctx, OpGetAllElements, 0, func(*Logger) (int, error) {
		p, err := g.plan(true, opts)
		if err != nil {
			return 0, err
		}

		results := make([][]element.Element, len(g.parts))
		eg, ctx := errgroup.WithContext(ctx)
		for i := range g.parts {
			eg.Go(func() error {
				return g.scan(ctx, i, store.All, p.predicate, func(e element.Element) error {
					results[i] = append(results[i], e)
					return nil
				})
			})
		}
		if err := eg.Wait(); err != nil {
			return 0, err
		}
		for _, r := range results {
			out = append(out, r...)
		}
		return len(out), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAdjacentIDs returns the vertices one edge away from the seeds, once per
// matching edge and seed end, in seed order. An edge between two seeds
// yields the far end of each seed. Entity and edge inclusion options are
// ignored.
func (g *Graph) GetAdjacentIDs(ctx context.Context, seeds []element.EntitySeed, opts ...QueryOption) ([]element.EntitySeed, error) {
	var out []element.EntitySeed
	err := g.observe(ctx, OpGetAdjacentIDs, len(seeds), func(*Logger) (int, error) {
		p, err := g.plan(false, edgesOnly(opts))
		if err != nil {
			return 0, err
		}
		out, err = g.adjacent(ctx, seeds, p)
		return len(out), err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// adjacent resolves every edge against the seed whose row it was read from,
// so an edge joining two seeds yields each far end once.
func (g *Graph) adjacent(ctx context.Context, seeds []element.EntitySeed, p plan) ([]element.EntitySeed, error) {
	var out []element.EntitySeed
	for _, s := range seeds {
		resolver := adjacency.NewResolver([]element.EntitySeed{s}, p.opts.direction)
		err := g.scanRow(ctx, s.Vertex, p.predicate, func(e element.Element) error {
			if edge, ok := e.(*element.Edge); ok {
				out = append(out, resolver.OtherEnds(edge)...)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
