package gaffer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/filter"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/store"
)

type queryOptions struct {
	includeEntities bool
	includeEdges    bool
	direction       element.Direction
	directed        element.DirectedType
	groups          []string
	excludeVisited  bool
}

// QueryOption configures a read operation.
type QueryOption func(*queryOptions)

// WithEntities sets whether entities are returned. Defaults to true.
func WithEntities(include bool) QueryOption {
	return func(q *queryOptions) { q.includeEntities = include }
}

// WithEdges sets whether edges are returned. Defaults to true.
func WithEdges(include bool) QueryOption {
	return func(q *queryOptions) { q.includeEdges = include }
}

// WithDirection restricts directed edges to those leaving (Outgoing) or
// entering (Incoming) the seed vertex. Undirected edges always match.
func WithDirection(d element.Direction) QueryOption {
	return func(q *queryOptions) { q.direction = d }
}

// WithDirectedType restricts edges to directed or undirected ones.
func WithDirectedType(d element.DirectedType) QueryOption {
	return func(q *queryOptions) { q.directed = d }
}

// WithGroups restricts results to the named groups.
func WithGroups(groups ...string) QueryOption {
	return func(q *queryOptions) { q.groups = groups }
}

// WithExcludeVisited makes Traverse drop vertices reached on an earlier hop.
func WithExcludeVisited(exclude bool) QueryOption {
	return func(q *queryOptions) { q.excludeVisited = exclude }
}

// edgesOnly returns a copy of opts that selects edges and no entities.
func edgesOnly(opts []QueryOption) []QueryOption {
	return append(slices.Clone(opts), WithEntities(false), WithEdges(true))
}

// plan is a resolved query: the scan predicate and the group set.
type plan struct {
	opts      queryOptions
	predicate store.Predicate
}

func (g *Graph) plan(correctWayOnly bool, optFns []QueryOption) (plan, error) {
	q := queryOptions{includeEntities: true, includeEdges: true}
	for _, fn := range optFns {
		if fn != nil {
			fn(&q)
		}
	}

	cfg, err := filter.NewConfig(filter.Options{
		NoEdges:         !q.includeEdges,
		IncludeEntities: q.includeEntities,
		DirectedOnly:    q.directed == element.DirectedOnly,
		UndirectedOnly:  q.directed == element.UndirectedOnly,
		IncomingOnly:    q.direction == element.DirectionIncoming,
		OutgoingOnly:    q.direction == element.DirectionOutgoing,
		CorrectWayOnly:  correctWayOnly,
	})
	if err != nil {
		return plan{}, translateError(err)
	}
	admit := filter.Predicate(cfg)

	if len(q.groups) == 0 {
		return plan{opts: q, predicate: admit}, nil
	}
	groups := make(map[string]struct{}, len(q.groups))
	for _, name := range q.groups {
		if _, ok := g.schema.Group(name); !ok {
			return plan{}, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
		}
		groups[name] = struct{}{}
	}
	return plan{
		opts: q,
		predicate: func(key []byte) bool {
			if !admit(key) {
				return false
			}
			group, ok := keycodec.GroupOf(key)
			if !ok {
				// Let the decoder report the malformed key.
				return true
			}
			_, ok = groups[group]
			return ok
		},
	}, nil
}

// scan decodes every admitted record in r of partition part.
func (g *Graph) scan(ctx context.Context, part int, r store.Range, p store.Predicate, fn func(element.Element) error) error {
	err := g.parts[part].Scan(ctx, r, p, func(key, value []byte) error {
		e, err := g.conv.Decode(key, value)
		if err != nil {
			return err
		}
		return fn(e)
	})
	return translateError(store.Stop(err))
}

// scanRow scans every key stored under vertex.
func (g *Graph) scanRow(ctx context.Context, vertex any, p store.Predicate, fn func(element.Element) error) error {
	prefix, err := g.conv.RowPrefix(vertex)
	if err != nil {
		return translateError(err)
	}
	return g.scan(ctx, g.partitionOf(prefix), store.PrefixRange(prefix), p, fn)
}

func (g *Graph) observe(ctx context.Context, op string, seeds int, fn func(*Logger) (int, error)) error {
	start := time.Now()
	log := g.opts.logger.WithOperation(ctx, op, newOperationID())

	results, err := 0, g.checkOpen()
	if err == nil {
		results, err = fn(log)
	}

	log.LogQuery(ctx, seeds, results, err)
	g.opts.metricsCollector.RecordQuery(op, results, time.Since(start), err)
	return err
}

// GetElements returns the elements related to each seed, seed by seed.
//
// An EntitySeed yields the vertex's entities and the edges touching it. An
// edge between two seeded vertices is therefore returned once per seed. An
// EdgeSeed yields the edges between its two vertices; a directed edge
// matches only in its stored direction.
func (g *Graph) GetElements(ctx context.Context, seeds []element.Seed, opts ...QueryOption) ([]element.Element, error) {
	var out []element.Element
	err := g.observe(ctx, OpGetElements, len(seeds), func(*Logger) (int, error) {
		p, err := g.plan(false, opts)
		if err != nil {
			return 0, err
		}
		collect := func(e element.Element) error {
			out = append(out, e)
			return nil
		}
		for _, s := range seeds {
			switch seed := s.(type) {
			case element.EntitySeed:
				err = g.scanRow(ctx, seed.Vertex, p.predicate, collect)
			case *element.EntitySeed:
				err = g.scanRow(ctx, seed.Vertex, p.predicate, collect)
			case element.EdgeSeed:
				err = g.getEdges(ctx, seed, p, collect)
			case *element.EdgeSeed:
				err = g.getEdges(ctx, *seed, p, collect)
			default:
				err = fmt.Errorf("%w: unsupported seed %T", ErrInvalidConfiguration, s)
			}
			if err != nil {
				return 0, err
			}
		}
		return len(out), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Graph) getEdges(ctx context.Context, seed element.EdgeSeed, p plan, fn func(element.Element) error) error {
	prefix, err := g.conv.EdgePrefix(seed.Source, seed.Destination)
	if err != nil {
		return translateError(err)
	}
	admit := func(key []byte) bool {
		f, ok := keycodec.FlagOf(key)
		return ok && f != keycodec.FlagEntity && p.predicate(key)
	}
	return g.scan(ctx, g.partitionOf(prefix), store.PrefixRange(prefix), admit, func(e element.Element) error {
		if edge, ok := e.(*element.Edge); ok && matchesEdgeSeed(edge, seed) {
			return fn(e)
		}
		return nil
	})
}

func matchesEdgeSeed(e *element.Edge, s element.EdgeSeed) bool {
	same := func(a, b any) bool { return element.VertexKey(a) == element.VertexKey(b) }
	forward := same(e.Source, s.Source) && same(e.Destination, s.Destination)
	reverse := same(e.Source, s.Destination) && same(e.Destination, s.Source)
	switch s.Directed {
	case element.DirectedOnly:
		return e.Directed && forward
	case element.UndirectedOnly:
		return !e.Directed && (forward || reverse)
	default:
		if e.Directed {
			return forward
		}
		return forward || reverse
	}
}

