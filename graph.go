package gaffer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/elasticjava/gaffer/aggregator"
	"github.com/elasticjava/gaffer/internal/partition"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/schema"
	"github.com/elasticjava/gaffer/store"
	"github.com/elasticjava/gaffer/store/memkv"
)

// Graph is a property graph stored in one or more ordered key-value stores.
// It is safe for concurrent use.
type Graph struct {
	schema *schema.Schema
	conv   *keycodec.Converter
	parts  []store.KV
	router partition.Router
	merge  store.MergeFunc
	opts   options

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Open opens a graph over s. s may be nil when WithCatalog names a graph
// whose schema is already published.
func Open(ctx context.Context, s *schema.Schema, optFns ...Option) (*Graph, error) {
	o := applyOptions(optFns)

	if o.catalog != nil {
		if s != nil {
			if _, err := o.catalog.Publish(ctx, o.graphName, s); err != nil {
				return nil, translateError(err)
			}
		} else {
			fetched, _, err := o.catalog.Fetch(ctx, o.graphName)
			if err != nil {
				return nil, translateError(err)
			}
			s = fetched
		}
	}
	if s == nil {
		return nil, ErrNoSchema
	}

	conv, err := keycodec.NewConverter(s, keycodec.WithCompression(o.compression))
	if err != nil {
		return nil, translateError(err)
	}

	parts := o.stores
	if len(parts) == 0 {
		if o.partitions < 1 {
			return nil, fmt.Errorf("%w: partitions must be at least 1, got %d", ErrInvalidConfiguration, o.partitions)
		}
		parts = make([]store.KV, o.partitions)
		for i := range parts {
			parts[i] = memkv.New()
		}
	}
	router, err := partition.NewRouter(len(parts))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if o.graphName != "" {
		o.logger = o.logger.WithGraph(o.graphName)
	}

	g := &Graph{
		schema: s,
		conv:   conv,
		parts:  parts,
		router: router,
		merge:  aggregator.ValueMerger(conv),
		opts:   o,
	}
	o.logger.LogOpen(ctx, len(parts), o.compression.String())
	return g, nil
}

// Schema returns the graph schema.
func (g *Graph) Schema() *schema.Schema { return g.schema }

// Partitions returns the number of partitions.
func (g *Graph) Partitions() int { return len(g.parts) }

// Close closes every partition store. It is safe to call more than once.
func (g *Graph) Close() error {
	if g == nil {
		return nil
	}
	g.closeOnce.Do(func() {
		g.closed.Store(true)
		var errs []error
		for _, kv := range g.parts {
			if err := kv.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		g.closeErr = errors.Join(errs...)
	})
	return g.closeErr
}

func (g *Graph) checkOpen() error {
	if g.closed.Load() {
		return ErrClosed
	}
	return nil
}

// partitionOf returns the index of the store holding key. Keys are routed
// by their row field, so a row prefix and every key under it land in the
// same partition.
func (g *Graph) partitionOf(key []byte) int {
	row := key
	if i := bytes.IndexByte(key, keycodec.Delimiter); i >= 0 {
		row = key[:i+1]
	}
	return g.router.Route(row)
}
