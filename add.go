package gaffer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/store"
)

// AddElements validates and stores elements. An element whose identity is
// already stored is aggregated into the stored element.
//
// By default one invalid element rejects the whole call before anything is
// written; with WithSkipInvalid invalid elements are dropped and logged.
// Writes to different partitions are not atomic with respect to each other.
func (g *Graph) AddElements(ctx context.Context, elems ...element.Element) error {
	start := time.Now()
	log := g.opts.logger.WithOperation(ctx, "add_elements", newOperationID())

	skipped, err := g.addElements(ctx, log, elems)

	log.LogAddElements(ctx, len(elems), skipped, err)
	g.opts.metricsCollector.RecordAddElements(len(elems), skipped, time.Since(start), err)
	return err
}

func (g *Graph) addElements(ctx context.Context, log *Logger, elems []element.Element) (int, error) {
	if err := g.checkOpen(); err != nil {
		return 0, err
	}
	valid, skipped, err := g.validate(ctx, log, elems)
	if err != nil {
		return 0, err
	}
	return skipped, g.write(ctx, valid)
}

func (g *Graph) validate(ctx context.Context, log *Logger, elems []element.Element) ([]element.Element, int, error) {
	valid := make([]element.Element, 0, len(elems))
	skipped := 0
	for _, e := range elems {
		if err := g.schema.Validate(e); err != nil {
			if !g.opts.skipInvalid {
				return nil, 0, translateError(err)
			}
			group := ""
			if e != nil {
				group = e.ElementGroup()
			}
			log.LogInvalidElement(ctx, group, err)
			skipped++
			continue
		}
		valid = append(valid, e)
	}
	return valid, skipped, nil
}

// write encodes elements and merges their records into the owning
// partitions, one batch per partition.
func (g *Graph) write(ctx context.Context, elems []element.Element) error {
	if len(elems) == 0 {
		return nil
	}
	batches := make([][]store.Record, len(g.parts))
	for _, e := range elems {
		kvs, err := g.conv.Encode(e)
		if err != nil {
			return translateError(err)
		}
		for _, kv := range kvs {
			p := g.partitionOf(kv.Key)
			batches[p] = append(batches[p], store.Record{Key: kv.Key, Value: kv.Value})
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, records := range batches {
		if len(records) == 0 {
			continue
		}
		eg.Go(func() error {
			return g.parts[i].MergeBatch(ctx, records, g.merge)
		})
	}
	return translateError(eg.Wait())
}
