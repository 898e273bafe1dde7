package gaffer

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/elasticjava/gaffer/aggregator"
	"github.com/elasticjava/gaffer/element"
)

// BulkWriter buffers elements for ingest. Elements with the same identity
// are aggregated in the buffer before they reach the store, so a stream with
// many repeats costs one store merge per distinct element and flush.
//
// The buffer is flushed when it holds WithBulkBuffer distinct elements, on
// Flush and on Close. Flushed writes are throttled by WithIngestRate.
// A BulkWriter is safe for concurrent use.
type BulkWriter struct {
	g       *Graph
	log     *Logger
	limiter *rate.Limiter

	mu       sync.Mutex
	pending  []element.Element
	ids      []string
	index    map[string]int
	received int
	closed   bool
}

// NewBulkWriter returns a writer that ingests into g.
func (g *Graph) NewBulkWriter() *BulkWriter {
	return &BulkWriter{
		g:       g,
		log:     g.opts.logger.WithOperation(context.Background(), "bulk_write", newOperationID()),
		limiter: rate.NewLimiter(g.opts.ingestLimit, g.opts.ingestBurst),
		index:   make(map[string]int),
	}
}

// Add validates elems and buffers them, flushing when the buffer is full.
func (w *BulkWriter) Add(ctx context.Context, elems ...element.Element) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if err := w.g.checkOpen(); err != nil {
		return err
	}

	valid, _, err := w.g.validate(ctx, w.log, elems)
	if err != nil {
		return err
	}
	for _, e := range valid {
		if err := w.buffer(e); err != nil {
			return err
		}
		if len(w.pending) >= w.g.opts.bulkBuffer {
			if err := w.flushLocked(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *BulkWriter) buffer(e element.Element) error {
	keys, err := w.g.conv.EncodeKeys(e)
	if err != nil {
		return translateError(err)
	}
	id := string(keys[0])
	w.received++

	i, ok := w.index[id]
	if !ok {
		w.index[id] = len(w.pending)
		w.pending = append(w.pending, e.CloneElement())
		w.ids = append(w.ids, id)
		return nil
	}
	merged, err := aggregator.Merge(w.g.schema, w.pending[i], e)
	if err != nil {
		return translateError(err)
	}
	w.pending[i] = merged
	return nil
}

// Flush writes the buffered elements.
func (w *BulkWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	return w.flushLocked(ctx)
}

// Close flushes the buffer and releases the writer. Closing twice is a no-op.
// The graph stays open.
func (w *BulkWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.flushLocked(ctx)
}

// Buffered returns the number of distinct elements waiting to be flushed.
func (w *BulkWriter) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *BulkWriter) flushLocked(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	start := time.Now()
	buffered, aggregated := len(w.pending), w.received-len(w.pending)

	written, err := 0, w.g.checkOpen()
	if err == nil {
		written, err = w.throttledWrite(ctx, w.pending)
	}

	w.log.LogFlush(ctx, buffered, aggregated, err)
	w.g.opts.metricsCollector.RecordFlush(buffered, aggregated, time.Since(start), err)

	// Written chunks are gone from the buffer even when a later chunk
	// failed, so a retried flush does not aggregate them twice.
	w.pending = slices.Delete(w.pending, 0, written)
	w.ids = slices.Delete(w.ids, 0, written)
	clear(w.index)
	for i, id := range w.ids {
		w.index[id] = i
	}
	w.received = len(w.pending)
	return err
}

// throttledWrite writes elems in chunks no larger than the limiter burst,
// waiting for tokens before each chunk. It returns how many elements were
// written.
func (w *BulkWriter) throttledWrite(ctx context.Context, elems []element.Element) (int, error) {
	if w.limiter.Limit() == rate.Inf {
		if err := w.g.write(ctx, elems); err != nil {
			return 0, err
		}
		return len(elems), nil
	}
	burst := max(w.limiter.Burst(), 1)
	written := 0
	for written < len(elems) {
		n := min(len(elems)-written, burst)
		if err := w.limiter.WaitN(ctx, n); err != nil {
			return written, err
		}
		if err := w.g.write(ctx, elems[written:written+n]); err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}
