package gaffer

import (
	"sync/atomic"
	"time"
)

// Operation names passed to MetricsCollector.RecordQuery.
const (
	OpGetElements    = "get_elements"
	OpGetAllElements = "get_all_elements"
	OpGetAdjacentIDs = "get_adjacent_ids"
	OpTraverse       = "traverse"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prommetrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordAddElements is called after each AddElements call.
	// count is the number of elements passed in, skipped the number dropped
	// by validation, err is nil if successful.
	RecordAddElements(count, skipped int, duration time.Duration, err error)

	// RecordQuery is called after each read operation.
	// op is one of the Op* constants, results the number of items returned.
	RecordQuery(op string, results int, duration time.Duration, err error)

	// RecordFlush is called after each BulkWriter flush.
	// buffered is the number of elements added since the previous flush,
	// aggregated the number left after in-stream aggregation.
	RecordFlush(buffered, aggregated int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAddElements(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordFlush(int, int, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount        atomic.Int64
	AddElements     atomic.Int64
	AddSkipped      atomic.Int64
	AddErrors       atomic.Int64
	AddTotalNanos   atomic.Int64
	QueryCount      atomic.Int64
	QueryResults    atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	FlushCount      atomic.Int64
	FlushBuffered   atomic.Int64
	FlushAggregated atomic.Int64
	FlushErrors     atomic.Int64
}

// RecordAddElements implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAddElements(count, skipped int, duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddElements.Add(int64(count))
	b.AddSkipped.Add(int64(skipped))
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, results int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(buffered, aggregated int, _ time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushBuffered.Add(int64(buffered))
	b.FlushAggregated.Add(int64(aggregated))
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:        b.AddCount.Load(),
		AddElements:     b.AddElements.Load(),
		AddSkipped:      b.AddSkipped.Load(),
		AddErrors:       b.AddErrors.Load(),
		AddAvgNanos:     avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		QueryCount:      b.QueryCount.Load(),
		QueryResults:    b.QueryResults.Load(),
		QueryErrors:     b.QueryErrors.Load(),
		QueryAvgNanos:   avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		FlushCount:      b.FlushCount.Load(),
		FlushBuffered:   b.FlushBuffered.Load(),
		FlushAggregated: b.FlushAggregated.Load(),
		FlushErrors:     b.FlushErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount        int64
	AddElements     int64
	AddSkipped      int64
	AddErrors       int64
	AddAvgNanos     int64
	QueryCount      int64
	QueryResults    int64
	QueryErrors     int64
	QueryAvgNanos   int64
	FlushCount      int64
	FlushBuffered   int64
	FlushAggregated int64
	FlushErrors     int64
}
