package gaffer

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/elasticjava/gaffer/catalog"
	"github.com/elasticjava/gaffer/keycodec"
	"github.com/elasticjava/gaffer/store"
)

type options struct {
	stores           []store.KV
	partitions       int
	compression      keycodec.Compression
	metricsCollector MetricsCollector
	logger           *Logger
	skipInvalid      bool
	bulkBuffer       int
	ingestLimit      rate.Limit
	ingestBurst      int
	catalog          *catalog.Catalog
	graphName        string
}

// Option configures Open.
type Option func(*options)

// WithStores stores the graph in the given key-value stores, one per
// partition. The graph takes ownership and closes them on Close.
//
// When no stores are given, Open creates in-memory stores.
func WithStores(stores ...store.KV) Option {
	return func(o *options) {
		o.stores = stores
	}
}

// WithPartitions sets the number of in-memory partitions created when no
// stores are supplied. Ignored together with WithStores.
func WithPartitions(n int) Option {
	return func(o *options) {
		o.partitions = n
	}
}

// WithCompression compresses value payloads written from now on. Payloads
// written with any setting stay readable.
func WithCompression(c keycodec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &gaffer.BasicMetricsCollector{}
//	g, _ := gaffer.Open(ctx, s, gaffer.WithMetricsCollector(metrics))
//	// ... use g ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSkipInvalid makes AddElements drop elements that fail validation
// instead of rejecting the whole batch.
func WithSkipInvalid(skip bool) Option {
	return func(o *options) {
		o.skipInvalid = skip
	}
}

// WithBulkBuffer sets how many elements a BulkWriter buffers before it
// flushes. Defaults to 1000.
func WithBulkBuffer(n int) Option {
	return func(o *options) {
		o.bulkBuffer = n
	}
}

// WithIngestRate limits BulkWriter flushes to perSecond elements per second
// with the given burst. A non-positive rate removes the limit.
func WithIngestRate(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			o.ingestLimit = rate.Inf
			return
		}
		o.ingestLimit = rate.Limit(perSecond)
		o.ingestBurst = burst
	}
}

// WithCatalog publishes the schema passed to Open under name, or fetches the
// published schema when Open is called without one.
func WithCatalog(c *catalog.Catalog, name string) Option {
	return func(o *options) {
		o.catalog = c
		o.graphName = name
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		partitions:       1,
		compression:      keycodec.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		bulkBuffer:       1000,
		ingestLimit:      rate.Inf,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.bulkBuffer < 1 {
		o.bulkBuffer = 1
	}
	if o.ingestBurst < 1 {
		o.ingestBurst = o.bulkBuffer
	}
	return o
}
