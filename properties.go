package gaffer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/elasticjava/gaffer/config"
	"github.com/elasticjava/gaffer/schema"
	"github.com/elasticjava/gaffer/store"
	"github.com/elasticjava/gaffer/store/badgerkv"
	"github.com/elasticjava/gaffer/store/boltkv"
	"github.com/elasticjava/gaffer/store/memkv"
)

// OpenFromFile loads store properties from path and opens the graph they
// describe. The schema comes from the properties' schema files unless a
// catalog option supplies it.
func OpenFromFile(ctx context.Context, path string, optFns ...Option) (*Graph, error) {
	p, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return OpenWithProperties(ctx, p, nil, optFns...)
}

// OpenWithProperties opens the stores described by p and a graph over them.
// When s is nil the schema is read from p.Schema. Options in optFns are
// applied after those derived from p and take precedence.
func OpenWithProperties(ctx context.Context, p config.StoreProperties, s *schema.Schema, optFns ...Option) (*Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	if s == nil && len(p.Schema) > 0 {
		loaded, err := loadSchema(p.Schema)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	logger := NewLogger(p.Log.Handler(os.Stderr))
	stores, err := openStores(p, logger)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithStores(stores...),
		WithLogger(logger),
		WithCompression(p.CompressionMode()),
		WithSkipInvalid(p.SkipInvalid),
		WithBulkBuffer(p.BulkBuffer),
		WithIngestRate(p.IngestRate, p.IngestBurst),
	}
	g, err := Open(ctx, s, append(opts, optFns...)...)
	if err != nil {
		closeStores(stores)
		return nil, err
	}
	return g, nil
}

func loadSchema(paths []string) (*schema.Schema, error) {
	parts := make([][]byte, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: schema: %w", ErrInvalidConfiguration, err)
		}
		parts = append(parts, data)
	}
	s, err := schema.FromJSON(parts...)
	if err != nil {
		return nil, translateError(err)
	}
	return s, nil
}

// openStores opens one store per partition. With several partitions each
// gets its own directory (badger) or file (bolt) named by its index.
func openStores(p config.StoreProperties, logger *Logger) ([]store.KV, error) {
	stores := make([]store.KV, 0, p.Partitions)
	for i := range p.Partitions {
		kv, err := openStore(p, i, logger)
		if err != nil {
			closeStores(stores)
			return nil, fmt.Errorf("%w: partition %d: %w", ErrInvalidConfiguration, i, err)
		}
		stores = append(stores, kv)
	}
	return stores, nil
}

func openStore(p config.StoreProperties, i int, logger *Logger) (store.KV, error) {
	switch p.Backend {
	case config.BackendBadger:
		dir := p.Path
		if p.Partitions > 1 && !p.InMemory {
			dir = filepath.Join(p.Path, strconv.Itoa(i))
		}
		kv, err := badgerkv.Open(badgerkv.Options{
			Dir:        dir,
			InMemory:   p.InMemory,
			SyncWrites: p.SyncWrites,
			Logger:     logger.Logger,
		})
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.BackendBolt:
		path := p.Path
		if p.Partitions > 1 {
			path = fmt.Sprintf("%s.%d", p.Path, i)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		kv, err := boltkv.Open(boltkv.Options{Path: path, NoSync: !p.SyncWrites})
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return memkv.New(), nil
	}
}

func closeStores(stores []store.KV) {
	for _, kv := range stores {
		_ = kv.Close()
	}
}
