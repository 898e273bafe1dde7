// Package catalog publishes schemas to a blob store so that every process
// serving a graph loads a byte-identical schema.
//
// Each graph has a CURRENT pointer naming the latest SCHEMA-NNNNNN.json
// document. Documents are never rewritten; publishing a changed schema adds
// a new document and then moves the pointer.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/elasticjava/gaffer/blobstore"
	"github.com/elasticjava/gaffer/codec"
	"github.com/elasticjava/gaffer/schema"
	"github.com/elasticjava/gaffer/serialisation"
	"github.com/spaolacci/murmur3"
)

const (
	SchemaFilePrefix = "SCHEMA"
	CurrentFileName  = "CURRENT"
	CurrentVersion   = 1
)

var (
	// ErrNotPublished is returned by Fetch when a graph has no schema yet.
	ErrNotPublished = errors.New("catalog: schema not published")
	// ErrChecksumMismatch is wrapped in a serialisation.SerialisationError
	// when a fetched document does not match its recorded checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrRoundTripMismatch is wrapped in a serialisation.SerialisationError
	// when a fetched document does not re-render to the same bytes.
	ErrRoundTripMismatch = errors.New("schema does not round-trip")
	// ErrConcurrentPublish is returned when another writer published the
	// same schema revision first.
	ErrConcurrentPublish = errors.New("catalog: concurrent publish")
)

// Entry is the content of a CURRENT pointer.
type Entry struct {
	Version  int    `json:"version"`
	ID       uint64 `json:"id"`
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Catalog reads and writes schema documents.
type Catalog struct {
	store    blobstore.BlobStore
	prefix   string
	registry *serialisation.Registry
	logger   *slog.Logger
	mu       sync.Mutex
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPrefix places every graph under the given blob name prefix.
func WithPrefix(prefix string) Option {
	return func(c *Catalog) { c.prefix = prefix }
}

// WithRegistry resolves serialiser names of fetched schemas against r.
func WithRegistry(r *serialisation.Registry) Option {
	return func(c *Catalog) { c.registry = r }
}

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// New creates a catalog over store.
func New(store blobstore.BlobStore, opts ...Option) *Catalog {
	c := &Catalog{
		store:    store,
		registry: serialisation.Default,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Checksum returns the hex murmur3 128-bit digest of a schema document.
func Checksum(data []byte) string {
	h1, h2 := murmur3.Sum128(data)
	return fmt.Sprintf("%016x%016x", h1, h2)
}

func (c *Catalog) name(graph string, parts ...string) string {
	return path.Join(append([]string{c.prefix, graph}, parts...)...)
}

// Current returns the CURRENT entry of a graph.
func (c *Catalog) Current(ctx context.Context, graph string) (Entry, error) {
	data, err := c.store.Get(ctx, c.name(graph, CurrentFileName))
	if errors.Is(err, blobstore.ErrNotFound) {
		return Entry{}, ErrNotPublished
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := codec.Default.Unmarshal(data, &e); err != nil {
		return Entry{}, &serialisation.SerialisationError{Serialiser: "catalog", Op: "deserialise", Err: err}
	}
	if e.Version != CurrentVersion {
		return Entry{}, fmt.Errorf("catalog: unsupported entry version: %d (expected %d)", e.Version, CurrentVersion)
	}
	return e, nil
}

// Publish stores the compact interchange form of s as the graph's current
// schema. Publishing a schema identical to the current one is a no-op that
// returns the existing entry.
func (c *Catalog) Publish(ctx context.Context, graph string, s *schema.Schema) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := s.ToJSON(false)
	if err != nil {
		return Entry{}, err
	}
	sum := Checksum(data)

	cur, err := c.Current(ctx, graph)
	switch {
	case errors.Is(err, ErrNotPublished):
	case err != nil:
		return Entry{}, err
	case cur.Checksum == sum:
		return cur, nil
	}

	next := Entry{Version: CurrentVersion, ID: cur.ID + 1, Checksum: sum}
	next.Path = fmt.Sprintf("%s-%06d.json", SchemaFilePrefix, next.ID)

	// 1. Write the immutable document
	docName := c.name(graph, next.Path)
	if cs, ok := c.store.(blobstore.ConditionalStore); ok {
		if err := cs.PutIfNotExists(ctx, docName, data); err != nil {
			if errors.Is(err, blobstore.ErrExists) {
				return Entry{}, ErrConcurrentPublish
			}
			return Entry{}, err
		}
	} else if err := c.store.Put(ctx, docName, data); err != nil {
		return Entry{}, err
	}

	// 2. Move the CURRENT pointer
	ptr, err := codec.Default.Marshal(next)
	if err != nil {
		return Entry{}, err
	}
	if err := c.store.Put(ctx, c.name(graph, CurrentFileName), ptr); err != nil {
		return Entry{}, err
	}

	c.logger.LogAttrs(ctx, slog.LevelInfo, "schema published",
		slog.String("graph", graph),
		slog.Uint64("id", next.ID),
		slog.String("checksum", sum),
	)
	return next, nil
}

// Fetch loads and verifies the graph's current schema: the document must
// match its checksum and re-render to identical bytes.
func (c *Catalog) Fetch(ctx context.Context, graph string) (*schema.Schema, Entry, error) {
	e, err := c.Current(ctx, graph)
	if err != nil {
		return nil, Entry{}, err
	}
	data, err := c.store.Get(ctx, c.name(graph, e.Path))
	if err != nil {
		return nil, Entry{}, err
	}
	if got := Checksum(data); got != e.Checksum {
		c.logger.LogAttrs(ctx, slog.LevelError, "schema checksum mismatch",
			slog.String("graph", graph),
			slog.String("path", e.Path),
			slog.String("want", e.Checksum),
			slog.String("got", got),
		)
		return nil, Entry{}, &serialisation.SerialisationError{
			Serialiser: "catalog",
			Op:         "deserialise",
			Err:        fmt.Errorf("%s: %w", e.Path, ErrChecksumMismatch),
		}
	}
	s, err := schema.NewBuilder().Registry(c.registry).JSON(data).Build()
	if err != nil {
		return nil, Entry{}, err
	}
	rendered, err := s.ToJSON(false)
	if err != nil {
		return nil, Entry{}, err
	}
	if !bytes.Equal(rendered, data) {
		c.logger.LogAttrs(ctx, slog.LevelError, "schema round-trip mismatch",
			slog.String("graph", graph),
			slog.String("path", e.Path),
		)
		return nil, Entry{}, &serialisation.SerialisationError{
			Serialiser: "catalog",
			Op:         "deserialise",
			Err:        fmt.Errorf("%s: %w", e.Path, ErrRoundTripMismatch),
		}
	}
	return s, e, nil
}

// Revisions returns the document names published for a graph, oldest first.
func (c *Catalog) Revisions(ctx context.Context, graph string) ([]string, error) {
	dir := c.name(graph) + "/"
	names, err := c.store.List(ctx, dir+SchemaFilePrefix+"-")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.TrimPrefix(n, dir))
	}
	return out, nil
}
