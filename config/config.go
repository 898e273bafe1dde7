// Package config loads store properties from YAML.
//
// A minimal properties file:
//
//	backend: badger
//	path: /var/lib/graph
//	partitions: 4
//	compression: zstd
//	schema:
//	  - schema/elements.json
//	  - schema/types.json
//	log:
//	  level: info
//	  format: json
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/elasticjava/gaffer/keycodec"
)

// Backend names the ordered key-value store a graph is kept in.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendBolt   Backend = "bolt"
)

// LogProperties configures the graph logger.
type LogProperties struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreProperties describes how a graph is stored.
type StoreProperties struct {
	Backend     Backend `yaml:"backend"`
	Path        string  `yaml:"path"`
	InMemory    bool    `yaml:"in-memory"`
	Partitions  int     `yaml:"partitions"`
	Compression string  `yaml:"compression"`
	SyncWrites  bool    `yaml:"sync-writes"`

	// BulkBuffer is the number of elements a BulkWriter holds before flushing.
	BulkBuffer int `yaml:"bulk-buffer"`
	// IngestRate limits bulk ingest in elements per second. Zero disables the limit.
	IngestRate  float64 `yaml:"ingest-rate"`
	IngestBurst int     `yaml:"ingest-burst"`

	// Schema lists schema documents merged into the graph schema. Relative
	// paths resolve against the properties file.
	Schema []string `yaml:"schema,omitempty"`
	// SkipInvalid drops elements failing validation instead of failing the batch.
	SkipInvalid bool `yaml:"skip-invalid"`

	Log LogProperties `yaml:"log"`
}

// Default returns the properties used for keys absent from a file.
func Default() StoreProperties {
	return StoreProperties{
		Backend:     BackendMemory,
		Partitions:  1,
		Compression: keycodec.CompressionNone.String(),
		BulkBuffer:  1000,
		Log:         LogProperties{Level: "info", Format: "text"},
	}
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (StoreProperties, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return StoreProperties{}, fmt.Errorf("config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return StoreProperties{}, err
	}
	return p, nil
}

// Load reads and parses a properties file.
func Load(path string) (StoreProperties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StoreProperties{}, fmt.Errorf("config: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return StoreProperties{}, err
	}
	for i, s := range p.Schema {
		if !filepath.IsAbs(s) {
			p.Schema[i] = filepath.Join(filepath.Dir(path), s)
		}
	}
	return p, nil
}

// Marshal renders the properties as YAML.
func (p StoreProperties) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate reports every invalid field.
func (p StoreProperties) Validate() error {
	var result *multierror.Error
	switch p.Backend {
	case BackendMemory:
	case BackendBadger:
		if p.Path == "" && !p.InMemory {
			result = multierror.Append(result, errors.New("config: badger backend needs a path or in-memory"))
		}
	case BackendBolt:
		if p.Path == "" {
			result = multierror.Append(result, errors.New("config: bolt backend needs a path"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("config: unknown backend %q", p.Backend))
	}
	if p.Partitions < 1 {
		result = multierror.Append(result, fmt.Errorf("config: partitions must be at least 1, got %d", p.Partitions))
	}
	if _, err := keycodec.ParseCompression(p.Compression); err != nil {
		result = multierror.Append(result, fmt.Errorf("config: %w", err))
	}
	if p.BulkBuffer < 1 {
		result = multierror.Append(result, fmt.Errorf("config: bulk-buffer must be at least 1, got %d", p.BulkBuffer))
	}
	if p.IngestRate < 0 {
		result = multierror.Append(result, errors.New("config: ingest-rate must not be negative"))
	}
	if _, err := p.Log.level(); err != nil {
		result = multierror.Append(result, err)
	}
	switch strings.ToLower(p.Log.Format) {
	case "", "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("config: unknown log format %q", p.Log.Format))
	}
	return result.ErrorOrNil()
}

// CompressionMode returns the parsed value compression.
func (p StoreProperties) CompressionMode() keycodec.Compression {
	c, _ := keycodec.ParseCompression(p.Compression)
	return c
}

func (l LogProperties) level() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}

// Handler builds the slog handler described by the log properties.
func (l LogProperties) Handler(w io.Writer) slog.Handler {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(l.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
