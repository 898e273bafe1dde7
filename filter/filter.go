// Package filter decides, from the trailing flag byte of a key alone, whether
// a scan should return the key. It lets stores push entity/edge,
// directedness and direction restrictions down to the scan without decoding
// elements.
package filter

import (
	"fmt"
	"sort"

	"github.com/elasticjava/gaffer/keycodec"
)

// Option names of the wire format. Presence of a name enables the option;
// values are ignored.
const (
	DirectedEdgesOnly   = "directed-edges-only"
	UndirectedEdgesOnly = "undirected-edges-only"
	IncludeEntities     = "include-entities"
	IncomingEdgesOnly   = "incoming-edges-only"
	OutgoingEdgesOnly   = "outgoing-edges-only"
	NoEdges             = "no-edges"
	CorrectWayEdgesOnly = "correct-way-edges-only"
)

// InvalidConfigurationError is returned for mutually exclusive options.
type InvalidConfigurationError struct {
	Options []string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("filter: must specify only one of %s or %s", e.Options[0], e.Options[1])
}

// Options is the programmatic form of a filter configuration.
type Options struct {
	NoEdges         bool
	IncludeEntities bool
	DirectedOnly    bool
	UndirectedOnly  bool
	IncomingOnly    bool
	OutgoingOnly    bool
	CorrectWayOnly  bool
}

// Config is a validated, immutable filter configuration.
type Config struct {
	opts Options
}

// NewConfig validates o.
func NewConfig(o Options) (Config, error) {
	if o.DirectedOnly && o.UndirectedOnly {
		return Config{}, &InvalidConfigurationError{Options: []string{DirectedEdgesOnly, UndirectedEdgesOnly}}
	}
	if o.IncomingOnly && o.OutgoingOnly {
		return Config{}, &InvalidConfigurationError{Options: []string{IncomingEdgesOnly, OutgoingEdgesOnly}}
	}
	return Config{opts: o}, nil
}

// ParseConfig builds a configuration from the string-keyed wire format.
// Unrecognised names are ignored.
func ParseConfig(m map[string]string) (Config, error) {
	has := func(k string) bool {
		_, ok := m[k]
		return ok
	}
	return NewConfig(Options{
		NoEdges:         has(NoEdges),
		IncludeEntities: has(IncludeEntities),
		DirectedOnly:    has(DirectedEdgesOnly),
		UndirectedOnly:  has(UndirectedEdgesOnly),
		IncomingOnly:    has(IncomingEdgesOnly),
		OutgoingOnly:    has(OutgoingEdgesOnly),
		CorrectWayOnly:  has(CorrectWayEdgesOnly),
	})
}

// Options returns the options the configuration was built from.
func (c Config) Options() Options { return c.opts }

// Map renders the configuration in the wire format.
func (c Config) Map() map[string]string {
	m := make(map[string]string)
	set := func(on bool, k string) {
		if on {
			m[k] = "true"
		}
	}
	set(c.opts.NoEdges, NoEdges)
	set(c.opts.IncludeEntities, IncludeEntities)
	set(c.opts.DirectedOnly, DirectedEdgesOnly)
	set(c.opts.UndirectedOnly, UndirectedEdgesOnly)
	set(c.opts.IncomingOnly, IncomingEdgesOnly)
	set(c.opts.OutgoingOnly, OutgoingEdgesOnly)
	set(c.opts.CorrectWayOnly, CorrectWayEdgesOnly)
	return m
}

func (c Config) String() string {
	m := c.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("filter%v", keys)
}

// ShouldAdmit reports whether a key with the given flag passes cfg.
// Any flag other than ENTITY is treated as an edge flag.
func ShouldAdmit(flag keycodec.Flag, cfg Config) bool {
	o := cfg.opts
	isEdge := flag != keycodec.FlagEntity
	if o.NoEdges && isEdge {
		return false
	} else if !o.IncludeEntities && !isEdge {
		return false
	}
	return !isEdge || checkEdge(flag, o)
}

func checkEdge(flag keycodec.Flag, o Options) bool {
	switch {
	case o.CorrectWayOnly:
		return (!o.DirectedOnly && flag == keycodec.FlagCorrectWayUndirectedEdge) ||
			(!o.UndirectedOnly && flag == keycodec.FlagCorrectWayDirectedEdge)
	case o.UndirectedOnly:
		return flag.IsUndirected()
	case o.DirectedOnly:
		return flag.IsDirected() && checkDirection(flag, o)
	default:
		return checkDirection(flag, o)
	}
}

func checkDirection(flag keycodec.Flag, o Options) bool {
	if o.IncomingOnly {
		return flag != keycodec.FlagCorrectWayDirectedEdge
	} else if o.OutgoingOnly {
		return flag != keycodec.FlagIncorrectWayDirectedEdge
	}
	return true
}

// Predicate returns a key predicate applying cfg to the trailing flag byte.
// Empty keys are rejected.
func Predicate(cfg Config) func(key []byte) bool {
	return func(key []byte) bool {
		flag, ok := keycodec.FlagOf(key)
		return ok && ShouldAdmit(flag, cfg)
	}
}
