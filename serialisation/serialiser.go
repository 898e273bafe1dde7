// Package serialisation converts vertex identifiers and property values to and
// from bytes.
//
// Serialisers that report PreservesOrdering produce byte strings whose
// lexicographic order matches the natural order of the values, which keeps
// range scans over vertices meaningful.
package serialisation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Serialiser encodes one class of values.
// Implementations must be stateless and safe for concurrent use.
type Serialiser interface {
	// Name is the stable identifier recorded in schema documents.
	Name() string
	// CanHandle reports whether v is a value this serialiser accepts.
	CanHandle(v any) bool
	Serialise(v any) ([]byte, error)
	Deserialise(b []byte) (any, error)
	PreservesOrdering() bool
}

// ErrUnsupportedValue is returned when a value does not match the serialiser.
var ErrUnsupportedValue = errors.New("unsupported value")

// SerialisationError is returned for any encode/decode failure.
type SerialisationError struct {
	Serialiser string
	Op         string // "serialise" or "deserialise"
	Err        error
}

func (e *SerialisationError) Error() string {
	return fmt.Sprintf("serialisation: %s %s: %v", e.Serialiser, e.Op, e.Err)
}

func (e *SerialisationError) Unwrap() error { return e.Err }

func serialiseErr(name string, err error) error {
	return &SerialisationError{Serialiser: name, Op: "serialise", Err: err}
}

func deserialiseErr(name string, err error) error {
	return &SerialisationError{Serialiser: name, Op: "deserialise", Err: err}
}

// Registry maps serialiser names to implementations.
type Registry struct {
	mu          sync.RWMutex
	serialisers map[string]Serialiser
}

// NewRegistry returns a registry containing the built-in serialisers.
func NewRegistry() *Registry {
	r := &Registry{serialisers: make(map[string]Serialiser)}
	for _, s := range []Serialiser{
		String{}, OrderedInt64{}, OrderedFloat64{}, Bool{}, Bytes{}, StringSet{}, NewJSON(nil),
	} {
		r.serialisers[s.Name()] = s
	}
	return r
}

// Register adds or replaces a serialiser.
func (r *Registry) Register(s Serialiser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serialisers[s.Name()] = s
}

// Lookup returns the serialiser registered under name. Unregistered names of
// the form "json:<codec>" resolve to a JSON serialiser over that codec.
func (r *Registry) Lookup(name string) (Serialiser, bool) {
	r.mu.RLock()
	s, ok := r.serialisers[name]
	r.mu.RUnlock()
	if ok {
		return s, true
	}
	if j, ok := JSONByName(name); ok {
		return j, true
	}
	return nil, false
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.serialisers))
	for n := range r.serialisers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default is the process-wide registry used when a schema does not supply one.
var Default = NewRegistry()
