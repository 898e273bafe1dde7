// Package vertexset tracks sets of vertices during multi-hop traversals.
//
// Vertices are interned to dense uint32 ids so that visited and frontier
// sets can be held in Roaring bitmaps.
package vertexset

import (
	"iter"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/elasticjava/gaffer/element"
)

// Interner assigns a stable id to every distinct vertex it sees.
// It is safe for concurrent use.
type Interner struct {
	mu       sync.RWMutex
	ids      map[any]uint32
	vertices []any
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[any]uint32)}
}

// ID returns the id of v, assigning a new one on first sight.
func (in *Interner) ID(v any) uint32 {
	k := element.VertexKey(v)

	in.mu.RLock()
	id, ok := in.ids[k]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[k]; ok {
		return id
	}
	id = uint32(len(in.vertices))
	in.ids[k] = id
	in.vertices = append(in.vertices, v)
	return id
}

// Lookup returns the id of v without assigning one.
func (in *Interner) Lookup(v any) (uint32, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.ids[element.VertexKey(v)]
	return id, ok
}

// Vertex returns the vertex with the given id.
func (in *Interner) Vertex(id uint32) any {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.vertices[id]
}

// Len returns the number of interned vertices.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.vertices)
}

// Set is a set of interned vertex ids backed by a Roaring bitmap.
// It is not safe for concurrent mutation.
type Set struct {
	rb *roaring.Bitmap
}

// New creates an empty Set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Add adds id and reports whether it was absent.
func (s *Set) Add(id uint32) bool {
	return s.rb.CheckedAdd(id)
}

func (s *Set) Contains(id uint32) bool {
	return s.rb.Contains(id)
}

func (s *Set) IsEmpty() bool {
	return s.rb.IsEmpty()
}

func (s *Set) Len() int {
	return int(s.rb.GetCardinality())
}

// Or adds every member of other.
func (s *Set) Or(other *Set) {
	s.rb.Or(other.rb)
}

// AndNot removes every member of other.
func (s *Set) AndNot(other *Set) {
	s.rb.AndNot(other.rb)
}

func (s *Set) Clone() *Set {
	return &Set{rb: s.rb.Clone()}
}

// IDs iterates over the members in ascending order.
func (s *Set) IDs() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Vertices resolves the members through in, in ascending id order.
func (s *Set) Vertices(in *Interner) []any {
	out := make([]any, 0, s.Len())
	for id := range s.IDs() {
		out = append(out, in.Vertex(id))
	}
	return out
}
