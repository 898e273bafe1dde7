// Package memkv is an in-process ordered key-value store backed by a sorted
// slice. It is intended for tests and small graphs.
package memkv

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/elasticjava/gaffer/store"
)

type entry struct {
	key   []byte
	value []byte
}

// Store is an in-memory implementation of store.KV.
type Store struct {
	mu      sync.RWMutex
	entries []entry
	closed  bool
}

var _ store.KV = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) search(key []byte) (int, bool) {
	i := sort.Search(len(s.entries), func(i int) bool {
		return bytes.Compare(s.entries[i].key, key) >= 0
	})
	return i, i < len(s.entries) && bytes.Equal(s.entries[i].key, key)
}

// Get retrieves the value stored under key.
func (s *Store) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrClosed
	}
	i, ok := s.search(key)
	if !ok {
		return nil, store.ErrNotFound
	}
	return bytes.Clone(s.entries[i].value), nil
}

// Put stores value under key.
func (s *Store) Put(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	s.set(key, value)
	return nil
}

func (s *Store) set(key, value []byte) {
	i, ok := s.search(key)
	if ok {
		s.entries[i].value = bytes.Clone(value)
		return
	}
	s.entries = append(s.entries, entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry{key: bytes.Clone(key), value: bytes.Clone(value)}
}

func (s *Store) merge(key, value []byte, merge store.MergeFunc) error {
	i, ok := s.search(key)
	if !ok || merge == nil {
		s.set(key, value)
		return nil
	}
	merged, err := merge(key, bytes.Clone(s.entries[i].value), value)
	if err != nil {
		return err
	}
	s.entries[i].value = bytes.Clone(merged)
	return nil
}

// Merge stores value under key, merging with an existing value.
func (s *Store) Merge(_ context.Context, key, value []byte, merge store.MergeFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	return s.merge(key, value, merge)
}

// MergeBatch merges every record under one lock.
func (s *Store) MergeBatch(ctx context.Context, records []store.Record, merge store.MergeFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.merge(r.Key, r.Value, merge); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	if i, ok := s.search(key); ok {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	}
	return nil
}

// Scan iterates a snapshot of r in key order.
func (s *Store) Scan(ctx context.Context, r store.Range, p store.Predicate, fn func(key, value []byte) error) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return store.ErrClosed
	}
	start, _ := s.search(r.Start)
	var snapshot []entry
	for _, e := range s.entries[start:] {
		if r.End != nil && bytes.Compare(e.key, r.End) >= 0 {
			break
		}
		if p != nil && !p(e.key) {
			continue
		}
		snapshot = append(snapshot, entry{key: bytes.Clone(e.key), value: bytes.Clone(e.value)})
	}
	s.mu.RUnlock()

	for _, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(e.key, e.value); err != nil {
			return store.Stop(err)
		}
	}
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close releases the data. Further calls fail with store.ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}
