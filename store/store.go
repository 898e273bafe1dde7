// Package store defines the ordered key-value boundary the graph is stored
// behind. Keys sort lexicographically as unsigned bytes.
//
// Backends live in sub-packages: memkv (in-process), badgerkv (Badger LSM)
// and boltkv (bbolt B+tree).
package store

import (
	"bytes"
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("store: key not found")
	// ErrClosed is returned by any call after Close.
	ErrClosed = errors.New("store: closed")
	// ErrStopScan may be returned by a scan callback to end the scan early.
	// Scan then returns nil.
	ErrStopScan = errors.New("store: stop scan")
)

// Predicate decides from a key alone whether a scan returns it. It runs
// before the value is read.
type Predicate func(key []byte) bool

// MergeFunc combines the stored value of key with an incoming value.
type MergeFunc func(key, existing, incoming []byte) ([]byte, error)

// Record is one key/value pair.
type Record struct {
	Key   []byte
	Value []byte
}

// Range is the half-open key interval [Start, End). A nil End is unbounded.
type Range struct {
	Start []byte
	End   []byte
}

// All is the range covering every key.
var All = Range{}

// PrefixRange returns the range of keys starting with prefix.
func PrefixRange(prefix []byte) Range {
	return Range{Start: append([]byte(nil), prefix...), End: PrefixEnd(prefix)}
}

// PrefixEnd returns the smallest key greater than every key with the prefix,
// or nil if there is none (the prefix is all 0xff).
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Contains reports whether key lies in r.
func (r Range) Contains(key []byte) bool {
	if bytes.Compare(key, r.Start) < 0 {
		return false
	}
	return r.End == nil || bytes.Compare(key, r.End) < 0
}

// KV is an ordered key-value store.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns a copy of the value stored under key.
	Get(ctx context.Context, key []byte) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value []byte) error
	// Merge stores value under key, combining it with any existing value
	// through merge. The read and the write are atomic.
	Merge(ctx context.Context, key, value []byte, merge MergeFunc) error
	// MergeBatch applies Merge to every record. Records with the same key are
	// merged in order.
	MergeBatch(ctx context.Context, records []Record, merge MergeFunc) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error
	// Scan calls fn, in key order, for every key in r admitted by p (nil
	// admits all). Keys and values passed to fn are copies.
	Scan(ctx context.Context, r Range, p Predicate, fn func(key, value []byte) error) error
	Close() error
}

// Stop translates ErrStopScan into a nil error.
func Stop(err error) error {
	if errors.Is(err, ErrStopScan) {
		return nil
	}
	return err
}
