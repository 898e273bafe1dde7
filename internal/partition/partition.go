// Package partition routes row vertices to partitions.
package partition

import (
	"errors"

	"github.com/spaolacci/murmur3"
)

// ErrInvalidCount is returned for a partition count below one.
var ErrInvalidCount = errors.New("partition: count must be at least 1")

// Router maps serialised row vertices to one of Count partitions.
// All keys of a row live in the same partition, so seeded lookups touch a
// single partition while full scans fan out over all of them.
type Router struct {
	count uint32
}

// NewRouter creates a router over count partitions.
func NewRouter(count int) (Router, error) {
	if count < 1 {
		return Router{}, ErrInvalidCount
	}
	return Router{count: uint32(count)}, nil
}

// Count returns the number of partitions.
func (r Router) Count() int { return int(r.count) }

// Route returns the partition for a serialised row vertex.
func (r Router) Route(row []byte) int {
	if r.count <= 1 {
		return 0
	}
	return int(murmur3.Sum32(row) % r.count)
}
