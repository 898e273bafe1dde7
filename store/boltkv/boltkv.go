// Package boltkv implements store.KV on a single bbolt bucket.
package boltkv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/elasticjava/gaffer/store"
)

// DefaultBucket is used when Options.Bucket is empty.
const DefaultBucket = "graph"

// Options configures a bbolt store.
type Options struct {
	// Path of the database file.
	Path string
	// Bucket holding the graph keys.
	Bucket string
	// Timeout waiting for the file lock.
	Timeout time.Duration
	// NoSync skips fsync after each commit.
	NoSync bool
}

// Store is a store.KV backed by a bbolt database.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

var _ store.KV = (*Store)(nil)

// Open opens (or creates) the database file and its bucket.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("boltkv: path is required")
	}
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}

	db, err := bolt.Open(opts.Path, 0o600, &bolt.Options{Timeout: opts.Timeout, NoSync: opts.NoSync})
	if err != nil {
		return nil, fmt.Errorf("boltkv: open %s: %w", opts.Path, err)
	}
	s := &Store{db: db, bucket: []byte(opts.Bucket)}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltkv: create bucket: %w", err)
	}
	return s, nil
}

// Get retrieves the value stored under key.
func (s *Store) Get(_ context.Context, key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(key)
		if v == nil {
			return store.ErrNotFound
		}
		out = bytes.Clone(v)
		return nil
	})
	return out, translate(err)
}

// Put stores value under key.
func (s *Store) Put(_ context.Context, key, value []byte) error {
	return translate(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(key, value)
	}))
}

// Merge stores value under key, merging with an existing value.
func (s *Store) Merge(ctx context.Context, key, value []byte, merge store.MergeFunc) error {
	return s.MergeBatch(ctx, []store.Record{{Key: key, Value: value}}, merge)
}

// MergeBatch merges every record in one write transaction.
func (s *Store) MergeBatch(ctx context.Context, records []store.Record, merge store.MergeFunc) error {
	return translate(s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, r := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			value := r.Value
			if existing := b.Get(r.Key); existing != nil && merge != nil {
				var err error
				if value, err = merge(r.Key, bytes.Clone(existing), r.Value); err != nil {
					return err
				}
			}
			if err := b.Put(r.Key, value); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key []byte) error {
	return translate(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(key)
	}))
}

// Scan iterates r in key order with a cursor.
func (s *Store) Scan(ctx context.Context, r store.Range, p store.Predicate, fn func(key, value []byte) error) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		var k, v []byte
		if len(r.Start) == 0 {
			k, v = c.First()
		} else {
			k, v = c.Seek(r.Start)
		}
		for ; k != nil; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.End != nil && bytes.Compare(k, r.End) >= 0 {
				return nil
			}
			if p != nil && !p(k) {
				continue
			}
			if err := fn(bytes.Clone(k), bytes.Clone(v)); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(store.Stop(err))
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

func translate(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return store.ErrClosed
	}
	return err
}
