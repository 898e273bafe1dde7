// Package badgerkv implements store.KV on Badger.
//
// Merges run inside read-write transactions. Badger detects conflicting
// concurrent transactions at commit time; conflicting merges are retried with
// exponential backoff.
package badgerkv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"

	"github.com/elasticjava/gaffer/store"
)

// Options configures a Badger store.
type Options struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string
	// InMemory keeps all data in memory.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// BatchSize bounds the records written per transaction by MergeBatch.
	BatchSize int
	// MaxRetries bounds conflict retries per transaction.
	MaxRetries uint64
	// Logger receives Badger's internal log output. Nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns options for an in-memory store.
func DefaultOptions() Options {
	return Options{InMemory: true, BatchSize: 512, MaxRetries: 64}
}

// Store is a store.KV backed by a Badger database.
type Store struct {
	db   *badger.DB
	opts Options
}

var _ store.KV = (*Store)(nil)

// Open opens (or creates) a Badger database.
func Open(opts Options) (*Store, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultOptions().MaxRetries
	}
	dir := opts.Dir
	if opts.InMemory {
		dir = ""
	} else if dir == "" {
		return nil, errors.New("badgerkv: directory is required unless in-memory")
	}

	bopts := badger.DefaultOptions(dir).
		WithInMemory(opts.InMemory).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(nil)
	if opts.Logger != nil {
		bopts = bopts.WithLogger(&slogAdapter{l: opts.Logger})
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badgerkv: open: %w", err)
	}
	return &Store{db: db, opts: opts}, nil
}

// Get retrieves the value stored under key.
func (s *Store) Get(_ context.Context, key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, translate(err)
}

// Put stores value under key.
func (s *Store) Put(_ context.Context, key, value []byte) error {
	return translate(s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bytes.Clone(key), bytes.Clone(value))
	}))
}

// Merge stores value under key, merging with an existing value.
func (s *Store) Merge(ctx context.Context, key, value []byte, merge store.MergeFunc) error {
	return s.MergeBatch(ctx, []store.Record{{Key: key, Value: value}}, merge)
}

// MergeBatch merges records in transactions of at most BatchSize records.
func (s *Store) MergeBatch(ctx context.Context, records []store.Record, merge store.MergeFunc) error {
	for start := 0; start < len(records); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(records))
		if err := s.mergeChunk(ctx, records[start:end], merge); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) mergeChunk(ctx context.Context, records []store.Record, merge store.MergeFunc) error {
	op := func() error {
		err := s.db.Update(func(txn *badger.Txn) error {
			for _, r := range records {
				if err := mergeInTxn(txn, r, merge); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil || errors.Is(err, badger.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	return translate(backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, s.opts.MaxRetries), ctx)))
}

func mergeInTxn(txn *badger.Txn, r store.Record, merge store.MergeFunc) error {
	value := r.Value
	if merge != nil {
		item, err := txn.Get(r.Key)
		switch {
		case err == nil:
			existing, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if value, err = merge(r.Key, existing, r.Value); err != nil {
				return err
			}
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}
	}
	return txn.Set(bytes.Clone(r.Key), bytes.Clone(value))
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key []byte) error {
	return translate(s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(bytes.Clone(key))
	}))
}

// Scan iterates r in key order. Values are only read for keys admitted by p.
func (s *Store) Scan(ctx context.Context, r store.Range, p store.Predicate, fn func(key, value []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		iopts := badger.DefaultIteratorOptions
		iopts.PrefetchValues = false
		it := txn.NewIterator(iopts)
		defer it.Close()

		for it.Seek(r.Start); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := item.KeyCopy(nil)
			if r.End != nil && bytes.Compare(key, r.End) >= 0 {
				return nil
			}
			if p != nil && !p(key) {
				continue
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(store.Stop(err))
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return store.ErrNotFound
	case errors.Is(err, badger.ErrDBClosed):
		return store.ErrClosed
	default:
		return err
	}
}

// slogAdapter routes Badger's printf-style logging to slog.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Errorf(format string, args ...any) {
	a.l.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (a *slogAdapter) Warningf(format string, args ...any) {
	a.l.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (a *slogAdapter) Infof(format string, args ...any) {
	a.l.Info(fmt.Sprintf(format, args...), "component", "badger")
}

func (a *slogAdapter) Debugf(format string, args ...any) {
	a.l.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
