// Package storetest holds the behavioural test suite every store.KV backend
// must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticjava/gaffer/store"
)

// concat is a non-commutative merge so ordering mistakes are visible.
func concat(_, existing, incoming []byte) ([]byte, error) {
	out := append([]byte(nil), existing...)
	out = append(out, '+')
	return append(out, incoming...), nil
}

// Run exercises kv created by open. Each subtest gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) store.KV) {
	ctx := context.Background()

	t.Run("GetPutDelete", func(t *testing.T) {
		kv := open(t)
		_, err := kv.Get(ctx, []byte("a"))
		assert.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, kv.Put(ctx, []byte("a"), []byte("1")))
		v, err := kv.Get(ctx, []byte("a"))
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), v)

		require.NoError(t, kv.Put(ctx, []byte("a"), []byte("2")))
		v, err = kv.Get(ctx, []byte("a"))
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), v)

		require.NoError(t, kv.Delete(ctx, []byte("a")))
		_, err = kv.Get(ctx, []byte("a"))
		assert.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, kv.Delete(ctx, []byte("missing")))
	})

	t.Run("Merge", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Merge(ctx, []byte("k"), []byte("a"), concat))
		require.NoError(t, kv.Merge(ctx, []byte("k"), []byte("b"), concat))
		v, err := kv.Get(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, "a+b", string(v))

		boom := errors.New("boom")
		err = kv.Merge(ctx, []byte("k"), []byte("c"), func(_, _, _ []byte) ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
		v, err = kv.Get(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, "a+b", string(v))
	})

	t.Run("MergeBatch", func(t *testing.T) {
		kv := open(t)
		records := []store.Record{
			{Key: []byte("x"), Value: []byte("1")},
			{Key: []byte("y"), Value: []byte("1")},
			{Key: []byte("x"), Value: []byte("2")},
			{Key: []byte("x"), Value: []byte("3")},
		}
		require.NoError(t, kv.MergeBatch(ctx, records, concat))
		v, err := kv.Get(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "1+2+3", string(v))

		require.NoError(t, kv.MergeBatch(ctx, records[:1], nil))
		v, err = kv.Get(ctx, []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "1", string(v))
	})

	t.Run("ScanOrderAndRange", func(t *testing.T) {
		kv := open(t)
		for _, k := range []string{"b", "a", "ab", "c", "b\x00", "b\xff"} {
			require.NoError(t, kv.Put(ctx, []byte(k), []byte("v"+k)))
		}

		assert.Equal(t, []string{"a", "ab", "b", "b\x00", "b\xff", "c"}, scanKeys(t, kv, store.All, nil))
		assert.Equal(t, []string{"b", "b\x00", "b\xff"}, scanKeys(t, kv, store.PrefixRange([]byte("b")), nil))
		assert.Equal(t, []string{"ab", "b"}, scanKeys(t, kv, store.Range{Start: []byte("aa"), End: []byte("b\x00")}, nil))
	})

	t.Run("ScanPredicate", func(t *testing.T) {
		kv := open(t)
		for i := 0; i < 10; i++ {
			require.NoError(t, kv.Put(ctx, []byte{'k', byte(i)}, []byte{byte(i)}))
		}
		even := func(key []byte) bool { return key[1]%2 == 0 }

		var values []byte
		require.NoError(t, kv.Scan(ctx, store.All, even, func(_, v []byte) error {
			values = append(values, v[0])
			return nil
		}))
		assert.Equal(t, []byte{0, 2, 4, 6, 8}, values)
	})

	t.Run("ScanStopAndError", func(t *testing.T) {
		kv := open(t)
		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, kv.Put(ctx, []byte(k), []byte(k)))
		}
		n := 0
		err := kv.Scan(ctx, store.All, nil, func(_, _ []byte) error {
			n++
			if n == 2 {
				return store.ErrStopScan
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		boom := errors.New("boom")
		err = kv.Scan(ctx, store.All, nil, func(_, _ []byte) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("ScanCancelled", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Put(ctx, []byte("a"), []byte("a")))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := kv.Scan(cctx, store.All, nil, func(_, _ []byte) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ConcurrentMerges", func(t *testing.T) {
		kv := open(t)
		const workers, perWorker = 8, 20
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					assert.NoError(t, kv.Merge(ctx, []byte("counter"), []byte("x"), func(_, existing, incoming []byte) ([]byte, error) {
						return append(append([]byte(nil), existing...), incoming...), nil
					}))
				}
			}(w)
		}
		wg.Wait()
		v, err := kv.Get(ctx, []byte("counter"))
		require.NoError(t, err)
		assert.Len(t, v, workers*perWorker, fmt.Sprintf("%d merges", workers*perWorker))
	})
}

func scanKeys(t *testing.T, kv store.KV, r store.Range, p store.Predicate) []string {
	t.Helper()
	var keys []string
	require.NoError(t, kv.Scan(context.Background(), r, p, func(k, _ []byte) error {
		keys = append(keys, string(k))
		return nil
	}))
	return keys
}
