package boltkv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticjava/gaffer/store"
	"github.com/elasticjava/gaffer/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.KV {
		s, err := Open(Options{Path: filepath.Join(t.TempDir(), "graph.db"), NoSync: true})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestBucketsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	ctx := context.Background()

	a, err := Open(Options{Path: path, Bucket: "a"})
	require.NoError(t, err)
	require.NoError(t, a.Put(ctx, []byte("k"), []byte("v")))
	require.NoError(t, a.Close())

	b, err := Open(Options{Path: path, Bucket: "b"})
	require.NoError(t, err)
	defer b.Close()
	_, err = b.Get(ctx, []byte("k"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClosed(t *testing.T) {
	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "graph.db")})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = s.Get(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Options{})
	assert.Error(t, err)
}
