package gaffer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticjava/gaffer"
	"github.com/elasticjava/gaffer/element"
)

func TestBulkWriterAggregatesInStream(t *testing.T) {
	metrics := &gaffer.BasicMetricsCollector{}
	g := openGraph(t, gaffer.WithBulkBuffer(10), gaffer.WithMetricsCollector(metrics))
	ctx := context.Background()

	w := g.NewBulkWriter()
	require.NoError(t, w.Add(ctx, person("alice", 30), person("alice", 31)))
	require.NoError(t, w.Add(ctx, person("alice", 32), edge("knows", "alice", "bob", true, 3)))
	assert.Equal(t, 2, w.Buffered())

	got, err := g.GetAllElements(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, 0, w.Buffered())

	got, err = g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")), gaffer.WithEdges(false))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ElementProperties()["count"])
	assert.Equal(t, int64(32), got[0].ElementProperties()["age"])

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.FlushCount)
	assert.Equal(t, int64(2), stats.FlushBuffered)
	assert.Equal(t, int64(2), stats.FlushAggregated)

	// a second flush merges into the stored element
	require.NoError(t, w.Add(ctx, person("alice", 33)))
	require.NoError(t, w.Close(ctx))
	got, err = g.GetElements(ctx, element.AsSeeds(element.Seeds("alice")), gaffer.WithEdges(false))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].ElementProperties()["count"])
}

func TestBulkWriterFlushesWhenFull(t *testing.T) {
	g := openGraph(t, gaffer.WithBulkBuffer(2))
	ctx := context.Background()

	w := g.NewBulkWriter()
	require.NoError(t, w.Add(ctx, person("alice", 30), person("bob", 40)))
	assert.Equal(t, 0, w.Buffered())
	require.NoError(t, w.Add(ctx, person("carol", 50)))
	assert.Equal(t, 1, w.Buffered())

	got, err := g.GetAllElements(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Person[alice]", "Person[bob]"}, describe(got))

	require.NoError(t, w.Close(ctx))
	require.NoError(t, w.Close(ctx))

	got, err = g.GetAllElements(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	assert.ErrorIs(t, w.Add(ctx, person("dave", 60)), gaffer.ErrClosed)
	assert.ErrorIs(t, w.Flush(ctx), gaffer.ErrClosed)
}

func TestBulkWriterValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects", func(t *testing.T) {
		w := openGraph(t).NewBulkWriter()
		err := w.Add(ctx, person("alice", 30), person("bob", 300))
		assert.ErrorIs(t, err, gaffer.ErrInvalidElement)
		assert.Equal(t, 0, w.Buffered())
	})

	t.Run("skips", func(t *testing.T) {
		w := openGraph(t, gaffer.WithSkipInvalid(true)).NewBulkWriter()
		require.NoError(t, w.Add(ctx, person("alice", 30), person("bob", 300)))
		assert.Equal(t, 1, w.Buffered())
	})
}

func TestBulkWriterRateLimited(t *testing.T) {
	g := openGraph(t, gaffer.WithIngestRate(1000, 2))
	ctx := context.Background()

	w := g.NewBulkWriter()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, w.Add(ctx, person(name, 1)))
	}
	require.NoError(t, w.Close(ctx))

	got, err := g.GetAllElements(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestBulkWriterPartialFlush(t *testing.T) {
	// one token up front, then one every thousand seconds
	g := openGraph(t, gaffer.WithIngestRate(0.001, 1))
	w := g.NewBulkWriter()
	require.NoError(t, w.Add(context.Background(), person("alice", 30), person("bob", 40)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, w.Flush(ctx))
	assert.Equal(t, 1, w.Buffered())

	got, err := g.GetAllElements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Person[alice]"}, describe(got))
}

func TestBulkWriterClosedGraph(t *testing.T) {
	g := openGraph(t)
	w := g.NewBulkWriter()
	require.NoError(t, g.Close())

	assert.ErrorIs(t, w.Add(context.Background(), person("alice", 30)), gaffer.ErrClosed)
}
