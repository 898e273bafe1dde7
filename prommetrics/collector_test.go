package prommetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticjava/gaffer"
	"github.com/elasticjava/gaffer/element"
	"github.com/elasticjava/gaffer/schema"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counterValue(f *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range f.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "gaffer")
	require.NoError(t, err)

	c.RecordAddElements(10, 2, time.Millisecond, nil)
	c.RecordAddElements(3, 0, time.Millisecond, errors.New("boom"))
	c.RecordQuery(gaffer.OpGetElements, 7, time.Millisecond, nil)
	c.RecordFlush(5, 4, time.Millisecond, nil)

	families := gather(t, reg)

	ops := families["gaffer_operations_total"]
	require.NotNil(t, ops)
	assert.Equal(t, 1.0, counterValue(ops, map[string]string{"op": "add_elements", "status": "success"}))
	assert.Equal(t, 1.0, counterValue(ops, map[string]string{"op": "add_elements", "status": "error"}))
	assert.Equal(t, 1.0, counterValue(ops, map[string]string{"op": gaffer.OpGetElements, "status": "success"}))

	elems := families["gaffer_elements_written_total"]
	require.NotNil(t, elems)
	assert.Equal(t, 13.0, counterValue(elems, map[string]string{"outcome": "written"}))
	assert.Equal(t, 2.0, counterValue(elems, map[string]string{"outcome": "skipped"}))
	assert.Equal(t, 3.0, counterValue(elems, map[string]string{"outcome": "failed"}))

	assert.Equal(t, 7.0, counterValue(families["gaffer_query_results_total"], map[string]string{"op": gaffer.OpGetElements}))
	assert.Equal(t, 4.0, counterValue(families["gaffer_bulk_aggregated_total"], nil))
	assert.NotNil(t, families["gaffer_operation_latency_seconds"])
}

func TestNewDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "gaffer")
	require.NoError(t, err)

	_, err = New(reg, "gaffer")
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew(reg, "gaffer") })
}

func TestCollectorWithGraph(t *testing.T) {
	s, err := schema.NewBuilder().
		VertexSerialiser("string").
		Entity("Person", schema.ElementDefinition{}).
		Build()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	g, err := gaffer.Open(context.Background(), s, gaffer.WithMetricsCollector(MustNew(reg, "graph")))
	require.NoError(t, err)
	defer g.Close()

	require.NoError(t, g.AddElements(context.Background(), element.NewEntity("Person", "alice")))
	got, err := g.GetElements(context.Background(), element.AsSeeds(element.Seeds("alice")))
	require.NoError(t, err)
	require.Len(t, got, 1)

	families := gather(t, reg)
	assert.Equal(t, 1.0, counterValue(families["graph_elements_written_total"], map[string]string{"outcome": "written"}))
	assert.Equal(t, 1.0, counterValue(families["graph_query_results_total"], map[string]string{"op": gaffer.OpGetElements}))
}
