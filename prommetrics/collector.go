// Package prommetrics exports graph operation metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/elasticjava/gaffer"
)

// Collector implements gaffer.MetricsCollector with Prometheus metrics.
type Collector struct {
	latency    *prometheus.HistogramVec
	operations *prometheus.CounterVec
	elements   *prometheus.CounterVec
	results    *prometheus.CounterVec
	aggregated prometheus.Counter
}

var _ gaffer.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of graph operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Graph operations completed",
		}, []string{"op", "status"}),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elements_written_total",
			Help:      "Elements handed to the store, by outcome",
		}, []string{"outcome"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_results_total",
			Help:      "Elements or vertices returned by queries",
		}, []string{"op"}),
		aggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_aggregated_total",
			Help:      "Elements merged in the bulk buffer before reaching the store",
		}),
	}

	for _, col := range []prometheus.Collector{c.latency, c.operations, c.elements, c.results, c.aggregated} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on registration errors.
func MustNew(reg prometheus.Registerer, namespace string) *Collector {
	c, err := New(reg, namespace)
	if err != nil {
		panic(err)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.latency.WithLabelValues(op, s).Observe(d.Seconds())
	c.operations.WithLabelValues(op, s).Inc()
}

// RecordAddElements implements gaffer.MetricsCollector.
func (c *Collector) RecordAddElements(count, skipped int, d time.Duration, err error) {
	c.observe("add_elements", d, err)
	if err != nil {
		c.elements.WithLabelValues("failed").Add(float64(count))
		return
	}
	c.elements.WithLabelValues("written").Add(float64(count - skipped))
	c.elements.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordQuery implements gaffer.MetricsCollector.
func (c *Collector) RecordQuery(op string, results int, d time.Duration, err error) {
	c.observe(op, d, err)
	c.results.WithLabelValues(op).Add(float64(results))
}

// RecordFlush implements gaffer.MetricsCollector.
func (c *Collector) RecordFlush(buffered, aggregated int, d time.Duration, err error) {
	c.observe("bulk_flush", d, err)
	if err != nil {
		c.elements.WithLabelValues("failed").Add(float64(buffered))
		return
	}
	c.elements.WithLabelValues("written").Add(float64(buffered))
	c.aggregated.Add(float64(aggregated))
}
