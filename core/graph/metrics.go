package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports builder progress. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	processed prometheus.Counter
	skipped   prometheus.Counter
	observed  prometheus.Counter
	nodes     prometheus.Gauge
	live      prometheus.Gauge
	pending   prometheus.Gauge
	phase     *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &Metrics{
		processed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dbgraph",
			Name:      "sequences_processed_total",
			Help:      "Reads taken from the input stream",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dbgraph",
			Name:      "sequences_skipped_total",
			Help:      "Reads skipped for a non-DNA alphabet, gaps or unsupported symbols",
		}),
		observed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dbgraph",
			Name:      "kmers_observed_total",
			Help:      "Canonical k-mers inserted or counted by the consumer",
		}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "dbgraph",
			Name:      "nodes",
			Help:      "Distinct k-mer nodes created",
		}),
		live: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "dbgraph",
			Name:      "live_nodes",
			Help:      "Nodes not yet removed",
		}),
		pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "dbgraph",
			Name:      "pending_kmers",
			Help:      "K-mers queued between producer and consumer",
		}),
		phase: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dbgraph",
			Name:      "phase_duration_seconds",
			Help:      "Wall time of build, link and compact phases",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"phase"}),
	}
}

func (m *Metrics) sequence(skipped bool) {
	if m == nil {
		return
	}
	m.processed.Inc()
	if skipped {
		m.skipped.Inc()
	}
}

func (m *Metrics) queued(n int) {
	if m == nil {
		return
	}
	m.pending.Add(float64(n))
}

func (m *Metrics) dequeued(n int) {
	if m == nil {
		return
	}
	m.pending.Sub(float64(n))
}

func (m *Metrics) consumed(n, created int) {
	if m == nil {
		return
	}
	m.observed.Add(float64(n))
	m.nodes.Add(float64(created))
	m.live.Add(float64(created))
}

func (m *Metrics) removed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.live.Sub(float64(n))
}

func (m *Metrics) phaseDone(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phase.WithLabelValues(phase).Observe(d.Seconds())
}
