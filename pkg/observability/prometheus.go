package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "distindex"

// PrometheusHooks implements [IndexHooks], [SearchHooks] and [StoreHooks]
// on Prometheus collectors.
type PrometheusHooks struct {
	// BuildsTotal counts index builds.
	// Labels: status (success, error)
	BuildsTotal *prometheus.CounterVec

	// BuildDurationSeconds measures index build time.
	BuildDurationSeconds prometheus.Histogram

	// BuildNodes records the size of built graphs.
	BuildNodes prometheus.Histogram

	// LoadsTotal counts snapshot loads.
	// Labels: status (success, error)
	LoadsTotal *prometheus.CounterVec

	// SearchesTotal counts searches by outcome.
	// Labels: outcome (found, not_found, exhausted)
	SearchesTotal *prometheus.CounterVec

	// SearchStates records the number of states each search popped.
	SearchStates prometheus.Histogram

	// SearchDurationSeconds measures search time.
	SearchDurationSeconds prometheus.Histogram

	// StoreOpsTotal counts store lookups and writes.
	// Labels: backend, op (hit, miss, set)
	StoreOpsTotal *prometheus.CounterVec

	// StoreBytesTotal counts bytes written to stores.
	// Labels: backend
	StoreBytesTotal *prometheus.CounterVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		BuildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "index",
			Name:      "builds_total",
			Help:      "Total distance index builds",
		}, []string{"status"}),
		BuildDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "index",
			Name:      "build_duration_seconds",
			Help:      "Distance index build time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		BuildNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "index",
			Name:      "build_nodes",
			Help:      "Number of nodes in indexed graphs",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		}),
		LoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "index",
			Name:      "loads_total",
			Help:      "Total snapshot loads",
		}, []string{"status"}),
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "searches_total",
			Help:      "Total target-value searches by outcome",
		}, []string{"outcome"}),
		SearchStates: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "states",
			Help:      "States explored per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}),
		SearchDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		StoreOpsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Snapshot store operations",
		}, []string{"backend", "op"}),
		StoreBytesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "written_bytes_total",
			Help:      "Bytes written to snapshot stores",
		}, []string{"backend"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (p *PrometheusHooks) OnBuildStart(context.Context, int) {}

func (p *PrometheusHooks) OnBuildComplete(_ context.Context, nodes int, d time.Duration, err error) {
	p.BuildsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		p.BuildDurationSeconds.Observe(d.Seconds())
		p.BuildNodes.Observe(float64(nodes))
	}
}

func (p *PrometheusHooks) OnLoad(_ context.Context, err error) {
	p.LoadsTotal.WithLabelValues(status(err)).Inc()
}

func (p *PrometheusHooks) OnSearchComplete(_ context.Context, outcome string, explored int, d time.Duration) {
	p.SearchesTotal.WithLabelValues(outcome).Inc()
	p.SearchStates.Observe(float64(explored))
	p.SearchDurationSeconds.Observe(d.Seconds())
}

func (p *PrometheusHooks) OnStoreHit(_ context.Context, backend string) {
	p.StoreOpsTotal.WithLabelValues(backend, "hit").Inc()
}

func (p *PrometheusHooks) OnStoreMiss(_ context.Context, backend string) {
	p.StoreOpsTotal.WithLabelValues(backend, "miss").Inc()
}

func (p *PrometheusHooks) OnStoreSet(_ context.Context, backend string, size int) {
	p.StoreOpsTotal.WithLabelValues(backend, "set").Inc()
	p.StoreBytesTotal.WithLabelValues(backend).Add(float64(size))
}
