// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements every hook interface of the observability package.
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stepsTotal    *prometheus.CounterVec
	stepDuration  prometheus.Histogram
	qiTotal       *prometheus.CounterVec
	qiDuration    *prometheus.HistogramVec
	qiBlocks      prometheus.Histogram
	oracleErrors  *prometheus.CounterVec
	cacheOps      *prometheus.CounterVec
	cacheBytes    prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
}

// New registers the metrics on reg and returns the hook implementation.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qivalidate_runs_total",
			Help: "Validation runs by outcome",
		}, []string{"outcome"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qivalidate_run_duration_seconds",
			Help:    "Validation run duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		stepsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qivalidate_steps_total",
			Help: "Merge steps by verdict",
		}, []string{"verdict"}),
		stepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qivalidate_step_duration_seconds",
			Help:    "Merge step duration including qi computation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		qiTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qivalidate_qi_computations_total",
			Help: "Qi-number computations by method",
		}, []string{"method"}),
		qiDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qivalidate_qi_duration_seconds",
			Help:    "Qi-number computation duration by method",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"method"}),
		qiBlocks: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "qivalidate_qi_blocks",
			Help:    "Quotient graph size per qi computation",
			Buckets: []float64{1, 2, 4, 8, 12, 16, 24, 32, 64, 128},
		}),
		oracleErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qivalidate_oracle_failures_total",
			Help: "Coloring oracle failures recovered by the engine",
		}, []string{"oracle"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qivalidate_cache_operations_total",
			Help: "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "qivalidate_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "qivalidate_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qivalidate_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "qivalidate_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

// OnRunStart implements observability.ValidationHooks.
func (m *Metrics) OnRunStart(context.Context, string, int, int) {}

// OnStep implements observability.ValidationHooks.
func (m *Metrics) OnStep(_ context.Context, _ string, _, _, _ int, verdict string, d time.Duration) {
	m.stepsTotal.WithLabelValues(verdict).Inc()
	m.stepDuration.Observe(d.Seconds())
}

// OnRunComplete implements observability.ValidationHooks.
func (m *Metrics) OnRunComplete(_ context.Context, _, outcome string, _ int, d time.Duration, err error) {
	if err != nil {
		outcome = "error"
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(d.Seconds())
}

// OnQiComputed implements observability.QiHooks.
func (m *Metrics) OnQiComputed(blocks int, method string, _ int, d time.Duration) {
	m.qiTotal.WithLabelValues(method).Inc()
	m.qiDuration.WithLabelValues(method).Observe(d.Seconds())
	m.qiBlocks.Observe(float64(blocks))
}

// OnOracleFailure implements observability.QiHooks.
func (m *Metrics) OnOracleFailure(oracle string, _ int, _ error) {
	m.oracleErrors.WithLabelValues(oracle).Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

// OnRequest implements observability.ServerHooks.
func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

// OnResponse implements observability.ServerHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
