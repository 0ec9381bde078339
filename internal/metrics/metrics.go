// Package metrics provides the centralized Prometheus metrics registry for the monitor.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cb_sentinel"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Scan metrics
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Total number of universe scans by status",
	}, []string{"status"})
	ScanHits = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scan_hits",
		Help:      "Instruments with a recent volume breakout in the last scan",
	})
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of universe scans in seconds",
		Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
	})
)

// Fetch metrics
var (
	FetchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_requests_total",
		Help:      "Upstream data requests by dataset and status",
	}, []string{"dataset", "status"})
	FetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_latency_seconds",
		Help:      "Latency of upstream data requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"dataset"})
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Fetch cache lookups by result",
	}, []string{"result"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ScansTotal)
		registry.MustRegister(ScanHits)
		registry.MustRegister(ScanDuration)

		registry.MustRegister(FetchRequestsTotal)
		registry.MustRegister(FetchLatency)
		registry.MustRegister(CacheLookupsTotal)

		registry.MustRegister(SignalsTotal)
		registry.MustRegister(InstrumentsSkippedTotal)
		registry.MustRegister(PremiumPct)

		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestMeanReturn)
		registry.MustRegister(BacktestWinRate)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScan records a completed universe scan.
// status should be one of: "success", "failure"
func RecordScan(status string, hits int, durationSeconds float64) {
	ScansTotal.WithLabelValues(status).Inc()
	ScanDuration.Observe(durationSeconds)
	if status == "success" {
		ScanHits.Set(float64(hits))
	}
}

// RecordFetch records an upstream request outcome.
func RecordFetch(dataset, status string, durationSeconds float64) {
	FetchRequestsTotal.WithLabelValues(dataset, status).Inc()
	FetchLatency.WithLabelValues(dataset).Observe(durationSeconds)
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}
