package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine Prometheus metrics.
var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "matchengine",
			Name:      "query_duration_seconds",
			Help:      "Similarity query duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"status"},
	)

	QueryRecordsScanned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchengine",
			Name:      "query_records_scanned",
			Help:      "Records scanned per similarity query",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 7),
		},
	)

	IndexRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "matchengine",
			Name:      "index_records",
			Help:      "Records currently stored in the index",
		},
	)

	IndexMemoryBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "matchengine",
			Name:      "index_memory_bytes",
			Help:      "Approximate vector memory footprint of the index",
		},
	)

	BatchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchengine",
			Name:      "batch_items_total",
			Help:      "Batch items processed by operation and outcome",
		},
		[]string{"operation", "status"},
	)
)

var engineMetricsOnce sync.Once

// RegisterEngineMetrics registers engine Prometheus metrics on the default
// registry. Safe to call from concurrent constructors; only the first call
// registers.
func RegisterEngineMetrics() {
	engineMetricsOnce.Do(func() {
		prometheus.MustRegister(QueryDuration)
		prometheus.MustRegister(QueryRecordsScanned)
		prometheus.MustRegister(IndexRecords)
		prometheus.MustRegister(IndexMemoryBytes)
		prometheus.MustRegister(BatchItemsTotal)
	})
}
