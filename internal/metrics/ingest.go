package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector ingest Prometheus metrics.
var (
	IngestProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_products_total",
			Help:      "Products handled by vector ingest, by outcome",
		},
		[]string{"status"},
	)

	IngestChunkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_chunk_duration_seconds",
			Help:      "Time to embed and store one ingest chunk",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 180},
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingest metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestProductsTotal)
	prometheus.MustRegister(IngestChunkDuration)
	ingestMetricsRegistered = true
}
