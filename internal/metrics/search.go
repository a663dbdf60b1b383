package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	// SearchStrategyTotal counts structured searches by the strategy that produced the records.
	SearchStrategyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_strategy_total",
			Help:      "Structured searches by winning strategy",
		},
		[]string{"strategy"},
	)

	// SearchStageTotal counts pipeline stages by outcome ("hit", "miss", "unchanged", "failed", "fallback").
	SearchStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_stage_total",
			Help:      "Search pipeline stage outcomes",
		},
		[]string{"stage", "outcome"},
	)

	FilterRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_removed_total",
			Help:      "Records dropped by post-filters",
		},
		[]string{"filter"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchStrategyTotal)
	prometheus.MustRegister(SearchStageTotal)
	prometheus.MustRegister(FilterRemovedTotal)
	searchMetricsRegistered = true
}
