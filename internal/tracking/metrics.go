package tracking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts tracking operations.
	// Labels: operation (create, list, search, get), result (success, error, fallback, not_found, invalid)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pestid",
			Subsystem: "tracking",
			Name:      "operations_total",
			Help:      "Total number of tracking store operations by outcome",
		},
		[]string{"operation", "result"},
	)

	// SearchResults tracks how many entries a search returns.
	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pestid",
			Subsystem: "tracking",
			Name:      "search_results",
			Help:      "Number of entries returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)
