package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts model calls.
	// Labels: provider, result (success, error, rate_limited)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pestid",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Total number of generative model requests",
		},
		[]string{"provider", "result"},
	)

	// RequestDuration tracks model call latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pestid",
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Duration of generative model requests in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider"},
	)
)
