package location

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts IP geolocation lookups.
	// Labels: result (success, error)
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pestid",
			Subsystem: "location",
			Name:      "lookups_total",
			Help:      "Total number of IP geolocation lookups by outcome",
		},
		[]string{"result"},
	)

	// LookupDuration tracks geolocation latency.
	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pestid",
			Subsystem: "location",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of IP geolocation lookups",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
