package identify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IdentificationsTotal counts identify requests.
	// Labels: result (success, no_detection, parse_error, model_error)
	IdentificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pestid",
			Subsystem: "identify",
			Name:      "requests_total",
			Help:      "Total number of image identification requests by outcome",
		},
		[]string{"result"},
	)

	// DetectionsTotal counts successful identifications.
	// Labels: type (pest, disease, other), threat_level (low, medium, high, other)
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pestid",
			Subsystem: "identify",
			Name:      "detections_total",
			Help:      "Total number of identified pests and diseases",
		},
		[]string{"type", "threat_level"},
	)

	// Confidence tracks the reported confidence of identifications.
	Confidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pestid",
			Subsystem: "identify",
			Name:      "confidence",
			Help:      "Model-reported confidence of identifications (0-100)",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)
)
