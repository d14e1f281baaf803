package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RepliesTotal counts chat requests.
	// Labels: result (success, fallback, empty)
	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pestid",
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Total number of chat requests by outcome",
		},
		[]string{"result"},
	)

	// ReplyDuration tracks model latency for chat replies.
	ReplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pestid",
			Subsystem: "chat",
			Name:      "reply_duration_seconds",
			Help:      "Duration of chat model calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)
