package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	askTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assistd",
			Subsystem: "assistant",
			Name:      "ask_total",
			Help:      "Questions answered, by classified intent and outcome.",
		},
		[]string{"intent", "status"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assistd",
			Subsystem: "assistant",
			Name:      "stage_duration_seconds",
			Help:      "Duration of the retrieval and generation stages.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)
