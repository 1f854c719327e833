package scan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tm16xx_key_polls_total",
		Help: "count of key-scan reads attempted",
	})

	changesCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tm16xx_key_changes_total",
		Help: "count of key-scan reads that differed from the last reported frame",
	})

	errorsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tm16xx_key_errors_total",
		Help: "count of key-scan reads that failed",
	})

	pollDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tm16xx_poll_duration_seconds",
		Help:    "time spent on one animation frame plus key read",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})
)
