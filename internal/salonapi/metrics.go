package salonapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "salon_api_request_duration_seconds",
		Help:    "Duration of calls to the upstream salon API",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation", "status"},
)

func observe(op, status string, start time.Time) {
	upstreamRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
