package ratelimit

import (
	"telemetry-ingest/internal/shared/metrics"
)

var (
	metricRateLimitDeniedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubRateLimit,
			Name:      "denied_total",
		},
		[]string{"pool"},
	)

	metricRateLimitKeys = metrics.NewGaugeVec(
		metrics.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubRateLimit,
			Name:      "live_keys",
		},
		[]string{"pool"},
	)
)
