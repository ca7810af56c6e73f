package auth

import (
	"telemetry-ingest/internal/shared/metrics"
)

var (
	metricAuthFailuresTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAuth,
			Name:      "failures_total",
		},
		[]string{metrics.FieldErrorCode},
	)
)
