package ingestors

import (
	"telemetry-ingest/internal/shared/metrics"
)

const (
	stageSchema      = "schema"
	stageFieldLimits = "field_limits"
)

var (
	metricBatchIngestedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "batch_ingested_total",
		},
		[]string{metrics.FieldErrorCode},
	)

	metricEventsAcceptedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "events_accepted_total",
		},
		[]string{"event_type"},
	)

	metricEventsRejectedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "events_rejected_total",
		},
		[]string{"stage"},
	)

	metricFieldsTruncatedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "fields_truncated_total",
		},
		[]string{"field"},
	)

	metricFieldsRedactedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "fields_redacted_total",
		},
		[]string{},
	)
)
