package writers

import (
	"telemetry-ingest/internal/shared/metrics"
)

var (
	metricWriterEnqueuedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubWriter,
			Name:      "events_enqueued_total",
		},
		[]string{"sink"},
	)

	metricWriterBufferSize = metrics.NewGaugeVec(
		metrics.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubWriter,
			Name:      "buffer_size",
		},
		[]string{"sink"},
	)

	metricWriterBackpressureTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubWriter,
			Name:      "backpressure_total",
		},
		[]string{"sink"},
	)

	metricWriterFlushTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubWriter,
			Name:      "flush_total",
		},
		[]string{"sink", "result"},
	)

	metricWriterFlushDuration = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubWriter,
			Name:      "flush_duration_seconds",
			Buckets:   metrics.DefBuckets,
		},
		[]string{"sink"},
	)
)
