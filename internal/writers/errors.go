package writers

import (
	"telemetry-ingest/internal/shared/svcerrors"
)

const codeBackpressureActive = "WRT_1000"

// ErrBackpressureActive is returned to the request path when a writer buffer
// is saturated. The events were still accepted (dropping silently would break
// at-least-once delivery); the caller slows the producer down via 503 +
// Retry-After.
func ErrBackpressureActive(retryAfterSeconds int) *svcerrors.ServiceError {
	return svcerrors.NewUnavailableError(codeBackpressureActive, "ingestion buffer saturated, retry later", retryAfterSeconds)
}
