package ingestors

import (
	"fmt"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/svcerrors"
)

// IngestionService errors
const (
	codeSchemaValidationFailed = "ING_1000"
	codeBatchTooLarge          = "ING_1001"
	codeTraceBindingMismatch   = "ING_1002"
	codeAllRecordsRejected     = "ING_1003"

	codePerIPRateLimit         = "RATE_1000"
	codePerCredentialRateLimit = "RATE_1001"
)

// errSchemaValidationFailed covers batch-level envelope failures: the whole
// request is rejected with one structured error.
func errSchemaValidationFailed(msg string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeSchemaValidationFailed, msg, cause)
}

func errBatchTooLarge(maxBodyBytes int) *svcerrors.ServiceError {
	return svcerrors.NewPayloadTooLargeError(codeBatchTooLarge,
		fmt.Sprintf("request body exceeds %d bytes", maxBodyBytes), nil)
}

func errTraceBindingMismatch() *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeTraceBindingMismatch,
		"scoped token is not authorized for one or more trace_id values in this batch", nil)
}

func errPerIPRateLimit(retryAfterSeconds int) *svcerrors.ServiceError {
	return svcerrors.NewResourceExhaustedError(codePerIPRateLimit, "rate limit exceeded", retryAfterSeconds)
}

func errPerCredentialRateLimit(retryAfterSeconds int) *svcerrors.ServiceError {
	return svcerrors.NewResourceExhaustedError(codePerCredentialRateLimit, "event rate limit exceeded for this credential", retryAfterSeconds)
}

// BatchRejectionError carries per-record details for batch-aborting failures
// so the response can still reference original submission indices.
type BatchRejectionError struct {
	SvcErr   *svcerrors.ServiceError
	Rejected int
	Errors   []models.RecordError
}

func (e *BatchRejectionError) Error() string {
	return e.SvcErr.Error()
}

func (e *BatchRejectionError) Unwrap() error {
	return e.SvcErr
}

func errAllRecordsRejected(rejected int, recordErrors []models.RecordError) error {
	return &BatchRejectionError{
		SvcErr: svcerrors.NewInvalidArgumentError(codeAllRecordsRejected,
			"all records in the batch were rejected", nil),
		Rejected: rejected,
		Errors:   recordErrors,
	}
}
