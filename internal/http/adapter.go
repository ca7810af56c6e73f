package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"telemetry-ingest/internal/ingestors"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/loggers"
	"telemetry-ingest/internal/shared/svcerrors"
)

// ErrorDetail is the stable error shape inside every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an HTTP error response. Accepted/Rejected/Errors
// are populated only for batch-level rejections that carry per-record detail.
type ErrorResponse struct {
	RequestID string               `json:"requestId"`
	Error     ErrorDetail          `json:"error"`
	Accepted  *int                 `json:"accepted,omitempty"`
	Rejected  *int                 `json:"rejected,omitempty"`
	Errors    []models.RecordError `json:"errors,omitempty"`
}

func errorHandlingAdapter(httpHandler AppHttpHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := httpHandler.Handle(w, r)
		if err == nil {
			return
		}

		svcErr, ok := svcerrors.AsServiceError(err)
		if !ok {
			svcErr = svcerrors.NewInternalErrorUndefined(err)
		}

		// Log internal errors at error level
		if svcErr.IsInternalError() {
			logger := loggers.Ctx(r.Context())

			logger.Error().
				Err(svcErr.Cause).
				Str(loggers.FieldErrorCode, svcErr.Code).
				Msg("internal error in handler")
		}

		writeErrorResponse(w, r, err, svcErr)
	}
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, err error, svcErr *svcerrors.ServiceError) {
	// set serviceError for middlewares
	if appWriter, ok := w.(*appResponseWriter); ok {
		appWriter.SetServiceError(svcErr)
	}

	errorResponse := ErrorResponse{
		RequestID: requestID(r),
		Error: ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
		},
	}

	// Batch-aborting rejections still report per-record detail against the
	// original submission indices.
	var batchErr *ingestors.BatchRejectionError
	if errors.As(err, &batchErr) {
		accepted := 0
		errorResponse.Accepted = &accepted
		errorResponse.Rejected = &batchErr.Rejected
		errorResponse.Errors = batchErr.Errors
	}

	logger := loggers.Ctx(r.Context())
	// Log error response at debug level
	logger.Debug().
		Str(loggers.FieldErrorCode, svcErr.Code).
		Str("errorCategory", svcErr.Category).
		Str("errorMessage", svcErr.Message).
		Int("httpStatusCode", svcErr.HttpStatusCode).
		Msg("error response")

	w.Header().Set(headerContentType, "application/json")
	if svcErr.RetryAfterSeconds > 0 {
		w.Header().Set(headerRetryAfter, strconv.Itoa(svcErr.RetryAfterSeconds))
	}
	w.WriteHeader(svcErr.HttpStatusCode)

	_ = json.NewEncoder(w).Encode(errorResponse)
}

// writeJSON writes a success response body.
func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set(headerContentType, "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
