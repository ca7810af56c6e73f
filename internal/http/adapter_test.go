package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"telemetry-ingest/internal/ingestors"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/svcerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	err error
}

func (h *stubHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	if h.err != nil {
		return h.err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func runAdapter(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()

	adapted := errorHandlingAdapter(&stubHandler{err: err})
	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	rr := httptest.NewRecorder()
	adapted.ServeHTTP(rr, req)

	var errorResponse ErrorResponse
	if rr.Code >= 400 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errorResponse))
	}
	return rr, errorResponse
}

func TestErrorHandlingAdapter_NoErrorPassesThrough(t *testing.T) {
	t.Parallel()

	rr, _ := runAdapter(t, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestErrorHandlingAdapter_ServiceErrorStatusAndBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "invalid argument",
			err:             svcerrors.NewInvalidArgumentError("TEST_1000", "test validation error", nil),
			expectedStatus:  http.StatusBadRequest,
			expectedCode:    "TEST_1000",
			expectedMessage: "test validation error",
		},
		{
			name:            "unauthenticated",
			err:             svcerrors.NewUnauthenticatedError("AUTH_1002", "invalid credential", nil),
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    "AUTH_1002",
			expectedMessage: "invalid credential",
		},
		{
			name:            "payload too large",
			err:             svcerrors.NewPayloadTooLargeError("ING_1001", "request body exceeds 512000 bytes", nil),
			expectedStatus:  http.StatusRequestEntityTooLarge,
			expectedCode:    "ING_1001",
			expectedMessage: "request body exceeds 512000 bytes",
		},
		{
			name:            "internal error",
			err:             svcerrors.NewInternalError("TEST_5000", nil),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    "TEST_5000",
			expectedMessage: "internal server error",
		},
		{
			name:            "non service error",
			err:             assert.AnError,
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    "SYS_9001",
			expectedMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr, errorResponse := runAdapter(t, tt.err)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tt.expectedCode, errorResponse.Error.Code)
			assert.Equal(t, tt.expectedMessage, errorResponse.Error.Message)
			assert.Nil(t, errorResponse.Accepted)
		})
	}
}

func TestErrorHandlingAdapter_RetryAfterHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		err                error
		expectedStatus     int
		expectedRetryAfter string
	}{
		{
			name:               "rate limited",
			err:                svcerrors.NewResourceExhaustedError("RATE_1000", "rate limit exceeded", 3),
			expectedStatus:     http.StatusTooManyRequests,
			expectedRetryAfter: "3",
		},
		{
			name:               "backpressure",
			err:                svcerrors.NewUnavailableError("WRT_1000", "ingestion buffer saturated, retry later", 2),
			expectedStatus:     http.StatusServiceUnavailable,
			expectedRetryAfter: "2",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr, _ := runAdapter(t, tt.err)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedRetryAfter, rr.Header().Get(headerRetryAfter))
		})
	}
}

func TestErrorHandlingAdapter_BatchRejectionCarriesRecordDetails(t *testing.T) {
	t.Parallel()

	err := &ingestors.BatchRejectionError{
		SvcErr:   svcerrors.NewInvalidArgumentError("ING_1003", "all records in the batch were rejected", nil),
		Rejected: 2,
		Errors: []models.RecordError{
			{Index: 0, Reasons: []string{"field event_name is required"}},
			{Index: 1, Reasons: []string{`unknown event_type: "bogus"`}},
		},
	}

	rr, errorResponse := runAdapter(t, err)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "ING_1003", errorResponse.Error.Code)
	require.NotNil(t, errorResponse.Accepted)
	assert.Equal(t, 0, *errorResponse.Accepted)
	require.NotNil(t, errorResponse.Rejected)
	assert.Equal(t, 2, *errorResponse.Rejected)
	require.Len(t, errorResponse.Errors, 2)
	assert.Equal(t, 1, errorResponse.Errors[1].Index)
}
