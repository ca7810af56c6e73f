package http

import (
	"net/http"

	"telemetry-ingest/internal/ingestors"
	"telemetry-ingest/internal/models"
)

type AppHttpHandler interface {
	Handle(w http.ResponseWriter, r *http.Request) error
}

// IngestResponse is the success-path body for POST /v1/events. A batch with
// any rejected records answers 207 so partial acceptance is visible to the
// producer.
type IngestResponse struct {
	Accepted int                   `json:"accepted"`
	Rejected int                   `json:"rejected"`
	Errors   []models.RecordError  `json:"errors,omitempty"`
	Warnings []models.FieldWarning `json:"warnings,omitempty"`
}

type ingestEventsHandler struct {
	ingestionService ingestors.IngestionService
}

func NewIngestEventsHandler(ingestionService ingestors.IngestionService) AppHttpHandler {
	return &ingestEventsHandler{
		ingestionService: ingestionService,
	}
}

// Handle processes POST /v1/events requests.
func (h *ingestEventsHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	result, err := h.ingestionService.Ingest(r.Context(), &ingestors.IngestRequest{
		AuthorizationHeader: authorizationHeader(r),
		ClientIP:            clientIP(r),
		UserAgent:           userAgent(r),
		Body:                r.Body,
	})
	if err != nil {
		return err
	}

	status := http.StatusOK
	if result.Rejected > 0 {
		status = http.StatusMultiStatus
	}

	return writeJSON(w, status, IngestResponse{
		Accepted: result.Accepted,
		Rejected: result.Rejected,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	})
}
