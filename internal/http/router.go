package http

import (
	"net/http"

	"telemetry-ingest/internal/auth"
	"telemetry-ingest/internal/ingestors"
	"telemetry-ingest/internal/shared/loggers"
	"telemetry-ingest/internal/shared/metrics"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	ingestionService ingestors.IngestionService,
	authenticator auth.Authenticator,
	tokens auth.ScopedTokenService,
	httpLogger loggers.Logger,
) http.Handler {
	router := chi.NewRouter()
	setupMiddleware(router, httpLogger)

	// Initialize handlers
	ingestEventsHandler := NewIngestEventsHandler(ingestionService)
	widgetTokenHandler := NewWidgetTokenHandler(authenticator, tokens)

	// Routes
	router.Post("/v1/events", errorHandlingAdapter(ingestEventsHandler))
	router.Post("/v1/widget-tokens", errorHandlingAdapter(widgetTokenHandler))
	router.Get("/metrics", metrics.PromHTTP.Handler().ServeHTTP)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return router
}
