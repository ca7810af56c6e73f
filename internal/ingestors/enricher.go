package ingestors

import (
	"time"

	"telemetry-ingest/internal/models"

	"github.com/mileusna/useragent"
)

// Enricher stamps surviving events with the authenticated tenant identity and
// the ingestion instant. Widget-sourced events additionally get the browser
// family parsed from the submitting User-Agent.
type Enricher struct {
	now func() time.Time
}

func NewEnricher() *Enricher {
	return &Enricher{now: time.Now}
}

// Enrich stamps the given events. The events are pipeline-owned copies by
// this stage, so stamping in place is safe.
func (e *Enricher) Enrich(events []*models.Event, authCtx *models.AuthContext, userAgent string) {
	ingestedAt := e.now().UTC()
	clientName := ""
	if userAgent != "" {
		if parsed := useragent.Parse(userAgent); parsed.Name != "" {
			clientName = parsed.Name
		}
	}

	for _, event := range events {
		event.TenantID = authCtx.TenantID
		event.ProjectID = authCtx.ProjectID
		event.IngestedAt = ingestedAt
		if event.Source == models.SourceWidget {
			event.ClientName = clientName
		}
	}
}
