package ingestors

import (
	"context"
	"io"
	"sort"
	"time"

	"telemetry-ingest/internal/auth"
	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/ratelimit"
	"telemetry-ingest/internal/shared/loggers"
	"telemetry-ingest/internal/shared/metrics"
	"telemetry-ingest/internal/shared/svcerrors"
	"telemetry-ingest/internal/writers"
)

// IngestRequest carries the raw material of one ingestion call, extracted
// from the HTTP layer.
type IngestRequest struct {
	AuthorizationHeader string
	ClientIP            string
	UserAgent           string
	Body                io.Reader
}

// IngestResult is the success-path summary the handler turns into a 200 or
// 207 response.
type IngestResult struct {
	Accepted int
	Rejected int
	Errors   []models.RecordError
	Warnings []models.FieldWarning
}

//go:generate mockgen -source=ingestion_service.go -destination=./mocks/ingestion_service_mock.go -package=mocks
type IngestionService interface {
	// Ingest runs one batch through the full pipeline: authenticate,
	// rate-limit, size-guard, schema-validate, trace-bind, field-limit,
	// redact, enrich, and enqueue for durable write.
	Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error)
}

type ingestionService struct {
	authenticator auth.Authenticator
	perIPPool     *ratelimit.Pool
	perCredPool   *ratelimit.Pool

	schemaValidator *SchemaValidator
	fieldLimits     *FieldLimitEnforcer
	redactor        *Redactor
	enricher        *Enricher

	eventWriter    writers.Writer
	registryWriter writers.Writer

	maxBodyBytes int
}

func NewIngestionService(
	authenticator auth.Authenticator,
	perIPPool, perCredPool *ratelimit.Pool,
	schemaValidator *SchemaValidator,
	fieldLimits *FieldLimitEnforcer,
	redactor *Redactor,
	enricher *Enricher,
	eventWriter, registryWriter writers.Writer,
	maxBodyBytes int,
) IngestionService {
	return &ingestionService{
		authenticator:   authenticator,
		perIPPool:       perIPPool,
		perCredPool:     perCredPool,
		schemaValidator: schemaValidator,
		fieldLimits:     fieldLimits,
		redactor:        redactor,
		enricher:        enricher,
		eventWriter:     eventWriter,
		registryWriter:  registryWriter,
		maxBodyBytes:    maxBodyBytes,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	logger := loggers.Ctx(ctx)

	// Auth and the coarse per-IP limit run before any parsing cost is spent.
	authCtx, err := s.authenticator.Authenticate(ctx, req.AuthorizationHeader)
	if err != nil {
		return nil, err
	}

	if decision := s.perIPPool.Consume(req.ClientIP, 1); !decision.Allowed {
		return nil, errPerIPRateLimit(retryAfterSeconds(decision.RetryAfter))
	}

	body, svcErr := s.readWithLimit(req.Body)
	if svcErr != nil {
		metricBatchIngestedTotal.WithLabelValues(svcErr.Code).Inc()
		return nil, svcErr
	}

	envelope, svcErr := s.schemaValidator.ValidateEnvelope(body)
	if svcErr != nil {
		metricBatchIngestedTotal.WithLabelValues(svcErr.Code).Inc()
		return nil, svcErr
	}

	// The per-credential pool is weighted by event count so one oversized
	// batch spends proportionally more budget than many small ones. The
	// count comes from the cheap envelope decode; per-record validation,
	// where the real cost is, has not run yet.
	if decision := s.perCredPool.Consume(authCtx.RateKey, float64(len(envelope.Events))); !decision.Allowed {
		return nil, errPerCredentialRateLimit(retryAfterSeconds(decision.RetryAfter))
	}

	validation := s.schemaValidator.ValidateRecords(envelope)
	for range validation.Rejected {
		metricEventsRejectedTotal.WithLabelValues(stageSchema).Inc()
	}

	// A scoped token authorizes exactly one trace. Any stray trace_id means
	// the token is being used outside its scope, so the whole batch fails.
	if authCtx.FromScopedToken() {
		for _, event := range validation.Accepted {
			if event.TraceID != authCtx.BoundTraceID {
				svcErr := errTraceBindingMismatch()
				metricBatchIngestedTotal.WithLabelValues(svcErr.Code).Inc()
				return nil, svcErr
			}
		}
	}

	limited := s.fieldLimits.Enforce(validation)

	recordErrors := mergeRecordErrors(validation.Rejected, limited.Rejected)
	if len(limited.Accepted) == 0 {
		err := errAllRecordsRejected(len(recordErrors), recordErrors)
		metricBatchIngestedTotal.WithLabelValues(codeAllRecordsRejected).Inc()
		return nil, err
	}

	redacted := s.redactor.Strip(limited.Accepted)
	s.enricher.Enrich(redacted, authCtx, req.UserAgent)

	// tool_discovery events feed the registry's latest-wins sink; everything
	// else goes to the analytics sink.
	var analyticsEvents, discoveryEvents []*models.Event
	for _, event := range redacted {
		if event.EventType == models.EventTypeToolDiscovery {
			discoveryEvents = append(discoveryEvents, event)
		} else {
			analyticsEvents = append(analyticsEvents, event)
		}
		metricEventsAcceptedTotal.WithLabelValues(string(event.EventType)).Inc()
	}

	backpressure := s.eventWriter.Enqueue(analyticsEvents)
	backpressure = s.registryWriter.Enqueue(discoveryEvents) || backpressure
	if backpressure {
		return nil, writers.ErrBackpressureActive(backpressureRetryAfterSeconds)
	}

	logger.Debug().
		Str(loggers.FieldTenantID, authCtx.TenantID).
		Int(loggers.FieldEventCount, len(redacted)).
		Msg("batch ingested")
	metricBatchIngestedTotal.WithLabelValues(metrics.ValueNoError).Inc()

	return &IngestResult{
		Accepted: len(redacted),
		Rejected: len(recordErrors),
		Errors:   recordErrors,
		Warnings: limited.Warnings,
	}, nil
}

// backpressureRetryAfterSeconds is the Retry-After hint attached to 503
// responses; roughly one flush interval.
const backpressureRetryAfterSeconds = 2

// readWithLimit reads up to maxBodyBytes+1 bytes and rejects the request if
// the body is over the ceiling, bounding worst-case parse cost.
func (s *ingestionService) readWithLimit(r io.Reader) ([]byte, *svcerrors.ServiceError) {
	if r == nil {
		return nil, errSchemaValidationFailed("empty request body", nil)
	}

	buf, err := io.ReadAll(io.LimitReader(r, int64(s.maxBodyBytes)+1))
	if err != nil {
		return nil, errSchemaValidationFailed("failed to read request body", err)
	}
	if len(buf) > s.maxBodyBytes {
		return nil, errBatchTooLarge(s.maxBodyBytes)
	}
	return buf, nil
}

// mergeRecordErrors combines per-stage rejections into one list ordered by
// original submission index.
func mergeRecordErrors(lists ...[]models.RecordError) []models.RecordError {
	var merged []models.RecordError
	for _, list := range lists {
		merged = append(merged, list...)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Index < merged[j].Index })
	return merged
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
