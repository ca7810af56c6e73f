package ingestors

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/svcerrors"
	"telemetry-ingest/internal/shared/validators"

	"github.com/google/uuid"
)

// SchemaValidator checks a decoded batch against the event-kind union.
// Records are validated independently: a failure in one never affects the
// others, which is the basis of partial-success responses.
type SchemaValidator struct {
	validate       *validators.Validate
	maxBatchEvents int
}

func NewSchemaValidator(maxBatchEvents int) *SchemaValidator {
	validate := validators.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &SchemaValidator{
		validate:       validate,
		maxBatchEvents: maxBatchEvents,
	}
}

// ValidateEnvelope decodes the request body into a batch envelope. Envelope
// failures are batch-level: the whole request is rejected with one error.
func (v *SchemaValidator) ValidateEnvelope(body []byte) (*models.BatchEnvelope, *svcerrors.ServiceError) {
	var envelope models.BatchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errSchemaValidationFailed("request body must be a JSON object with an events array", err)
	}
	if len(envelope.Events) == 0 {
		return nil, errSchemaValidationFailed("events must be a non-empty array", nil)
	}
	if len(envelope.Events) > v.maxBatchEvents {
		return nil, errSchemaValidationFailed(
			fmt.Sprintf("events must contain at most %d entries", v.maxBatchEvents), nil)
	}
	return &envelope, nil
}

// ValidateRecords partitions the envelope's records into accepted events and
// index-addressed rejections.
func (v *SchemaValidator) ValidateRecords(envelope *models.BatchEnvelope) *models.ValidationOutcome {
	outcome := &models.ValidationOutcome{}

	for index, raw := range envelope.Events {
		event := &models.Event{}
		if err := json.Unmarshal(raw, event); err != nil {
			outcome.Rejected = append(outcome.Rejected, models.RecordError{
				Index:   index,
				Reasons: []string{"record must be a JSON object matching the event schema"},
			})
			continue
		}

		reasons := v.validateEvent(event)
		if len(reasons) > 0 {
			outcome.Rejected = append(outcome.Rejected, models.RecordError{Index: index, Reasons: reasons})
			continue
		}

		outcome.Accepted = append(outcome.Accepted, event)
		outcome.Indexes = append(outcome.Indexes, index)
	}

	return outcome
}

// eventIdentity covers the fields every kind shares.
type eventIdentity struct {
	EventID   string `json:"event_id" validate:"required"`
	EventType string `json:"event_type" validate:"required"`
	TraceID   string `json:"trace_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
	Source    string `json:"source" validate:"required,oneof=server widget"`
}

// Per-kind payload views. Validation dispatches on the discriminant to one of
// these instead of probing fields dynamically.
type toolCallView struct {
	EventName  string   `json:"event_name" validate:"required"`
	Status     string   `json:"status" validate:"omitempty,oneof=success error"`
	DurationMs *float64 `json:"duration_ms" validate:"omitempty,gte=0"`
}

type userActionView struct {
	EventName string `json:"event_name" validate:"required"`
}

type conversionView struct {
	ConversionValue    *float64 `json:"conversion_value" validate:"required"`
	ConversionCurrency string   `json:"conversion_currency" validate:"required,len=3"`
}

type sessionLifecycleView struct {
	EventName string `json:"event_name" validate:"required,oneof=session_start session_end"`
}

type toolDiscoveryView struct {
	ToolName string `json:"tool_name" validate:"required"`
}

func (v *SchemaValidator) validateEvent(event *models.Event) []string {
	var reasons []string

	identity := eventIdentity{
		EventID:   event.EventID,
		EventType: string(event.EventType),
		TraceID:   event.TraceID,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
		Source:    event.Source,
	}
	reasons = append(reasons, v.structViolations(identity)...)

	if event.EventID != "" {
		if _, err := uuid.Parse(event.EventID); err != nil {
			reasons = append(reasons, "field event_id must be a valid UUID")
		}
	}
	if event.Timestamp != "" {
		if _, err := parseTimestamp(event.Timestamp); err != nil {
			reasons = append(reasons, "field timestamp must be a valid ISO-8601 instant")
		}
	}

	if event.EventType != "" {
		switch event.EventType {
		case models.EventTypeToolCall:
			reasons = append(reasons, v.structViolations(toolCallView{
				EventName:  event.EventName,
				Status:     event.Status,
				DurationMs: event.DurationMs,
			})...)
		case models.EventTypeUserAction:
			reasons = append(reasons, v.structViolations(userActionView{EventName: event.EventName})...)
		case models.EventTypeConversion:
			reasons = append(reasons, v.structViolations(conversionView{
				ConversionValue:    event.ConversionValue,
				ConversionCurrency: event.ConversionCurrency,
			})...)
		case models.EventTypeSessionLifecycle:
			reasons = append(reasons, v.structViolations(sessionLifecycleView{EventName: event.EventName})...)
		case models.EventTypeToolDiscovery:
			reasons = append(reasons, v.structViolations(toolDiscoveryView{ToolName: event.ToolName})...)
		default:
			reasons = append(reasons, fmt.Sprintf("unknown event_type: %q", event.EventType))
		}
	}

	return reasons
}

func (v *SchemaValidator) structViolations(view any) []string {
	err := v.validate.Struct(view)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validators.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	reasons := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		reasons = append(reasons, formatViolation(fieldErr))
	}
	return reasons
}

func formatViolation(e validators.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("field %s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", e.Field(), e.Param())
	case "uuid":
		return fmt.Sprintf("field %s must be a valid UUID", e.Field())
	case "gte":
		return fmt.Sprintf("field %s must be >= %s", e.Field(), e.Param())
	case "len":
		return fmt.Sprintf("field %s must have length %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("field %s failed %s validation", e.Field(), e.Tag())
	}
}

// parseTimestamp accepts RFC3339 with or without fractional seconds.
func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05.000Z07:00", value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
