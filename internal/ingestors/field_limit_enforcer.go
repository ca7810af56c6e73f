package ingestors

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"telemetry-ingest/internal/models"
)

// Per-field size ceilings. Identity fields over their ceiling reject the
// record; payload fields are truncated with a warning so the record survives.
const (
	maxEventBytes     = 50 * 1024
	maxEventNameChars = 256
	maxIDChars        = 128

	maxLargePayloadBytes  = 10 * 1024 // metadata, input_values, output_content
	maxMediumPayloadBytes = 5 * 1024  // user_traits, input_keys, input_types
	maxSmallPayloadBytes  = 2 * 1024  // intent_signals
	maxErrorMessageBytes  = 2 * 1024
)

const errorMessageMarker = " [truncated]"

// FieldLimitEnforcer applies per-field size ceilings. It never mutates its
// input: every surviving record is a deep copy, so running the enforcer twice
// over an already-truncated event is a no-op on the second pass.
type FieldLimitEnforcer struct{}

func NewFieldLimitEnforcer() *FieldLimitEnforcer {
	return &FieldLimitEnforcer{}
}

// Enforce filters the schema-accepted records, preserving original batch
// indices in rejections and warnings.
func (f *FieldLimitEnforcer) Enforce(outcome *models.ValidationOutcome) *models.FieldLimitOutcome {
	result := &models.FieldLimitOutcome{}

	for i, event := range outcome.Accepted {
		index := outcome.Indexes[i]

		if reason := f.rejectReason(event); reason != "" {
			result.Rejected = append(result.Rejected, models.RecordError{
				Index:   index,
				Reasons: []string{reason},
			})
			metricEventsRejectedTotal.WithLabelValues(stageFieldLimits).Inc()
			continue
		}

		clone := event.Clone()
		result.Warnings = append(result.Warnings, f.truncate(clone, index)...)
		result.Accepted = append(result.Accepted, clone)
		result.Indexes = append(result.Indexes, index)
	}

	return result
}

func (f *FieldLimitEnforcer) rejectReason(event *models.Event) string {
	serialized, err := json.Marshal(event)
	if err == nil && len(serialized) > maxEventBytes {
		return fmt.Sprintf("total serialized event size exceeds the %d KB ceiling", maxEventBytes/1024)
	}
	if len(event.EventName) > maxEventNameChars {
		return fmt.Sprintf("event_name exceeds %d characters", maxEventNameChars)
	}
	if len(event.TraceID) > maxIDChars {
		return fmt.Sprintf("trace_id exceeds %d characters", maxIDChars)
	}
	if len(event.SessionID) > maxIDChars {
		return fmt.Sprintf("session_id exceeds %d characters", maxIDChars)
	}
	return ""
}

// truncate replaces oversized payload fields on the (already cloned) event
// and reports one warning per replaced field.
func (f *FieldLimitEnforcer) truncate(event *models.Event, index int) []models.FieldWarning {
	var warnings []models.FieldWarning

	warn := func(field string, ceiling int) {
		warnings = append(warnings, models.FieldWarning{
			Index:   index,
			Field:   field,
			Message: fmt.Sprintf("%s exceeded %d bytes and was truncated", field, ceiling),
		})
		metricFieldsTruncatedTotal.WithLabelValues(field).Inc()
	}

	if size, over := oversized(event.Metadata, maxLargePayloadBytes); over {
		event.Metadata = truncationMarker(size)
		warn("metadata", maxLargePayloadBytes)
	}
	if size, over := oversized(event.InputValues, maxLargePayloadBytes); over {
		event.InputValues = truncationMarker(size)
		warn("input_values", maxLargePayloadBytes)
	}
	if size, over := oversized(event.OutputContent, maxLargePayloadBytes); over {
		event.OutputContent = truncationMarker(size)
		warn("output_content", maxLargePayloadBytes)
	}

	if size, over := oversized(event.UserTraits, maxMediumPayloadBytes); over {
		event.UserTraits = truncationMarker(size)
		warn("user_traits", maxMediumPayloadBytes)
	}
	if _, over := oversized(event.InputKeys, maxMediumPayloadBytes); over {
		event.InputKeys = []string{"[truncated]"}
		warn("input_keys", maxMediumPayloadBytes)
	}
	if size, over := oversized(event.InputTypes, maxMediumPayloadBytes); over {
		event.InputTypes = truncationMarker(size)
		warn("input_types", maxMediumPayloadBytes)
	}

	if size, over := oversized(event.IntentSignals, maxSmallPayloadBytes); over {
		event.IntentSignals = truncationMarker(size)
		warn("intent_signals", maxSmallPayloadBytes)
	}

	// error_message keeps its prefix instead of being replaced wholesale: a
	// shortened error is still diagnosable, an empty one is not.
	if len(event.ErrorMessage) > maxErrorMessageBytes {
		keep := maxErrorMessageBytes - len(errorMessageMarker)
		// Back the cut up to a rune boundary so the kept prefix stays
		// valid UTF-8.
		for keep > 0 && !utf8.RuneStart(event.ErrorMessage[keep]) {
			keep--
		}
		event.ErrorMessage = event.ErrorMessage[:keep] + errorMessageMarker
		warnings = append(warnings, models.FieldWarning{
			Index:   index,
			Field:   "error_message",
			Message: fmt.Sprintf("error_message exceeded %d bytes and was shortened", maxErrorMessageBytes),
		})
		metricFieldsTruncatedTotal.WithLabelValues("error_message").Inc()
	}

	return warnings
}

// oversized reports the serialized size of a payload value and whether it is
// over its ceiling. Nil values are never oversized.
func oversized(value any, ceiling int) (int, bool) {
	if value == nil {
		return 0, false
	}
	serialized, err := json.Marshal(value)
	if err != nil {
		return 0, false
	}
	if len(serialized) <= ceiling {
		return len(serialized), false
	}
	return len(serialized), true
}

func truncationMarker(originalSize int) map[string]any {
	return map[string]any{
		"truncated":           true,
		"original_size_bytes": originalSize,
	}
}
