package models

import (
	"time"
)

// EventType is the discriminant of the event tagged union. The set is closed:
// every inbound record must carry one of these values, and each value selects
// its own payload validation.
type EventType string

const (
	EventTypeToolCall         EventType = "tool_call"
	EventTypeUserAction       EventType = "user_action"
	EventTypeConversion       EventType = "conversion"
	EventTypeSessionLifecycle EventType = "session_lifecycle"
	EventTypeToolDiscovery    EventType = "tool_discovery"
)

// KnownEventTypes lists every member of the closed event-kind set.
var KnownEventTypes = []EventType{
	EventTypeToolCall,
	EventTypeUserAction,
	EventTypeConversion,
	EventTypeSessionLifecycle,
	EventTypeToolDiscovery,
}

// IsKnown reports whether t is a member of the closed event-kind set.
func (t EventType) IsKnown() bool {
	for _, known := range KnownEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

const (
	SourceServer = "server"
	SourceWidget = "widget"
)

// Event is a single telemetry record. All kinds share the identity fields;
// the payload fields that apply depend on EventType.
//
// Timestamp is kept as the submitted string; the schema validator checks that
// it parses as an instant so storage receives the producer's original value.
type Event struct {
	// Identity fields, shared by every kind.
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	EventName string    `json:"event_name,omitempty"`
	TraceID   string    `json:"trace_id"`
	SessionID string    `json:"session_id"`
	Timestamp string    `json:"timestamp"`
	Source    string    `json:"source"`

	// tool_call payload.
	DurationMs   *float64       `json:"duration_ms,omitempty"`
	Status       string         `json:"status,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	InputKeys    []string       `json:"input_keys,omitempty"`
	InputTypes   map[string]any `json:"input_types,omitempty"`
	InputValues  map[string]any `json:"input_values,omitempty"`
	OutputContent any           `json:"output_content,omitempty"`

	// user_action payload.
	UserTraits    map[string]any `json:"user_traits,omitempty"`
	IntentSignals map[string]any `json:"intent_signals,omitempty"`

	// conversion payload.
	ConversionValue    *float64 `json:"conversion_value,omitempty"`
	ConversionCurrency string   `json:"conversion_currency,omitempty"`

	// tool_discovery payload.
	ToolName        string         `json:"tool_name,omitempty"`
	ToolDescription string         `json:"tool_description,omitempty"`
	ToolInputSchema map[string]any `json:"tool_input_schema,omitempty"`

	// Free-form payload shared by several kinds.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Enrichment stamps, set by the pipeline, never by the producer.
	TenantID   string    `json:"tenant_id,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
	IngestedAt time.Time `json:"ingested_at,omitzero"`
	ClientName string    `json:"client_name,omitempty"`
}

// Clone returns a deep copy of the event. Pipeline stages that rewrite fields
// (field limits, redaction, enrichment) operate on clones so the caller's
// records are never mutated.
func (e *Event) Clone() *Event {
	clone := *e
	clone.InputKeys = cloneSlice(e.InputKeys)
	clone.InputTypes = cloneMap(e.InputTypes)
	clone.InputValues = cloneMap(e.InputValues)
	clone.OutputContent = cloneValue(e.OutputContent)
	clone.UserTraits = cloneMap(e.UserTraits)
	clone.IntentSignals = cloneMap(e.IntentSignals)
	clone.ToolInputSchema = cloneMap(e.ToolInputSchema)
	clone.Metadata = cloneMap(e.Metadata)
	if e.DurationMs != nil {
		v := *e.DurationMs
		clone.DurationMs = &v
	}
	if e.ConversionValue != nil {
		v := *e.ConversionValue
		clone.ConversionValue = &v
	}
	return &clone
}

func cloneSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}
