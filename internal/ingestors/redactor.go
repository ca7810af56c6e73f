package ingestors

import (
	"regexp"

	"telemetry-ingest/internal/models"
)

const (
	emailRedactionToken = "[EMAIL REDACTED]"
	phoneRedactionToken = "[PHONE REDACTED]"

	// Structured values from untrusted producers can nest arbitrarily deep;
	// the walk stops here rather than recursing without bound.
	maxRedactionDepth = 64
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9 .\-()]{6,}[0-9]`)
)

// Redactor removes recognizable PII from the free-text and structured fields
// of accepted events. It never mutates its input and is idempotent: the
// redaction tokens contain neither addresses nor digits, so a second pass
// leaves them unchanged.
type Redactor struct{}

func NewRedactor() *Redactor {
	return &Redactor{}
}

// Strip returns redacted copies of the given events.
func (r *Redactor) Strip(events []*models.Event) []*models.Event {
	out := make([]*models.Event, len(events))
	for i, event := range events {
		clone := event.Clone()
		clone.Metadata = r.redactMap(clone.Metadata, 0)
		clone.UserTraits = r.redactMap(clone.UserTraits, 0)
		clone.InputValues = r.redactMap(clone.InputValues, 0)
		clone.IntentSignals = r.redactMap(clone.IntentSignals, 0)
		clone.OutputContent = r.redactValue(clone.OutputContent, 0)
		for j, key := range clone.InputKeys {
			clone.InputKeys[j] = r.redactString(key)
		}
		out[i] = clone
	}
	return out
}

func (r *Redactor) redactMap(m map[string]any, depth int) map[string]any {
	if m == nil || depth >= maxRedactionDepth {
		return m
	}
	for key, value := range m {
		m[key] = r.redactValue(value, depth+1)
	}
	return m
}

func (r *Redactor) redactValue(value any, depth int) any {
	if depth >= maxRedactionDepth {
		return value
	}
	switch typed := value.(type) {
	case string:
		return r.redactString(typed)
	case map[string]any:
		return r.redactMap(typed, depth)
	case []any:
		for i, item := range typed {
			typed[i] = r.redactValue(item, depth+1)
		}
		return typed
	default:
		return value
	}
}

func (r *Redactor) redactString(s string) string {
	redacted := emailPattern.ReplaceAllString(s, emailRedactionToken)
	redacted = phonePattern.ReplaceAllString(redacted, phoneRedactionToken)
	if redacted != s {
		metricFieldsRedactedTotal.WithLabelValues().Inc()
	}
	return redacted
}
