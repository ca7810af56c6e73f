package ingestors

import (
	"testing"

	"telemetry-ingest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrip_RedactsEmailAndPhone(t *testing.T) {
	t.Parallel()

	event := smallEvent()
	event.Metadata = map[string]any{
		"note":  "contact alice@example.com or +1 (555) 123-4567 for help",
		"plan":  "pro",
		"count": float64(3),
	}

	out := NewRedactor().Strip([]*models.Event{event})

	require.Len(t, out, 1)
	assert.Equal(t, "contact [EMAIL REDACTED] or [PHONE REDACTED] for help", out[0].Metadata["note"])
	assert.Equal(t, "pro", out[0].Metadata["plan"])
	assert.Equal(t, float64(3), out[0].Metadata["count"])
}

func TestStrip_WalksNestedStructures(t *testing.T) {
	t.Parallel()

	event := smallEvent()
	event.InputValues = map[string]any{
		"customer": map[string]any{
			"emails": []any{"a@example.com", "b@example.com"},
		},
	}
	event.OutputContent = []any{"call 555-123-4567 now"}
	event.InputKeys = []string{"email", "c@example.com"}

	out := NewRedactor().Strip([]*models.Event{event})

	customer := out[0].InputValues["customer"].(map[string]any)
	assert.Equal(t, []any{"[EMAIL REDACTED]", "[EMAIL REDACTED]"}, customer["emails"])
	assert.Equal(t, []any{"call [PHONE REDACTED] now"}, out[0].OutputContent)
	assert.Equal(t, []string{"email", "[EMAIL REDACTED]"}, out[0].InputKeys)
}

func TestStrip_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	event := smallEvent()
	event.UserTraits = map[string]any{"email": "alice@example.com"}

	_ = NewRedactor().Strip([]*models.Event{event})

	assert.Equal(t, "alice@example.com", event.UserTraits["email"])
}

func TestStrip_IsIdempotent(t *testing.T) {
	t.Parallel()

	event := smallEvent()
	event.Metadata = map[string]any{"note": "mail alice@example.com"}

	redactor := NewRedactor()
	once := redactor.Strip([]*models.Event{event})
	twice := redactor.Strip(once)

	assert.Equal(t, once[0].Metadata, twice[0].Metadata)
}

func TestStrip_StopsAtDepthCap(t *testing.T) {
	t.Parallel()

	deepest := map[string]any{"email": "alice@example.com"}
	current := deepest
	for i := 0; i < maxRedactionDepth+8; i++ {
		current = map[string]any{"nested": current}
	}
	event := smallEvent()
	event.Metadata = current

	out := NewRedactor().Strip([]*models.Event{event})

	// The walk terminates; the value beyond the cap is left as-is.
	require.Len(t, out, 1)
	assert.Equal(t, "alice@example.com", deepest["email"])
}
