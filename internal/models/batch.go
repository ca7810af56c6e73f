package models

import "encoding/json"

// BatchEnvelope is the decoded shape of one ingestion request body. Records
// stay raw so per-record schema validation can fail one entry without
// poisoning the rest. The envelope lives only for the duration of one
// pipeline pass.
type BatchEnvelope struct {
	Events     []json.RawMessage `json:"events"`
	SDKVersion string            `json:"sdk_version,omitempty"`
}
