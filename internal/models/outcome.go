package models

// RecordError describes why one record of a batch was rejected. Index refers
// to the record's position in the original submission, preserved across every
// filtering stage.
type RecordError struct {
	Index   int      `json:"index"`
	Reasons []string `json:"reasons"`
}

// FieldWarning reports a recoverable degradation (field truncation) applied
// to an accepted record.
type FieldWarning struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationOutcome partitions a batch into schema-valid and rejected records.
// Indexes runs parallel to Accepted and holds each accepted event's position
// in the original submission.
type ValidationOutcome struct {
	Accepted []*Event
	Indexes  []int
	Rejected []RecordError
}

// FieldLimitOutcome is the result of field-limit enforcement over the
// schema-accepted records.
type FieldLimitOutcome struct {
	Accepted []*Event
	Indexes  []int
	Rejected []RecordError
	Warnings []FieldWarning
}
