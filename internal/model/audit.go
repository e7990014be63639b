package model

import "time"

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// TransformationLog records one transformation the normalizer applied.
// Append-only; never mutated after creation.
type TransformationLog struct {
	Column       string    `json:"column"`
	Action       string    `json:"action"`
	Details      string    `json:"details"`
	RowsAffected int       `json:"rows_affected"`
	Timestamp    time.Time `json:"timestamp"`
}

// ValidationWarning is a structured data-quality finding.
type ValidationWarning struct {
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	Column       string   `json:"column,omitempty"`
	RowCount     int      `json:"row_count,omitempty"`
	SampleValues []string `json:"sample_values,omitempty"`
}
