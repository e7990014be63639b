// Package model defines the typed data model shared by the ingestion
// normalizer and the analytics engine: raw input tables, column mappings,
// canonical order records, and the audit entities produced during ingestion.
package model

// ColumnRole identifies the canonical role a source column maps to.
type ColumnRole string

const (
	RoleSupplier      ColumnRole = "supplier"
	RoleDatePromised  ColumnRole = "date_promised"
	RoleDateDelivered ColumnRole = "date_delivered"
	RoleOrderDate     ColumnRole = "order_date"
	RoleDelay         ColumnRole = "delay"
	RoleDefects       ColumnRole = "defects"
	RoleQualityScore  ColumnRole = "quality_score"
	RoleDefectCount   ColumnRole = "defect_count"
	RoleTotalCount    ColumnRole = "total_count"
	RoleGoodCount     ColumnRole = "good_count"
	RoleIgnore        ColumnRole = "ignore"
)

// Valid reports whether the role is one of the known canonical roles.
func (r ColumnRole) Valid() bool {
	switch r {
	case RoleSupplier, RoleDatePromised, RoleDateDelivered, RoleOrderDate,
		RoleDelay, RoleDefects, RoleQualityScore,
		RoleDefectCount, RoleTotalCount, RoleGoodCount, RoleIgnore:
		return true
	}
	return false
}

// DetectedType is the basic value type inferred from column samples.
type DetectedType string

const (
	TypeInteger DetectedType = "integer"
	TypeFloat   DetectedType = "float"
	TypeDate    DetectedType = "date"
	TypeString  DetectedType = "string"
)

// ColumnMapping is a suggested (or approved) mapping from a source column
// to a canonical role. Immutable once approved.
type ColumnMapping struct {
	SourceColumn         string       `json:"source_column" yaml:"source_column"`
	TargetRole           ColumnRole   `json:"target_role" yaml:"target_role"`
	Confidence           float64      `json:"confidence" yaml:"confidence"`
	Reasoning            string       `json:"reasoning" yaml:"reasoning,omitempty"`
	SampleValues         []string     `json:"sample_values,omitempty" yaml:"sample_values,omitempty"`
	DetectedType         DetectedType `json:"detected_type" yaml:"detected_type,omitempty"`
	TransformationNeeded string       `json:"transformation_needed,omitempty" yaml:"transformation_needed,omitempty"`
}

// CaseType describes which subset of metrics a dataset supports.
type CaseType string

const (
	CaseMixed       CaseType = "mixed"
	CaseDelayOnly   CaseType = "delay_only"
	CaseDefectsOnly CaseType = "defects_only"
	CaseUnknown     CaseType = "unknown"
)

// RawTable is an arbitrary tabular input: named columns over string cells.
// It carries no invariants; cells may be empty or malformed.
type RawTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NumRows returns the number of data rows.
func (t *RawTable) NumRows() int { return len(t.Rows) }

// ColumnIndex returns the index of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns all cell values of the named column, padding short rows
// with empty strings. The second return is false if the column is absent.
func (t *RawTable) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, true
}
