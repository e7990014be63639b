// Package ingest turns arbitrary tabular supplier data into the canonical
// schema. It has two halves: column-role inference (pluggable Strategy
// implementations that only *suggest* mappings) and the deterministic
// normalizer that applies approved mappings. Inference never transforms
// data; the normalizer never consults inference heuristics.
package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/model"
)

// Strategy suggests column mappings for a raw table. Implementations must
// be side-effect free with respect to the table.
type Strategy interface {
	Analyze(ctx context.Context, table *model.RawTable) (*Analysis, error)
}

// Analysis is the result of a mapping-suggestion pass.
type Analysis struct {
	Mappings       []model.ColumnMapping     `json:"mappings"`
	Columns        []ColumnProfile           `json:"column_analysis"`
	DetectedCase   model.CaseType            `json:"detected_case"`
	Issues         []model.ValidationWarning `json:"issues"`
	Recommendation string                    `json:"recommendation"`
}

// ColumnProfile summarizes one input column for review UIs and logs.
type ColumnProfile struct {
	Column       string             `json:"column"`
	DetectedType model.DetectedType `json:"detected_type"`
	SampleValues []string           `json:"sample_values"`
	NullCount    int                `json:"null_count"`
	UniqueCount  int                `json:"unique_count"`
}

// Transformation flags carried on mappings. The normalizer recognizes these
// but derives its own behavior from roles and value shapes, so an
// inaccurate flag cannot corrupt data.
const (
	TransformPercentToDecimal = "convert_percentage_to_decimal"
	TransformQualityToDefects = "convert_quality_to_defects"
	TransformParseDate        = "parse_date"
	TransformDeriveRatio      = "derive_defect_ratio"
)

// roleCategory couples a role with its name patterns and compatible types.
type roleCategory struct {
	role     model.ColumnRole
	patterns []*regexp.Regexp
	types    []model.DetectedType
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

var numericTypes = []model.DetectedType{model.TypeInteger, model.TypeFloat}

// roleCategories are checked in order; the first pattern match wins.
// Count categories come first because their names ("defective_items",
// "total_items") would otherwise be swallowed by the broader defect and
// quality patterns.
var roleCategories = []roleCategory{
	{model.RoleDefectCount, compileAll(
		`defective_items`, `defective`, `defect_count`, `rejected_items`,
		`failed_units`, `nb_defectueux`, `pieces_defectueuses`,
	), numericTypes},
	{model.RoleTotalCount, compileAll(
		`total_items`, `total_units`, `items_total`, `total_quantity`,
		`quantity_total`, `nb_total`, `quantite_totale`,
	), numericTypes},
	{model.RoleGoodCount, compileAll(
		`non_defective`, `good_items`, `good_units`, `conformes`,
	), numericTypes},
	{model.RoleSupplier, compileAll(
		`supplier`, `vendor`, `fournisseur`, `provider`, `source`,
		`company`, `partner`, `manufacturer`, `distributor`,
	), []model.DetectedType{model.TypeString}},
	{model.RoleDatePromised, compileAll(
		`date_promised`, `promised`, `expected`, `due`, `target`,
		`scheduled`, `planned`, `delivery_date`, `date_prevue`,
		`date_attendue`, `echeance`,
	), []model.DetectedType{model.TypeDate}},
	{model.RoleDateDelivered, compileAll(
		`date_delivered`, `delivered`, `actual`, `received`,
		`arrival`, `completed`, `date_livraison`, `date_reelle`,
		`date_reception`,
	), []model.DetectedType{model.TypeDate}},
	{model.RoleOrderDate, compileAll(
		`order_date`, `order`, `purchase`, `transaction`,
		`date_commande`, `achat`,
	), []model.DetectedType{model.TypeDate}},
	{model.RoleDelay, compileAll(
		`delay`, `retard`, `late`, `overdue`, `days_late`,
		`jours_retard`, `ecart`,
	), numericTypes},
	{model.RoleDefects, compileAll(
		`defect`, `defaut`, `fault`, `error`, `issue`,
		`problem`, `reject`, `failure`, `taux_defaut`,
	), numericTypes},
	{model.RoleQualityScore, compileAll(
		`quality`, `score`, `rating`, `qualite`, `note`,
		`evaluation`, `grade`, `performance`,
	), numericTypes},
}

// PatternStrategy is the deterministic, dependency-free inference
// implementation: regex matching on normalized column names backed by
// value-shape heuristics. It is the load-bearing default; any ML-backed
// strategy sits behind the same interface and is never required for
// correctness.
type PatternStrategy struct {
	// SampleSize bounds how many non-null values are inspected per column.
	// Zero means the default of 10.
	SampleSize int
}

// Analyze implements Strategy.
func (s *PatternStrategy) Analyze(_ context.Context, table *model.RawTable) (*Analysis, error) {
	if table == nil || len(table.Columns) == 0 {
		return nil, eris.New("ingest: empty table")
	}
	sampleSize := s.SampleSize
	if sampleSize <= 0 {
		sampleSize = 10
	}

	analysis := &Analysis{}
	for _, col := range table.Columns {
		values, _ := table.Column(col)
		samples, nullCount, uniqueCount := sampleColumn(values, sampleSize)
		detected := detectColumnType(samples)

		analysis.Mappings = append(analysis.Mappings, suggestMapping(col, samples, detected))
		analysis.Columns = append(analysis.Columns, ColumnProfile{
			Column:       col,
			DetectedType: detected,
			SampleValues: truncateSamples(samples, 5),
			NullCount:    nullCount,
			UniqueCount:  uniqueCount,
		})
	}

	analysis.DetectedCase = detectCase(analysis.Mappings)
	analysis.Issues = checkMappingIssues(analysis.Mappings, analysis.DetectedCase)
	analysis.Recommendation = recommendation(analysis.DetectedCase, analysis.Issues)
	return analysis, nil
}

// sampleColumn gathers up to n non-null values plus null/unique statistics.
func sampleColumn(values []string, n int) (samples []string, nullCount, uniqueCount int) {
	seen := make(map[string]struct{})
	for _, v := range values {
		if isBlank(v) {
			nullCount++
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
		}
		if len(samples) < n {
			samples = append(samples, strings.TrimSpace(v))
		}
	}
	return samples, nullCount, len(seen)
}

func truncateSamples(samples []string, n int) []string {
	if len(samples) <= n {
		return samples
	}
	return samples[:n]
}

// detectColumnType classifies samples as integer, float, date, or string.
func detectColumnType(samples []string) model.DetectedType {
	if len(samples) == 0 {
		return model.TypeString
	}

	numeric, whole := 0, true
	for _, v := range samples {
		f, err := parseNumber(v)
		if err != nil {
			continue
		}
		numeric++
		if !isWhole(f) {
			whole = false
		}
	}
	if float64(numeric) >= float64(len(samples))*0.8 {
		if whole {
			return model.TypeInteger
		}
		return model.TypeFloat
	}

	for _, v := range samples {
		if _, err := parseDateAny(v); err == nil {
			return model.TypeDate
		}
	}
	return model.TypeString
}

// suggestMapping maps a single column: name patterns first, then content.
func suggestMapping(column string, samples []string, detected model.DetectedType) model.ColumnMapping {
	name := strings.TrimSpace(strings.ToLower(column))

	for _, cat := range roleCategories {
		for _, pat := range cat.patterns {
			if !pat.MatchString(name) {
				continue
			}
			confidence := 0.6
			if typeCompatible(detected, cat.types) {
				confidence = 0.9
			}
			return model.ColumnMapping{
				SourceColumn:         column,
				TargetRole:           cat.role,
				Confidence:           confidence,
				Reasoning:            fmt.Sprintf("column name matches pattern %q", pat.String()),
				SampleValues:         truncateSamples(samples, 5),
				DetectedType:         detected,
				TransformationNeeded: transformationFor(cat.role, samples, detected),
			}
		}
	}

	role, confidence, reasoning, transformation := inferFromContent(samples, detected)
	return model.ColumnMapping{
		SourceColumn:         column,
		TargetRole:           role,
		Confidence:           confidence,
		Reasoning:            reasoning,
		SampleValues:         truncateSamples(samples, 5),
		DetectedType:         detected,
		TransformationNeeded: transformation,
	}
}

func typeCompatible(detected model.DetectedType, expected []model.DetectedType) bool {
	for _, t := range expected {
		if detected == t {
			return true
		}
	}
	return false
}

// transformationFor flags conversions the normalizer will need.
func transformationFor(role model.ColumnRole, samples []string, detected model.DetectedType) string {
	switch role {
	case model.RoleDefects:
		if looksLikePercentage(samples) {
			return TransformPercentToDecimal
		}
	case model.RoleQualityScore:
		return TransformQualityToDefects
	case model.RoleDefectCount:
		return TransformDeriveRatio
	case model.RoleDatePromised, model.RoleDateDelivered, model.RoleOrderDate:
		if detected != model.TypeDate {
			return TransformParseDate
		}
	}
	return ""
}

// looksLikePercentage reports whether all samples fall in [0, 100] with at
// least one above 1 (so plain 0-1 rates are not mistaken for percentages).
func looksLikePercentage(samples []string) bool {
	var max float64
	seen := false
	for _, s := range samples {
		v, err := parseNumber(s)
		if err != nil {
			continue
		}
		if v < 0 || v > 100 {
			return false
		}
		if v > max {
			max = v
		}
		seen = true
	}
	return seen && max > 1
}

// inferFromContent is the fallback when no name pattern matched.
func inferFromContent(samples []string, detected model.DetectedType) (model.ColumnRole, float64, string, string) {
	switch detected {
	case model.TypeString:
		return model.RoleSupplier, 0.4, "string column, possibly supplier names", ""
	case model.TypeDate:
		return model.RoleIgnore, 0.3, "date column, needs manual mapping", TransformParseDate
	}

	var nums []float64
	for _, s := range samples {
		if v, err := parseNumber(s); err == nil {
			nums = append(nums, v)
		}
	}
	if len(nums) > 0 {
		if allInRange(nums, 0, 1) {
			return model.RoleDefects, 0.5, "values in 0-1 range, possibly defect rate", ""
		}
		if allInRange(nums, 0, 100) {
			return model.RoleQualityScore, 0.4, "values in 0-100 range, possibly quality score", TransformQualityToDefects
		}
		if allNonNegative(nums) {
			return model.RoleDelay, 0.3, "non-negative values, possibly delay days", ""
		}
	}
	return model.RoleIgnore, 0.2, "could not determine column role", ""
}

func allInRange(nums []float64, lo, hi float64) bool {
	for _, n := range nums {
		if n < lo || n > hi {
			return false
		}
	}
	return true
}

func allNonNegative(nums []float64) bool {
	for _, n := range nums {
		if n < 0 {
			return false
		}
	}
	return true
}

// confidentRoles collects the roles mapped with confidence above 0.5.
func confidentRoles(mappings []model.ColumnMapping) map[model.ColumnRole]bool {
	roles := make(map[model.ColumnRole]bool)
	for _, m := range mappings {
		if m.Confidence > 0.5 {
			roles[m.TargetRole] = true
		}
	}
	return roles
}

// detectCase classifies which canonical case the mappings support.
func detectCase(mappings []model.ColumnMapping) model.CaseType {
	roles := confidentRoles(mappings)

	hasDelay := (roles[model.RoleDatePromised] && roles[model.RoleDateDelivered]) || roles[model.RoleDelay]
	hasDefects := roles[model.RoleDefects] || roles[model.RoleQualityScore] ||
		(roles[model.RoleDefectCount] && (roles[model.RoleTotalCount] || roles[model.RoleGoodCount]))

	switch {
	case hasDelay && hasDefects:
		return model.CaseMixed
	case hasDelay:
		return model.CaseDelayOnly
	case hasDefects:
		return model.CaseDefectsOnly
	default:
		return model.CaseUnknown
	}
}

// checkMappingIssues flags structural gaps and ambiguous mappings.
func checkMappingIssues(mappings []model.ColumnMapping, detected model.CaseType) []model.ValidationWarning {
	var issues []model.ValidationWarning
	roles := confidentRoles(mappings)

	if !roles[model.RoleSupplier] {
		issues = append(issues, model.ValidationWarning{
			Severity: model.SeverityError,
			Message:  "no supplier column identified; map a column to 'supplier'",
		})
	}

	switch detected {
	case model.CaseDelayOnly:
		if !roles[model.RoleDatePromised] && !roles[model.RoleDateDelivered] && !roles[model.RoleDelay] {
			issues = append(issues, model.ValidationWarning{
				Severity: model.SeverityError,
				Message:  "delay case requires either date columns or a delay column",
			})
		}
	case model.CaseDefectsOnly:
		if !roles[model.RoleDefects] && !roles[model.RoleQualityScore] && !roles[model.RoleDefectCount] {
			issues = append(issues, model.ValidationWarning{
				Severity: model.SeverityError,
				Message:  "defects case requires a defects, quality_score, or defect count column",
			})
		}
	}

	ambiguous := 0
	for _, m := range mappings {
		if m.Confidence > 0.3 && m.Confidence < 0.6 {
			ambiguous++
		}
	}
	if ambiguous > 0 {
		issues = append(issues, model.ValidationWarning{
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("%d column(s) have uncertain mappings; review before ingesting", ambiguous),
			RowCount: ambiguous,
		})
	}

	return issues
}

func recommendation(detected model.CaseType, issues []model.ValidationWarning) string {
	for _, i := range issues {
		if i.Severity == model.SeverityError {
			return "resolve the mapping errors before proceeding"
		}
	}

	caseNames := map[model.CaseType]string{
		model.CaseDelayOnly:   "case A (delay only)",
		model.CaseDefectsOnly: "case B (defects only)",
		model.CaseMixed:       "case C (mixed delay + defects)",
	}
	name, ok := caseNames[detected]
	if !ok {
		name = "an unknown case"
	}
	if len(issues) > 0 {
		return fmt.Sprintf("data appears to match %s; review warnings before proceeding", name)
	}
	return fmt.Sprintf("data matches %s; ready to process", name)
}

// ValidateApproved rejects approved mapping sets in which two columns claim
// the same non-ignore role. The historical behavior was last-write-wins,
// which silently discarded a column; rejecting up front forces the conflict
// back to the reviewer.
func ValidateApproved(mappings []model.ColumnMapping) error {
	claimed := make(map[model.ColumnRole]string)
	for _, m := range mappings {
		if !m.TargetRole.Valid() {
			return eris.Errorf("ingest: unknown target role %q for column %q", m.TargetRole, m.SourceColumn)
		}
		if m.TargetRole == model.RoleIgnore {
			continue
		}
		if prev, ok := claimed[m.TargetRole]; ok {
			return eris.Errorf("ingest: columns %q and %q both map to role %q; resolve before normalizing",
				prev, m.SourceColumn, m.TargetRole)
		}
		claimed[m.TargetRole] = m.SourceColumn
	}
	return nil
}
