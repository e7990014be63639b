package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/supplier-cli/internal/model"
)

func analyzeColumns(t *testing.T, columns []string, rows [][]string) *Analysis {
	t.Helper()
	s := &PatternStrategy{}
	analysis, err := s.Analyze(context.Background(), &model.RawTable{Columns: columns, Rows: rows})
	require.NoError(t, err)
	return analysis
}

func mappingFor(t *testing.T, a *Analysis, column string) model.ColumnMapping {
	t.Helper()
	for _, m := range a.Mappings {
		if m.SourceColumn == column {
			return m
		}
	}
	t.Fatalf("no mapping for column %q", column)
	return model.ColumnMapping{}
}

func TestPatternStrategyNameMatching(t *testing.T) {
	a := analyzeColumns(t,
		[]string{"supplier_name", "delivery_date", "date_delivered", "defect_rate"},
		[][]string{
			{"Acme", "2024-01-15", "2024-01-17", "0.02"},
			{"Bolt", "2024-02-01", "2024-02-01", "0.00"},
		})

	sup := mappingFor(t, a, "supplier_name")
	assert.Equal(t, model.RoleSupplier, sup.TargetRole)
	assert.InDelta(t, 0.9, sup.Confidence, 1e-9)
	assert.Equal(t, model.TypeString, sup.DetectedType)

	promised := mappingFor(t, a, "delivery_date")
	assert.Equal(t, model.RoleDatePromised, promised.TargetRole)
	assert.InDelta(t, 0.9, promised.Confidence, 1e-9)

	delivered := mappingFor(t, a, "date_delivered")
	assert.Equal(t, model.RoleDateDelivered, delivered.TargetRole)

	defects := mappingFor(t, a, "defect_rate")
	assert.Equal(t, model.RoleDefects, defects.TargetRole)
	assert.Empty(t, defects.TransformationNeeded, "0-1 rates need no conversion")

	assert.Equal(t, model.CaseMixed, a.DetectedCase)
}

func TestPatternStrategyTypeMismatchLowersConfidence(t *testing.T) {
	a := analyzeColumns(t,
		[]string{"supplier"},
		[][]string{{"123"}, {"456"}})

	m := mappingFor(t, a, "supplier")
	assert.Equal(t, model.RoleSupplier, m.TargetRole)
	assert.InDelta(t, 0.6, m.Confidence, 1e-9)
}

func TestPatternStrategyCountColumnsBeforeDefects(t *testing.T) {
	a := analyzeColumns(t,
		[]string{"fournisseur", "defective_items", "total_items"},
		[][]string{
			{"Acme", "3", "100"},
			{"Bolt", "0", "80"},
		})

	def := mappingFor(t, a, "defective_items")
	assert.Equal(t, model.RoleDefectCount, def.TargetRole)
	assert.Equal(t, TransformDeriveRatio, def.TransformationNeeded)

	total := mappingFor(t, a, "total_items")
	assert.Equal(t, model.RoleTotalCount, total.TargetRole)

	assert.Equal(t, model.CaseDefectsOnly, a.DetectedCase)
}

func TestPatternStrategyPercentageFlag(t *testing.T) {
	a := analyzeColumns(t,
		[]string{"taux_defaut"},
		[][]string{{"2.5"}, {"10"}})

	m := mappingFor(t, a, "taux_defaut")
	assert.Equal(t, model.RoleDefects, m.TargetRole)
	assert.Equal(t, TransformPercentToDecimal, m.TransformationNeeded)
}

func TestPatternStrategyQualityTransform(t *testing.T) {
	a := analyzeColumns(t,
		[]string{"quality_score"},
		[][]string{{"95"}, {"88"}})

	m := mappingFor(t, a, "quality_score")
	assert.Equal(t, model.RoleQualityScore, m.TargetRole)
	assert.Equal(t, TransformQualityToDefects, m.TransformationNeeded)
}

func TestPatternStrategyContentFallback(t *testing.T) {
	tests := []struct {
		name     string
		values   [][]string
		wantRole model.ColumnRole
		wantConf float64
	}{
		{"strings look like suppliers", [][]string{{"Acme"}, {"Bolt"}}, model.RoleSupplier, 0.4},
		{"unit rates look like defects", [][]string{{"0.1"}, {"0.9"}}, model.RoleDefects, 0.5},
		{"0-100 looks like quality", [][]string{{"85"}, {"92"}}, model.RoleQualityScore, 0.4},
		{"non-negative looks like delay", [][]string{{"120"}, {"3"}}, model.RoleDelay, 0.3},
		{"negatives are ignored", [][]string{{"-5"}, {"3"}}, model.RoleIgnore, 0.2},
		{"dates need manual mapping", [][]string{{"2024-01-01"}, {"2024-02-01"}}, model.RoleIgnore, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyzeColumns(t, []string{"colonne_x"}, tt.values)
			m := mappingFor(t, a, "colonne_x")
			assert.Equal(t, tt.wantRole, m.TargetRole)
			assert.InDelta(t, tt.wantConf, m.Confidence, 1e-9)
		})
	}
}

func TestDetectCase(t *testing.T) {
	mk := func(roles ...model.ColumnRole) []model.ColumnMapping {
		out := make([]model.ColumnMapping, len(roles))
		for i, r := range roles {
			out[i] = model.ColumnMapping{SourceColumn: string(r), TargetRole: r, Confidence: 0.9}
		}
		return out
	}

	tests := []struct {
		name     string
		mappings []model.ColumnMapping
		want     model.CaseType
	}{
		{"dates and defects", mk(model.RoleSupplier, model.RoleDatePromised, model.RoleDateDelivered, model.RoleDefects), model.CaseMixed},
		{"delay column only", mk(model.RoleSupplier, model.RoleDelay), model.CaseDelayOnly},
		{"one date is not a delay signal", mk(model.RoleSupplier, model.RoleDatePromised), model.CaseUnknown},
		{"quality implies defects", mk(model.RoleSupplier, model.RoleQualityScore), model.CaseDefectsOnly},
		{"counts imply defects", mk(model.RoleSupplier, model.RoleDefectCount, model.RoleGoodCount), model.CaseDefectsOnly},
		{"defect count alone is not enough", mk(model.RoleSupplier, model.RoleDefectCount), model.CaseUnknown},
		{"supplier only", mk(model.RoleSupplier), model.CaseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCase(tt.mappings))
		})
	}
}

func TestDetectCaseIgnoresLowConfidence(t *testing.T) {
	mappings := []model.ColumnMapping{
		{SourceColumn: "s", TargetRole: model.RoleSupplier, Confidence: 0.9},
		{SourceColumn: "d", TargetRole: model.RoleDelay, Confidence: 0.3},
	}
	assert.Equal(t, model.CaseUnknown, detectCase(mappings))
}

func TestCheckMappingIssuesMissingSupplier(t *testing.T) {
	issues := checkMappingIssues([]model.ColumnMapping{
		{SourceColumn: "d", TargetRole: model.RoleDelay, Confidence: 0.9},
	}, model.CaseDelayOnly)

	require.NotEmpty(t, issues)
	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "supplier")
}

func TestValidateApproved(t *testing.T) {
	ok := []model.ColumnMapping{
		{SourceColumn: "a", TargetRole: model.RoleSupplier},
		{SourceColumn: "b", TargetRole: model.RoleDelay},
		{SourceColumn: "c", TargetRole: model.RoleIgnore},
		{SourceColumn: "d", TargetRole: model.RoleIgnore},
	}
	assert.NoError(t, ValidateApproved(ok))

	dup := []model.ColumnMapping{
		{SourceColumn: "a", TargetRole: model.RoleDelay},
		{SourceColumn: "b", TargetRole: model.RoleDelay},
	}
	err := ValidateApproved(dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delay")

	unknown := []model.ColumnMapping{{SourceColumn: "a", TargetRole: "bogus"}}
	assert.Error(t, ValidateApproved(unknown))
}
