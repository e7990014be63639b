package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/supplier-cli/internal/forecast"
	"github.com/sells-group/supplier-cli/internal/scorer"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rapport.xlsx")

	wb := Workbook{
		KPIs: scorer.GlobalKPIs{
			OrderCount:    12,
			SupplierCount: 3,
			LateRate:      25.0,
		},
		Risks: []scorer.SupplierRisk{
			{Supplier: "Acme", Score: 56.0, Level: scorer.LevelHigh, LastOrder: "2024-05-25", OrderCount: 4},
		},
		Actions: []scorer.Action{
			{Supplier: "Acme", Action: "Planifier un audit qualité complet", Priority: scorer.PriorityHigh},
		},
		Predictions: []forecast.Prediction{
			{Supplier: "Acme", PredictedDefect: 2.5, PredictedDelay: 1.2, Confidence: forecast.ConfidenceHigh, OrderCount: 4},
		},
	}
	require.NoError(t, Write(path, wb))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	for _, name := range []string{"KPIs", "Risques", "Actions", "Prévisions"} {
		_, ok := f.Sheet[name]
		assert.True(t, ok, "missing sheet %s", name)
	}

	kpis := f.Sheet["KPIs"]
	assert.Equal(t, "Commandes", kpis.Rows[0].Cells[0].String())
	assert.Equal(t, "12", kpis.Rows[0].Cells[1].String())

	risks := f.Sheet["Risques"]
	require.Len(t, risks.Rows, 2, "header plus one supplier")
	assert.Equal(t, "Fournisseur", risks.Rows[0].Cells[0].String())
	assert.Equal(t, "Acme", risks.Rows[1].Cells[0].String())
	assert.Equal(t, scorer.LevelHigh, risks.Rows[1].Cells[2].String())

	actions := f.Sheet["Actions"]
	assert.Equal(t, "Planifier un audit qualité complet", actions.Rows[1].Cells[1].String())

	preds := f.Sheet["Prévisions"]
	assert.Equal(t, forecast.ConfidenceHigh, preds.Rows[1].Cells[3].String())
}

func TestWriteEmptyWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vide.xlsx")
	require.NoError(t, Write(path, Workbook{}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)

	// Data sheets still carry their header row.
	assert.Len(t, f.Sheet["Risques"].Rows, 1)
}

func TestWriteBadPath(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing", "deep", "rapport.xlsx"), Workbook{})
	assert.Error(t, err)
}
