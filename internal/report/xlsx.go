// Package report renders analysis results into an XLSX workbook for
// distribution outside the CLI.
package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/supplier-cli/internal/forecast"
	"github.com/sells-group/supplier-cli/internal/scorer"
)

// Workbook bundles everything that goes into one report.
type Workbook struct {
	KPIs        scorer.GlobalKPIs
	Risks       []scorer.SupplierRisk
	Actions     []scorer.Action
	Predictions []forecast.Prediction
}

// Write renders the workbook to path with one sheet per section.
func Write(path string, wb Workbook) error {
	f := xlsx.NewFile()

	if err := writeKPISheet(f, wb.KPIs); err != nil {
		return err
	}
	if err := writeRiskSheet(f, wb.Risks); err != nil {
		return err
	}
	if err := writeActionSheet(f, wb.Actions); err != nil {
		return err
	}
	if err := writePredictionSheet(f, wb.Predictions); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "report: save workbook %s", path)
}

func writeKPISheet(f *xlsx.File, kpis scorer.GlobalKPIs) error {
	sheet, err := f.AddSheet("KPIs")
	if err != nil {
		return eris.Wrap(err, "report: add kpi sheet")
	}

	addKV := func(label string, add func(row *xlsx.Row)) {
		row := sheet.AddRow()
		row.AddCell().Value = label
		add(row)
	}
	addKV("Commandes", func(r *xlsx.Row) { r.AddCell().SetInt(kpis.OrderCount) })
	addKV("Fournisseurs", func(r *xlsx.Row) { r.AddCell().SetInt(kpis.SupplierCount) })
	addKV("Taux de retard (%)", func(r *xlsx.Row) { r.AddCell().SetFloat(kpis.LateRate) })
	addKV("Taux de défauts (%)", func(r *xlsx.Row) { r.AddCell().SetFloat(kpis.DefectRate) })
	addKV("Retard moyen (jours)", func(r *xlsx.Row) { r.AddCell().SetFloat(kpis.MeanDelay) })
	addKV("Retard max (jours)", func(r *xlsx.Row) { r.AddCell().SetInt(kpis.MaxDelay) })
	addKV("Défaut max (%)", func(r *xlsx.Row) { r.AddCell().SetFloat(kpis.MaxDefectRate) })
	addKV("Commandes parfaites", func(r *xlsx.Row) { r.AddCell().SetInt(kpis.PerfectOrders) })
	addKV("Taux de conformité (%)", func(r *xlsx.Row) { r.AddCell().SetFloat(kpis.ConformityRate) })
	return nil
}

func writeRiskSheet(f *xlsx.File, risks []scorer.SupplierRisk) error {
	sheet, err := f.AddSheet("Risques")
	if err != nil {
		return eris.Wrap(err, "report: add risk sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Fournisseur", "Score", "Niveau", "Retard moyen", "Taux défauts (%)",
		"Taux retard (%)", "Tendance défauts", "Tendance retards",
		"Dernière commande", "Commandes",
	} {
		header.AddCell().Value = h
	}

	for _, r := range risks {
		row := sheet.AddRow()
		row.AddCell().Value = r.Supplier
		row.AddCell().SetFloat(r.Score)
		row.AddCell().Value = r.Level
		row.AddCell().SetFloat(r.MeanDelay)
		row.AddCell().SetFloat(r.DefectRate)
		row.AddCell().SetFloat(r.LateRate)
		row.AddCell().Value = string(r.DefectTrend)
		row.AddCell().Value = string(r.DelayTrend)
		row.AddCell().Value = r.LastOrder
		row.AddCell().SetInt(r.OrderCount)
	}
	return nil
}

func writeActionSheet(f *xlsx.File, actions []scorer.Action) error {
	sheet, err := f.AddSheet("Actions")
	if err != nil {
		return eris.Wrap(err, "report: add action sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Fournisseur", "Action", "Priorité", "Raison", "Délai", "Impact"} {
		header.AddCell().Value = h
	}

	for _, a := range actions {
		row := sheet.AddRow()
		row.AddCell().Value = a.Supplier
		row.AddCell().Value = a.Action
		row.AddCell().Value = a.Priority
		row.AddCell().Value = a.Reason
		row.AddCell().Value = a.Deadline
		row.AddCell().Value = a.Impact
	}
	return nil
}

func writePredictionSheet(f *xlsx.File, preds []forecast.Prediction) error {
	sheet, err := f.AddSheet("Prévisions")
	if err != nil {
		return eris.Wrap(err, "report: add prediction sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Fournisseur", "Défauts prévus (%)", "Retard prévu (jours)",
		"Confiance", "Historique",
	} {
		header.AddCell().Value = h
	}

	for _, p := range preds {
		row := sheet.AddRow()
		row.AddCell().Value = p.Supplier
		row.AddCell().SetFloat(p.PredictedDefect)
		row.AddCell().SetFloat(p.PredictedDelay)
		row.AddCell().Value = p.Confidence
		row.AddCell().SetInt(p.OrderCount)
	}
	return nil
}
