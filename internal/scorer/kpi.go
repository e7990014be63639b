// Package scorer computes supplier performance indicators, risk scores, and
// recommended actions from a normalized dataset. All numbers that leave this
// package are rounded for display; intermediate math is unrounded.
package scorer

import (
	"time"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/stats"
)

// GlobalKPIs are the portfolio-wide indicators. Rates are percentages.
type GlobalKPIs struct {
	OrderCount     int     `json:"nb_commandes"`
	SupplierCount  int     `json:"nb_fournisseurs"`
	LateRate       float64 `json:"taux_retard"`
	DefectRate     float64 `json:"taux_defaut"`
	MeanDelay      float64 `json:"retard_moyen"`
	MaxDelay       int     `json:"retard_max"`
	MaxDefectRate  float64 `json:"defaut_max"`
	PerfectOrders  int     `json:"commandes_parfaites"`
	ConformityRate float64 `json:"taux_conformite"`
}

// ComputeKPIs derives the global indicators. An empty dataset yields a
// zero-valued struct, never an error: the caller renders it as "no data".
func ComputeKPIs(ds *model.Dataset) GlobalKPIs {
	var k GlobalKPIs
	if ds == nil || len(ds.Records) == 0 {
		return k
	}

	n := len(ds.Records)
	k.OrderCount = n
	k.SupplierCount = len(ds.Suppliers())

	late := 0
	perfect := 0
	var defectSum, lateDelaySum float64
	for _, rec := range ds.Records {
		if rec.Delay > 0 {
			late++
			lateDelaySum += float64(rec.Delay)
		}
		if rec.Delay > k.MaxDelay {
			k.MaxDelay = rec.Delay
		}
		defectSum += rec.Defects
		if rec.Defects > k.MaxDefectRate {
			k.MaxDefectRate = rec.Defects
		}
		if rec.Delay == 0 && rec.Defects == 0 {
			perfect++
		}
	}

	k.LateRate = stats.Round2(float64(late) / float64(n) * 100)
	k.DefectRate = stats.Round2(defectSum / float64(n) * 100)
	// Mean delay counts only late orders; on-time orders would dilute it.
	if late > 0 {
		k.MeanDelay = stats.Round2(lateDelaySum / float64(late))
	}
	k.MaxDefectRate = stats.Round2(k.MaxDefectRate * 100)
	k.PerfectOrders = perfect
	k.ConformityRate = stats.Round2(float64(perfect) / float64(n) * 100)
	return k
}

// PeriodKPIs computes the indicators over the records whose promised date
// falls in [from, to]. A zero bound is open.
func PeriodKPIs(ds *model.Dataset, from, to time.Time) GlobalKPIs {
	if ds == nil {
		return GlobalKPIs{}
	}
	filtered := &model.Dataset{Case: ds.Case}
	for _, rec := range ds.Records {
		if rec.DatePromised.IsZero() {
			continue
		}
		if !from.IsZero() && rec.DatePromised.Before(from) {
			continue
		}
		if !to.IsZero() && rec.DatePromised.After(to) {
			continue
		}
		filtered.Records = append(filtered.Records, rec)
	}
	return ComputeKPIs(filtered)
}
