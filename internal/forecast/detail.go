package forecast

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/stats"
)

// NotDelivered is the display value for an order with no delivery date.
const NotDelivered = "Non Livré"

// OrderDetail is one historical order with its trailing averages up to and
// including that order.
type OrderDetail struct {
	DatePromised   string  `json:"date_prevue"`
	DateDelivered  string  `json:"date_livraison"`
	Delay          int     `json:"retard"`
	DefectRate     float64 `json:"taux_defaut"`
	RollingDelay   float64 `json:"retard_moyen_mobile"`
	RollingDefects float64 `json:"defauts_moyenne_mobile"`
}

// SupplierDetail is the order-by-order view of one supplier plus its
// forecast (nil when the history is too short to project).
type SupplierDetail struct {
	Supplier   string        `json:"fournisseur"`
	Orders     []OrderDetail `json:"commandes"`
	Prediction *Prediction   `json:"prevision,omitempty"`
}

// Detail builds the drill-down view for one supplier.
func Detail(ds *model.Dataset, supplier string, cfg Config) (*SupplierDetail, error) {
	records := ds.Supplier(supplier)
	if records == nil {
		return nil, eris.Errorf("forecast: unknown supplier %q", supplier)
	}

	detail := &SupplierDetail{Supplier: supplier}
	for i, rec := range records {
		window := records[max(0, i+1-cfg.Window) : i+1]
		var delaySum, defectSum float64
		for _, w := range window {
			delaySum += float64(w.Delay)
			defectSum += w.Defects
		}
		n := float64(len(window))

		delivered := NotDelivered
		if !rec.DateDelivered.IsZero() {
			delivered = rec.DateDelivered.Format(model.DateLayout)
		}
		promised := ""
		if !rec.DatePromised.IsZero() {
			promised = rec.DatePromised.Format(model.DateLayout)
		}

		detail.Orders = append(detail.Orders, OrderDetail{
			DatePromised:   promised,
			DateDelivered:  delivered,
			Delay:          rec.Delay,
			DefectRate:     stats.Round2(rec.Defects * 100),
			RollingDelay:   stats.Round2(delaySum / n),
			RollingDefects: stats.Round2(defectSum / n * 100),
		})
	}

	if len(records) >= 2 {
		pred := forecastSupplier(model.SupplierGroup{Name: supplier, Records: records}, cfg)
		detail.Prediction = &pred
	}
	return detail, nil
}

// MethodComparison shows one forecasting method's projections side by side.
type MethodComparison struct {
	Method        string  `json:"methode"`
	DefectPercent float64 `json:"defaut_prevu"`
	DelayDays     float64 `json:"retard_prevu"`
}

// CompareMethods expands a prediction into its per-method rows.
func CompareMethods(p *Prediction) []MethodComparison {
	return []MethodComparison{
		{Method: "moyenne mobile", DefectPercent: p.MADefect, DelayDays: p.MADelay},
		{Method: "régression linéaire", DefectPercent: p.LRDefect, DelayDays: p.LRDelay},
		{Method: "lissage exponentiel", DefectPercent: p.ExpDefect, DelayDays: p.ExpDelay},
		{Method: "combinée", DefectPercent: p.PredictedDefect, DelayDays: p.PredictedDelay},
	}
}
