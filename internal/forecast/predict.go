// Package forecast projects each supplier's next-order defect rate and delay
// by blending three simple methods: a trailing moving average, a linear
// extrapolation, and exponential smoothing. The blend is intentionally
// transparent; each method's own projection ships alongside the combined one
// so a reviewer can see where the number comes from.
package forecast

import (
	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/stats"
)

// Confidence labels for a prediction.
const (
	ConfidenceHigh   = "haute"
	ConfidenceMedium = "moyenne"
	ConfidenceLow    = "basse"
)

// Config holds the forecasting parameters. Start from DefaultConfig.
type Config struct {
	// Window is the moving-average window in orders.
	Window int `mapstructure:"window"`
	// Alpha is the exponential smoothing factor.
	Alpha float64 `mapstructure:"alpha"`
	// DisagreementVariance is the defect-method variance above which a
	// prediction is labeled low confidence.
	DisagreementVariance float64 `mapstructure:"disagreement_variance"`
}

// DefaultConfig returns the canonical forecasting parameters.
func DefaultConfig() Config {
	return Config{
		Window:               3,
		Alpha:                0.3,
		DisagreementVariance: 0.01,
	}
}

// Prediction is the projected next order for one supplier. Defect figures
// are percentages, delays are days.
type Prediction struct {
	Supplier        string  `json:"fournisseur"`
	PredictedDefect float64 `json:"predicted_defect"`
	PredictedDelay  float64 `json:"predicted_delay"`
	MADefect        float64 `json:"method_ma_defect"`
	LRDefect        float64 `json:"method_lr_defect"`
	ExpDefect       float64 `json:"method_exp_defect"`
	MADelay         float64 `json:"method_ma_delay"`
	LRDelay         float64 `json:"method_lr_delay"`
	ExpDelay        float64 `json:"method_exp_delay"`
	Confidence      string  `json:"confiance"`
	OrderCount      int     `json:"nb_commandes_historique"`
}

// Forecast projects every supplier with at least 2 orders. Suppliers below
// that floor are skipped; one observation supports no projection. The
// result is never nil so JSON output stays a list.
func Forecast(ds *model.Dataset, cfg Config) []Prediction {
	preds := []Prediction{}
	if ds == nil {
		return preds
	}
	for _, g := range ds.GroupBySupplier() {
		if len(g.Records) < 2 {
			continue
		}
		preds = append(preds, forecastSupplier(g, cfg))
	}
	return preds
}

func forecastSupplier(g model.SupplierGroup, cfg Config) Prediction {
	defects := make([]float64, len(g.Records))
	delays := make([]float64, len(g.Records))
	for i, rec := range g.Records {
		defects[i] = rec.Defects
		delays[i] = float64(rec.Delay)
	}

	maDef := movingAverage(defects, cfg.Window)
	lrDef := linearForecast(defects)
	expDef := expSmooth(defects, cfg.Alpha)
	maDel := movingAverage(delays, cfg.Window)
	lrDel := linearForecast(delays)
	expDel := expSmooth(delays, cfg.Alpha)

	defMethods := []float64{maDef, lrDef, expDef}
	delMethods := []float64{maDel, lrDel, expDel}

	return Prediction{
		Supplier:        g.Name,
		PredictedDefect: stats.Round2(stats.Mean(defMethods) * 100),
		PredictedDelay:  stats.Round2(stats.Mean(delMethods)),
		MADefect:        stats.Round2(maDef * 100),
		LRDefect:        stats.Round2(lrDef * 100),
		ExpDefect:       stats.Round2(expDef * 100),
		MADelay:         stats.Round2(maDel),
		LRDelay:         stats.Round2(lrDel),
		ExpDelay:        stats.Round2(expDel),
		Confidence:      confidence(defMethods, len(g.Records), cfg),
		OrderCount:      len(g.Records),
	}
}

// confidence grades a prediction. Method disagreement trumps history depth:
// three methods pointing in different directions is a worse sign than a
// short history with methods in accord.
func confidence(defMethods []float64, orders int, cfg Config) string {
	if stats.PopulationVariance(defMethods) > cfg.DisagreementVariance {
		return ConfidenceLow
	}
	if orders >= cfg.Window {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

// movingAverage is the mean of the trailing window (or the whole series
// when shorter).
func movingAverage(series []float64, window int) float64 {
	if window <= 0 || window > len(series) {
		window = len(series)
	}
	return stats.Mean(series[len(series)-window:])
}

// linearForecast extrapolates an OLS fit one step past the series end,
// floored at zero.
func linearForecast(series []float64) float64 {
	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	slope, intercept := stats.LinearFit(xs, series)
	next := slope*float64(len(series)) + intercept
	if next < 0 {
		return 0
	}
	return next
}

// expSmooth runs simple exponential smoothing over the series and returns
// the final smoothed level as the forecast.
func expSmooth(series []float64, alpha float64) float64 {
	s := series[0]
	for _, v := range series[1:] {
		s = alpha*v + (1-alpha)*s
	}
	return s
}
