package scorer

import (
	"sort"
	"time"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/stats"
)

// Risk levels and their display statuses.
const (
	LevelLow      = "Faible"
	LevelModerate = "Modéré"
	LevelHigh     = "Élevé"

	StatusGood    = "good"
	StatusWarning = "warning"
	StatusAlert   = "alert"
)

// Config holds the scoring weights and thresholds. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	DelayWeight  float64 `mapstructure:"delay_weight"`
	DelayCap     float64 `mapstructure:"delay_cap"`
	DefectWeight float64 `mapstructure:"defect_weight"`
	DefectCap    float64 `mapstructure:"defect_cap"`

	DefectRisingBonus float64 `mapstructure:"defect_rising_bonus"`
	DelayRisingBonus  float64 `mapstructure:"delay_rising_bonus"`
	FallingDiscount   float64 `mapstructure:"falling_discount"`

	ModerateThreshold float64 `mapstructure:"moderate_threshold"`
	HighThreshold     float64 `mapstructure:"high_threshold"`
	TrendThreshold    float64 `mapstructure:"trend_threshold"`

	InactiveDays    int     `mapstructure:"inactive_days"`
	DefectActionPct float64 `mapstructure:"defect_action_pct"`
	DelayActionDays float64 `mapstructure:"delay_action_days"`
}

// DefaultConfig returns the canonical weights: a sustained mean delay of
// 6.25 days or a mean defect rate of 6.25% alone saturates its half of the
// base score.
func DefaultConfig() Config {
	return Config{
		DelayWeight:       8,
		DelayCap:          50,
		DefectWeight:      800,
		DefectCap:         50,
		DefectRisingBonus: 15,
		DelayRisingBonus:  10,
		FallingDiscount:   5,
		ModerateThreshold: 25,
		HighThreshold:     55,
		TrendThreshold:    stats.DefaultTrendThreshold,
		InactiveDays:      60,
		DefectActionPct:   5,
		DelayActionDays:   3,
	}
}

// SupplierRisk is one supplier's scored profile. Rates are percentages,
// volatilities are absolute spreads on the displayed scale.
type SupplierRisk struct {
	Supplier         string      `json:"fournisseur"`
	Score            float64     `json:"score_risque"`
	Level            string      `json:"niveau_risque"`
	Status           string      `json:"statut"`
	MeanDelay        float64     `json:"retard_moyen"`
	DefectRate       float64     `json:"taux_defaut"`
	LateRate         float64     `json:"taux_retard"`
	DefectVolatility float64     `json:"volatilite_defauts"`
	DelayVolatility  float64     `json:"volatilite_retards"`
	DefectTrend      stats.Trend `json:"tendance_defauts"`
	DelayTrend       stats.Trend `json:"tendance_retards"`
	LastOrder        string      `json:"derniere_commande"`
	DaysSinceLast    int         `json:"jours_depuis_derniere"`
	OrderCount       int         `json:"nb_commandes_historique"`
}

// ScoreSuppliers scores every supplier in the dataset and returns them
// sorted by descending risk. now anchors the days-since-last-order figure.
// An empty dataset yields an empty (never nil) slice so JSON output stays
// a list.
func ScoreSuppliers(ds *model.Dataset, now time.Time, cfg Config) []SupplierRisk {
	if ds == nil {
		return []SupplierRisk{}
	}
	groups := ds.GroupBySupplier()
	risks := make([]SupplierRisk, 0, len(groups))
	for _, g := range groups {
		risks = append(risks, scoreSupplier(g, now, cfg))
	}
	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].Score > risks[j].Score
	})
	return risks
}

func scoreSupplier(g model.SupplierGroup, now time.Time, cfg Config) SupplierRisk {
	delays := make([]float64, len(g.Records))
	defects := make([]float64, len(g.Records))
	late := 0
	for i, rec := range g.Records {
		delays[i] = float64(rec.Delay)
		defects[i] = rec.Defects
		if rec.Delay > 0 {
			late++
		}
	}

	meanDelay := stats.Mean(delays)
	meanDefects := stats.Mean(defects)
	delayTrend := stats.DetectTrend(delays, cfg.TrendThreshold)
	defectTrend := stats.DetectTrend(defects, cfg.TrendThreshold)

	score := min(meanDelay*cfg.DelayWeight, cfg.DelayCap) +
		min(meanDefects*cfg.DefectWeight, cfg.DefectCap)

	// Trends shift the score: deteriorating suppliers surface before their
	// averages catch up, improving ones get credit for the turnaround.
	if defectTrend == stats.TrendRising {
		score += cfg.DefectRisingBonus
	}
	if delayTrend == stats.TrendRising {
		score += cfg.DelayRisingBonus
	}
	if defectTrend == stats.TrendFalling {
		score -= cfg.FallingDiscount
	}
	if delayTrend == stats.TrendFalling {
		score -= cfg.FallingDiscount
	}
	score = min(max(score, 0), 100)

	level, status := classify(score, cfg)
	lastOrder, daysSince := lastActivity(g.Records, now)

	return SupplierRisk{
		Supplier:         g.Name,
		Score:            stats.Round1(score),
		Level:            level,
		Status:           status,
		MeanDelay:        stats.Round1(meanDelay),
		DefectRate:       stats.Round2(meanDefects * 100),
		LateRate:         stats.Round1(float64(late) / float64(len(g.Records)) * 100),
		DefectVolatility: stats.Round2(stats.Volatility(defects) * 100),
		DelayVolatility:  stats.Round1(stats.Volatility(delays)),
		DefectTrend:      defectTrend,
		DelayTrend:       delayTrend,
		LastOrder:        lastOrder,
		DaysSinceLast:    daysSince,
		OrderCount:       len(g.Records),
	}
}

func classify(score float64, cfg Config) (level, status string) {
	switch {
	case score < cfg.ModerateThreshold:
		return LevelLow, StatusGood
	case score < cfg.HighThreshold:
		return LevelModerate, StatusWarning
	default:
		return LevelHigh, StatusAlert
	}
}

// lastActivity finds the supplier's most recent delivery date. Promised
// dates count only when nothing has been delivered yet: an undelivered
// order is a plan, not activity. Records are in promise order, so the scan
// keeps the maximum rather than trusting the last row.
func lastActivity(records []model.Record, now time.Time) (string, int) {
	var last time.Time
	for _, rec := range records {
		if rec.DateDelivered.After(last) {
			last = rec.DateDelivered
		}
	}
	if last.IsZero() {
		for _, rec := range records {
			if rec.DatePromised.After(last) {
				last = rec.DatePromised
			}
		}
	}
	if last.IsZero() {
		return "N/A", -1
	}
	days := int(now.Sub(last).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return last.Format(model.DateLayout), days
}

// TierShare is one risk level's share of the scored portfolio.
type TierShare struct {
	Count   int     `json:"nombre"`
	Percent float64 `json:"pourcentage"`
}

// Distribution counts suppliers per risk level, with each level's share of
// the total.
func Distribution(risks []SupplierRisk) map[string]TierShare {
	counts := map[string]int{LevelLow: 0, LevelModerate: 0, LevelHigh: 0}
	for _, r := range risks {
		counts[r.Level]++
	}
	dist := make(map[string]TierShare, len(counts))
	for level, n := range counts {
		share := TierShare{Count: n}
		if len(risks) > 0 {
			share.Percent = stats.Round1(float64(n) / float64(len(risks)) * 100)
		}
		dist[level] = share
	}
	return dist
}
