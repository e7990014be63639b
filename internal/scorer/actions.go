package scorer

import "github.com/sells-group/supplier-cli/internal/stats"

// Action priorities.
const (
	PriorityHigh   = "haute"
	PriorityMedium = "moyenne"
	PriorityLow    = "basse"
)

// Action is one recommended follow-up for a supplier.
type Action struct {
	Supplier string `json:"fournisseur"`
	Action   string `json:"action"`
	Priority string `json:"priorite"`
	Reason   string `json:"raison"`
	Deadline string `json:"delai"`
	Impact   string `json:"impact"`
}

// RecommendActions derives the action plan from scored suppliers. Every
// supplier gets at least one action; high-risk ones accumulate several.
func RecommendActions(risks []SupplierRisk, cfg Config) []Action {
	actions := []Action{}
	for _, r := range risks {
		actions = append(actions, supplierActions(r, cfg)...)
	}
	return actions
}

func supplierActions(r SupplierRisk, cfg Config) []Action {
	switch r.Level {
	case LevelHigh:
		return highRiskActions(r, cfg)
	case LevelModerate:
		return moderateRiskActions(r)
	default:
		return lowRiskActions(r, cfg)
	}
}

func highRiskActions(r SupplierRisk, cfg Config) []Action {
	actions := []Action{{
		Supplier: r.Supplier,
		Action:   "Planifier un audit qualité complet",
		Priority: PriorityHigh,
		Reason:   "score de risque élevé",
		Deadline: "sous 2 semaines",
		Impact:   "identification des causes racines",
	}}
	if r.DefectRate >= cfg.DefectActionPct {
		actions = append(actions, Action{
			Supplier: r.Supplier,
			Action:   "Recalibrer le processus de production",
			Priority: PriorityHigh,
			Reason:   "taux de défauts au-dessus du seuil d'action",
			Deadline: "sous 1 mois",
			Impact:   "réduction directe du taux de défauts",
		})
	}
	if r.MeanDelay >= cfg.DelayActionDays {
		actions = append(actions, Action{
			Supplier: r.Supplier,
			Action:   "Mettre en place un plan logistique correctif",
			Priority: PriorityHigh,
			Reason:   "retard moyen au-dessus du seuil d'action",
			Deadline: "sous 1 mois",
			Impact:   "réduction des retards de livraison",
		})
	}
	return actions
}

func moderateRiskActions(r SupplierRisk) []Action {
	actions := []Action{{
		Supplier: r.Supplier,
		Action:   "Renforcer la surveillance des livraisons",
		Priority: PriorityMedium,
		Reason:   "score de risque modéré",
		Deadline: "en continu",
		Impact:   "détection précoce des dérives",
	}}
	if r.DelayTrend == stats.TrendRising {
		actions = append(actions, Action{
			Supplier: r.Supplier,
			Action:   "Organiser un point logistique hebdomadaire",
			Priority: PriorityMedium,
			Reason:   "tendance des retards en hausse",
			Deadline: "dès cette semaine",
			Impact:   "stabilisation des délais",
		})
	}
	if r.DefectTrend == stats.TrendRising {
		actions = append(actions, Action{
			Supplier: r.Supplier,
			Action:   "Proposer une formation contrôle qualité",
			Priority: PriorityMedium,
			Reason:   "tendance des défauts en hausse",
			Deadline: "sous 2 mois",
			Impact:   "inversion de la tendance qualité",
		})
	}
	return actions
}

func lowRiskActions(r SupplierRisk, cfg Config) []Action {
	actions := []Action{{
		Supplier: r.Supplier,
		Action:   "Maintenir le suivi standard",
		Priority: PriorityLow,
		Reason:   "performance satisfaisante",
		Deadline: "revue trimestrielle",
		Impact:   "relation fournisseur stable",
	}}
	if r.DaysSinceLast > cfg.InactiveDays {
		actions = append(actions, Action{
			Supplier: r.Supplier,
			Action:   "Passer un appel de courtoisie",
			Priority: PriorityLow,
			Reason:   "aucune commande récente",
			Deadline: "sous 2 semaines",
			Impact:   "maintien de la relation commerciale",
		})
	}
	return actions
}
