package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/supplier-cli/internal/stats"
)

func actionNames(actions []Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Action
	}
	return names
}

func TestRecommendActionsHighRisk(t *testing.T) {
	risk := SupplierRisk{
		Supplier:   "Acme",
		Level:      LevelHigh,
		DefectRate: 6.5,
		MeanDelay:  4.2,
	}

	actions := RecommendActions([]SupplierRisk{risk}, DefaultConfig())
	require.Len(t, actions, 3)
	assert.Contains(t, actionNames(actions), "Planifier un audit qualité complet")
	assert.Contains(t, actionNames(actions), "Recalibrer le processus de production")
	assert.Contains(t, actionNames(actions), "Mettre en place un plan logistique correctif")
	for _, a := range actions {
		assert.Equal(t, "Acme", a.Supplier)
		assert.Equal(t, PriorityHigh, a.Priority)
	}
}

func TestRecommendActionsHighRiskBelowThresholds(t *testing.T) {
	risk := SupplierRisk{
		Supplier:   "Acme",
		Level:      LevelHigh,
		DefectRate: 1.0,
		MeanDelay:  1.0,
	}

	actions := RecommendActions([]SupplierRisk{risk}, DefaultConfig())
	require.Len(t, actions, 1, "audit alone when rates are below the action thresholds")
	assert.Equal(t, "Planifier un audit qualité complet", actions[0].Action)
}

func TestRecommendActionsModerateTrends(t *testing.T) {
	risk := SupplierRisk{
		Supplier:    "Bolt",
		Level:       LevelModerate,
		DelayTrend:  stats.TrendRising,
		DefectTrend: stats.TrendRising,
	}

	actions := RecommendActions([]SupplierRisk{risk}, DefaultConfig())
	require.Len(t, actions, 3)
	assert.Contains(t, actionNames(actions), "Renforcer la surveillance des livraisons")
	assert.Contains(t, actionNames(actions), "Organiser un point logistique hebdomadaire")
	assert.Contains(t, actionNames(actions), "Proposer une formation contrôle qualité")
}

func TestRecommendActionsLowRiskInactive(t *testing.T) {
	risk := SupplierRisk{
		Supplier:      "Calm",
		Level:         LevelLow,
		DaysSinceLast: 90,
	}

	actions := RecommendActions([]SupplierRisk{risk}, DefaultConfig())
	require.Len(t, actions, 2)
	assert.Equal(t, "Maintenir le suivi standard", actions[0].Action)
	assert.Equal(t, "Passer un appel de courtoisie", actions[1].Action)
	assert.Equal(t, PriorityLow, actions[1].Priority)
}

func TestRecommendActionsEmptyStaysAList(t *testing.T) {
	actions := RecommendActions(nil, DefaultConfig())
	require.NotNil(t, actions)
	assert.Empty(t, actions)
}

func TestRecommendActionsEverySupplierCovered(t *testing.T) {
	risks := []SupplierRisk{
		{Supplier: "A", Level: LevelHigh},
		{Supplier: "B", Level: LevelModerate},
		{Supplier: "C", Level: LevelLow},
	}

	actions := RecommendActions(risks, DefaultConfig())
	seen := map[string]bool{}
	for _, a := range actions {
		seen[a.Supplier] = true
	}
	assert.Len(t, seen, 3, "every supplier gets at least one action")
}
