package scorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/supplier-cli/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func kpiDataset() *model.Dataset {
	return &model.Dataset{
		Case: model.CaseMixed,
		Records: []model.Record{
			{Supplier: "Acme", DatePromised: day(2024, 1, 15), Delay: 2, Defects: 0.05},
			{Supplier: "Acme", DatePromised: day(2024, 2, 1), Delay: 0, Defects: 0},
			{Supplier: "Bolt", DatePromised: day(2024, 3, 1), Delay: 4, Defects: 0.10},
		},
	}
}

func TestComputeKPIs(t *testing.T) {
	k := ComputeKPIs(kpiDataset())

	assert.Equal(t, 3, k.OrderCount)
	assert.Equal(t, 2, k.SupplierCount)
	assert.InDelta(t, 66.67, k.LateRate, 1e-9)
	assert.InDelta(t, 5.0, k.DefectRate, 1e-9)
	assert.InDelta(t, 3.0, k.MeanDelay, 1e-9, "mean over late orders only")
	assert.Equal(t, 4, k.MaxDelay)
	assert.InDelta(t, 10.0, k.MaxDefectRate, 1e-9)
	assert.Equal(t, 1, k.PerfectOrders)
	assert.InDelta(t, 33.33, k.ConformityRate, 1e-9)
}

func TestComputeKPIsTwoDecimalRounding(t *testing.T) {
	ds := &model.Dataset{Records: []model.Record{
		{Supplier: "Acme", Delay: 5},
		{Supplier: "Acme", Delay: 2},
		{Supplier: "Bolt", Delay: 4},
	}}

	k := ComputeKPIs(ds)
	assert.InDelta(t, 3.67, k.MeanDelay, 1e-9)
	assert.InDelta(t, 100.0, k.LateRate, 1e-9)
	assert.InDelta(t, 0.0, k.ConformityRate, 1e-9)
}

func TestComputeKPIsEmpty(t *testing.T) {
	assert.Equal(t, GlobalKPIs{}, ComputeKPIs(nil))
	assert.Equal(t, GlobalKPIs{}, ComputeKPIs(&model.Dataset{}))
}

func TestPeriodKPIs(t *testing.T) {
	ds := kpiDataset()

	k := PeriodKPIs(ds, day(2024, 2, 1), time.Time{})
	assert.Equal(t, 2, k.OrderCount)
	assert.Equal(t, 4, k.MaxDelay)

	k = PeriodKPIs(ds, time.Time{}, day(2024, 1, 31))
	assert.Equal(t, 1, k.OrderCount)
	assert.InDelta(t, 2.0, k.MeanDelay, 1e-9)

	k = PeriodKPIs(ds, day(2025, 1, 1), time.Time{})
	assert.Equal(t, GlobalKPIs{}, k)
}

func TestPeriodKPIsSkipsUndatedRecords(t *testing.T) {
	ds := &model.Dataset{Records: []model.Record{
		{Supplier: "Acme", Delay: 3, Defects: 0.1},
	}}
	k := PeriodKPIs(ds, day(2024, 1, 1), day(2024, 12, 31))
	assert.Equal(t, 0, k.OrderCount)
}
