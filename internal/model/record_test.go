package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := Record{
		Supplier:      "Acme",
		DatePromised:  date(2024, 1, 15),
		DateDelivered: date(2024, 1, 17),
		Delay:         2,
		Defects:       0.05,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"supplier": "Acme",
		"date_promised": "2024-01-15",
		"date_delivered": "2024-01-17",
		"delay": 2,
		"defects": 0.05
	}`, string(data))

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec, got)
}

func TestRecordJSONNullDates(t *testing.T) {
	rec := Record{Supplier: "Acme", Delay: 1, Defects: 0.1}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date_promised":null`)
	assert.Contains(t, string(data), `"date_delivered":null`)

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.DatePromised.IsZero())
	assert.True(t, got.DateDelivered.IsZero())
}

func TestGroupBySupplierPreservesOrder(t *testing.T) {
	ds := Dataset{
		Case: CaseMixed,
		Records: []Record{
			{Supplier: "B", Delay: 1},
			{Supplier: "A", Delay: 2},
			{Supplier: "B", Delay: 3},
			{Supplier: "C", Delay: 4},
			{Supplier: "A", Delay: 5},
		},
	}

	groups := ds.GroupBySupplier()
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"B", "A", "C"}, ds.Suppliers())
	assert.Equal(t, "B", groups[0].Name)
	assert.Equal(t, []int{1, 3}, []int{groups[0].Records[0].Delay, groups[0].Records[1].Delay})
	assert.Equal(t, []int{2, 5}, []int{groups[1].Records[0].Delay, groups[1].Records[1].Delay})
}

func TestSupplierLookup(t *testing.T) {
	ds := Dataset{Records: []Record{
		{Supplier: "A", Delay: 1},
		{Supplier: "B", Delay: 2},
	}}

	recs := ds.Supplier("B")
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].Delay)
	assert.Nil(t, ds.Supplier("missing"))
}

func TestRawTableColumn(t *testing.T) {
	table := RawTable{
		Columns: []string{"a", "b"},
		Rows: [][]string{
			{"1", "2"},
			{"3"}, // short row
		},
	}

	values, ok := table.Column("b")
	require.True(t, ok)
	assert.Equal(t, []string{"2", ""}, values)

	_, ok = table.Column("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, table.NumRows())
}
