package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the canonical wire format for dates.
const DateLayout = "2006-01-02"

// Record is one canonical order row. A zero time means the date is unknown.
// Invariants (enforced by the normalizer, assumed everywhere else):
// Supplier is non-empty after trimming, Delay >= 0, Defects in [0, 1].
type Record struct {
	Supplier      string
	DatePromised  time.Time
	DateDelivered time.Time
	Delay         int
	Defects       float64
}

// recordJSON is the wire representation: dates as YYYY-MM-DD or null.
type recordJSON struct {
	Supplier      string  `json:"supplier"`
	DatePromised  *string `json:"date_promised"`
	DateDelivered *string `json:"date_delivered"`
	Delay         int     `json:"delay"`
	Defects       float64 `json:"defects"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Supplier:      r.Supplier,
		DatePromised:  formatDate(r.DatePromised),
		DateDelivered: formatDate(r.DateDelivered),
		Delay:         r.Delay,
		Defects:       r.Defects,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var rj recordJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	r.Supplier = rj.Supplier
	r.Delay = rj.Delay
	r.Defects = rj.Defects
	var err error
	if r.DatePromised, err = parseWireDate(rj.DatePromised); err != nil {
		return err
	}
	r.DateDelivered, err = parseWireDate(rj.DateDelivered)
	return err
}

func formatDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

func parseWireDate(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, *s)
}

// Dataset is a canonical, normalized dataset sorted by (supplier, date).
type Dataset struct {
	Case    CaseType `json:"case_type"`
	Records []Record `json:"records"`
}

// SupplierGroup is one supplier's ordered record subsequence.
type SupplierGroup struct {
	Name    string
	Records []Record
}

// GroupBySupplier splits the dataset per supplier, preserving both the
// encounter order of suppliers and the record order within each group.
// Downstream scoring and forecasting rely on this stable iteration order.
func (d *Dataset) GroupBySupplier() []SupplierGroup {
	var groups []SupplierGroup
	index := make(map[string]int)
	for _, rec := range d.Records {
		i, ok := index[rec.Supplier]
		if !ok {
			i = len(groups)
			index[rec.Supplier] = i
			groups = append(groups, SupplierGroup{Name: rec.Supplier})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

// Suppliers returns unique supplier names in encounter order.
func (d *Dataset) Suppliers() []string {
	groups := d.GroupBySupplier()
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}

// Supplier returns the ordered records of one supplier, or nil.
func (d *Dataset) Supplier(name string) []Record {
	for _, g := range d.GroupBySupplier() {
		if g.Name == name {
			return g.Records
		}
	}
	return nil
}
