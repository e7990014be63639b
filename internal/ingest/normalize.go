package ingest

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/supplier-cli/internal/model"
)

// Normalizer applies approved column mappings to a raw table and produces a
// canonical dataset. The pipeline is deterministic: same table, same
// mappings, same output. Every transformation is logged and every data
// quality problem surfaces as a warning rather than a silent fix.
type Normalizer struct {
	// DateParseSuccessRatio is the fraction of a date column that a single
	// layout must parse to win the column. Zero means the default of 0.8.
	DateParseSuccessRatio float64

	// Now is the clock used for log timestamps and synthesized dates.
	// Zero means time.Now.
	Now time.Time
}

// Result is the full outcome of a normalization run, including the audit
// trail. Dataset is nil when Success is false.
type Result struct {
	Success         bool                      `json:"success"`
	Dataset         *model.Dataset            `json:"-"`
	Mappings        []model.ColumnMapping     `json:"mappings_applied"`
	Transformations []model.TransformationLog `json:"transformations"`
	Warnings        []model.ValidationWarning `json:"warnings"`
	DetectedCase    model.CaseType            `json:"detected_case"`
	Summary         *Summary                  `json:"summary,omitempty"`
}

// Summary describes the normalized dataset for review output.
type Summary struct {
	TotalRows       int            `json:"total_rows"`
	UniqueSuppliers int            `json:"unique_suppliers"`
	Suppliers       []string       `json:"suppliers"`
	CaseType        model.CaseType `json:"case_type"`
	DelayStats      *MetricStats   `json:"delay_stats,omitempty"`
	DefectStats     *MetricStats   `json:"defect_stats,omitempty"`
	DateRange       *DateRange     `json:"date_range,omitempty"`
}

// MetricStats summarizes one canonical metric column.
type MetricStats struct {
	Mean        float64 `json:"mean"`
	Max         float64 `json:"max"`
	PctAffected float64 `json:"pct_affected"`
}

// DateRange is the inclusive span of promised dates in the dataset.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// run carries the mutable state of one normalization pass.
type run struct {
	norm    *Normalizer
	result  *Result
	numRows int

	raw map[model.ColumnRole][]string
	src map[model.ColumnRole]string

	promised  []time.Time
	delivered []time.Time
	order     []time.Time
	delays    []float64
	defects   []float64
}

// Normalize applies approved mappings to a table. caseHint forces the case
// classification when not CaseUnknown; otherwise the case is re-derived from
// the mappings. Data problems are reported through Result (Success=false for
// structural failures); the error return covers only invalid arguments.
func (n *Normalizer) Normalize(table *model.RawTable, mappings []model.ColumnMapping, caseHint model.CaseType) (res *Result, err error) {
	if table == nil {
		return nil, eris.New("ingest: nil table")
	}

	res = &Result{Mappings: mappings}
	defer func() {
		// A malformed table must never take the process down; convert any
		// panic into a failed result with the panic recorded.
		if r := recover(); r != nil {
			zap.S().Errorw("ingest: normalization panicked", "panic", r)
			res.Success = false
			res.Dataset = nil
			res.Warnings = append(res.Warnings, model.ValidationWarning{
				Severity: model.SeverityError,
				Message:  fmt.Sprintf("normalization failed: %v", r),
			})
		}
	}()

	if err := ValidateApproved(mappings); err != nil {
		res.Warnings = append(res.Warnings, model.ValidationWarning{
			Severity: model.SeverityError,
			Message:  err.Error(),
		})
		return res, nil
	}

	caseType := caseHint
	if caseType == "" || caseType == model.CaseUnknown {
		caseType = detectCase(mappings)
	}
	res.DetectedCase = caseType

	r := &run{norm: n, result: res, numRows: table.NumRows()}
	r.applyMappings(table, mappings)

	if _, ok := r.raw[model.RoleSupplier]; !ok {
		r.warn(model.SeverityError, "", 0, "no supplier column mapped; cannot normalize")
		return res, nil
	}

	r.normalizeDates()
	r.computeDelays(caseType)
	r.deriveDefectRatio()
	r.normalizeDefects(caseType)
	suppliers := r.cleanSuppliers()

	records := r.assemble(suppliers)
	if len(records) == 0 {
		r.warn(model.SeverityError, "", 0, "no valid rows after normalization")
		return res, nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Supplier != records[j].Supplier {
			return records[i].Supplier < records[j].Supplier
		}
		return records[i].DatePromised.Before(records[j].DatePromised)
	})

	res.Dataset = &model.Dataset{Case: caseType, Records: records}
	res.Summary = summarize(res.Dataset)
	res.Success = true

	zap.S().Infow("ingest: table normalized",
		"rows", len(records),
		"suppliers", res.Summary.UniqueSuppliers,
		"case", caseType,
		"warnings", len(res.Warnings),
	)
	return res, nil
}

func (n *Normalizer) now() time.Time {
	if n.Now.IsZero() {
		return time.Now()
	}
	return n.Now
}

func (n *Normalizer) dateRatio() float64 {
	if n.DateParseSuccessRatio <= 0 {
		return 0.8
	}
	return n.DateParseSuccessRatio
}

func (r *run) warn(sev model.Severity, column string, rows int, format string, args ...interface{}) {
	r.result.Warnings = append(r.result.Warnings, model.ValidationWarning{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Column:   column,
		RowCount: rows,
	})
}

func (r *run) log(column, action, details string, rows int) {
	r.result.Transformations = append(r.result.Transformations, model.TransformationLog{
		Column:       column,
		Action:       action,
		Details:      details,
		RowsAffected: rows,
		Timestamp:    r.norm.now(),
	})
}

// applyMappings selects the mapped source columns by role. A mapping whose
// source column is absent from the table is skipped with a warning.
func (r *run) applyMappings(table *model.RawTable, mappings []model.ColumnMapping) {
	r.raw = make(map[model.ColumnRole][]string)
	r.src = make(map[model.ColumnRole]string)
	for _, m := range mappings {
		if m.TargetRole == model.RoleIgnore {
			continue
		}
		values, ok := table.Column(m.SourceColumn)
		if !ok {
			r.warn(model.SeverityWarning, m.SourceColumn, 0,
				"mapped column %q not found in table; skipped", m.SourceColumn)
			continue
		}
		r.raw[m.TargetRole] = values
		r.src[m.TargetRole] = m.SourceColumn
	}
}

// normalizeDates parses every mapped date column with the column-level
// layout election.
func (r *run) normalizeDates() {
	parse := func(role model.ColumnRole) []time.Time {
		values, ok := r.raw[role]
		if !ok {
			return nil
		}
		parsed, invalid, layout := parseDateColumn(values, r.norm.dateRatio())
		detail := "per-value fallback parsing"
		if layout != "" {
			detail = fmt.Sprintf("layout %s", layout)
		}
		r.log(r.src[role], "parse_date", detail, len(values)-invalid)
		if invalid > 0 {
			r.warn(model.SeverityWarning, r.src[role], invalid,
				"%d value(s) in %q could not be parsed as dates", invalid, r.src[role])
		}
		return parsed
	}
	r.promised = parse(model.RoleDatePromised)
	r.delivered = parse(model.RoleDateDelivered)
	r.order = parse(model.RoleOrderDate)
}

// computeDelays establishes the delay column. Preference order: an explicit
// delay column, then the promised/delivered date difference. Defect-only
// datasets get zero delays and synthesized dates so every record still
// carries a timeline.
func (r *run) computeDelays(caseType model.CaseType) {
	r.delays = make([]float64, r.numRows)

	if caseType == model.CaseDefectsOnly {
		r.synthesizeDates()
		r.log("", "zero_fill_delay", "defects-only dataset, delay set to 0", r.numRows)
		return
	}

	if values, ok := r.raw[model.RoleDelay]; ok {
		nulls, negatives := 0, 0
		for i, v := range values {
			if isBlank(v) {
				nulls++
				continue
			}
			f, err := parseNumber(v)
			if err != nil {
				nulls++
				continue
			}
			if f < 0 {
				negatives++
				f = 0
			}
			r.delays[i] = f
		}
		r.log(r.src[model.RoleDelay], "coerce_delay", "numeric coercion, nulls as 0", r.numRows)
		if nulls > 0 {
			r.warn(model.SeverityWarning, r.src[model.RoleDelay], nulls,
				"%d delay value(s) missing or non-numeric, treated as 0", nulls)
		}
		if negatives > 0 {
			r.warn(model.SeverityWarning, r.src[model.RoleDelay], negatives,
				"%d negative delay value(s) clamped to 0", negatives)
		}
		return
	}

	if r.promised != nil && r.delivered != nil {
		missing := 0
		for i := range r.delays {
			if r.promised[i].IsZero() || r.delivered[i].IsZero() {
				missing++
				continue
			}
			days := r.delivered[i].Sub(r.promised[i]).Hours() / 24
			r.delays[i] = math.Max(0, days)
		}
		r.log("", "compute_delay", "delivered minus promised, early deliveries as 0", r.numRows-missing)
		if missing > 0 {
			r.warn(model.SeverityWarning, "", missing,
				"%d row(s) missing a date, delay treated as 0", missing)
		}
		return
	}

	r.warn(model.SeverityWarning, "", 0, "no delay column and no date pair; delays set to 0")
}

// synthesizeDates fills promised and delivered from the order date when a
// defects-only dataset has no delivery timeline of its own.
func (r *run) synthesizeDates() {
	if r.promised != nil && r.delivered != nil {
		return
	}
	fallback := truncateDate(r.norm.now())
	source := r.order
	detail := "from order date"
	if source == nil {
		source = make([]time.Time, r.numRows)
		detail = "ingestion date (no order date column)"
	}
	dates := make([]time.Time, r.numRows)
	for i, t := range source {
		if t.IsZero() {
			t = fallback
		}
		dates[i] = t
	}
	if r.promised == nil {
		r.promised = dates
	}
	if r.delivered == nil {
		r.delivered = dates
	}
	r.log("", "synthesize_dates", detail, r.numRows)
}

// deriveDefectRatio builds a defect rate from count columns when no direct
// defects or quality column was mapped.
func (r *run) deriveDefectRatio() {
	if _, ok := r.raw[model.RoleDefects]; ok {
		return
	}
	if _, ok := r.raw[model.RoleQualityScore]; ok {
		return
	}
	defCol, ok := r.raw[model.RoleDefectCount]
	if !ok {
		return
	}
	totalCol, hasTotal := r.raw[model.RoleTotalCount]
	goodCol, hasGood := r.raw[model.RoleGoodCount]
	if !hasTotal && !hasGood {
		r.warn(model.SeverityWarning, r.src[model.RoleDefectCount], 0,
			"defect count mapped without a total or good count; defects unavailable")
		return
	}

	derived := make([]string, r.numRows)
	zeros := 0
	for i := range derived {
		def, err := parseNumber(valueAt(defCol, i))
		if err != nil {
			continue
		}
		var total float64
		if hasTotal {
			total, err = parseNumber(valueAt(totalCol, i))
			if err != nil {
				continue
			}
		} else {
			good, err := parseNumber(valueAt(goodCol, i))
			if err != nil {
				continue
			}
			total = def + good
		}
		if total <= 0 {
			zeros++
			derived[i] = "0"
			continue
		}
		derived[i] = fmt.Sprintf("%g", def/total)
	}
	r.raw[model.RoleDefects] = derived
	r.src[model.RoleDefects] = r.src[model.RoleDefectCount]
	r.log(r.src[model.RoleDefectCount], "derive_defect_ratio",
		"defect count divided by total units", r.numRows)
	if zeros > 0 {
		r.warn(model.SeverityWarning, r.src[model.RoleDefectCount], zeros,
			"%d row(s) with zero total units, defect rate treated as 0", zeros)
	}
}

func valueAt(col []string, i int) string {
	if i < len(col) {
		return col[i]
	}
	return ""
}

// normalizeDefects establishes the defects column in [0, 1]. Precedence: a
// direct defects column, then an inverted quality score. Delay-only
// datasets get zero defects.
func (r *run) normalizeDefects(caseType model.CaseType) {
	r.defects = make([]float64, r.numRows)

	if caseType == model.CaseDelayOnly {
		r.log("", "zero_fill_defects", "delay-only dataset, defects set to 0", r.numRows)
		return
	}

	if values, ok := r.raw[model.RoleDefects]; ok {
		r.coerceDefects(values, r.src[model.RoleDefects])
		if _, also := r.raw[model.RoleQualityScore]; also {
			r.warn(model.SeverityInfo, r.src[model.RoleQualityScore], 0,
				"both defects and quality score mapped; quality score ignored")
		}
		return
	}

	if values, ok := r.raw[model.RoleQualityScore]; ok {
		r.invertQuality(values, r.src[model.RoleQualityScore])
		return
	}

	r.warn(model.SeverityWarning, "", 0, "no defects source mapped; defects set to 0")
}

// coerceDefects parses the defects column, converting percentages to
// decimals when the column's scale calls for it, then clamps to [0, 1].
func (r *run) coerceDefects(values []string, column string) {
	parsed := make([]float64, r.numRows)
	valid := make([]bool, r.numRows)
	nulls := 0
	maxVal := 0.0
	for i, v := range values {
		f, err := parseNumber(v)
		if err != nil {
			nulls++
			continue
		}
		parsed[i], valid[i] = f, true
		if f > maxVal {
			maxVal = f
		}
	}

	if maxVal > 1 {
		for i := range parsed {
			parsed[i] /= 100
		}
		r.log(column, TransformPercentToDecimal,
			fmt.Sprintf("max value %.2f read as percentage", maxVal), r.numRows-nulls)
	}

	clamped := 0
	for i := range parsed {
		if !valid[i] {
			continue
		}
		c := clamp(parsed[i], 0, 1)
		if c != parsed[i] {
			clamped++
		}
		r.defects[i] = c
	}
	if nulls > 0 {
		r.warn(model.SeverityWarning, column, nulls,
			"%d defect value(s) missing or non-numeric, treated as 0", nulls)
	}
	if clamped > 0 {
		r.warn(model.SeverityWarning, column, clamped,
			"%d defect value(s) outside [0, 1] after conversion, clamped", clamped)
	}
}

// invertQuality converts a quality score into a defect rate. Scores above 1
// are read on a 0-100 scale, otherwise 0-1.
func (r *run) invertQuality(values []string, column string) {
	parsed := make([]float64, r.numRows)
	valid := make([]bool, r.numRows)
	nulls := 0
	maxVal := 0.0
	for i, v := range values {
		f, err := parseNumber(v)
		if err != nil {
			nulls++
			continue
		}
		parsed[i], valid[i] = f, true
		if f > maxVal {
			maxVal = f
		}
	}

	scale := "0-1 scale"
	for i := range parsed {
		if !valid[i] {
			continue
		}
		var d float64
		if maxVal > 1 {
			d = (100 - parsed[i]) / 100
			scale = "0-100 scale"
		} else {
			d = 1 - parsed[i]
		}
		r.defects[i] = clamp(d, 0, 1)
	}
	r.log(column, TransformQualityToDefects, fmt.Sprintf("inverted on %s", scale), r.numRows-nulls)
	if nulls > 0 {
		r.warn(model.SeverityWarning, column, nulls,
			"%d quality value(s) missing or non-numeric, defects treated as 0", nulls)
	}
}

// cleanSuppliers trims and unicode-normalizes supplier names. Returns one
// name per row; empty names mark the row for removal.
func (r *run) cleanSuppliers() []string {
	values := r.raw[model.RoleSupplier]
	suppliers := make([]string, r.numRows)
	empty := 0
	for i, v := range values {
		s := strings.TrimSpace(norm.NFC.String(v))
		if s == "" {
			empty++
			continue
		}
		suppliers[i] = s
	}
	r.log(r.src[model.RoleSupplier], "clean_supplier", "trimmed and NFC-normalized", r.numRows)
	if empty > 0 {
		r.warn(model.SeverityWarning, r.src[model.RoleSupplier], empty,
			"%d row(s) with empty supplier name dropped", empty)
	}
	return suppliers
}

// assemble builds the final records, dropping rows without a supplier.
func (r *run) assemble(suppliers []string) []model.Record {
	records := make([]model.Record, 0, r.numRows)
	for i := 0; i < r.numRows; i++ {
		if suppliers[i] == "" {
			continue
		}
		rec := model.Record{
			Supplier: suppliers[i],
			Delay:    int(math.Round(r.delays[i])),
			Defects:  r.defects[i],
		}
		if r.promised != nil {
			rec.DatePromised = r.promised[i]
		}
		if r.delivered != nil {
			rec.DateDelivered = r.delivered[i]
		}
		records = append(records, rec)
	}
	return records
}

// summarize computes the review summary over a normalized dataset.
func summarize(ds *model.Dataset) *Summary {
	s := &Summary{
		TotalRows: len(ds.Records),
		CaseType:  ds.Case,
		Suppliers: ds.Suppliers(),
	}
	s.UniqueSuppliers = len(s.Suppliers)

	if ds.Case == model.CaseMixed || ds.Case == model.CaseDelayOnly {
		s.DelayStats = metricStats(ds.Records, func(r model.Record) float64 { return float64(r.Delay) })
	}
	if ds.Case == model.CaseMixed || ds.Case == model.CaseDefectsOnly {
		s.DefectStats = metricStats(ds.Records, func(r model.Record) float64 { return r.Defects })
	}

	var from, to time.Time
	for _, rec := range ds.Records {
		if rec.DatePromised.IsZero() {
			continue
		}
		if from.IsZero() || rec.DatePromised.Before(from) {
			from = rec.DatePromised
		}
		if to.IsZero() || rec.DatePromised.After(to) {
			to = rec.DatePromised
		}
	}
	if !from.IsZero() {
		s.DateRange = &DateRange{
			From: from.Format(model.DateLayout),
			To:   to.Format(model.DateLayout),
		}
	}
	return s
}

func metricStats(records []model.Record, metric func(model.Record) float64) *MetricStats {
	if len(records) == 0 {
		return &MetricStats{}
	}
	var sum, max float64
	affected := 0
	for _, rec := range records {
		v := metric(rec)
		sum += v
		if v > max {
			max = v
		}
		if v > 0 {
			affected++
		}
	}
	n := float64(len(records))
	return &MetricStats{
		Mean:        sum / n,
		Max:         max,
		PctAffected: float64(affected) / n * 100,
	}
}
