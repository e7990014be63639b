package ingest

import (
	"time"

	"github.com/rotisserie/eris"
)

// dateLayouts are the explicit formats tried in priority order when
// normalizing a date column. The first layout that parses at least 80% of a
// column's non-null values wins for the whole column.
var dateLayouts = []string{
	"2006-01-02",      // ISO
	"02/01/2006",      // day/month/year
	"01/02/2006",      // month/day/year
	"2006/01/02",      // year/month/day
	"02-01-2006",      // day-month-year
	"02.01.2006",      // dotted European
	"20060102",        // compact
	"January 2, 2006", // long US
	"2 January 2006",  // long European
}

// permissiveLayouts extend dateLayouts for the per-value fallback parse.
// Timezone and time-of-day components are accepted and then stripped.
var permissiveLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseDateAs parses a single value with one explicit layout, truncating to
// a timezone-free calendar date.
func parseDateAs(s, layout string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return truncateDate(t), nil
}

// parseDateAny tries every known layout, explicit then permissive.
func parseDateAny(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := parseDateAs(s, layout); err == nil {
			return t, nil
		}
	}
	for _, layout := range permissiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDate(t), nil
		}
	}
	return time.Time{}, eris.Errorf("unparseable date %q", s)
}

// truncateDate strips time-of-day and timezone, keeping the calendar date.
func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDateColumn normalizes a whole column of raw date strings.
// It returns one time per input value (zero time for null/unparseable),
// the number of values that failed to parse, and the layout that won the
// column (empty when the permissive fallback had to be used).
func parseDateColumn(values []string, minSuccessRatio float64) (parsed []time.Time, invalid int, layout string) {
	nonNull := 0
	for _, v := range values {
		if !isBlank(v) {
			nonNull++
		}
	}
	if nonNull == 0 {
		return make([]time.Time, len(values)), 0, ""
	}

	// Pass 1: find the first explicit layout that clears the success bar.
	for _, candidate := range dateLayouts {
		ok := 0
		for _, v := range values {
			if isBlank(v) {
				continue
			}
			if _, err := parseDateAs(v, candidate); err == nil {
				ok++
			}
		}
		if float64(ok) >= float64(nonNull)*minSuccessRatio {
			layout = candidate
			break
		}
	}

	// Pass 2: parse each value with the winning layout, or permissively.
	parsed = make([]time.Time, len(values))
	for i, v := range values {
		if isBlank(v) {
			continue
		}
		var t time.Time
		var err error
		if layout != "" {
			t, err = parseDateAs(v, layout)
		} else {
			t, err = parseDateAny(v)
		}
		if err != nil {
			invalid++
			continue
		}
		parsed[i] = t
	}
	return parsed, invalid, layout
}
