package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// parseNumber coerces a raw cell into a float64. Percent signs and
// surrounding whitespace are tolerated. Empty cells are reported as errors;
// callers decide whether that means "null" or "bad data".
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, eris.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse number %q", s)
	}
	return v, nil
}

// isBlank reports whether a cell should be treated as null.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// isWhole reports whether v has no fractional part.
func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
