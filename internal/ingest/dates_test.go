package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateColumnISO(t *testing.T) {
	parsed, invalid, layout := parseDateColumn([]string{"2024-01-15", "2024-02-20"}, 0.8)
	assert.Equal(t, "2006-01-02", layout)
	assert.Equal(t, 0, invalid)
	assert.Equal(t, []time.Time{day(2024, 1, 15), day(2024, 2, 20)}, parsed)
}

func TestParseDateColumnDayMonthWinsOverMonthDay(t *testing.T) {
	// Both layouts parse every value; the day/month layout is tried first
	// and claims the column.
	parsed, invalid, layout := parseDateColumn([]string{"03/04/2024", "10/01/2024"}, 0.8)
	assert.Equal(t, "02/01/2006", layout)
	assert.Equal(t, 0, invalid)
	assert.Equal(t, day(2024, 4, 3), parsed[0])
	assert.Equal(t, day(2024, 1, 10), parsed[1])
}

func TestParseDateColumnMonthDayFallback(t *testing.T) {
	// 12/25 only parses as month/day, so the day/month layout misses the
	// success bar and the US layout wins the whole column.
	parsed, invalid, layout := parseDateColumn([]string{"12/25/2024", "01/15/2024"}, 0.8)
	assert.Equal(t, "01/02/2006", layout)
	assert.Equal(t, 0, invalid)
	assert.Equal(t, day(2024, 12, 25), parsed[0])
	assert.Equal(t, day(2024, 1, 15), parsed[1])
}

func TestParseDateColumnBlanksAreZero(t *testing.T) {
	parsed, invalid, _ := parseDateColumn([]string{"2024-01-15", "", "  "}, 0.8)
	assert.Equal(t, 0, invalid)
	require.Len(t, parsed, 3)
	assert.False(t, parsed[0].IsZero())
	assert.True(t, parsed[1].IsZero())
	assert.True(t, parsed[2].IsZero())
}

func TestParseDateColumnMostlyOneLayout(t *testing.T) {
	// 4 of 5 non-null values are ISO; the column still elects ISO and the
	// odd value counts as invalid.
	values := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "not a date"}
	parsed, invalid, layout := parseDateColumn(values, 0.8)
	assert.Equal(t, "2006-01-02", layout)
	assert.Equal(t, 1, invalid)
	assert.True(t, parsed[4].IsZero())
}

func TestParseDateColumnPermissiveFallback(t *testing.T) {
	// No single explicit layout clears the bar; each value is parsed with
	// whatever layout fits.
	values := []string{"2024-01-15T10:30:00Z", "15.02.2024", "March 3, 2024"}
	parsed, invalid, layout := parseDateColumn(values, 0.8)
	assert.Empty(t, layout)
	assert.Equal(t, 0, invalid)
	assert.Equal(t, day(2024, 1, 15), parsed[0])
	assert.Equal(t, day(2024, 2, 15), parsed[1])
	assert.Equal(t, day(2024, 3, 3), parsed[2])
}

func TestParseDateAnyStripsTime(t *testing.T) {
	got, err := parseDateAny("2024-06-01T23:59:59Z")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 6, 1), got)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"3.5", 3.5, false},
		{" 12 ", 12, false},
		{"4%", 4, false},
		{"4 %", 4, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
