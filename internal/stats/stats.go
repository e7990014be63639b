// Package stats provides the pure numeric utilities shared by supplier risk
// scoring and forecasting: ordinary least squares, trend classification, and
// volatility. All functions are side-effect free and safe for concurrent use.
package stats

import "math"

// Trend classifies the direction of a metric over order sequence.
type Trend string

const (
	TrendRising  Trend = "hausse"
	TrendFalling Trend = "baisse"
	TrendStable  Trend = "stable"
)

// DefaultTrendThreshold is the slope magnitude below which a series is
// considered stable.
const DefaultTrendThreshold = 0.01

// LinearFit fits y = slope*x + intercept by ordinary least squares.
// It expects len(xs) == len(ys) with at least 2 points; callers guard that.
func LinearFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// DetectTrend fits an OLS line over (index, value) pairs after dropping NaNs
// and classifies the slope against +/- threshold. Fewer than 2 valid points
// yields TrendStable.
func DetectTrend(series []float64, threshold float64) Trend {
	var xs, ys []float64
	for i, v := range series {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(ys) < 2 {
		return TrendStable
	}
	slope, _ := LinearFit(xs, ys)
	switch {
	case slope > threshold:
		return TrendRising
	case slope < -threshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

// Volatility returns the sample standard deviation of the series, or 0 for
// fewer than 2 points. This is an absolute spread, not a coefficient of
// variation.
func Volatility(series []float64) float64 {
	if len(series) < 2 {
		return 0.0
	}
	m := Mean(series)
	var ss float64
	for _, v := range series {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(series)-1))
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

// PopulationVariance returns the population variance (divisor n), matching
// the convention used when comparing forecast-method disagreement.
func PopulationVariance(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m := Mean(series)
	var ss float64
	for _, v := range series {
		d := v - m
		ss += d * d
	}
	return ss / float64(len(series))
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round1 rounds to 1 decimal place.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }
