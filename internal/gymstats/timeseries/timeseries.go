// Package timeseries holds the numeric primitives the analytics build on:
// least-squares trends, moving averages, variance and Pearson correlation.
// All functions are pure and never modify their input.
package timeseries

import (
	"math"

	"github.com/2beens/gymstats/internal/gymstats/records"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// StableSlopeThreshold is the |slope| (value units per step) at or below which a trend is stable.
const StableSlopeThreshold = 0.1

// MinCorrelationPoints is the minimum number of pairs PearsonCorrelation accepts.
const MinCorrelationPoints = 3

// Mean returns 0 for an empty series.
func Mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// Variance is the population variance; 0 for an empty series.
func Variance(values []float64) float64 {
	v, err := stats.PopulationVariance(values)
	if err != nil {
		return 0
	}
	return v
}

// MovingAverage averages, for every index i, the trailing min(i+1, window) values.
// The first window-1 entries therefore use fewer points; nothing is zero padded.
// A window below 1 is treated as 1. Non-finite values are dropped first, so the
// result is shorter than the input when any are present.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	values = finiteValues(values)
	out := make([]float64, len(values))
	for i := range values {
		start := i + 1 - window
		if start < 0 {
			start = 0
		}
		out[i] = Mean(values[start : i+1])
	}
	return out
}

// MovingAverageMetrics is MovingAverage keeping each point's date.
// Points with a non-finite value are left out.
func MovingAverageMetrics(series []records.DatedMetric, window int) []records.DatedMetric {
	series = finiteMetrics(series)
	smoothed := MovingAverage(Values(series), window)
	out := make([]records.DatedMetric, len(series))
	for i, m := range series {
		out[i] = records.DatedMetric{Date: m.Date, Value: smoothed[i]}
	}
	return out
}

func Values(series []records.DatedMetric) []float64 {
	out := make([]float64, len(series))
	for i, m := range series {
		out[i] = m.Value
	}
	return out
}

// LinearTrend fits value against index position (0, 1, 2, ...).
// Non-finite values are skipped; the remaining points keep their original index.
func LinearTrend(values []float64) records.TrendResult {
	return LinearTrendWithThreshold(values, StableSlopeThreshold)
}

func LinearTrendWithThreshold(values []float64, threshold float64) records.TrendResult {
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	return fit(xs, values, threshold)
}

// DatedTrend fits value against days elapsed since the first point, so Slope is per day.
// Points are expected oldest first.
func DatedTrend(series []records.DatedMetric) records.TrendResult {
	if len(series) == 0 {
		return insufficientTrend(0)
	}
	xs := make([]float64, len(series))
	for i, m := range series {
		xs[i] = float64(records.DaysBetween(series[0].Date, m.Date))
	}
	return fit(xs, Values(series), StableSlopeThreshold)
}

func fit(xs, ys []float64, threshold float64) records.TrendResult {
	xs, ys = finitePairs(xs, ys)
	n := len(ys)
	if n < 2 {
		return insufficientTrend(n)
	}
	// all points at the same x: no slope can be fitted
	if Variance(xs) == 0 {
		return insufficientTrend(n)
	}
	if Variance(ys) == 0 {
		return records.TrendResult{
			Slope:      0,
			Intercept:  ys[0],
			Direction:  records.DirectionStable,
			Confidence: 0,
			DataPoints: n,
		}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	rSquared := stat.RSquared(xs, ys, nil, intercept, slope)
	if math.IsNaN(rSquared) {
		rSquared = 0
	}

	return records.TrendResult{
		Slope:      slope,
		Intercept:  intercept,
		Direction:  directionFor(slope, threshold),
		Confidence: clamp(rSquared, 0, 1),
		DataPoints: n,
	}
}

func insufficientTrend(n int) records.TrendResult {
	return records.TrendResult{
		Direction:  records.DirectionInsufficientData,
		DataPoints: n,
	}
}

func directionFor(slope, threshold float64) records.Direction {
	switch {
	case slope > threshold:
		return records.DirectionIncreasing
	case slope < -threshold:
		return records.DirectionDecreasing
	default:
		return records.DirectionStable
	}
}

// PearsonCorrelation requires equal length series of at least MinCorrelationPoints.
// Pairs with a non-finite member are dropped first. Zero variance in either
// series gives a coefficient of 0. The result is symmetric in xs and ys.
func PearsonCorrelation(xs, ys []float64) records.CorrelationResult {
	if len(xs) != len(ys) {
		return records.CorrelationResult{Strength: records.StrengthInsufficientData, PValue: 1}
	}

	cx, cy := finitePairs(xs, ys)
	n := len(cx)
	if n < MinCorrelationPoints {
		return records.CorrelationResult{Strength: records.StrengthInsufficientData, DataPoints: n, PValue: 1}
	}

	r, err := stats.Correlation(cx, cy)
	if err != nil || math.IsNaN(r) {
		r = 0
	}
	r = clamp(r, -1, 1)

	return records.CorrelationResult{
		Coefficient: r,
		Strength:    StrengthFor(r),
		DataPoints:  n,
		PValue:      correlationPValue(r, n),
	}
}

// correlationPValue is the two-tailed p-value of r under H0: rho = 0 (Student's t, n-2 df).
func correlationPValue(r float64, n int) float64 {
	df := float64(n - 2)
	if df < 1 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	return clamp(p, 0, 1)
}

func StrengthFor(r float64) records.Strength {
	abs := math.Abs(r)
	switch {
	case abs < 0.1:
		return records.StrengthNegligible
	case abs < 0.3:
		return records.StrengthWeak
	case abs < 0.5:
		return records.StrengthModerate
	case abs < 0.7:
		return records.StrengthStrong
	default:
		return records.StrengthVeryStrong
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// finitePairs keeps the pairs where both members are finite. xs and ys must be the same length.
func finitePairs(xs, ys []float64) ([]float64, []float64) {
	cx := make([]float64, 0, len(xs))
	cy := make([]float64, 0, len(ys))
	for i := range xs {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			cx = append(cx, xs[i])
			cy = append(cy, ys[i])
		}
	}
	return cx, cy
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func finiteMetrics(series []records.DatedMetric) []records.DatedMetric {
	out := make([]records.DatedMetric, 0, len(series))
	for _, m := range series {
		if isFinite(m.Value) {
			out = append(out, m)
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
