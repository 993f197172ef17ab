package timeseries_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/gymstats/timeseries"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndVariance(t *testing.T) {
	assert.Equal(t, 0.0, timeseries.Mean(nil))
	assert.Equal(t, 0.0, timeseries.Variance(nil))
	assert.Equal(t, 2.5, timeseries.Mean([]float64{1, 2, 3, 4}))
	assert.InDelta(t, 1.25, timeseries.Variance([]float64{1, 2, 3, 4}), 1e-12)
}

func TestMovingAverage(t *testing.T) {
	in := []float64{2, 4, 6, 8, 10}

	got := timeseries.MovingAverage(in, 3)
	assert.Equal(t, []float64{2, 3, 4, 6, 8}, got, "partial windows at the start use fewer points")
	assert.Equal(t, []float64{2, 4, 6, 8, 10}, in, "input untouched")

	assert.Equal(t, in, timeseries.MovingAverage(in, 1))
	assert.Equal(t, in, timeseries.MovingAverage(in, 0))
	assert.Equal(t, []float64{2, 3, 4, 5, 6}, timeseries.MovingAverage(in, 10))
	assert.Empty(t, timeseries.MovingAverage(nil, 3))
}

func TestMovingAverageMetrics_KeepsDates(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []records.DatedMetric{
		{Date: d, Value: 80},
		{Date: d.AddDate(0, 0, 1), Value: 82},
	}
	got := timeseries.MovingAverageMetrics(series, 2)
	require.Len(t, got, 2)
	assert.Equal(t, d.AddDate(0, 0, 1), got[1].Date)
	assert.Equal(t, 81.0, got[1].Value)
}

func TestLinearTrend_InsufficientData(t *testing.T) {
	for _, values := range [][]float64{nil, {}, {42}} {
		res := timeseries.LinearTrend(values)
		assert.Equal(t, records.DirectionInsufficientData, res.Direction)
		assert.Equal(t, 0.0, res.Slope)
		assert.Equal(t, 0.0, res.Confidence)
	}
}

func TestLinearTrend_ConstantSeries(t *testing.T) {
	res := timeseries.LinearTrend([]float64{70, 70, 70, 70})
	assert.Equal(t, records.DirectionStable, res.Direction)
	assert.Equal(t, 0.0, res.Slope)
	assert.Equal(t, 0.0, res.Confidence)
	assert.False(t, math.IsNaN(res.Confidence))
	assert.Equal(t, 4, res.DataPoints)
}

func TestLinearTrend_Directions(t *testing.T) {
	up := timeseries.LinearTrend([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, records.DirectionIncreasing, up.Direction)
	assert.InDelta(t, 1.0, up.Slope, 1e-9)
	assert.InDelta(t, 1.0, up.Intercept, 1e-9)
	assert.InDelta(t, 1.0, up.Confidence, 1e-9)

	down := timeseries.LinearTrend([]float64{90, 89, 88.5, 87})
	assert.Equal(t, records.DirectionDecreasing, down.Direction)
	assert.Less(t, down.Slope, 0.0)

	flat := timeseries.LinearTrend([]float64{80, 80.05, 80.1, 80.12})
	assert.Equal(t, records.DirectionStable, flat.Direction)
	assert.GreaterOrEqual(t, flat.Confidence, 0.0)
	assert.LessOrEqual(t, flat.Confidence, 1.0)

	custom := timeseries.LinearTrendWithThreshold([]float64{80, 80.05, 80.1, 80.12}, 0.01)
	assert.Equal(t, records.DirectionIncreasing, custom.Direction)
}

func TestDatedTrend(t *testing.T) {
	d := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	series := []records.DatedMetric{
		{Date: d, Value: 90},
		{Date: d.AddDate(0, 0, 7), Value: 89},
		{Date: d.AddDate(0, 0, 14), Value: 88},
	}
	res := timeseries.DatedTrend(series)
	assert.InDelta(t, -1.0/7, res.Slope, 1e-9)
	assert.Equal(t, records.DirectionDecreasing, res.Direction)

	sameDay := []records.DatedMetric{{Date: d, Value: 90}, {Date: d.Add(time.Hour), Value: 91}}
	assert.Equal(t, records.DirectionInsufficientData, timeseries.DatedTrend(sameDay).Direction)
	assert.Equal(t, records.DirectionInsufficientData, timeseries.DatedTrend(nil).Direction)
}

func TestTrendAndMovingAverage_SkipNonFinite(t *testing.T) {
	res := timeseries.LinearTrend([]float64{1, math.NaN(), 3, 4})
	assert.InDelta(t, 1.0, res.Slope, 1e-9)
	assert.InDelta(t, 1.0, res.Intercept, 1e-9)
	assert.Equal(t, records.DirectionIncreasing, res.Direction)
	assert.Equal(t, 3, res.DataPoints)

	res = timeseries.LinearTrend([]float64{math.Inf(1), 5, math.NaN()})
	assert.Equal(t, records.DirectionInsufficientData, res.Direction)
	assert.Equal(t, 1, res.DataPoints)
	_, err := json.Marshal(res)
	require.NoError(t, err)

	d := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	series := []records.DatedMetric{
		{Date: d, Value: 90},
		{Date: d.AddDate(0, 0, 1), Value: math.Inf(-1)},
		{Date: d.AddDate(0, 0, 2), Value: 89},
	}
	dated := timeseries.DatedTrend(series)
	assert.InDelta(t, -0.5, dated.Slope, 1e-9)
	assert.Equal(t, 2, dated.DataPoints)

	assert.Equal(t, []float64{2, 3, 5}, timeseries.MovingAverage([]float64{2, math.NaN(), 4, 6}, 2))

	smoothed := timeseries.MovingAverageMetrics(series, 2)
	require.Len(t, smoothed, 2)
	assert.Equal(t, d.AddDate(0, 0, 2), smoothed[1].Date)
	assert.InDelta(t, 89.5, smoothed[1].Value, 1e-9)
}

func TestPearsonCorrelation_Edges(t *testing.T) {
	res := timeseries.PearsonCorrelation([]float64{1, 2, 3}, []float64{1, 2})
	assert.Equal(t, records.StrengthInsufficientData, res.Strength)

	res = timeseries.PearsonCorrelation([]float64{1, 2}, []float64{1, 2})
	assert.Equal(t, records.StrengthInsufficientData, res.Strength)
	assert.Equal(t, 0.0, res.Coefficient)

	res = timeseries.PearsonCorrelation([]float64{1, 2, math.NaN(), 4}, []float64{2, 4, 6, math.Inf(1)})
	assert.Equal(t, records.StrengthInsufficientData, res.Strength, "non-finite pairs are dropped")
	assert.Equal(t, 2, res.DataPoints)

	res = timeseries.PearsonCorrelation([]float64{5, 5, 5, 5}, []float64{1, 2, 3, 4})
	assert.Equal(t, 0.0, res.Coefficient)
	assert.False(t, math.IsNaN(res.Coefficient))
	assert.Equal(t, records.StrengthNegligible, res.Strength)
}

func TestPearsonCorrelation_Values(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}

	self := timeseries.PearsonCorrelation(xs, xs)
	assert.InDelta(t, 1.0, self.Coefficient, 1e-9)
	assert.Equal(t, records.StrengthVeryStrong, self.Strength)
	assert.InDelta(t, 0.0, self.PValue, 1e-9)

	inverse := timeseries.PearsonCorrelation(xs, []float64{10, 8, 6, 4, 2})
	assert.InDelta(t, -1.0, inverse.Coefficient, 1e-9)

	noisy := timeseries.PearsonCorrelation([]float64{1, 2, 3, 4, 5, 6}, []float64{2, 1, 4, 3, 6, 5})
	assert.InDelta(t, 0.8286, noisy.Coefficient, 1e-3)
	assert.Greater(t, noisy.PValue, 0.0)
	assert.Less(t, noisy.PValue, 0.05)
}

func TestPearsonCorrelation_SymmetricProperty(t *testing.T) {
	faker := gofakeit.New(42)
	for run := 0; run < 200; run++ {
		n := faker.Number(3, 40)
		xs := make([]float64, n)
		ys := make([]float64, n)
		for i := 0; i < n; i++ {
			xs[i] = faker.Float64Range(40, 140)
			ys[i] = faker.Float64Range(0, 20000)
		}

		xy := timeseries.PearsonCorrelation(xs, ys)
		yx := timeseries.PearsonCorrelation(ys, xs)
		require.Equal(t, xy.Coefficient, yx.Coefficient)
		require.Equal(t, xy.Strength, yx.Strength)
		require.GreaterOrEqual(t, xy.Coefficient, -1.0)
		require.LessOrEqual(t, xy.Coefficient, 1.0)

		self := timeseries.PearsonCorrelation(xs, xs)
		require.InDelta(t, 1.0, self.Coefficient, 1e-9)
	}
}

func TestStrengthFor(t *testing.T) {
	testCases := []struct {
		r    float64
		want records.Strength
	}{
		{0, records.StrengthNegligible},
		{-0.099, records.StrengthNegligible},
		{0.1, records.StrengthWeak},
		{-0.29, records.StrengthWeak},
		{0.3, records.StrengthModerate},
		{0.5, records.StrengthStrong},
		{-0.69, records.StrengthStrong},
		{0.7, records.StrengthVeryStrong},
		{-1, records.StrengthVeryStrong},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, timeseries.StrengthFor(tc.r), "r=%v", tc.r)
	}
}
