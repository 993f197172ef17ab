package correlation

import (
	"fmt"
	"math"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/gymstats/timeseries"
)

// MaxAlignmentGap is the exclusive upper bound on the distance between a weight
// sample and the volume sample it is paired with.
const MaxAlignmentGap = 24 * time.Hour

const significanceLevel = 0.05

type Pair struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
	Volume float64   `json:"volume"`
}

type Analysis struct {
	records.CorrelationResult
	Pairs    []Pair   `json:"pairs"`
	Insights []string `json:"insights"`
}

// Align pairs every weight sample with the closest volume sample less than
// MaxAlignmentGap away. Weight samples without such a neighbour are dropped;
// a volume sample may be paired more than once. Equally close volume samples
// resolve to the earlier one.
func Align(weights, volumes []records.DatedMetric) []Pair {
	weights = records.FiniteMetrics(weights)
	volumes = records.FiniteMetrics(volumes)

	var pairs []Pair
	for _, w := range weights {
		best, bestGap := -1, time.Duration(math.MaxInt64)
		for i, v := range volumes {
			gap := w.Date.Sub(v.Date).Abs()
			if gap < MaxAlignmentGap && gap < bestGap {
				best, bestGap = i, gap
			}
		}
		if best < 0 {
			continue
		}
		pairs = append(pairs, Pair{
			Date:   w.Date,
			Weight: w.Value,
			Volume: volumes[best].Value,
		})
	}
	return pairs
}

// Analyze correlates body weight with training volume.
func Analyze(weights, volumes []records.DatedMetric) Analysis {
	if len(weights) == 0 || len(volumes) == 0 {
		return Analysis{
			CorrelationResult: records.CorrelationResult{Strength: records.StrengthNoData, PValue: 1},
			Insights:          []string{"Log both body weight and workouts to see how they relate."},
		}
	}

	pairs := Align(weights, volumes)
	if len(pairs) < timeseries.MinCorrelationPoints {
		return Analysis{
			CorrelationResult: records.CorrelationResult{
				Strength:   records.StrengthInsufficientData,
				DataPoints: len(pairs),
				PValue:     1,
			},
			Pairs: pairs,
			Insights: []string{fmt.Sprintf(
				"Only %d weigh-ins fall within a day of a workout; at least %d are needed.",
				len(pairs), timeseries.MinCorrelationPoints,
			)},
		}
	}

	ws := make([]float64, len(pairs))
	vs := make([]float64, len(pairs))
	for i, p := range pairs {
		ws[i], vs[i] = p.Weight, p.Volume
	}
	result := timeseries.PearsonCorrelation(ws, vs)

	return Analysis{
		CorrelationResult: result,
		Pairs:             pairs,
		Insights:          insights(result),
	}
}

func insights(r records.CorrelationResult) []string {
	var out []string
	switch r.Strength {
	case records.StrengthStrong, records.StrengthVeryStrong:
		if r.Coefficient > 0 {
			out = append(out, "Body weight rises together with training volume, consistent with a muscle gain phase.")
		} else {
			out = append(out, "Body weight drops as training volume rises, consistent with a cutting phase.")
		}
	case records.StrengthModerate:
		out = append(out, "Body weight and training volume move together moderately; keep monitoring as more data comes in.")
	default:
		out = append(out, "Body weight looks independent of training volume.")
	}

	if r.PValue < significanceLevel {
		out = append(out, fmt.Sprintf("The relationship is statistically significant (p=%.3f, n=%d).", r.PValue, r.DataPoints))
	} else {
		out = append(out, fmt.Sprintf("Not statistically significant yet (p=%.3f, n=%d).", r.PValue, r.DataPoints))
	}
	return out
}
