package goals

import (
	"fmt"
	"math"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"
)

type Likelihood string

const (
	LikelihoodVeryLikely       Likelihood = "very_likely"
	LikelihoodLikely           Likelihood = "likely"
	LikelihoodPossible         Likelihood = "possible"
	LikelihoodUnlikely         Likelihood = "unlikely"
	LikelihoodInsufficientData Likelihood = "insufficient_data"
	LikelihoodError            Likelihood = "error"
)

const (
	minWeightPoints     = 3
	minExerciseSessions = 3
	weightTrendPoints   = 14
	prRateSessions      = 5
	sessionsPerWeek     = 2.5
	trailingWeeks       = 4
	// bodyWeightTolerance is how close to the target weight counts as reached.
	bodyWeightTolerance = 0.1
)

// History is everything a prediction may look at. It is cleaned once by the Predictor.
type History struct {
	Weights  []records.DatedMetric
	Workouts []records.WorkoutSet
}

func (h History) clean() History {
	return History{
		Weights:  records.FiniteMetrics(h.Weights),
		Workouts: records.CleanWorkouts(h.Workouts),
	}
}

type Prediction struct {
	GoalID        string           `json:"goalId"`
	Type          records.GoalType `json:"type"`
	Exercise      string           `json:"exercise,omitempty"`
	Likelihood    Likelihood       `json:"likelihood"`
	CurrentValue  float64          `json:"currentValue"`
	TargetValue   float64          `json:"targetValue"`
	DaysRemaining int              `json:"daysRemaining"`
	// ProgressPct is how much of the goal is done, 0-100.
	ProgressPct float64 `json:"progressPct"`
	// PredictedCompletion is nil for ongoing goals and when the trend never reaches the target.
	PredictedCompletion *time.Time `json:"predictedCompletion,omitempty"`
	Insights            []string   `json:"insights"`
}

// Timeline holds the calendar quantities every goal type derives from its dates.
type Timeline struct {
	DaysElapsed      int
	DaysTotal        int
	DaysRemaining    int
	TimeElapsedRatio float64
}

func NewTimeline(goal records.Goal, now time.Time) Timeline {
	elapsed := max(1, records.DaysBetween(goal.CreatedDate, now))
	total := max(1, records.DaysBetween(goal.CreatedDate, goal.TargetDate))
	return Timeline{
		DaysElapsed:      elapsed,
		DaysTotal:        total,
		DaysRemaining:    max(0, records.DaysBetween(now, goal.TargetDate)),
		TimeElapsedRatio: float64(elapsed) / float64(total),
	}
}

func (t Timeline) weeksRemaining() float64 {
	return float64(t.DaysRemaining) / 7
}

// PredictFunc predicts one goal type. History is already cleaned and sorted.
type PredictFunc func(goal records.Goal, history History, timeline Timeline, now time.Time) (Prediction, error)

type Predictor struct {
	strategies  map[records.GoalType]PredictFunc
	fallback    PredictFunc
	concurrency int
}

// NewPredictor returns a predictor for the built-in goal types.
// concurrency bounds how many goals PredictAll evaluates at once.
func NewPredictor(concurrency int) *Predictor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Predictor{
		strategies: map[records.GoalType]PredictFunc{
			records.GoalTypeBodyWeight: predictBodyWeight,
			records.GoalTypeExercisePR: predictExercisePR,
			records.GoalTypeFrequency:  predictFrequency,
			records.GoalTypeVolume:     predictVolume,
		},
		fallback:    predictGeneric,
		concurrency: concurrency,
	}
}

// WithStrategy registers (or replaces) the prediction for a goal type.
func (p *Predictor) WithStrategy(goalType records.GoalType, fn PredictFunc) *Predictor {
	p.strategies[goalType] = fn
	return p
}

// Predict validates the goal and runs the prediction for its type. Unknown
// types use the time-elapsed projection.
func (p *Predictor) Predict(goal records.Goal, history History, now time.Time) (Prediction, error) {
	if err := goal.Validate(); err != nil {
		return Prediction{}, err
	}
	fn, ok := p.strategies[goal.Type]
	if !ok {
		fn = p.fallback
	}
	return fn(goal, history.clean(), NewTimeline(goal, now), now)
}

func newPrediction(goal records.Goal, timeline Timeline) Prediction {
	return Prediction{
		GoalID:        goal.ID,
		Type:          goal.Type,
		Exercise:      goal.ExerciseName,
		CurrentValue:  goal.CurrentValue,
		TargetValue:   goal.TargetValue,
		DaysRemaining: timeline.DaysRemaining,
	}
}

// ratioLikelihood buckets how much of the required pace is being achieved.
func ratioLikelihood(ratio float64) Likelihood {
	switch {
	case ratio >= 0.9:
		return LikelihoodVeryLikely
	case ratio >= 0.7:
		return LikelihoodLikely
	case ratio >= 0.5:
		return LikelihoodPossible
	default:
		return LikelihoodUnlikely
	}
}

// progressPct is the share of the distance from start to target already covered.
func progressPct(start, current, target float64) float64 {
	if start == target {
		if current == target {
			return 100
		}
		return 0
	}
	pct := (current - start) / (target - start) * 100
	return math.Max(0, math.Min(100, pct))
}

func completionAfterWeeks(now time.Time, weeks float64) *time.Time {
	if weeks < 0 || math.IsInf(weeks, 0) || math.IsNaN(weeks) {
		return nil
	}
	at := records.Day(now).AddDate(0, 0, int(math.Ceil(weeks*7)))
	return &at
}

func insufficient(p Prediction, format string, args ...any) Prediction {
	p.Likelihood = LikelihoodInsufficientData
	p.Insights = []string{fmt.Sprintf(format, args...)}
	return p
}
