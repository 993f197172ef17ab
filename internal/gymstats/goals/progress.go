package goals

import (
	"math"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"
)

// Progress computes the value to store as the goal's CurrentValue as of now.
// ok is false when the history holds nothing to measure the goal by; the
// caller then keeps the stored value.
func Progress(goal records.Goal, history History, now time.Time) (value float64, ok bool) {
	history = history.clean()
	switch goal.Type {
	case records.GoalTypeBodyWeight:
		weights := metricsUpTo(history.Weights, now)
		if len(weights) == 0 {
			return goal.CurrentValue, false
		}
		return weights[len(weights)-1].Value, true
	case records.GoalTypeExercisePR:
		best, found := 0.0, false
		for _, s := range topSetsUpTo(history.Workouts, goal.ExerciseName, now) {
			if records.Day(s.Date).Before(records.Day(goal.CreatedDate)) {
				continue
			}
			best, found = math.Max(best, s.Value), true
		}
		if !found {
			return goal.CurrentValue, false
		}
		return best, true
	case records.GoalTypeFrequency:
		return currentFrequency(history.Workouts, now), true
	case records.GoalTypeVolume:
		return volumeSince(history.Workouts, goal.CreatedDate, now), true
	default:
		return goal.CurrentValue, false
	}
}

// Achieved reports whether value meets the goal target. Body weight goals are
// met within a small tolerance in either direction.
func Achieved(goal records.Goal, value float64) bool {
	if goal.Type == records.GoalTypeBodyWeight {
		return math.Abs(goal.TargetValue-value) <= bodyWeightTolerance
	}
	return value >= goal.TargetValue
}
