package goals

import (
	"fmt"
	"math"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/gymstats/timeseries"
)

func predictBodyWeight(goal records.Goal, history History, tl Timeline, now time.Time) (Prediction, error) {
	p := newPrediction(goal, tl)
	weights := metricsUpTo(history.Weights, now)
	if len(weights) < minWeightPoints {
		return insufficient(p, "Need at least %d weight entries to project a trend, have %d.", minWeightPoints, len(weights)), nil
	}

	current := weights[len(weights)-1].Value
	p.CurrentValue = current
	p.ProgressPct = progressPct(startingWeight(weights, goal.CreatedDate), current, goal.TargetValue)

	remaining := goal.TargetValue - current
	if math.Abs(remaining) <= bodyWeightTolerance {
		return reached(p, now, fmt.Sprintf("Target weight %.1f reached (currently %.1f).", goal.TargetValue, current)), nil
	}

	trailing := weights[max(0, len(weights)-weightTrendPoints):]
	trend := timeseries.DatedTrend(trailing)
	weeklyTrend := trend.Slope * 7

	if tl.DaysRemaining == 0 {
		p.Likelihood = LikelihoodUnlikely
		p.Insights = []string{fmt.Sprintf("Target date passed with %.1f still to go.", math.Abs(remaining))}
		return p, nil
	}

	weeklyNeeded := remaining / tl.weeksRemaining()
	switch gap := math.Abs(weeklyTrend - weeklyNeeded); {
	case gap < 0.5:
		p.Likelihood = LikelihoodVeryLikely
	case gap < 1:
		p.Likelihood = LikelihoodLikely
	case gap < 2:
		p.Likelihood = LikelihoodPossible
	default:
		p.Likelihood = LikelihoodUnlikely
	}

	p.Insights = []string{
		fmt.Sprintf("Weight is changing %+.2f per week over the last %d entries.", weeklyTrend, len(trailing)),
		fmt.Sprintf("Reaching %.1f in %d days needs %+.2f per week.", goal.TargetValue, tl.DaysRemaining, weeklyNeeded),
	}
	if weeklyTrend != 0 && math.Signbit(weeklyTrend) == math.Signbit(remaining) {
		p.PredictedCompletion = completionAfterWeeks(now, remaining/weeklyTrend)
	} else {
		p.Insights = append(p.Insights, "At the current trend the target weight is not reached.")
	}
	return p, nil
}

func predictExercisePR(goal records.Goal, history History, tl Timeline, now time.Time) (Prediction, error) {
	p := newPrediction(goal, tl)
	sessions := topSetsUpTo(history.Workouts, goal.ExerciseName, now)
	if len(sessions) < minExerciseSessions {
		return insufficient(p, "Need at least %d sessions of %s, have %d.", minExerciseSessions, goal.ExerciseName, len(sessions)), nil
	}

	best := 0.0
	for _, s := range sessions {
		best = math.Max(best, s.Value)
	}
	p.CurrentValue = best
	p.ProgressPct = progressPct(startingWeight(sessions, goal.CreatedDate), best, goal.TargetValue)
	if best >= goal.TargetValue {
		return reached(p, now, fmt.Sprintf("Lifted %.1f on %s, target %.1f reached.", best, goal.ExerciseName, goal.TargetValue)), nil
	}

	recent := sessions[max(0, len(sessions)-prRateSessions):]
	perSession := (recent[len(recent)-1].Value - recent[0].Value) / float64(len(recent)-1)
	weeklyRate := perSession * sessionsPerWeek

	if tl.DaysRemaining == 0 {
		p.Likelihood = LikelihoodUnlikely
		p.Insights = []string{fmt.Sprintf("Target date passed %.1f short of %.1f.", goal.TargetValue-best, goal.TargetValue)}
		return p, nil
	}

	required := (goal.TargetValue - best) / tl.weeksRemaining()
	switch ratio := weeklyRate / required; {
	case ratio >= 0.8:
		p.Likelihood = LikelihoodVeryLikely
	case ratio >= 0.5:
		p.Likelihood = LikelihoodLikely
	case ratio > 0:
		p.Likelihood = LikelihoodPossible
	default:
		p.Likelihood = LikelihoodUnlikely
	}

	p.Insights = []string{
		fmt.Sprintf("%s is progressing about %+.2f per week over the last %d sessions.", goal.ExerciseName, weeklyRate, len(recent)),
		fmt.Sprintf("%.1f more needed in %d days (%.2f per week).", goal.TargetValue-best, tl.DaysRemaining, required),
	}
	if weeklyRate > 0 {
		p.PredictedCompletion = completionAfterWeeks(now, (goal.TargetValue-best)/weeklyRate)
	} else {
		p.Insights = append(p.Insights, "No recent progress: consider a deload or a program change.")
	}
	return p, nil
}

func predictFrequency(goal records.Goal, history History, tl Timeline, now time.Time) (Prediction, error) {
	if goal.TargetValue <= 0 {
		return Prediction{}, fmt.Errorf("%w: frequency goal %s needs a target > 0", records.ErrInvalidInput, goal.ID)
	}
	p := newPrediction(goal, tl)
	current := currentFrequency(history.Workouts, now)
	p.CurrentValue = current

	ratio := current / goal.TargetValue
	p.ProgressPct = math.Min(100, ratio*100)
	p.Likelihood = ratioLikelihood(ratio)
	p.Insights = []string{
		fmt.Sprintf("Training %.2f days per week over the last %d weeks, target %.1f.", current, trailingWeeks, goal.TargetValue),
	}
	if ratio < 1 {
		p.Insights = append(p.Insights, fmt.Sprintf("%.1f more sessions per week needed.", goal.TargetValue-current))
	}
	return p, nil
}

func predictVolume(goal records.Goal, history History, tl Timeline, now time.Time) (Prediction, error) {
	if goal.TargetValue <= 0 {
		return Prediction{}, fmt.Errorf("%w: volume goal %s needs a target > 0", records.ErrInvalidInput, goal.ID)
	}
	p := newPrediction(goal, tl)
	accumulated := volumeSince(history.Workouts, goal.CreatedDate, now)
	p.CurrentValue = accumulated
	p.ProgressPct = math.Min(100, accumulated/goal.TargetValue*100)
	if accumulated >= goal.TargetValue {
		return reached(p, now, fmt.Sprintf("Accumulated %.0f of %.0f volume.", accumulated, goal.TargetValue)), nil
	}

	remaining := goal.TargetValue - accumulated
	if tl.DaysRemaining == 0 {
		p.Likelihood = LikelihoodUnlikely
		p.Insights = []string{fmt.Sprintf("Target date passed with %.0f volume to go.", remaining)}
		return p, nil
	}

	weekly := trailingWeeklyVolume(history.Workouts, now)
	required := remaining / tl.weeksRemaining()
	p.Likelihood = ratioLikelihood(weekly / required)
	p.Insights = []string{
		fmt.Sprintf("Averaging %.0f volume per week over the last %d weeks.", weekly, trailingWeeks),
		fmt.Sprintf("%.0f per week needed to add the remaining %.0f in %d days.", required, remaining, tl.DaysRemaining),
	}
	if weekly > 0 {
		p.PredictedCompletion = completionAfterWeeks(now, remaining/weekly)
	}
	return p, nil
}

// predictGeneric projects the current progress linearly over the goal timeline.
func predictGeneric(goal records.Goal, _ History, tl Timeline, _ time.Time) (Prediction, error) {
	p := newPrediction(goal, tl)
	progress := 0.0
	if goal.TargetValue != 0 {
		progress = goal.CurrentValue / goal.TargetValue
	}
	p.ProgressPct = math.Max(0, math.Min(100, progress*100))

	expected := progress / tl.TimeElapsedRatio
	switch {
	case expected >= 0.95:
		p.Likelihood = LikelihoodVeryLikely
	case expected >= 0.8:
		p.Likelihood = LikelihoodLikely
	case expected >= 0.6:
		p.Likelihood = LikelihoodPossible
	default:
		p.Likelihood = LikelihoodUnlikely
	}
	p.Insights = []string{
		fmt.Sprintf(
			"%.0f%% done with %.0f%% of the time elapsed: on pace for about %.0f%% by the target date.",
			progress*100, tl.TimeElapsedRatio*100, expected*100,
		),
	}
	return p, nil
}

func reached(p Prediction, now time.Time, insight string) Prediction {
	p.Likelihood = LikelihoodVeryLikely
	p.ProgressPct = 100
	at := records.Day(now)
	p.PredictedCompletion = &at
	p.Insights = []string{insight}
	return p
}

func metricsUpTo(metrics []records.DatedMetric, now time.Time) []records.DatedMetric {
	today := records.Day(now)
	var out []records.DatedMetric
	for _, m := range metrics {
		if !records.Day(m.Date).After(today) {
			out = append(out, m)
		}
	}
	return out
}

// topSetsUpTo returns the heaviest weight per training day for the exercise, oldest first.
func topSetsUpTo(workouts []records.WorkoutSet, exercise string, now time.Time) []records.DatedMetric {
	today := records.Day(now)
	var out []records.DatedMetric
	for _, w := range records.FilterExercise(workouts, exercise) {
		day := records.Day(w.Date)
		if day.After(today) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(day) {
			out[n-1].Value = math.Max(out[n-1].Value, w.Weight)
			continue
		}
		out = append(out, records.DatedMetric{Date: day, Value: w.Weight})
	}
	return out
}

// startingWeight is the last value on or before the creation day, or the first value after it.
func startingWeight(series []records.DatedMetric, created time.Time) float64 {
	start := series[0].Value
	createdDay := records.Day(created)
	for _, m := range series {
		if records.Day(m.Date).After(createdDay) {
			break
		}
		start = m.Value
	}
	return start
}

func inTrailingWindow(date, now time.Time) bool {
	today := records.Day(now)
	day := records.Day(date)
	return !day.After(today) && day.After(today.AddDate(0, 0, -7*trailingWeeks))
}

func currentFrequency(workouts []records.WorkoutSet, now time.Time) float64 {
	days := 0
	for _, d := range records.TrainingDays(workouts) {
		if inTrailingWindow(d, now) {
			days++
		}
	}
	return float64(days) / trailingWeeks
}

func trailingWeeklyVolume(workouts []records.WorkoutSet, now time.Time) float64 {
	total := 0.0
	for _, w := range workouts {
		if inTrailingWindow(w.Date, now) {
			total += w.Volume()
		}
	}
	return total / trailingWeeks
}

func volumeSince(workouts []records.WorkoutSet, created, now time.Time) float64 {
	from, to := records.Day(created), records.Day(now)
	total := 0.0
	for _, w := range workouts {
		day := records.Day(w.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		total += w.Volume()
	}
	return total
}
