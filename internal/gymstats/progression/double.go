package progression

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/gymstats/timeseries"
)

const successWindow = 5

// DoubleProgression adds reps inside the category rep range, and only once the
// ceiling is reached adds weight (and drops back to the range floor).
type DoubleProgression struct {
	cfg        Config
	classifier *Classifier
}

func NewDoubleProgression(cfg Config, classifier *Classifier) *DoubleProgression {
	return &DoubleProgression{
		cfg:        cfg,
		classifier: classifier,
	}
}

func (s *DoubleProgression) Name() string {
	return StrategyDouble
}

func (s *DoubleProgression) Suggest(exercise string, history []records.WorkoutSet) records.ProgressionSuggestion {
	cat := s.classifier.Classify(exercise)
	sessions := sessionsMostRecentFirst(exercise, history)
	if len(sessions) == 0 {
		suggestion := firstWorkout(exercise, s.Name(), cat)
		suggestion.Reps = cat.RepMin
		return suggestion
	}

	last := sessions[0]
	suggestion := records.ProgressionSuggestion{
		Exercise: exercise,
		Sets:     last.Sets,
		Strategy: s.Name(),
	}

	switch {
	case last.Reps >= cat.RepMax:
		modifier, why := s.modifier(cat, sessions, history, exercise)
		increment := math.Max(last.Weight*cat.IncrementPct*modifier, cat.MinIncrement)
		suggestion.Weight = roundToHalf(last.Weight + increment)
		suggestion.Reps = cat.RepMin
		suggestion.Status = records.SuggestionProgressing
		suggestion.Rationale = fmt.Sprintf(
			"Reached the top of the %d-%d rep range at %.1f: move to %.1f for %d reps (%s).",
			cat.RepMin, cat.RepMax, last.Weight, suggestion.Weight, cat.RepMin, why,
		)
	case last.Reps >= cat.RepMin:
		suggestion.Weight = last.Weight
		suggestion.Reps = last.Reps + 1
		suggestion.Status = records.SuggestionProgressing
		suggestion.Rationale = fmt.Sprintf(
			"%d reps at %.1f is inside the %d-%d range: add a rep before adding weight.",
			last.Reps, last.Weight, cat.RepMin, cat.RepMax,
		)
	case len(sessions) > 1 && sessions[1].Reps < cat.RepMin:
		suggestion.Weight = roundToHalf(last.Weight * s.cfg.DeloadFactor)
		suggestion.Reps = cat.RepMin
		suggestion.Status = records.SuggestionDeloading
		suggestion.Rationale = fmt.Sprintf(
			"Two sessions in a row below %d reps: deload to %.1f and rebuild the reps.",
			cat.RepMin, suggestion.Weight,
		)
	default:
		suggestion.Weight = last.Weight
		suggestion.Reps = cat.RepMin
		suggestion.Status = records.SuggestionRetry
		suggestion.Rationale = fmt.Sprintf(
			"%d reps at %.1f is below the %d rep floor: retry the same weight.",
			last.Reps, last.Weight, cat.RepMin,
		)
	}

	return suggestion
}

// modifier scales the weight increment by the recent success rate and the weekly volume trend.
func (s *DoubleProgression) modifier(
	cat Category,
	mostRecentFirst []records.WorkoutSet,
	history []records.WorkoutSet,
	exercise string,
) (float64, string) {
	window := mostRecentFirst
	if len(window) > successWindow {
		window = window[:successWindow]
	}
	inRange := 0
	for _, w := range window {
		if w.Reps >= cat.RepMin && w.Reps <= cat.RepMax {
			inRange++
		}
	}
	successRate := float64(inRange) / float64(len(window))

	modifier := 1.0
	switch {
	case successRate >= 0.8:
		modifier = 1.2
	case successRate < 0.5:
		modifier = 0.5
	}

	trend := timeseries.LinearTrend(weeklyVolumes(records.FilterExercise(history, exercise)))
	switch trend.Direction {
	case records.DirectionIncreasing:
		modifier *= 1.1
	case records.DirectionDecreasing:
		modifier *= 0.8
	}

	return modifier, fmt.Sprintf("success rate %.0f%%, weekly volume %s", successRate*100, trend.Direction)
}

// weeklyVolumes sums volume per ISO week, oldest week first.
func weeklyVolumes(workouts []records.WorkoutSet) []float64 {
	type isoWeek struct{ year, week int }
	byWeek := make(map[isoWeek]float64)
	firstDay := make(map[isoWeek]time.Time)
	for _, w := range workouts {
		y, wk := w.Date.UTC().ISOWeek()
		key := isoWeek{y, wk}
		byWeek[key] += w.Volume()
		if d, ok := firstDay[key]; !ok || w.Date.Before(d) {
			firstDay[key] = w.Date
		}
	}

	keys := make([]isoWeek, 0, len(byWeek))
	for k := range byWeek {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return firstDay[keys[i]].Before(firstDay[keys[j]])
	})

	volumes := make([]float64, len(keys))
	for i, k := range keys {
		volumes[i] = byWeek[k]
	}
	return volumes
}
