package records

import (
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// FiniteMetrics returns the valid metrics (finite value, set date) sorted by date.
func FiniteMetrics(metrics []DatedMetric) []DatedMetric {
	out := make([]DatedMetric, 0, len(metrics))
	for _, m := range metrics {
		if err := m.Validate(); err != nil {
			log.Tracef("dropping metric: %s", err)
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// CleanWorkouts drops invalid workout rows and returns the rest sorted by date.
func CleanWorkouts(workouts []WorkoutSet) []WorkoutSet {
	out := make([]WorkoutSet, 0, len(workouts))
	for _, w := range workouts {
		if err := w.Validate(); err != nil {
			log.Tracef("dropping workout %d: %s", w.ID, err)
			continue
		}
		out = append(out, w)
	}
	SortWorkoutsByDate(out)
	return out
}

// SortWorkoutsByDate sorts oldest first; same instant ties keep ID order.
func SortWorkoutsByDate(workouts []WorkoutSet) {
	sort.SliceStable(workouts, func(i, j int) bool {
		if !workouts[i].Date.Equal(workouts[j].Date) {
			return workouts[i].Date.Before(workouts[j].Date)
		}
		return workouts[i].ID < workouts[j].ID
	})
}

// NormalizeExercise is the canonical form used to compare exercise names.
func NormalizeExercise(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func FilterExercise(workouts []WorkoutSet, exercise string) []WorkoutSet {
	want := NormalizeExercise(exercise)
	var out []WorkoutSet
	for _, w := range workouts {
		if NormalizeExercise(w.Exercise) == want {
			out = append(out, w)
		}
	}
	return out
}

// GroupByExercise keys workouts by normalized exercise name. Order inside each group is preserved.
func GroupByExercise(workouts []WorkoutSet) map[string][]WorkoutSet {
	grouped := make(map[string][]WorkoutSet)
	for _, w := range workouts {
		key := NormalizeExercise(w.Exercise)
		grouped[key] = append(grouped[key], w)
	}
	return grouped
}

// DailyVolume sums set volume per calendar day, oldest first.
func DailyVolume(workouts []WorkoutSet) []DatedMetric {
	byDay := make(map[time.Time]float64)
	for _, w := range workouts {
		byDay[Day(w.Date)] += w.Volume()
	}
	out := make([]DatedMetric, 0, len(byDay))
	for day, volume := range byDay {
		out = append(out, DatedMetric{Date: day, Value: volume})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// TrainingDays returns the distinct calendar days with at least one workout, oldest first.
func TrainingDays(workouts []WorkoutSet) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, w := range workouts {
		d := Day(w.Date)
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}
