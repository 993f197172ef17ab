package records_test

import (
	"math"
	"testing"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)

func TestWorkoutSet_Derived(t *testing.T) {
	w := records.WorkoutSet{Sets: 3, Reps: 10, Weight: 60}
	assert.Equal(t, 1800.0, w.Volume())
	assert.InDelta(t, 60/(1.0278-0.278), w.EstimatedOneRepMax(), 1e-9)

	single := records.WorkoutSet{Sets: 1, Reps: 1, Weight: 140}
	assert.Equal(t, 140.0, single.EstimatedOneRepMax())
}

func TestWorkoutSet_Validate(t *testing.T) {
	valid := records.WorkoutSet{Date: day0, Exercise: "squat", Sets: 3, Reps: 5, Weight: 100}
	require.NoError(t, valid.Validate())

	bodyweight := valid
	bodyweight.Weight = 0
	require.NoError(t, bodyweight.Validate())

	testCases := []struct {
		name   string
		modify func(w *records.WorkoutSet)
	}{
		{"no date", func(w *records.WorkoutSet) { w.Date = time.Time{} }},
		{"no exercise", func(w *records.WorkoutSet) { w.Exercise = "  " }},
		{"zero sets", func(w *records.WorkoutSet) { w.Sets = 0 }},
		{"negative reps", func(w *records.WorkoutSet) { w.Reps = -1 }},
		{"negative weight", func(w *records.WorkoutSet) { w.Weight = -5 }},
		{"nan weight", func(w *records.WorkoutSet) { w.Weight = math.NaN() }},
		{"inf weight", func(w *records.WorkoutSet) { w.Weight = math.Inf(1) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := valid
			tc.modify(&w)
			assert.ErrorIs(t, w.Validate(), records.ErrInvalidInput)
		})
	}
}

func TestGoal_Validate(t *testing.T) {
	g := records.Goal{
		ID:          "g1",
		Type:        records.GoalTypeBodyWeight,
		TargetValue: 80,
		CreatedDate: day0,
		TargetDate:  day0.AddDate(0, 2, 0),
	}
	require.NoError(t, g.Validate())

	sameDay := g
	sameDay.TargetDate = day0.Add(-time.Hour)
	require.NoError(t, sameDay.Validate(), "same calendar day is allowed")

	backwards := g
	backwards.TargetDate = day0.AddDate(0, 0, -1)
	assert.ErrorIs(t, backwards.Validate(), records.ErrInvalidInput)

	pr := g
	pr.Type = records.GoalTypeExercisePR
	assert.ErrorIs(t, pr.Validate(), records.ErrInvalidInput)
	pr.ExerciseName = "bench press"
	assert.NoError(t, pr.Validate())

	nan := g
	nan.TargetValue = math.NaN()
	assert.ErrorIs(t, nan.Validate(), records.ErrInvalidInput)
}

func TestDayHelpers(t *testing.T) {
	late := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	early := time.Date(2025, 3, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, records.DaysBetween(late, early))
	assert.Equal(t, -1, records.DaysBetween(early, late))
	assert.Equal(t, 0, records.DaysBetween(late, late.Add(-time.Hour)))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), records.Day(late))
}

func TestFiniteMetrics(t *testing.T) {
	in := []records.DatedMetric{
		{Date: day0.AddDate(0, 0, 2), Value: 81},
		{Date: day0, Value: 82},
		{Date: day0.AddDate(0, 0, 1), Value: math.NaN()},
		{Value: 80},
		{Date: day0.AddDate(0, 0, 3), Value: math.Inf(-1)},
	}
	out := records.FiniteMetrics(in)
	require.Len(t, out, 2)
	assert.Equal(t, 82.0, out[0].Value)
	assert.Equal(t, 81.0, out[1].Value)
	// input untouched
	assert.Equal(t, 81.0, in[0].Value)
}

func TestCleanWorkoutsAndSeries(t *testing.T) {
	workouts := []records.WorkoutSet{
		{ID: 3, Date: day0.AddDate(0, 0, 2), Exercise: "Bench Press", Sets: 3, Reps: 5, Weight: 80},
		{ID: 1, Date: day0, Exercise: "bench  press", Sets: 3, Reps: 5, Weight: 75},
		{ID: 2, Date: day0.Add(time.Hour), Exercise: "Squat", Sets: 5, Reps: 5, Weight: 100},
		{ID: 4, Date: day0, Exercise: "Squat", Sets: 0, Reps: 5, Weight: 100},
	}

	clean := records.CleanWorkouts(workouts)
	require.Len(t, clean, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{clean[0].ID, clean[1].ID, clean[2].ID})

	bench := records.FilterExercise(clean, "BENCH press")
	require.Len(t, bench, 2)

	grouped := records.GroupByExercise(clean)
	assert.Len(t, grouped["bench press"], 2)
	assert.Len(t, grouped["squat"], 1)

	daily := records.DailyVolume(clean)
	require.Len(t, daily, 2)
	assert.Equal(t, 15*75.0+25*100.0, daily[0].Value)
	assert.Equal(t, 15*80.0, daily[1].Value)

	days := records.TrainingDays(clean)
	require.Len(t, days, 2)
	assert.True(t, days[0].Before(days[1]))
}
