package plateau_test

import (
	"testing"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/plateau"
	"github.com/2beens/gymstats/internal/gymstats/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 2, 3, 17, 0, 0, 0, time.UTC)

func sessionsWith(volumes, intensities []float64, everyDays int) []plateau.Session {
	sessions := make([]plateau.Session, len(volumes))
	for i := range volumes {
		sessions[i] = plateau.Session{
			Date:      records.Day(start.AddDate(0, 0, i*everyDays)),
			Volume:    volumes[i],
			Intensity: intensities[i],
		}
	}
	return sessions
}

func TestBuildSessions_PerDay(t *testing.T) {
	workouts := []records.WorkoutSet{
		{ID: 1, Date: start, Exercise: "Squat", Sets: 1, Reps: 5, Weight: 100},
		{ID: 2, Date: start.Add(10 * time.Minute), Exercise: "squat", Sets: 2, Reps: 5, Weight: 110},
		{ID: 3, Date: start.AddDate(0, 0, 2), Exercise: "Squat", Sets: 3, Reps: 5, Weight: 112.5},
		{ID: 4, Date: start, Exercise: "Bench", Sets: 3, Reps: 5, Weight: 80},
	}

	sessions := plateau.BuildSessions(workouts, "SQUAT")
	require.Len(t, sessions, 2)
	assert.Equal(t, 110.0, sessions[0].Intensity)
	assert.Equal(t, 500.0+1100.0, sessions[0].Volume)
	assert.InDelta(t, 110/(1.0278-0.0278*5), sessions[0].EstimatedOneRepMax, 1e-9)
	assert.Equal(t, 112.5, sessions[1].Intensity)
}

func TestStickingPoints(t *testing.T) {
	d := plateau.NewDetector(plateau.DefaultConfig())

	assert.Empty(t, d.StickingPoints(sessionsWith([]float64{1, 1}, []float64{100, 100}, 2)), "fewer than 3 sessions")

	sessions := sessionsWith(
		[]float64{1000, 1100, 1200, 1300, 1400},
		[]float64{100, 100, 102, 110, 110},
		2,
	)
	points := d.StickingPoints(sessions)
	require.Len(t, points, 2)

	// session 2: |102 - 100| / 100 = 0.02
	assert.Equal(t, 2, points[0].SessionIndex)
	assert.InDelta(t, 0.02, points[0].RelativeChange, 1e-9)
	// session 3: |110 - 101| / 101 ≈ 0.089, not stuck; session 4: |110 - 106| / 106 ≈ 0.038
	assert.Equal(t, 4, points[1].SessionIndex)
	assert.InDelta(t, 106.0, points[1].ReferenceAvg, 1e-9)
}

func TestStickingPoints_ZeroAverageSkipped(t *testing.T) {
	d := plateau.NewDetector(plateau.Config{})
	sessions := sessionsWith([]float64{10, 10, 10}, []float64{0, 0, 0}, 1)
	assert.Empty(t, d.StickingPoints(sessions))
}

func TestPlateauPeriods(t *testing.T) {
	d := plateau.NewDetector(plateau.DefaultConfig())

	volumes := []float64{
		1000, 1010, 1020, // run 1 (sessions 0-2)
		1200,             // jump breaks it
		1300, 1310, 1305, 1300, // run 2 (sessions 4-7), still active
	}
	sessions := sessionsWith(volumes, make([]float64, len(volumes)), 3)

	periods := d.PlateauPeriods(sessions)
	require.Len(t, periods, 2)

	first := periods[0]
	assert.Equal(t, sessions[0].Date, first.StartDate)
	assert.Equal(t, sessions[2].Date, first.EndDate)
	assert.Equal(t, 3, first.Sessions)
	assert.Equal(t, 6, first.DurationDays)
	assert.InDelta(t, 1010.0, first.Value, 1e-9)
	assert.False(t, first.Active)

	second := periods[1]
	assert.Equal(t, 4, second.Sessions)
	assert.Equal(t, 9, second.DurationDays)
	assert.True(t, second.Active)
}

func TestPlateauPeriods_ZeroVolumeBreaksRun(t *testing.T) {
	d := plateau.NewDetector(plateau.DefaultConfig())
	sessions := sessionsWith([]float64{0, 0, 0}, []float64{0, 0, 0}, 1)
	assert.Empty(t, d.PlateauPeriods(sessions))
	assert.Empty(t, d.PlateauPeriods(sessions[:1]))
}

func TestDetect_ProgramVariation(t *testing.T) {
	var workouts []records.WorkoutSet
	// 6 sessions, every 3 days, identical volume -> active 15 day plateau
	for i := 0; i < 6; i++ {
		workouts = append(workouts, records.WorkoutSet{
			ID: i + 1, Date: start.AddDate(0, 0, i*3), Exercise: "Overhead Press", Sets: 3, Reps: 5, Weight: 50,
		})
	}
	// a single session exercise is skipped
	workouts = append(workouts, records.WorkoutSet{ID: 99, Date: start, Exercise: "curl", Sets: 3, Reps: 10, Weight: 12})
	// invalid rows are dropped
	workouts = append(workouts, records.WorkoutSet{ID: 100, Date: start, Exercise: "Overhead Press", Sets: 0, Reps: 5, Weight: 500})

	reports := plateau.NewDetector(plateau.DefaultConfig()).Detect(workouts)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "Overhead Press", r.Exercise)
	assert.Equal(t, 6, r.Sessions)
	require.Len(t, r.Plateaus, 1)
	assert.True(t, r.Plateaus[0].Active)
	assert.Equal(t, 15, r.Plateaus[0].DurationDays)
	assert.Len(t, r.StickingPoints, 4)
	assert.Equal(t, records.DirectionStable, r.IntensityTrend.Direction)
	require.NotEmpty(t, r.Recommendations)
	assert.Contains(t, r.Recommendations[0], "program variation")
}

func TestDetect_ShortActivePlateauNoVariation(t *testing.T) {
	workouts := []records.WorkoutSet{
		{ID: 1, Date: start, Exercise: "Row", Sets: 3, Reps: 8, Weight: 60},
		{ID: 2, Date: start.AddDate(0, 0, 3), Exercise: "Row", Sets: 3, Reps: 8, Weight: 62.5},
		{ID: 3, Date: start.AddDate(0, 0, 6), Exercise: "Row", Sets: 3, Reps: 8, Weight: 62.5},
	}
	reports := plateau.NewDetector(plateau.DefaultConfig()).Detect(workouts)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Plateaus, 1)
	assert.Equal(t, 3, reports[0].Plateaus[0].DurationDays)
	for _, rec := range reports[0].Recommendations {
		assert.NotContains(t, rec, "program variation")
	}
}
