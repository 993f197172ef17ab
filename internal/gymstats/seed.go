package gymstats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
)

type seedExercise struct {
	name        string
	startWeight float64
	weeklyGain  float64
	bodyweight  bool
}

var seedExercises = []seedExercise{
	{name: "squat", startWeight: 80, weeklyGain: 2.5},
	{name: "bench press", startWeight: 60, weeklyGain: 1.25},
	{name: "deadlift", startWeight: 100, weeklyGain: 2.5},
	{name: "overhead press", startWeight: 40, weeklyGain: 0.5},
	{name: "pull-ups", bodyweight: true},
}

type SeedParams struct {
	UserID string
	Days   int
	Now    time.Time
	// Faker drives all randomness, so a fixed seed gives the same history.
	Faker *gofakeit.Faker
}

type SeedSummary struct {
	Workouts int `json:"workouts"`
	Weights  int `json:"weights"`
	Goals    int `json:"goals"`
}

// SeedStore fills store with a plausible training history for one user:
// body weight logs, three or so sessions a week and one goal of each type.
func SeedStore(ctx context.Context, store records.Store, params SeedParams) (*SeedSummary, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("%w: seed user id missing", records.ErrInvalidInput)
	}
	if params.Days <= 0 {
		return nil, fmt.Errorf("%w: seed days must be > 0, got %d", records.ErrInvalidInput, params.Days)
	}
	f := params.Faker
	if f == nil {
		f = gofakeit.New(0)
	}

	summary := &SeedSummary{}
	start := records.Day(params.Now).AddDate(0, 0, -params.Days+1)
	bodyWeight := f.Float64Range(72, 95)
	weightDrift := f.Float64Range(-0.06, 0.04)

	for d := 0; d < params.Days; d++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		day := start.AddDate(0, 0, d)
		bodyWeight += weightDrift + f.Float64Range(-0.3, 0.3)

		if f.Float64() < 0.8 {
			if err := store.AddWeight(ctx, params.UserID, records.DatedMetric{
				Date:  day.Add(7 * time.Hour),
				Value: math.Round(bodyWeight*10) / 10,
			}); err != nil {
				return summary, fmt.Errorf("seed weight: %w", err)
			}
			summary.Weights++
		}

		if f.Float64() >= 0.45 {
			continue
		}
		weeks := float64(d) / 7
		for _, i := range f.Rand.Perm(len(seedExercises))[:3] {
			ex := seedExercises[i]
			w := records.WorkoutSet{
				UserID:   params.UserID,
				Date:     day.Add(18 * time.Hour),
				Exercise: ex.name,
				Sets:     f.IntRange(3, 5),
				Reps:     f.IntRange(5, 8),
			}
			if !ex.bodyweight {
				w.Weight = roundToPlate(ex.startWeight + ex.weeklyGain*weeks + f.Float64Range(-5, 2.5))
			}
			if _, err := store.AddWorkout(ctx, w); err != nil {
				return summary, fmt.Errorf("seed workout: %w", err)
			}
			summary.Workouts++
		}
	}

	created := records.Day(params.Now).AddDate(0, 0, -params.Days/2)
	target := records.Day(params.Now).AddDate(0, 0, 60)
	squat := seedExercises[0]
	for _, g := range []records.Goal{
		{Type: records.GoalTypeBodyWeight, TargetValue: math.Round(bodyWeight) - 3},
		{
			Type:         records.GoalTypeExercisePR,
			ExerciseName: squat.name,
			TargetValue:  roundToPlate(squat.startWeight + squat.weeklyGain*float64(params.Days)/7 + 15),
		},
		{Type: records.GoalTypeFrequency, TargetValue: 3},
		{Type: records.GoalTypeVolume, TargetValue: float64(f.IntRange(40, 80)) * 1000},
	} {
		g.UserID = params.UserID
		g.CreatedDate = created
		g.TargetDate = target
		if _, err := store.AddGoal(ctx, g); err != nil {
			return summary, fmt.Errorf("seed goal %s: %w", g.Type, err)
		}
		summary.Goals++
	}

	log.Debugf("seeded user [%s]: %d workouts, %d weights, %d goals",
		params.UserID, summary.Workouts, summary.Weights, summary.Goals)
	return summary, nil
}

func roundToPlate(w float64) float64 {
	if w < 0 {
		return 0
	}
	return math.Round(w/2.5) * 2.5
}
