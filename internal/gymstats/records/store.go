package records

import "context"

// Store is what the service needs from a record backend.
type Store interface {
	ListWorkouts(ctx context.Context, userID string, params ListWorkoutsParams) ([]WorkoutSet, error)
	ListWeights(ctx context.Context, userID string, params ListWeightsParams) ([]DatedMetric, error)
	ListGoals(ctx context.Context, userID string, status GoalStatus) ([]Goal, error)
	UpdateGoalProgress(ctx context.Context, goalID string, value float64) error
	AddWorkout(ctx context.Context, workout WorkoutSet) (*WorkoutSet, error)
	AddWeight(ctx context.Context, userID string, metric DatedMetric) error
	AddGoal(ctx context.Context, goal Goal) (*Goal, error)
}

var (
	_ Store = (*Repo)(nil)
	_ Store = (*SQLiteStore)(nil)
)
