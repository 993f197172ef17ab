package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresSchema creates the record tables used by Repo.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS public.workout_set
(
    id           SERIAL PRIMARY KEY,
    user_id      VARCHAR          NOT NULL,
    performed_at TIMESTAMPTZ      NOT NULL,
    exercise     VARCHAR          NOT NULL,
    sets         INTEGER          NOT NULL CHECK (sets > 0),
    reps         INTEGER          NOT NULL CHECK (reps > 0),
    weight       DOUBLE PRECISION NOT NULL CHECK (weight >= 0)
);
CREATE INDEX IF NOT EXISTS ix_workout_set_user_performed_at ON public.workout_set (user_id, performed_at);

CREATE TABLE IF NOT EXISTS public.body_weight
(
    id          SERIAL PRIMARY KEY,
    user_id     VARCHAR          NOT NULL,
    measured_at TIMESTAMPTZ      NOT NULL,
    weight      DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_body_weight_user_measured_at ON public.body_weight (user_id, measured_at);

CREATE TABLE IF NOT EXISTS public.goal
(
    id            VARCHAR PRIMARY KEY,
    user_id       VARCHAR          NOT NULL,
    type          VARCHAR          NOT NULL,
    target_value  DOUBLE PRECISION NOT NULL,
    current_value DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ      NOT NULL,
    target_date   TIMESTAMPTZ      NOT NULL,
    exercise_name VARCHAR          NOT NULL DEFAULT '',
    status        VARCHAR          NOT NULL DEFAULT 'active',
    updated_at    TIMESTAMPTZ      NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_goal_user_status ON public.goal (user_id, status);
`

type ListWorkoutsParams struct {
	// Exercise matches by NormalizeExercise, like FilterExercise.
	Exercise string
	From     *time.Time
	To       *time.Time
}

type ListWeightsParams struct {
	From *time.Time
	To   *time.Time
}

// Repo is the Postgres backed record store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("create record tables: %w", err)
	}
	return nil
}

type queryBuilder struct {
	where []string
	args  []any
}

func (q *queryBuilder) add(cond string, arg any) {
	q.args = append(q.args, arg)
	q.where = append(q.where, fmt.Sprintf(cond, len(q.args)))
}

func (q *queryBuilder) clause() string {
	return strings.Join(q.where, " AND ")
}

func (r *Repo) ListWorkouts(ctx context.Context, userID string, params ListWorkoutsParams) (_ []WorkoutSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list_workouts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	qb := &queryBuilder{}
	qb.add("user_id = $%d", userID)
	if params.From != nil {
		qb.add("performed_at >= $%d", *params.From)
	}
	if params.To != nil {
		qb.add("performed_at <= $%d", *params.To)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, performed_at, exercise, sets, reps, weight
			FROM workout_set
			WHERE `+qb.clause()+`
			ORDER BY performed_at, id;`,
		qb.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	var workouts []WorkoutSet
	for rows.Next() {
		var w WorkoutSet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Exercise, &w.Sets, &w.Reps, &w.Weight); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if params.Exercise != "" {
		workouts = FilterExercise(workouts, params.Exercise)
	}

	span.SetAttributes(attribute.Int("workouts.count", len(workouts)))
	return workouts, nil
}

func (r *Repo) ListWeights(ctx context.Context, userID string, params ListWeightsParams) (_ []DatedMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list_weights")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	qb := &queryBuilder{}
	qb.add("user_id = $%d", userID)
	if params.From != nil {
		qb.add("measured_at >= $%d", *params.From)
	}
	if params.To != nil {
		qb.add("measured_at <= $%d", *params.To)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT measured_at, weight FROM body_weight WHERE `+qb.clause()+` ORDER BY measured_at, id;`,
		qb.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query weights: %w", err)
	}
	defer rows.Close()

	var weights []DatedMetric
	for rows.Next() {
		var m DatedMetric
		if err := rows.Scan(&m.Date, &m.Value); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		weights = append(weights, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return weights, nil
}

// ListGoals returns the user's goals; an empty status returns all of them.
func (r *Repo) ListGoals(ctx context.Context, userID string, status GoalStatus) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list_goals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("goal.status", string(status)),
	)

	qb := &queryBuilder{}
	qb.add("user_id = $%d", userID)
	if status != "" {
		qb.add("status = $%d", string(status))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, type, target_value, current_value, created_at, target_date, exercise_name, status
			FROM goal
			WHERE `+qb.clause()+`
			ORDER BY created_at, id;`,
		qb.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var goalType, goalStatus string
		if err := rows.Scan(
			&g.ID, &g.UserID, &goalType, &g.TargetValue, &g.CurrentValue,
			&g.CreatedDate, &g.TargetDate, &g.ExerciseName, &goalStatus,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		g.Type = GoalType(goalType)
		g.Status = GoalStatus(goalStatus)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *Repo) UpdateGoalProgress(ctx context.Context, goalID string, value float64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.update_goal_progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("goal.id", goalID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE goal SET current_value = $1, updated_at = now() WHERE id = $2;`,
		value, goalID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *Repo) AddWorkout(ctx context.Context, workout WorkoutSet) (_ *WorkoutSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.add_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := workout.Validate(); err != nil {
		return nil, err
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_set (user_id, performed_at, exercise, sets, reps, weight)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		workout.UserID, workout.Date, workout.Exercise, workout.Sets, workout.Reps, workout.Weight,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", id))
	workout.ID = id
	return &workout, nil
}

func (r *Repo) AddWeight(ctx context.Context, userID string, metric DatedMetric) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.add_weight")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := metric.Validate(); err != nil {
		return err
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO body_weight (user_id, measured_at, weight) VALUES ($1, $2, $3);`,
		userID, metric.Date, metric.Value,
	)
	if err != nil {
		return fmt.Errorf("insert weight: %w", err)
	}
	return nil
}

// AddGoal stores the goal, assigning a new ID and the active status when unset.
func (r *Repo) AddGoal(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.add_goal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goal = prepareNewGoal(goal)
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("goal.id", goal.ID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO goal (id, user_id, type, target_value, current_value, created_at, target_date, exercise_name, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
		goal.ID, goal.UserID, string(goal.Type), goal.TargetValue, goal.CurrentValue,
		goal.CreatedDate, goal.TargetDate, goal.ExerciseName, string(goal.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}

	return &goal, nil
}

func prepareNewGoal(goal Goal) Goal {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	if goal.Status == "" {
		goal.Status = GoalStatusActive
	}
	return goal
}
