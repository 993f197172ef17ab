package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2beens/gymstats/internal/telemetry/tracing"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

const (
	sqliteSchemaVersion = 1
	// fixed width, so stored timestamps compare correctly as text
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteStore is the single-user, file (or memory) backed record store.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates it.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func NewMemorySQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStore(":memory:")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	var version int
	if err := s.db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= sqliteSchemaVersion {
		return nil
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS workout_set (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      TEXT    NOT NULL,
		performed_at TEXT    NOT NULL,
		exercise     TEXT    NOT NULL,
		sets         INTEGER NOT NULL CHECK (sets > 0),
		reps         INTEGER NOT NULL CHECK (reps > 0),
		weight       REAL    NOT NULL CHECK (weight >= 0)
	);
	CREATE INDEX IF NOT EXISTS idx_workout_user_date ON workout_set(user_id, performed_at);

	CREATE TABLE IF NOT EXISTS body_weight (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     TEXT NOT NULL,
		measured_at TEXT NOT NULL,
		weight      REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_weight_user_date ON body_weight(user_id, measured_at);

	CREATE TABLE IF NOT EXISTS goal (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		type          TEXT NOT NULL,
		target_value  REAL NOT NULL,
		current_value REAL NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		target_date   TEXT NOT NULL,
		exercise_name TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'active'
	);
	CREATE INDEX IF NOT EXISTS idx_goal_user_status ON goal(user_id, status);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion))
	return err
}

type sqliteWorkoutRow struct {
	ID          int     `db:"id"`
	UserID      string  `db:"user_id"`
	PerformedAt string  `db:"performed_at"`
	Exercise    string  `db:"exercise"`
	Sets        int     `db:"sets"`
	Reps        int     `db:"reps"`
	Weight      float64 `db:"weight"`
}

type sqliteWeightRow struct {
	MeasuredAt string  `db:"measured_at"`
	Weight     float64 `db:"weight"`
}

type sqliteGoalRow struct {
	ID           string  `db:"id"`
	UserID       string  `db:"user_id"`
	Type         string  `db:"type"`
	TargetValue  float64 `db:"target_value"`
	CurrentValue float64 `db:"current_value"`
	CreatedAt    string  `db:"created_at"`
	TargetDate   string  `db:"target_date"`
	ExerciseName string  `db:"exercise_name"`
	Status       string  `db:"status"`
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func (row sqliteGoalRow) toGoal() (Goal, error) {
	created, err := parseSQLiteTime(row.CreatedAt)
	if err != nil {
		return Goal{}, err
	}
	target, err := parseSQLiteTime(row.TargetDate)
	if err != nil {
		return Goal{}, err
	}
	return Goal{
		ID:           row.ID,
		UserID:       row.UserID,
		Type:         GoalType(row.Type),
		TargetValue:  row.TargetValue,
		CurrentValue: row.CurrentValue,
		CreatedDate:  created,
		TargetDate:   target,
		ExerciseName: row.ExerciseName,
		Status:       GoalStatus(row.Status),
	}, nil
}

func (s *SQLiteStore) ListWorkouts(ctx context.Context, userID string, params ListWorkoutsParams) (_ []WorkoutSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqlite.records.list_workouts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	where := []string{"user_id = ?"}
	args := []any{userID}
	if params.From != nil {
		where = append(where, "performed_at >= ?")
		args = append(args, formatSQLiteTime(*params.From))
	}
	if params.To != nil {
		where = append(where, "performed_at <= ?")
		args = append(args, formatSQLiteTime(*params.To))
	}

	var rows []sqliteWorkoutRow
	if err := s.db.SelectContext(
		ctx, &rows,
		`SELECT id, user_id, performed_at, exercise, sets, reps, weight
			FROM workout_set WHERE `+strings.Join(where, " AND ")+`
			ORDER BY performed_at, id`,
		args...,
	); err != nil {
		return nil, fmt.Errorf("select workouts: %w", err)
	}

	workouts := make([]WorkoutSet, 0, len(rows))
	for _, row := range rows {
		performedAt, err := parseSQLiteTime(row.PerformedAt)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, WorkoutSet{
			ID:       row.ID,
			UserID:   row.UserID,
			Date:     performedAt,
			Exercise: row.Exercise,
			Sets:     row.Sets,
			Reps:     row.Reps,
			Weight:   row.Weight,
		})
	}
	if params.Exercise != "" {
		workouts = FilterExercise(workouts, params.Exercise)
	}
	return workouts, nil
}

func (s *SQLiteStore) ListWeights(ctx context.Context, userID string, params ListWeightsParams) (_ []DatedMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqlite.records.list_weights")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	where := []string{"user_id = ?"}
	args := []any{userID}
	if params.From != nil {
		where = append(where, "measured_at >= ?")
		args = append(args, formatSQLiteTime(*params.From))
	}
	if params.To != nil {
		where = append(where, "measured_at <= ?")
		args = append(args, formatSQLiteTime(*params.To))
	}

	var rows []sqliteWeightRow
	if err := s.db.SelectContext(
		ctx, &rows,
		`SELECT measured_at, weight FROM body_weight WHERE `+strings.Join(where, " AND ")+` ORDER BY measured_at, id`,
		args...,
	); err != nil {
		return nil, fmt.Errorf("select weights: %w", err)
	}

	weights := make([]DatedMetric, 0, len(rows))
	for _, row := range rows {
		measuredAt, err := parseSQLiteTime(row.MeasuredAt)
		if err != nil {
			return nil, err
		}
		weights = append(weights, DatedMetric{Date: measuredAt, Value: row.Weight})
	}
	return weights, nil
}

func (s *SQLiteStore) ListGoals(ctx context.Context, userID string, status GoalStatus) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqlite.records.list_goals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT id, user_id, type, target_value, current_value, created_at, target_date, exercise_name, status
		FROM goal WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at, id"

	var rows []sqliteGoalRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select goals: %w", err)
	}

	goals := make([]Goal, 0, len(rows))
	for _, row := range rows {
		g, err := row.toGoal()
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func (s *SQLiteStore) UpdateGoalProgress(ctx context.Context, goalID string, value float64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqlite.records.update_goal_progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("goal.id", goalID))

	res, err := s.db.ExecContext(ctx, `UPDATE goal SET current_value = ? WHERE id = ?`, value, goalID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (s *SQLiteStore) AddWorkout(ctx context.Context, workout WorkoutSet) (_ *WorkoutSet, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqlite.records.add_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := workout.Validate(); err != nil {
		return nil, err
	}

	var res sql.Result
	res, err = s.db.NamedExecContext(
		ctx,
		`INSERT INTO workout_set (user_id, performed_at, exercise, sets, reps, weight)
			VALUES (:user_id, :performed_at, :exercise, :sets, :reps, :weight)`,
		sqliteWorkoutRow{
			UserID:      workout.UserID,
			PerformedAt: formatSQLiteTime(workout.Date),
			Exercise:    workout.Exercise,
			Sets:        workout.Sets,
			Reps:        workout.Reps,
			Weight:      workout.Weight,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	workout.ID = int(id)
	return &workout, nil
}

func (s *SQLiteStore) AddWeight(ctx context.Context, userID string, metric DatedMetric) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqlite.records.add_weight")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := metric.Validate(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO body_weight (user_id, measured_at, weight) VALUES (?, ?, ?)`,
		userID, formatSQLiteTime(metric.Date), metric.Value,
	); err != nil {
		return fmt.Errorf("insert weight: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddGoal(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sqlite.records.add_goal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	goal = prepareNewGoal(goal)
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.db.NamedExecContext(
		ctx,
		`INSERT INTO goal (id, user_id, type, target_value, current_value, created_at, target_date, exercise_name, status)
			VALUES (:id, :user_id, :type, :target_value, :current_value, :created_at, :target_date, :exercise_name, :status)`,
		sqliteGoalRow{
			ID:           goal.ID,
			UserID:       goal.UserID,
			Type:         string(goal.Type),
			TargetValue:  goal.TargetValue,
			CurrentValue: goal.CurrentValue,
			CreatedAt:    formatSQLiteTime(goal.CreatedDate),
			TargetDate:   formatSQLiteTime(goal.TargetDate),
			ExerciseName: goal.ExerciseName,
			Status:       string(goal.Status),
		},
	); err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}

	return &goal, nil
}
