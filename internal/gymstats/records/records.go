package records

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrGoalNotFound = errors.New("goal not found")
)

// DatedMetric is a single dated numeric sample, e.g. a body weight measurement.
type DatedMetric struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

func (m DatedMetric) Validate() error {
	if m.Date.IsZero() {
		return fmt.Errorf("%w: metric date missing", ErrInvalidInput)
	}
	if !isFinite(m.Value) {
		return fmt.Errorf("%w: metric value %v is not finite", ErrInvalidInput, m.Value)
	}
	return nil
}

// WorkoutSet is one logged exercise entry: Sets x Reps at Weight.
type WorkoutSet struct {
	ID       int       `json:"id"`
	UserID   string    `json:"userId"`
	Date     time.Time `json:"date"`
	Exercise string    `json:"exercise"`
	Sets     int       `json:"sets"`
	Reps     int       `json:"reps"`
	Weight   float64   `json:"weight"`
}

func (w WorkoutSet) Volume() float64 {
	return float64(w.Sets*w.Reps) * w.Weight
}

// EstimatedOneRepMax uses the Brzycki formula.
func (w WorkoutSet) EstimatedOneRepMax() float64 {
	if w.Reps <= 1 {
		return w.Weight
	}
	return w.Weight / (1.0278 - 0.0278*float64(w.Reps))
}

func (w WorkoutSet) Validate() error {
	switch {
	case w.Date.IsZero():
		return fmt.Errorf("%w: workout date missing", ErrInvalidInput)
	case strings.TrimSpace(w.Exercise) == "":
		return fmt.Errorf("%w: workout exercise name missing", ErrInvalidInput)
	case w.Sets <= 0:
		return fmt.Errorf("%w: workout sets must be > 0, got %d", ErrInvalidInput, w.Sets)
	case w.Reps <= 0:
		return fmt.Errorf("%w: workout reps must be > 0, got %d", ErrInvalidInput, w.Reps)
	case !isFinite(w.Weight) || w.Weight < 0:
		return fmt.Errorf("%w: workout weight must be a finite number >= 0, got %v", ErrInvalidInput, w.Weight)
	}
	return nil
}

type GoalType string

const (
	GoalTypeBodyWeight GoalType = "body_weight"
	GoalTypeExercisePR GoalType = "exercise_pr"
	GoalTypeFrequency  GoalType = "frequency"
	GoalTypeVolume     GoalType = "volume"
)

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusAchieved  GoalStatus = "achieved"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

type Goal struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Type         GoalType   `json:"type"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	CreatedDate  time.Time  `json:"createdDate"`
	TargetDate   time.Time  `json:"targetDate"`
	ExerciseName string     `json:"exerciseName,omitempty"`
	Status       GoalStatus `json:"status"`
}

func (g Goal) Validate() error {
	switch {
	case g.ID == "":
		return fmt.Errorf("%w: goal id missing", ErrInvalidInput)
	case g.Type == "":
		return fmt.Errorf("%w: goal %s type missing", ErrInvalidInput, g.ID)
	case g.CreatedDate.IsZero() || g.TargetDate.IsZero():
		return fmt.Errorf("%w: goal %s dates missing", ErrInvalidInput, g.ID)
	case Day(g.TargetDate).Before(Day(g.CreatedDate)):
		return fmt.Errorf("%w: goal %s target date before created date", ErrInvalidInput, g.ID)
	case !isFinite(g.TargetValue) || !isFinite(g.CurrentValue):
		return fmt.Errorf("%w: goal %s values must be finite", ErrInvalidInput, g.ID)
	case g.Type == GoalTypeExercisePR && strings.TrimSpace(g.ExerciseName) == "":
		return fmt.Errorf("%w: exercise_pr goal %s without exercise name", ErrInvalidInput, g.ID)
	}
	return nil
}

type Direction string

const (
	DirectionIncreasing       Direction = "increasing"
	DirectionDecreasing       Direction = "decreasing"
	DirectionStable           Direction = "stable"
	DirectionInsufficientData Direction = "insufficient_data"
)

// TrendResult is the outcome of a least-squares fit. Confidence is R².
type TrendResult struct {
	Slope      float64   `json:"slope"`
	Intercept  float64   `json:"intercept"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	DataPoints int       `json:"dataPoints"`
}

type Strength string

const (
	StrengthNegligible       Strength = "negligible"
	StrengthWeak             Strength = "weak"
	StrengthModerate         Strength = "moderate"
	StrengthStrong           Strength = "strong"
	StrengthVeryStrong       Strength = "very_strong"
	StrengthNoData           Strength = "no_data"
	StrengthInsufficientData Strength = "insufficient_data"
)

type CorrelationResult struct {
	Coefficient float64  `json:"coefficient"`
	Strength    Strength `json:"strength"`
	DataPoints  int      `json:"dataPoints"`
	PValue      float64  `json:"pValue"`
}

type SuggestionStatus string

const (
	SuggestionFirstWorkout SuggestionStatus = "first_workout"
	SuggestionProgressing  SuggestionStatus = "progressing"
	SuggestionRetry        SuggestionStatus = "retry"
	SuggestionDeloading    SuggestionStatus = "deloading"
)

type ProgressionSuggestion struct {
	Exercise  string           `json:"exercise"`
	Sets      int              `json:"sets"`
	Reps      int              `json:"reps"`
	Weight    float64          `json:"weight"`
	Rationale string           `json:"rationale"`
	Status    SuggestionStatus `json:"status"`
	Strategy  string           `json:"strategy"`
	Error     string           `json:"error,omitempty"`
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a).
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
