package progression

import (
	"fmt"
	"math"
	"runtime/debug"
	"sort"

	"github.com/2beens/gymstats/internal/gymstats/records"

	log "github.com/sirupsen/logrus"
)

const (
	StrategyWeekly = "weekly"
	StrategyDouble = "double"
)

type Config struct {
	// Increment is the fixed weight step of the weekly strategy.
	Increment float64
	// DeloadFactor multiplies the last weight after repeated misses.
	DeloadFactor float64
}

func DefaultConfig() Config {
	return Config{
		Increment:    5,
		DeloadFactor: 0.75,
	}
}

// Strategy suggests the next session for one exercise given the workout history.
// History may hold other exercises and any order; it must already be validated.
type Strategy interface {
	Name() string
	Suggest(exercise string, history []records.WorkoutSet) records.ProgressionSuggestion
}

func NewStrategy(name string, cfg Config, classifier *Classifier) (Strategy, error) {
	def := DefaultConfig()
	if cfg.Increment <= 0 {
		cfg.Increment = def.Increment
	}
	if cfg.DeloadFactor <= 0 || cfg.DeloadFactor >= 1 {
		cfg.DeloadFactor = def.DeloadFactor
	}
	if classifier == nil {
		classifier = DefaultClassifier()
	}

	switch name {
	case "", StrategyWeekly:
		return NewWeeklyIncrement(cfg, classifier), nil
	case StrategyDouble:
		return NewDoubleProgression(cfg, classifier), nil
	default:
		return nil, fmt.Errorf("unknown progression strategy: %s", name)
	}
}

// sessionsMostRecentFirst keeps one entry per calendar day for the exercise: the top set.
// Days are ordered newest first; inside a day heavier sets, then higher IDs, come first.
func sessionsMostRecentFirst(exercise string, history []records.WorkoutSet) []records.WorkoutSet {
	sets := records.FilterExercise(history, exercise)
	sort.SliceStable(sets, func(i, j int) bool {
		di, dj := records.Day(sets[i].Date), records.Day(sets[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		if sets[i].Weight != sets[j].Weight {
			return sets[i].Weight > sets[j].Weight
		}
		return sets[i].ID > sets[j].ID
	})

	sessions := make([]records.WorkoutSet, 0, len(sets))
	for _, s := range sets {
		if n := len(sessions); n > 0 && records.Day(sessions[n-1].Date).Equal(records.Day(s.Date)) {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions
}

func firstWorkout(exercise, strategy string, cat Category) records.ProgressionSuggestion {
	return records.ProgressionSuggestion{
		Exercise:  exercise,
		Sets:      cat.StartSets,
		Reps:      cat.StartReps,
		Weight:    cat.StartWeight,
		Status:    records.SuggestionFirstWorkout,
		Strategy:  strategy,
		Rationale: fmt.Sprintf("No history for %s yet: start with a conservative %s baseline and adjust after the first session.", exercise, cat.Name),
	}
}

// SuggestAll returns one suggestion per exercise found in history, sorted by exercise.
// A panic while suggesting for one exercise is turned into an entry with Error set.
func SuggestAll(strategy Strategy, history []records.WorkoutSet) []records.ProgressionSuggestion {
	names := make(map[string]string)
	for _, w := range history {
		names[records.NormalizeExercise(w.Exercise)] = w.Exercise
	}
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]records.ProgressionSuggestion, 0, len(keys))
	for _, key := range keys {
		out = append(out, safeSuggest(strategy, names[key], history))
	}
	return out
}

func safeSuggest(strategy Strategy, exercise string, history []records.WorkoutSet) (suggestion records.ProgressionSuggestion) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("progression: suggest for [%s] panicked: %v\n%s", exercise, r, debug.Stack())
			suggestion = records.ProgressionSuggestion{
				Exercise: exercise,
				Strategy: strategy.Name(),
				Error:    fmt.Sprintf("suggestion failed: %v", r),
			}
		}
	}()
	return strategy.Suggest(exercise, history)
}

func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
