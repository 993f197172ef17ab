package progression

import (
	"fmt"
	"math"

	"github.com/2beens/gymstats/internal/gymstats/records"
)

// WeeklyIncrement adds a fixed increment after every session that matched or beat
// the previous weight, retries after a single miss and deloads after two or more.
type WeeklyIncrement struct {
	cfg        Config
	classifier *Classifier
}

func NewWeeklyIncrement(cfg Config, classifier *Classifier) *WeeklyIncrement {
	return &WeeklyIncrement{
		cfg:        cfg,
		classifier: classifier,
	}
}

func (s *WeeklyIncrement) Name() string {
	return StrategyWeekly
}

// Suggest treats each calendar day as one session, represented by its heaviest set.
// Several sets logged on the same day never count as separate hits or misses.
func (s *WeeklyIncrement) Suggest(exercise string, history []records.WorkoutSet) records.ProgressionSuggestion {
	sessions := sessionsMostRecentFirst(exercise, history)
	if len(sessions) == 0 {
		return firstWorkout(exercise, s.Name(), s.classifier.Classify(exercise))
	}

	last := sessions[0]
	suggestion := records.ProgressionSuggestion{
		Exercise: exercise,
		Sets:     last.Sets,
		Reps:     last.Reps,
		Strategy: s.Name(),
	}

	if len(sessions) == 1 {
		suggestion.Weight = last.Weight + s.cfg.Increment
		suggestion.Status = records.SuggestionProgressing
		suggestion.Rationale = fmt.Sprintf("First logged session at %.1f: add %.1f.", last.Weight, s.cfg.Increment)
		return suggestion
	}

	previous := sessions[1]
	if last.Weight >= previous.Weight {
		suggestion.Weight = last.Weight + s.cfg.Increment
		suggestion.Status = records.SuggestionProgressing
		suggestion.Rationale = fmt.Sprintf("Hit %.1f (previous %.1f): add %.1f.", last.Weight, previous.Weight, s.cfg.Increment)
		return suggestion
	}

	misses := consecutiveMisses(sessions)
	if misses == 1 {
		suggestion.Weight = previous.Weight
		suggestion.Status = records.SuggestionRetry
		suggestion.Rationale = fmt.Sprintf("Dropped to %.1f from %.1f: retry %.1f.", last.Weight, previous.Weight, previous.Weight)
		return suggestion
	}

	suggestion.Weight = math.Round(last.Weight * s.cfg.DeloadFactor)
	suggestion.Status = records.SuggestionDeloading
	suggestion.Rationale = fmt.Sprintf(
		"%d sessions in a row below the one before: deload to %.0f%% of %.1f and build back up.",
		misses, s.cfg.DeloadFactor*100, last.Weight,
	)
	return suggestion
}

// consecutiveMisses counts, from the newest session back, how many sessions
// were lighter than the session before them.
func consecutiveMisses(mostRecentFirst []records.WorkoutSet) int {
	misses := 0
	for i := 0; i+1 < len(mostRecentFirst); i++ {
		if mostRecentFirst[i].Weight >= mostRecentFirst[i+1].Weight {
			break
		}
		misses++
	}
	return misses
}
