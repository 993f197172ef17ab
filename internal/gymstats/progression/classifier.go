package progression

import (
	"strings"

	"github.com/2beens/gymstats/internal/gymstats/records"
)

// Category describes how an exercise family starts and progresses.
type Category struct {
	Name        string  `json:"name"`
	StartSets   int     `json:"startSets"`
	StartReps   int     `json:"startReps"`
	StartWeight float64 `json:"startWeight"`
	RepMin      int     `json:"repMin"`
	RepMax      int     `json:"repMax"`
	// IncrementPct is the relative weight increase once the rep ceiling is reached.
	IncrementPct float64 `json:"incrementPct"`
	// MinIncrement is the smallest absolute weight step worth loading.
	MinIncrement float64 `json:"minIncrement"`
}

var (
	CategoryBodyweight = Category{
		Name: "bodyweight", StartSets: 3, StartReps: 8, StartWeight: 0,
		RepMin: 8, RepMax: 15, IncrementPct: 0.05, MinIncrement: 2.5,
	}
	CategoryCompoundLower = Category{
		Name: "compound_lower", StartSets: 3, StartReps: 5, StartWeight: 60,
		RepMin: 5, RepMax: 8, IncrementPct: 0.05, MinIncrement: 5,
	}
	CategoryCompoundUpper = Category{
		Name: "compound_upper", StartSets: 3, StartReps: 6, StartWeight: 40,
		RepMin: 6, RepMax: 10, IncrementPct: 0.025, MinIncrement: 2.5,
	}
	CategoryIsolation = Category{
		Name: "isolation", StartSets: 3, StartReps: 10, StartWeight: 10,
		RepMin: 10, RepMax: 15, IncrementPct: 0.05, MinIncrement: 1,
	}
	CategoryGeneric = Category{
		Name: "generic", StartSets: 3, StartReps: 8, StartWeight: 20,
		RepMin: 8, RepMax: 12, IncrementPct: 0.025, MinIncrement: 2.5,
	}
)

type Rule struct {
	Category Category
	Keywords []string
}

// Classifier maps an exercise name to a Category. Rules are tried in order and
// the first rule with a keyword contained in the name wins.
type Classifier struct {
	rules    []Rule
	fallback Category
}

func NewClassifier(rules []Rule, fallback Category) *Classifier {
	return &Classifier{
		rules:    rules,
		fallback: fallback,
	}
}

// DefaultClassifier checks bodyweight movements first, so "pull-up" doesn't land in the "pull" rows.
func DefaultClassifier() *Classifier {
	return NewClassifier([]Rule{
		{
			Category: CategoryBodyweight,
			Keywords: []string{"pull-up", "pullup", "pull up", "chin-up", "chinup", "chin up", "push-up", "pushup", "push up", "dip", "plank", "burpee", "muscle-up"},
		},
		{
			Category: CategoryCompoundLower,
			Keywords: []string{"squat", "deadlift", "leg press", "hip thrust", "lunge", "romanian", "rdl", "good morning"},
		},
		{
			Category: CategoryCompoundUpper,
			Keywords: []string{"bench", "overhead", "military", "press", "row", "pulldown", "pull"},
		},
		{
			Category: CategoryIsolation,
			Keywords: []string{"curl", "extension", "raise", "fly", "flye", "pushdown", "kickback", "shrug", "calf", "crossover"},
		},
	}, CategoryGeneric)
}

// Classify never fails: unknown names get the fallback category.
func (c *Classifier) Classify(exercise string) Category {
	name := records.NormalizeExercise(exercise)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return rule.Category
			}
		}
	}
	return c.fallback
}
