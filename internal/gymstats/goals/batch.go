package goals

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/records"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result for one goal of a batch. When Err is set, Prediction
// still identifies the goal and carries the error likelihood. Error holds the
// same message and is the field that survives JSON.
type Outcome struct {
	Prediction Prediction `json:"prediction"`
	Err        error      `json:"-"`
	Error      string     `json:"error,omitempty"`
}

type Summary struct {
	Total        int                `json:"total"`
	Succeeded    int                `json:"succeeded"`
	Failed       int                `json:"failed"`
	ByLikelihood map[Likelihood]int `json:"byLikelihood"`
}

type Batch struct {
	Outcomes []Outcome `json:"outcomes"`
	Summary  Summary   `json:"summary"`
}

// PredictAll predicts every goal, at most p.concurrency at a time. A failing
// or panicking goal becomes an error outcome and never affects its siblings.
// Outcomes keep the input order. The only error returned is ctx's.
func (p *Predictor) PredictAll(ctx context.Context, goals []records.Goal, history History, now time.Time) (*Batch, error) {
	cleaned := history.clean()
	outcomes := make([]Outcome, len(goals))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range goals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.safePredict(goals[i], cleaned, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Batch{
		Outcomes: outcomes,
		Summary:  summarize(outcomes),
	}, nil
}

func (p *Predictor) safePredict(goal records.Goal, history History, now time.Time) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("goals: prediction for goal [%s] panicked: %v\n%s", goal.ID, r, debug.Stack())
			outcome = errorOutcome(goal, now, fmt.Errorf("prediction panicked: %v", r))
		}
	}()

	prediction, err := p.Predict(goal, history, now)
	if err != nil {
		log.Warnf("goals: predict goal [%s]: %s", goal.ID, err)
		return errorOutcome(goal, now, err)
	}
	if len(prediction.Insights) == 0 {
		prediction.Insights = []string{"No further insight available for this goal."}
	}
	return Outcome{Prediction: prediction}
}

func errorOutcome(goal records.Goal, now time.Time, err error) Outcome {
	p := Prediction{
		GoalID:       goal.ID,
		Type:         goal.Type,
		Exercise:     goal.ExerciseName,
		Likelihood:   LikelihoodError,
		CurrentValue: goal.CurrentValue,
		TargetValue:  goal.TargetValue,
		Insights:     []string{fmt.Sprintf("Could not predict this goal: %s", err)},
	}
	if !goal.TargetDate.IsZero() {
		p.DaysRemaining = max(0, records.DaysBetween(now, goal.TargetDate))
	}
	return Outcome{
		Prediction: p,
		Err:        err,
		Error:      err.Error(),
	}
}

func summarize(outcomes []Outcome) Summary {
	s := Summary{
		Total:        len(outcomes),
		ByLikelihood: make(map[Likelihood]int),
	}
	for _, o := range outcomes {
		if o.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
		s.ByLikelihood[o.Prediction.Likelihood]++
	}
	return s
}
