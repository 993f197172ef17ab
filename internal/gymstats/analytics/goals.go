package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymstats/internal/cache"
	"github.com/2beens/gymstats/internal/gymstats/goals"
	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

type GoalPredictions struct {
	BatchID     string    `json:"batchId"`
	GeneratedAt time.Time `json:"generatedAt"`
	goals.Batch
}

type GoalProgressUpdate struct {
	GoalID   string  `json:"goalId"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Achieved bool    `json:"achieved"`
	Error    string  `json:"error,omitempty"`
}

type GoalProgressRefresh struct {
	Checked int                  `json:"checked"`
	Updated []GoalProgressUpdate `json:"updated"`
	Failed  int                  `json:"failed"`
}

func goalPredictionsCacheKey(userID string, now time.Time) string {
	return fmt.Sprintf("goal-predictions::%s::%s", userID, records.Day(now).Format(time.DateOnly))
}

// PredictGoals predicts every active goal of the user. Results are cached per
// user and day until the TTL passes or goal progress is refreshed.
func (s *Service) PredictGoals(ctx context.Context, userID string, now time.Time) (_ *GoalPredictions, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.predict_goals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("predict_goals", time.Now())

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	key := goalPredictionsCacheKey(userID, now)
	if cached, ok := s.cachedPredictions(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	activeGoals, err := s.repo.ListGoals(ctx, userID, records.GoalStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	history, err := s.fetchHistory(ctx, userID, RangeParams{})
	if err != nil {
		return nil, err
	}

	batch, err := s.predictor.PredictAll(ctx, activeGoals, history, now)
	if err != nil {
		return nil, fmt.Errorf("predict goals: %w", err)
	}
	for _, o := range batch.Outcomes {
		s.metrics.CounterGoalPredictions.WithLabelValues(string(o.Prediction.Type), string(o.Prediction.Likelihood)).Inc()
	}

	predictions := &GoalPredictions{
		BatchID:     uuid.NewString(),
		GeneratedAt: now,
		Batch:       *batch,
	}
	span.SetAttributes(
		attribute.String("batch.id", predictions.BatchID),
		attribute.Int("goals.count", batch.Summary.Total),
		attribute.Int("goals.failed", batch.Summary.Failed),
	)

	if raw, err := json.Marshal(predictions); err != nil {
		log.Errorf("analytics: marshal goal predictions: %s", err)
	} else if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		log.Warnf("analytics: cache goal predictions for [%s]: %s", userID, err)
	}

	return predictions, nil
}

func (s *Service) cachedPredictions(ctx context.Context, key string) (*GoalPredictions, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.Warnf("analytics: cache get [%s]: %s", key, err)
		}
		s.metrics.CounterCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var predictions GoalPredictions
	if err := json.Unmarshal(raw, &predictions); err != nil {
		log.Warnf("analytics: corrupted cache entry [%s]: %s", key, err)
		s.metrics.CounterCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	// Err is not serialized; restore it from the message so callers can check either field.
	for i := range predictions.Outcomes {
		if o := &predictions.Outcomes[i]; o.Err == nil && o.Error != "" {
			o.Err = errors.New(o.Error)
		}
	}
	s.metrics.CounterCacheLookups.WithLabelValues("hit").Inc()
	return &predictions, true
}

// RefreshGoalProgress recomputes CurrentValue for every active goal and writes
// back the ones that changed. A goal that reached its target is reported as
// achieved; its status is left for the user to close. Failed writes do not stop
// the others: they are returned together with the partial result.
func (s *Service) RefreshGoalProgress(ctx context.Context, userID string, now time.Time) (_ *GoalProgressRefresh, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.refresh_goal_progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("refresh_goal_progress", time.Now())

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	activeGoals, err := s.repo.ListGoals(ctx, userID, records.GoalStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	history, err := s.fetchHistory(ctx, userID, RangeParams{})
	if err != nil {
		return nil, err
	}

	refresh := &GoalProgressRefresh{
		Checked: len(activeGoals),
		Updated: []GoalProgressUpdate{},
	}
	var writeErr error
	for _, goal := range activeGoals {
		value, ok := goals.Progress(goal, history, now)
		if !ok || value == goal.CurrentValue {
			continue
		}

		update := GoalProgressUpdate{
			GoalID:   goal.ID,
			Previous: goal.CurrentValue,
			Current:  value,
			Achieved: goals.Achieved(goal, value),
		}
		if err := s.repo.UpdateGoalProgress(ctx, goal.ID, value); err != nil {
			writeErr = multierr.Append(writeErr, fmt.Errorf("update goal %s: %w", goal.ID, err))
			update.Error = err.Error()
			refresh.Failed++
		}
		refresh.Updated = append(refresh.Updated, update)
	}

	if len(refresh.Updated) > refresh.Failed {
		if err := s.cache.Delete(ctx, goalPredictionsCacheKey(userID, now)); err != nil {
			log.Warnf("analytics: invalidate goal predictions for [%s]: %s", userID, err)
		}
	}

	span.SetAttributes(
		attribute.Int("goals.checked", refresh.Checked),
		attribute.Int("goals.updated", len(refresh.Updated)),
	)
	return refresh, writeErr
}
