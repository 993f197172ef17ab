package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/progression"
	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// SuggestNext suggests the next session for one exercise.
func (s *Service) SuggestNext(ctx context.Context, userID, exercise string) (_ *records.ProgressionSuggestion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.suggest_next")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("suggest_next", time.Now())

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(exercise) == "" {
		return nil, fmt.Errorf("%w: exercise name missing", records.ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("exercise", exercise))

	workouts, err := s.listWorkouts(ctx, userID, records.ListWorkoutsParams{Exercise: exercise})
	if err != nil {
		return nil, err
	}

	suggestion := s.strategy.Suggest(exercise, workouts)
	s.countSuggestion(suggestion)
	return &suggestion, nil
}

// SuggestAll suggests the next session for every exercise in the log.
func (s *Service) SuggestAll(ctx context.Context, userID string) (_ []records.ProgressionSuggestion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.suggest_all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("suggest_all", time.Now())

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	workouts, err := s.listWorkouts(ctx, userID, records.ListWorkoutsParams{})
	if err != nil {
		return nil, err
	}

	suggestions := progression.SuggestAll(s.strategy, workouts)
	for _, suggestion := range suggestions {
		s.countSuggestion(suggestion)
	}
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	return suggestions, nil
}

func (s *Service) countSuggestion(suggestion records.ProgressionSuggestion) {
	status := string(suggestion.Status)
	if suggestion.Error != "" {
		status = "error"
	}
	s.metrics.CounterSuggestions.WithLabelValues(s.strategy.Name(), status).Inc()
}
