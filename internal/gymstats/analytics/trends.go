package analytics

import (
	"context"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/correlation"
	"github.com/2beens/gymstats/internal/gymstats/plateau"
	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/gymstats/timeseries"
	"github.com/2beens/gymstats/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type WeightTrendReport struct {
	Trend records.TrendResult `json:"trend"`
	// WeeklyRate is the fitted change per 7 days.
	WeeklyRate float64               `json:"weeklyRate"`
	Latest     *records.DatedMetric  `json:"latest,omitempty"`
	Window     int                   `json:"window"`
	Points     []records.DatedMetric `json:"points"`
	Smoothed   []records.DatedMetric `json:"smoothed"`
}

// WeightTrend fits a per-day trend through the body weight log and smooths it
// with a trailing moving average of window points (DefaultMovingAverageWindow when < 1).
func (s *Service) WeightTrend(ctx context.Context, userID string, r RangeParams, window int) (_ *WeightTrendReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.weight_trend")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("weight_trend", time.Now())

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if window < 1 {
		window = DefaultMovingAverageWindow
	}

	weights, err := s.listWeights(ctx, userID, records.ListWeightsParams{From: r.From, To: r.To})
	if err != nil {
		return nil, err
	}

	trend := timeseries.DatedTrend(weights)
	report := &WeightTrendReport{
		Trend:      trend,
		WeeklyRate: trend.Slope * 7,
		Window:     window,
		Points:     weights,
		Smoothed:   timeseries.MovingAverageMetrics(weights, window),
	}
	if len(weights) > 0 {
		latest := weights[len(weights)-1]
		report.Latest = &latest
	}

	span.SetAttributes(
		attribute.Int("weights.count", len(weights)),
		attribute.String("trend.direction", string(trend.Direction)),
	)
	return report, nil
}

// Plateaus runs plateau and sticking point detection over the workout log.
// An empty exercise analyses every exercise.
func (s *Service) Plateaus(ctx context.Context, userID, exercise string, r RangeParams) (_ []plateau.ExerciseReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.plateaus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("plateaus", time.Now())

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	workouts, err := s.listWorkouts(ctx, userID, records.ListWorkoutsParams{
		Exercise: exercise,
		From:     r.From,
		To:       r.To,
	})
	if err != nil {
		return nil, err
	}

	reports := s.detector.Detect(workouts)
	span.SetAttributes(attribute.Int("exercises.count", len(reports)))
	return reports, nil
}

// WeightVolumeCorrelation relates body weight to daily training volume.
func (s *Service) WeightVolumeCorrelation(ctx context.Context, userID string, r RangeParams) (_ *correlation.Analysis, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.weight_volume_correlation")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer s.observe("weight_volume_correlation", time.Now())

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	history, err := s.fetchHistory(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	analysis := correlation.Analyze(history.Weights, records.DailyVolume(history.Workouts))
	span.SetAttributes(
		attribute.Int("pairs.count", analysis.DataPoints),
		attribute.String("correlation.strength", string(analysis.Strength)),
	)
	return &analysis, nil
}
