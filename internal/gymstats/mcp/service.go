package mcp

import (
	"context"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/analytics"
	"github.com/2beens/gymstats/internal/gymstats/correlation"
	"github.com/2beens/gymstats/internal/gymstats/plateau"
	"github.com/2beens/gymstats/internal/gymstats/records"
)

// analyticsService is what the tools need from the analytics layer (for dependency injection and testing).
type analyticsService interface {
	WeightTrend(ctx context.Context, userID string, r analytics.RangeParams, window int) (*analytics.WeightTrendReport, error)
	Plateaus(ctx context.Context, userID, exercise string, r analytics.RangeParams) ([]plateau.ExerciseReport, error)
	SuggestNext(ctx context.Context, userID, exercise string) (*records.ProgressionSuggestion, error)
	SuggestAll(ctx context.Context, userID string) ([]records.ProgressionSuggestion, error)
	PredictGoals(ctx context.Context, userID string, now time.Time) (*analytics.GoalPredictions, error)
	RefreshGoalProgress(ctx context.Context, userID string, now time.Time) (*analytics.GoalProgressRefresh, error)
	WeightVolumeCorrelation(ctx context.Context, userID string, r analytics.RangeParams) (*correlation.Analysis, error)
}

var _ analyticsService = (*analytics.Service)(nil)
