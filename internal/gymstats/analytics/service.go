package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/gymstats/internal/cache"
	"github.com/2beens/gymstats/internal/gymstats/goals"
	"github.com/2beens/gymstats/internal/gymstats/plateau"
	"github.com/2beens/gymstats/internal/gymstats/progression"
	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=analytics_test

type recordsRepo interface {
	ListWorkouts(ctx context.Context, userID string, params records.ListWorkoutsParams) ([]records.WorkoutSet, error)
	ListWeights(ctx context.Context, userID string, params records.ListWeightsParams) ([]records.DatedMetric, error)
	ListGoals(ctx context.Context, userID string, status records.GoalStatus) ([]records.Goal, error)
	UpdateGoalProgress(ctx context.Context, goalID string, value float64) error
}

const DefaultMovingAverageWindow = 7

type NewServiceParams struct {
	Repo      recordsRepo
	Cache     cache.Cache
	CacheTTL  time.Duration
	Metrics   *metrics.Manager
	Strategy  progression.Strategy
	Predictor *goals.Predictor
	Detector  *plateau.Detector
}

// Service runs the analytics engine over the records of one user at a time.
type Service struct {
	repo      recordsRepo
	cache     cache.Cache
	cacheTTL  time.Duration
	metrics   *metrics.Manager
	strategy  progression.Strategy
	predictor *goals.Predictor
	detector  *plateau.Detector
}

func NewService(params NewServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics service: records repo is required")
	}
	s := &Service{
		repo:      params.Repo,
		cache:     params.Cache,
		cacheTTL:  params.CacheTTL,
		metrics:   params.Metrics,
		strategy:  params.Strategy,
		predictor: params.Predictor,
		detector:  params.Detector,
	}
	if s.cache == nil {
		s.cache = cache.NewNoopCache()
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 5 * time.Minute
	}
	if s.metrics == nil {
		s.metrics = metrics.NewTestManager()
	}
	if s.strategy == nil {
		strategy, err := progression.NewStrategy(progression.StrategyWeekly, progression.DefaultConfig(), nil)
		if err != nil {
			return nil, err
		}
		s.strategy = strategy
	}
	if s.predictor == nil {
		s.predictor = goals.NewPredictor(4)
	}
	if s.detector == nil {
		s.detector = plateau.NewDetector(plateau.DefaultConfig())
	}
	return s, nil
}

// RangeParams bounds the fetched records. Nil bounds are open.
type RangeParams struct {
	From *time.Time
	To   *time.Time
}

func (s *Service) observe(operation string, start time.Time) {
	s.metrics.HistogramAnalysis.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id missing", records.ErrInvalidInput)
	}
	return nil
}

func (s *Service) listWorkouts(ctx context.Context, userID string, params records.ListWorkoutsParams) ([]records.WorkoutSet, error) {
	workouts, err := s.repo.ListWorkouts(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	cleaned := records.CleanWorkouts(workouts)
	if dropped := len(workouts) - len(cleaned); dropped > 0 {
		log.Warnf("analytics: dropped %d invalid workout rows for user [%s]", dropped, userID)
	}
	return cleaned, nil
}

func (s *Service) listWeights(ctx context.Context, userID string, params records.ListWeightsParams) ([]records.DatedMetric, error) {
	weights, err := s.repo.ListWeights(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	cleaned := records.FiniteMetrics(weights)
	if dropped := len(weights) - len(cleaned); dropped > 0 {
		log.Warnf("analytics: dropped %d invalid weight rows for user [%s]", dropped, userID)
	}
	return cleaned, nil
}

// fetchHistory loads weights and workouts concurrently.
func (s *Service) fetchHistory(ctx context.Context, userID string, r RangeParams) (goals.History, error) {
	var history goals.History
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weights, err := s.listWeights(gctx, userID, records.ListWeightsParams{From: r.From, To: r.To})
		history.Weights = weights
		return err
	})
	g.Go(func() error {
		workouts, err := s.listWorkouts(gctx, userID, records.ListWorkoutsParams{From: r.From, To: r.To})
		history.Workouts = workouts
		return err
	})
	if err := g.Wait(); err != nil {
		return goals.History{}, err
	}
	return history, nil
}
