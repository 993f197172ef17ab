package gymstats_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/2beens/gymstats/internal/cache"
	"github.com/2beens/gymstats/internal/config"
	"github.com/2beens/gymstats/internal/gymstats"
	"github.com/2beens/gymstats/internal/gymstats/analytics"
	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreBackend:       config.StoreBackendSQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "data", "gymstats.db"),
		CacheBackend:       config.CacheBackendLocal,
		CacheSizeMegabytes: 1,
		CacheTTLSeconds:    60,
		Progression: config.ProgressionConfig{
			Strategy:     "weekly",
			Increment:    5,
			DeloadFactor: 0.75,
		},
		Goals: config.GoalsConfig{Concurrency: 2},
	}
}

func TestOpenBackends_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)

	b, err := gymstats.OpenBackends(context.Background(), gymstats.OpenBackendsParams{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, b.Close())
	})

	assert.IsType(t, &records.SQLiteStore{}, b.Store)
	assert.IsType(t, &cache.LocalCache{}, b.Cache)
	assert.Nil(t, b.Redis)
	assert.Nil(t, b.PoolCollector)
}

func TestOpenBackends_NoCache(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.CacheBackend = config.CacheBackendNone

	b, err := gymstats.OpenBackends(context.Background(), gymstats.OpenBackendsParams{Config: cfg})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &cache.NoopCache{}, b.Cache)
}

func TestOpenBackends_RedisCacheWithoutHost(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.CacheBackend = config.CacheBackendRedis

	b, err := gymstats.OpenBackends(context.Background(), gymstats.OpenBackendsParams{Config: cfg})
	require.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "requires redis_host")
}

func TestOpenBackends_UnknownStore(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.StoreBackend = "mongo"

	_, err := gymstats.OpenBackends(context.Background(), gymstats.OpenBackendsParams{Config: cfg})
	require.Error(t, err)
}

func TestNewAnalyticsService_UnknownStrategy(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Progression.Strategy = "linear"

	store, err := records.NewMemorySQLiteStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = gymstats.NewAnalyticsService(cfg, store, cache.NewNoopCache(), metrics.NewTestManager())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown progression strategy")
}

func TestSeedStore_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	b, err := gymstats.OpenBackends(ctx, gymstats.OpenBackendsParams{Config: cfg})
	require.NoError(t, err)
	defer b.Close()

	summary, err := gymstats.SeedStore(ctx, b.Store, gymstats.SeedParams{
		UserID: "demo",
		Days:   90,
		Now:    now,
		Faker:  gofakeit.New(42),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Goals)
	assert.Greater(t, summary.Weights, 30)
	assert.Greater(t, summary.Workouts, 30)
	assert.Zero(t, summary.Workouts%3)

	service, err := gymstats.NewAnalyticsService(cfg, b.Store, b.Cache, metrics.NewTestManager())
	require.NoError(t, err)

	trend, err := service.WeightTrend(ctx, "demo", analytics.RangeParams{}, 7)
	require.NoError(t, err)
	assert.Len(t, trend.Points, summary.Weights)
	assert.Len(t, trend.Smoothed, summary.Weights)

	predictions, err := service.PredictGoals(ctx, "demo", now)
	require.NoError(t, err)
	require.Len(t, predictions.Outcomes, 4)
	assert.Equal(t, 4, predictions.Summary.Succeeded)
	for _, o := range predictions.Outcomes {
		assert.NoError(t, o.Err)
		assert.NotEmpty(t, o.Prediction.Likelihood)
	}

	suggestions, err := service.SuggestAll(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, suggestions, 5)
}

func TestSuggestNext_MatchesSuggestAllForSpacedNames(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	b, err := gymstats.OpenBackends(ctx, gymstats.OpenBackendsParams{Config: cfg})
	require.NoError(t, err)
	defer b.Close()

	day := time.Date(2026, 2, 2, 18, 0, 0, 0, time.UTC)
	for i, weight := range []float64{50, 55} {
		_, err := b.Store.AddWorkout(ctx, records.WorkoutSet{
			UserID:   "u",
			Date:     day.AddDate(0, 0, 7*i),
			Exercise: "Bench  Press",
			Sets:     3,
			Reps:     8,
			Weight:   weight,
		})
		require.NoError(t, err)
	}

	service, err := gymstats.NewAnalyticsService(cfg, b.Store, b.Cache, metrics.NewTestManager())
	require.NoError(t, err)

	all, err := service.SuggestAll(ctx, "u")
	require.NoError(t, err)
	require.Len(t, all, 1)

	next, err := service.SuggestNext(ctx, "u", "Bench  Press")
	require.NoError(t, err)
	assert.Equal(t, records.SuggestionProgressing, next.Status)
	assert.Equal(t, 60.0, next.Weight)
	assert.Equal(t, all[0].Weight, next.Weight)
	assert.Equal(t, all[0].Status, next.Status)
}

func TestSeedStore_Deterministic(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := func() *gymstats.SeedSummary {
		store, err := records.NewMemorySQLiteStore()
		require.NoError(t, err)
		defer store.Close()

		summary, err := gymstats.SeedStore(ctx, store, gymstats.SeedParams{
			UserID: "demo",
			Days:   30,
			Now:    now,
			Faker:  gofakeit.New(7),
		})
		require.NoError(t, err)
		return summary
	}

	assert.Equal(t, seed(), seed())
}

func TestSeedStore_InvalidParams(t *testing.T) {
	store, err := records.NewMemorySQLiteStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = gymstats.SeedStore(context.Background(), store, gymstats.SeedParams{Days: 10})
	require.ErrorIs(t, err, records.ErrInvalidInput)

	_, err = gymstats.SeedStore(context.Background(), store, gymstats.SeedParams{UserID: "demo"})
	require.ErrorIs(t, err, records.ErrInvalidInput)
}
