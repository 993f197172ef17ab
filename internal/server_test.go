package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/gymstats/internal/config"
	"github.com/2beens/gymstats/internal/gymstats"
	"github.com/2beens/gymstats/internal/gymstats/records"
	"github.com/2beens/gymstats/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type denyingLimiter struct {
	calls int
}

func (l *denyingLimiter) Allow(context.Context, string, redis_rate.Limit) (*redis_rate.Result, error) {
	l.calls++
	return &redis_rate.Result{Allowed: 0, RetryAfter: 30 * time.Second}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		StoreBackend:              config.StoreBackendSQLite,
		SQLitePath:                ":memory:",
		CacheBackend:              config.CacheBackendNone,
		MCPRateLimitAllowedPerMin: 10,
		Progression:               config.ProgressionConfig{Strategy: "weekly"},
		Goals:                     config.GoalsConfig{Concurrency: 2},
	}

	store, err := records.NewMemorySQLiteStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	day := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	for i, weight := range []float64{100, 102.5, 105} {
		_, err := store.AddWorkout(context.Background(), records.WorkoutSet{
			UserID:   "u1",
			Date:     day.AddDate(0, 0, 7*i),
			Exercise: "squat",
			Sets:     5,
			Reps:     5,
			Weight:   weight,
		})
		require.NoError(t, err)
	}

	metricsManager := metrics.NewTestManager()
	service, err := gymstats.NewAnalyticsService(cfg, store, nil, metricsManager)
	require.NoError(t, err)

	return &Server{
		config:         cfg,
		analytics:      service,
		versionInfo:    "test-version",
		metricsManager: metricsManager,
		otelShutdown:   func() {},
	}
}

func TestServer_RouterSetup_NoAnalytics(t *testing.T) {
	s := &Server{config: &config.Config{}, metricsManager: metrics.NewTestManager()}
	_, err := s.routerSetup()
	require.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	router, err := s.routerSetup()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test-version", resp.Version)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metricsManager.CounterRequests.WithLabelValues("GET", "200")))
}

func TestServer_UnknownPath(t *testing.T) {
	s := newTestServer(t)
	router, err := s.routerSetup()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/blog", nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_MCPRateLimited(t *testing.T) {
	s := newTestServer(t)
	limiter := &denyingLimiter{}
	s.rateLimiter = limiter

	router, err := s.routerSetup()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, 1, limiter.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metricsManager.CounterRateLimitedRequests))
}

func TestServer_MCPOverHTTP(t *testing.T) {
	s := newTestServer(t)
	router, err := s.routerSetup()
	require.NoError(t, err)

	ts := httptest.NewServer(router)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp"}, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 6)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "suggest_next_workout",
		Arguments: map[string]any{
			"user_id":  "u1",
			"exercise": "squat",
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var suggestion records.ProgressionSuggestion
	require.NoError(t, json.Unmarshal([]byte(text.Text), &suggestion))
	assert.Equal(t, 110.0, suggestion.Weight)
}
