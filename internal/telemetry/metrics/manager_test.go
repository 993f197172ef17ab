package metrics_test

import (
	"testing"

	"github.com/2beens/gymstats/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	promcl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersCollectors(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	require.NotNil(t, m)

	m.CounterGoalPredictions.WithLabelValues("body_weight", "likely").Inc()
	m.CounterGoalPredictions.WithLabelValues("body_weight", "likely").Inc()
	m.CounterSuggestions.WithLabelValues("weekly", "progressing").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterGoalPredictions.WithLabelValues("body_weight", "likely")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSuggestions.WithLabelValues("weekly", "progressing")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["gymstats_test_server_goal_predictions"])
	assert.True(t, names["gymstats_test_server_progression_suggestions"])
}

func TestNewManager_AnalysisHistogram(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	m.HistogramAnalysis.WithLabelValues("predict_goals").Observe(0.02)
	m.HistogramAnalysis.WithLabelValues("predict_goals").Observe(0.3)

	gathered, err := reg.Gather()
	require.NoError(t, err)

	var found *promcl.MetricFamily
	for _, f := range gathered {
		if f.GetName() == "gymstats_test_server_analysis_duration_seconds" {
			found = f
			break
		}
	}
	require.NotNil(t, found)
	require.Len(t, found.Metric, 1)
	assert.Equal(t, uint64(2), found.Metric[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.32, found.Metric[0].GetHistogram().GetSampleSum(), 1e-9)
}

func TestSetupPrometheus(t *testing.T) {
	reg := metrics.SetupPrometheus(nil)
	require.NotNil(t, reg)
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
