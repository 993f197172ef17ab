package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/gymstats/internal/gymstats"
	"github.com/2beens/gymstats/internal/gymstats/analytics"
	"github.com/2beens/gymstats/internal/gymstats/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`[development]
log_level = "error"
store_backend = "sqlite"
sqlite_path = %q
cache_backend = "none"
`, filepath.Join(dir, "gymstats.db"))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd, app := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	require.NoError(t, app.close())
	return out.String(), err
}

func TestCLI_SeedThenReports(t *testing.T) {
	configPath := writeTestConfig(t)
	common := []string{"--config", configPath, "--user", "demo", "--now", "2026-06-30"}

	out, err := runCLI(t, append([]string{"seed", "--days", "60", "--seed", "3"}, common...)...)
	require.NoError(t, err)
	var summary gymstats.SeedSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 4, summary.Goals)
	assert.Positive(t, summary.Workouts)

	out, err = runCLI(t, append([]string{"predict"}, common...)...)
	require.NoError(t, err)
	var predictions analytics.GoalPredictions
	require.NoError(t, json.Unmarshal([]byte(out), &predictions))
	assert.Len(t, predictions.Outcomes, 4)
	assert.NotEmpty(t, predictions.BatchID)

	out, err = runCLI(t, append([]string{"trend", "--from", "2026-06-01"}, common...)...)
	require.NoError(t, err)
	var trend analytics.WeightTrendReport
	require.NoError(t, json.Unmarshal([]byte(out), &trend))
	assert.NotEmpty(t, trend.Points)
	for _, p := range trend.Points {
		assert.Equal(t, 6, int(p.Date.Month()))
	}

	out, err = runCLI(t, append([]string{"suggest", "--exercise", "squat"}, common...)...)
	require.NoError(t, err)
	var suggestion records.ProgressionSuggestion
	require.NoError(t, json.Unmarshal([]byte(out), &suggestion))
	assert.Equal(t, "squat", suggestion.Exercise)
	assert.Positive(t, suggestion.Weight)

	_, err = runCLI(t, append([]string{"correlate"}, common...)...)
	require.NoError(t, err)

	_, err = runCLI(t, append([]string{"plateaus"}, common...)...)
	require.NoError(t, err)
}

func TestCLI_InvalidInput(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCLI(t, "trend", "--config", configPath)
	require.ErrorIs(t, err, records.ErrInvalidInput)

	_, err = runCLI(t, "trend", "--config", configPath, "--user", "demo", "--from", "01/06/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --from")

	_, err = runCLI(t, "predict", "--config", configPath, "--user", "demo", "--now", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --now")
}

func TestCLI_MissingConfig(t *testing.T) {
	_, err := runCLI(t, "trend", "--config", filepath.Join(t.TempDir(), "nope.toml"), "--user", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
