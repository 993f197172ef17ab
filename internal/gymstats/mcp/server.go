package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the gymstats analytics tools: weight trend,
// plateaus, next workout suggestion, goal predictions, goal progress refresh and
// weight/volume correlation.
// Used by the service when mounting MCP at /mcp and by the stdio command.
func NewServer(service analyticsService) *mcp.Server {
	h := NewHandler(service, nil)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "gymstats-analytics",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weight_trend",
		Description: "Returns the body weight trend (slope per day, weekly rate, direction, R² confidence) plus the raw and moving-average smoothed series. Args: user_id; optional: from_date, to_date (YYYY-MM-DD), window.",
	}, h.GetWeightTrendTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_plateaus",
		Description: "Returns per-exercise plateau periods (flat volume runs), intensity sticking points, estimated 1RM and recommendations. Args: user_id; optional: exercise, from_date, to_date (YYYY-MM-DD).",
	}, h.GetPlateausTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "suggest_next_workout",
		Description: "Suggests sets, reps and weight for the next session using progressive overload (progressing, retry or deload). Args: user_id; optional: exercise (empty means every logged exercise).",
	}, h.SuggestNextWorkoutTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "predict_goals",
		Description: "Predicts how likely each active goal is to be reached by its target date, with predicted completion and insights, plus a batch summary. Arg: user_id.",
	}, h.PredictGoalsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "refresh_goal_progress",
		Description: "Recomputes the current value of every active goal from the logs and stores the ones that changed. Arg: user_id.",
	}, h.RefreshGoalProgressTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weight_volume_correlation",
		Description: "Correlates body weight with daily training volume (Pearson r, strength, p-value) and explains what it suggests (muscle gain, cutting, independent). Args: user_id; optional: from_date, to_date (YYYY-MM-DD).",
	}, h.GetWeightVolumeCorrelationTool())

	return s
}
