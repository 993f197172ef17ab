package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/2beens/gymstats/internal/gymstats/analytics"
	"github.com/2beens/gymstats/internal/gymstats/records"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service analyticsService
	now     func() time.Time
}

// NewHandler builds a handler with the given service. now defaults to time.Now.
func NewHandler(service analyticsService, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		service: service,
		now:     now,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// serviceErrorResult tells bad input apart from failures on our side.
func serviceErrorResult(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, records.ErrInvalidInput) {
		return errorResult("Invalid input: " + err.Error())
	}
	log.Errorf("mcp: %s: %s", action, err)
	return errorResult("Error " + action + ": " + err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

// parseRange reads optional YYYY-MM-DD bounds; to_date includes the whole day.
func parseRange(fromDate, toDate string) (analytics.RangeParams, error) {
	var r analytics.RangeParams
	if fromDate != "" {
		from, err := time.Parse(dateLayout, fromDate)
		if err != nil {
			return r, errors.New("invalid from_date: use YYYY-MM-DD")
		}
		r.From = &from
	}
	if toDate != "" {
		to, err := time.Parse(dateLayout, toDate)
		if err != nil {
			return r, errors.New("invalid to_date: use YYYY-MM-DD")
		}
		to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 999999999, to.Location())
		r.To = &to
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, errors.New("invalid range: to_date is before from_date")
	}
	return r, nil
}

// WeightTrendInput is the input for get_weight_trend.
type WeightTrendInput struct {
	UserID   string `json:"user_id" jsonschema:"User whose body weight log to analyse"`
	FromDate string `json:"from_date,omitempty" jsonschema:"Start date (YYYY-MM-DD)"`
	ToDate   string `json:"to_date,omitempty" jsonschema:"End date (YYYY-MM-DD)"`
	Window   int    `json:"window,omitempty" jsonschema:"Moving average window in data points (default 7)"`
}

// GetWeightTrendTool returns the MCP tool handler for get_weight_trend.
func (h *Handler) GetWeightTrendTool() func(context.Context, *mcp.CallToolRequest, WeightTrendInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WeightTrendInput) (*mcp.CallToolResult, any, error) {
		r, err := parseRange(in.FromDate, in.ToDate)
		if err != nil {
			return errorResult("Invalid input: " + err.Error()), nil, nil
		}
		report, err := h.service.WeightTrend(ctx, in.UserID, r, in.Window)
		if err != nil {
			return serviceErrorResult("computing weight trend", err), nil, nil
		}
		return jsonResult(report), nil, nil
	}
}

// PlateausInput is the input for get_plateaus.
type PlateausInput struct {
	UserID   string `json:"user_id" jsonschema:"User whose workout log to analyse"`
	Exercise string `json:"exercise,omitempty" jsonschema:"Only analyse this exercise (e.g. Bench Press)"`
	FromDate string `json:"from_date,omitempty" jsonschema:"Start date (YYYY-MM-DD)"`
	ToDate   string `json:"to_date,omitempty" jsonschema:"End date (YYYY-MM-DD)"`
}

// GetPlateausTool returns the MCP tool handler for get_plateaus.
func (h *Handler) GetPlateausTool() func(context.Context, *mcp.CallToolRequest, PlateausInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PlateausInput) (*mcp.CallToolResult, any, error) {
		r, err := parseRange(in.FromDate, in.ToDate)
		if err != nil {
			return errorResult("Invalid input: " + err.Error()), nil, nil
		}
		reports, err := h.service.Plateaus(ctx, in.UserID, in.Exercise, r)
		if err != nil {
			return serviceErrorResult("detecting plateaus", err), nil, nil
		}
		return jsonResult(reports), nil, nil
	}
}

// SuggestInput is the input for suggest_next_workout.
type SuggestInput struct {
	UserID   string `json:"user_id" jsonschema:"User to suggest for"`
	Exercise string `json:"exercise,omitempty" jsonschema:"Exercise to suggest for; empty suggests for every logged exercise"`
}

// SuggestNextWorkoutTool returns the MCP tool handler for suggest_next_workout.
func (h *Handler) SuggestNextWorkoutTool() func(context.Context, *mcp.CallToolRequest, SuggestInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SuggestInput) (*mcp.CallToolResult, any, error) {
		if in.Exercise == "" {
			suggestions, err := h.service.SuggestAll(ctx, in.UserID)
			if err != nil {
				return serviceErrorResult("suggesting workouts", err), nil, nil
			}
			return jsonResult(suggestions), nil, nil
		}

		suggestion, err := h.service.SuggestNext(ctx, in.UserID, in.Exercise)
		if err != nil {
			return serviceErrorResult("suggesting workout", err), nil, nil
		}
		return jsonResult(suggestion), nil, nil
	}
}

// UserInput is the input for tools that only need the user.
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"User whose goals to evaluate"`
}

// PredictGoalsTool returns the MCP tool handler for predict_goals.
func (h *Handler) PredictGoalsTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		predictions, err := h.service.PredictGoals(ctx, in.UserID, h.now())
		if err != nil {
			return serviceErrorResult("predicting goals", err), nil, nil
		}
		return jsonResult(predictions), nil, nil
	}
}

// RefreshGoalProgressTool returns the MCP tool handler for refresh_goal_progress.
func (h *Handler) RefreshGoalProgressTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		refresh, err := h.service.RefreshGoalProgress(ctx, in.UserID, h.now())
		if err != nil && refresh == nil {
			return serviceErrorResult("refreshing goal progress", err), nil, nil
		}
		res := jsonResult(refresh)
		if err != nil {
			log.Warnf("mcp: refresh goal progress partially failed: %s", err)
			res.IsError = true
			res.Content = append([]mcp.Content{
				&mcp.TextContent{Text: "Some goal updates failed: " + err.Error()},
			}, res.Content...)
		}
		return res, nil, nil
	}
}

// CorrelationInput is the input for get_weight_volume_correlation.
type CorrelationInput struct {
	UserID   string `json:"user_id" jsonschema:"User whose logs to correlate"`
	FromDate string `json:"from_date,omitempty" jsonschema:"Start date (YYYY-MM-DD)"`
	ToDate   string `json:"to_date,omitempty" jsonschema:"End date (YYYY-MM-DD)"`
}

// GetWeightVolumeCorrelationTool returns the MCP tool handler for get_weight_volume_correlation.
func (h *Handler) GetWeightVolumeCorrelationTool() func(context.Context, *mcp.CallToolRequest, CorrelationInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CorrelationInput) (*mcp.CallToolResult, any, error) {
		r, err := parseRange(in.FromDate, in.ToDate)
		if err != nil {
			return errorResult("Invalid input: " + err.Error()), nil, nil
		}
		analysis, err := h.service.WeightVolumeCorrelation(ctx, in.UserID, r)
		if err != nil {
			return serviceErrorResult("correlating weight and volume", err), nil, nil
		}
		return jsonResult(analysis), nil, nil
	}
}
