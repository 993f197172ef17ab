package mcp

import (
	"context"
	"sort"
	"testing"

	"github.com/2beens/gymstats/internal/gymstats/records"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestNewServer_ListsAndCallsTools(t *testing.T) {
	ctx := context.Background()
	svc := &mockAnalyticsService{suggestion: &records.ProgressionSuggestion{Exercise: "Squat", Weight: 60}}
	server := NewServer(svc)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer func() {
		_ = clientSession.Close()
		_ = serverSession.Wait()
	}()

	tools, err := clientSession.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{
		"get_plateaus",
		"get_weight_trend",
		"get_weight_volume_correlation",
		"predict_goals",
		"refresh_goal_progress",
		"suggest_next_workout",
	}
	if len(names) != len(want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tools = %v, want %v", names, want)
		}
	}

	res, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      "suggest_next_workout",
		Arguments: map[string]any{"user_id": "u1", "exercise": "Squat"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected IsError")
	}
	if svc.gotUserID != "u1" || svc.gotExercise != "Squat" {
		t.Fatalf("service called with %q/%q", svc.gotUserID, svc.gotExercise)
	}
}
