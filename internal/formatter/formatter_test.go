package formatter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/hierarchical-agents/internal/formatter"
	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/statestore"
)

func TestCalculateMetrics_PrefersExactUsageOverHeuristic(t *testing.T) {
	teamResults := map[string]model.TeamResult{
		"research": {
			Status: model.TeamCompleted,
			Agents: map[string]model.WorkerResult{
				"r1": {Status: model.TeamCompleted, Usage: model.Usage{Tokens: 120, APICalls: 2}},
			},
		},
	}
	metrics := formatter.CalculateMetrics(teamResults, nil)
	assert.Equal(t, 120, metrics.TotalTokensUsed)
	assert.Equal(t, 2, metrics.APICallsMade)
	assert.Equal(t, 1.0, metrics.SuccessRate)
}

func TestCalculateMetrics_FallsBackToHeuristicWhenUsageZero(t *testing.T) {
	teamResults := map[string]model.TeamResult{
		"research": {
			Status: model.TeamCompleted,
			Output: "a result of sixteen chars",
			Agents: map[string]model.WorkerResult{
				"r1": {Status: model.TeamCompleted},
			},
		},
	}
	events := []model.ExecutionEvent{
		{EventType: "supervisor_routing"},
		{EventType: "agent_completed"},
	}
	metrics := formatter.CalculateMetrics(teamResults, events)
	assert.Greater(t, metrics.TotalTokensUsed, 0)
	assert.Equal(t, 2, metrics.APICallsMade)
}

func TestCalculateMetrics_AverageResponseTimeFromEventPairs(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []model.ExecutionEvent{
		{EventType: "agent_started", WorkerID: "w1", Timestamp: start},
		{EventType: "agent_completed", WorkerID: "w1", Timestamp: start.Add(2 * time.Second)},
	}
	metrics := formatter.CalculateMetrics(map[string]model.TeamResult{}, events)
	assert.InDelta(t, 2.0, metrics.AverageResponseTime, 0.001)
}

func TestGenerateSummary_AnyFailedTeamFailsOverallStatus(t *testing.T) {
	teamResults := map[string]model.TeamResult{
		"a": {Status: model.TeamCompleted},
		"b": {Status: model.TeamFailed},
	}
	summary := formatter.GenerateSummary("exec1", teamResults, nil, nil, time.Now())
	assert.Equal(t, string(model.StatusFailed), summary.OverallStatus)
}

func TestGenerateSummary_AllCompletedIsCompleted(t *testing.T) {
	teamResults := map[string]model.TeamResult{
		"a": {Status: model.TeamCompleted},
		"b": {Status: model.TeamCompleted},
	}
	summary := formatter.GenerateSummary("exec1", teamResults, nil, nil, time.Now())
	assert.Equal(t, string(model.StatusCompleted), summary.OverallStatus)
}

func TestGenerateSummary_NoTeamsWithErrorsIsFailed(t *testing.T) {
	summary := formatter.GenerateSummary("exec1", map[string]model.TeamResult{}, nil, []model.ErrorInfo{{Code: "x"}}, time.Now())
	assert.Equal(t, string(model.StatusFailed), summary.OverallStatus)
}

func TestFormat_UnknownExecution_NotFound(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	_, err := formatter.Format(context.Background(), store, "missing")
	require.Error(t, err)
}

func TestFormat_ComposesStoredState(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "exec1", "team1", model.ExecutionContext{ExecutionID: "exec1", StartedAt: time.Now()}))
	require.NoError(t, store.UpdateTeamResult(ctx, "exec1", "research", model.TeamResult{
		Status: model.TeamCompleted,
		Agents: map[string]model.WorkerResult{"r1": {Status: model.TeamCompleted, Usage: model.Usage{Tokens: 10, APICalls: 1}}},
	}))

	out, err := formatter.Format(ctx, store, "exec1")
	require.NoError(t, err)
	assert.Equal(t, "exec1", out.ExecutionID)
	assert.Contains(t, out.TeamResults, "research")
	assert.Equal(t, 10, out.Metrics.TotalTokensUsed)
}
