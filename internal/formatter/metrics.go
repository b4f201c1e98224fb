// Package formatter turns a persisted ExecutionState into the
// StandardizedOutput the HTTP API returns: computed metrics (success
// rate, average response time, token/API-call usage preferring exact
// counters) and a derived summary. Grounded on
// original_source/.../output_formatter.py's MetricsCalculator and
// SummaryGenerator classes.
package formatter

import (
	"goa.design/hierarchical-agents/internal/model"
)

// CalculateMetrics computes ExecutionMetrics from team results and events.
// Token/API-call usage prefers the exact Usage counters an AgentRunner
// reported (Resolved Open Question #2, SPEC_FULL.md §13); it falls back
// to the original's heuristic estimate only when every worker result
// carries a zero-value Usage.
func CalculateMetrics(teamResults map[string]model.TeamResult, events []model.ExecutionEvent) model.ExecutionMetrics {
	totalTeams := len(teamResults)
	successfulTeams := 0
	for _, r := range teamResults {
		if r.Status == model.TeamCompleted {
			successfulTeams++
		}
	}
	successRate := 0.0
	if totalTeams > 0 {
		successRate = float64(successfulTeams) / float64(totalTeams)
	}

	avgResponseTime := averageResponseTime(events)

	tokens, apiCalls, exact := exactUsage(teamResults)
	if !exact {
		tokens = estimateTokenUsage(teamResults, events)
		apiCalls = estimateAPICalls(events)
	}

	return model.ExecutionMetrics{
		TotalTokensUsed:     tokens,
		APICallsMade:        apiCalls,
		SuccessRate:         successRate,
		AverageResponseTime: avgResponseTime,
	}
}

func averageResponseTime(events []model.ExecutionEvent) float64 {
	starts := map[string]int64{}
	var durations []float64
	for _, e := range events {
		switch e.EventType {
		case "agent_started":
			if e.WorkerID != "" {
				starts[e.WorkerID] = e.Timestamp.UnixNano()
			}
		case "agent_completed":
			if e.WorkerID == "" {
				continue
			}
			if startedAt, ok := starts[e.WorkerID]; ok {
				durations = append(durations, float64(e.Timestamp.UnixNano()-startedAt)/1e9)
			}
		}
	}
	if len(durations) == 0 {
		return 0
	}
	var sum float64
	for _, d := range durations {
		sum += d
	}
	return sum / float64(len(durations))
}

// exactUsage sums each worker's Usage counters when at least one is
// non-zero, signalling that the caller's AgentRunner reported real usage.
func exactUsage(teamResults map[string]model.TeamResult) (tokens, apiCalls int, exact bool) {
	for _, team := range teamResults {
		for _, worker := range team.Agents {
			if !worker.Usage.IsZero() {
				exact = true
			}
			tokens += worker.Usage.Tokens
			apiCalls += worker.Usage.APICalls
		}
	}
	return tokens, apiCalls, exact
}

// estimateTokenUsage mirrors original_source's _estimate_token_usage: a
// flat per-agent-execution base, a per-routing-decision addend, and a
// rough 1-token-per-4-characters charge for team output length.
func estimateTokenUsage(teamResults map[string]model.TeamResult, events []model.ExecutionEvent) int {
	totalAgents := 0
	outputTokens := 0
	for _, r := range teamResults {
		totalAgents += len(r.Agents)
		outputTokens += (len(r.Output) + 3) / 4
	}
	supervisorEvents := 0
	for _, e := range events {
		if e.EventType == "supervisor_routing" {
			supervisorEvents++
		}
	}
	return totalAgents*100 + supervisorEvents*50 + outputTokens
}

// estimateAPICalls mirrors original_source's _estimate_api_calls: counts
// agent completions and supervisor routing decisions as API calls.
func estimateAPICalls(events []model.ExecutionEvent) int {
	count := 0
	for _, e := range events {
		if e.EventType == "agent_completed" || e.EventType == "supervisor_routing" {
			count++
		}
	}
	return count
}
