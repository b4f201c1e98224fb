package formatter

import (
	"time"

	"goa.design/hierarchical-agents/internal/model"
)

// GenerateSummary derives an ExecutionSummary from team results, events,
// errors and the run's start time. Grounded on
// original_source/.../output_formatter.py's SummaryGenerator.
func GenerateSummary(executionID string, teamResults map[string]model.TeamResult, events []model.ExecutionEvent, errors []model.ErrorInfo, startedAt time.Time) model.ExecutionSummary {
	status := determineOverallStatus(teamResults, errors)
	completedAt := extractCompletedAt(events)

	agentsInvolved := 0
	for _, r := range teamResults {
		agentsInvolved += len(r.Agents)
	}

	var totalDuration *float64
	if completedAt != nil {
		d := completedAt.Sub(startedAt).Seconds()
		totalDuration = &d
	}

	return model.ExecutionSummary{
		OverallStatus:  status,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
		TotalDuration:  totalDuration,
		TeamsExecuted:  len(teamResults),
		AgentsInvolved: agentsInvolved,
	}
}

// determineOverallStatus mirrors original_source's _determine_overall_status:
// any failed team fails the run; all-completed completes it; otherwise the
// run is still in progress.
func determineOverallStatus(teamResults map[string]model.TeamResult, errors []model.ErrorInfo) string {
	if len(teamResults) == 0 {
		if len(errors) > 0 {
			return string(model.StatusFailed)
		}
		return string(model.StatusPending)
	}
	completed := 0
	for _, r := range teamResults {
		if r.Status == model.TeamFailed {
			return string(model.StatusFailed)
		}
		if r.Status == model.TeamCompleted {
			completed++
		}
	}
	if completed == len(teamResults) {
		return string(model.StatusCompleted)
	}
	return string(model.StatusRunning)
}

// extractCompletedAt mirrors original_source's _extract_timing_info's
// completion branch: the last execution_completed event's timestamp, or
// nil if the run has not produced one yet.
func extractCompletedAt(events []model.ExecutionEvent) *time.Time {
	var completedAt *time.Time
	for _, e := range events {
		if e.EventType != "execution_completed" {
			continue
		}
		t := e.Timestamp
		completedAt = &t
	}
	return completedAt
}
