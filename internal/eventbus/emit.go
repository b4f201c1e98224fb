package eventbus

import (
	"context"
	"time"

	"goa.design/hierarchical-agents/internal/model"
)

func progressPtr(p int) *int { return &p }

// EmitExecutionStarted publishes the execution_started event.
func (b *Bus) EmitExecutionStarted(ctx context.Context, executionID, teamID string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "execution_started",
		SourceType:  model.SourceSystem,
		ExecutionID: executionID,
		TeamID:      teamID,
	})
}

// EmitTeamStarted publishes the team_started event.
func (b *Bus) EmitTeamStarted(ctx context.Context, executionID, teamID string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "team_started",
		SourceType:  model.SourceSystem,
		ExecutionID: executionID,
		TeamID:      teamID,
	})
}

// EmitSupervisorRouting publishes the supervisor_routing event, recording
// which worker was selected (and, when present, the supervisor's reasoning
// as the event content).
func (b *Bus) EmitSupervisorRouting(ctx context.Context, executionID, teamID, selectedAgent, reasoning string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:     time.Now().UTC(),
		EventType:     "supervisor_routing",
		SourceType:    model.SourceSupervisor,
		ExecutionID:   executionID,
		TeamID:        teamID,
		SelectedAgent: selectedAgent,
		Content:       reasoning,
	})
}

// EmitAgentStarted publishes the agent_started event.
func (b *Bus) EmitAgentStarted(ctx context.Context, executionID, teamID, workerID, workerName string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "agent_started",
		SourceType:  model.SourceAgent,
		ExecutionID: executionID,
		TeamID:      teamID,
		WorkerID:    workerID,
		WorkerName:  workerName,
	})
}

// EmitAgentProgress publishes an agent_progress event.
func (b *Bus) EmitAgentProgress(ctx context.Context, executionID, teamID, workerID string, progress int, content string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "agent_progress",
		SourceType:  model.SourceAgent,
		ExecutionID: executionID,
		TeamID:      teamID,
		WorkerID:    workerID,
		Progress:    progressPtr(progress),
		Content:     content,
	})
}

// EmitAgentCompleted publishes the agent_completed event.
func (b *Bus) EmitAgentCompleted(ctx context.Context, executionID, teamID, workerID, result string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "agent_completed",
		SourceType:  model.SourceAgent,
		ExecutionID: executionID,
		TeamID:      teamID,
		WorkerID:    workerID,
		Status:      "completed",
		Result:      result,
	})
}

// EmitAgentError publishes the agent_error event.
func (b *Bus) EmitAgentError(ctx context.Context, executionID, teamID, workerID, errMsg string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "agent_error",
		SourceType:  model.SourceAgent,
		ExecutionID: executionID,
		TeamID:      teamID,
		WorkerID:    workerID,
		Status:      "failed",
		Content:     errMsg,
	})
}

// EmitTeamCompleted publishes team_completed, team_failed or team_skipped
// depending on status.
func (b *Bus) EmitTeamCompleted(ctx context.Context, executionID, teamID string, status model.TeamRunStatus) {
	eventType := "team_completed"
	if status == model.TeamFailed {
		eventType = "team_failed"
	} else if status == model.TeamSkipped {
		eventType = "team_skipped"
	}
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		SourceType:  model.SourceSystem,
		ExecutionID: executionID,
		TeamID:      teamID,
		Status:      string(status),
	})
}

// EmitExecutionCompleted publishes the execution_completed event, the
// terminal event every SSE stream must see before closing cleanly.
func (b *Bus) EmitExecutionCompleted(ctx context.Context, executionID string, status model.ExecutionStatus) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "execution_completed",
		SourceType:  model.SourceSystem,
		ExecutionID: executionID,
		Status:      string(status),
	})
}

// EmitWarning publishes a system-sourced warning event (e.g. supervisor
// fallback-match warnings per spec.md §4.5).
func (b *Bus) EmitWarning(ctx context.Context, executionID, teamID, content string) {
	b.Publish(ctx, model.ExecutionEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   "warning",
		SourceType:  model.SourceSystem,
		ExecutionID: executionID,
		TeamID:      teamID,
		Content:     content,
	})
}
