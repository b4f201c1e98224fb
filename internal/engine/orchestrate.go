package engine

import (
	"context"
	"time"

	"goa.design/hierarchical-agents/internal/collaborators"
	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
)

// run drives one session's sub-teams in topological order, each through
// its own routing-then-worker iteration loop, persisting and emitting
// progress as it goes. It never returns an error: terminal failures are
// recorded into the session/state store instead, matching
// original_source's "a team's failure does not crash the engine" contract.
func (e *Engine) run(ctx context.Context, session *Session) {
	session.setStatus(model.StatusRunning)
	_ = e.store.UpdateStatus(ctx, session.executionID, model.StatusRunning)

	if session.team.Spec.Global.MaxTotalExecutionSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(session.team.Spec.Global.MaxTotalExecutionSeconds)*time.Second)
		defer cancel()
	}

	failed := false
	globalStop := false
	failedTeams := map[string]bool{}
	teamsExecuted := 0
	agentsInvolved := map[string]struct{}{}

	for _, teamID := range session.team.Order {
		e.waitWhilePaused(session)

		if globalStop {
			e.recordTeamSkipped(ctx, session, teamID)
			continue
		}
		if session.cancelRequested() {
			e.recordTeamSkipped(ctx, session, teamID)
			globalStop = true
			continue
		}
		if blockedByFailedDependency(session, teamID, failedTeams) {
			e.recordTeamSkipped(ctx, session, teamID)
			continue
		}

		subTeam, _ := session.team.SubTeam(teamID)
		result, runErr := e.runSubTeam(ctx, session, subTeam)
		teamsExecuted++
		for agentID := range result.Agents {
			agentsInvolved[agentID] = struct{}{}
		}

		_ = e.store.UpdateTeamResult(ctx, session.executionID, teamID, result)
		_ = e.store.UpdateTeamState(ctx, session.executionID, model.TeamState{
			TeamID:          teamID,
			DependenciesMet: true,
			ExecutionStatus: result.Status,
		})
		e.bus.EmitTeamCompleted(ctx, session.executionID, teamID, result.Status)

		if runErr != nil {
			failed = true
			// Only sub-teams that transitively depend on this one are
			// blocked; independent branches of the DAG still run.
			failedTeams[teamID] = true
			_ = e.store.AddError(ctx, session.executionID, model.ErrorInfo{
				Code:      string(errs.KindOf(runErr)),
				Message:   runErr.Error(),
				Timestamp: time.Now().UTC(),
				Context:   map[string]any{"team_id": teamID},
			})
		}
		if ctx.Err() != nil {
			// Total execution budget exhausted: this applies to the whole
			// run, not just dependents, so every remaining team is skipped.
			failed = true
			globalStop = true
		}
	}

	finalStatus := model.StatusCompleted
	if failed {
		finalStatus = model.StatusFailed
	}
	session.setStatus(finalStatus)
	_ = e.store.UpdateStatus(ctx, session.executionID, finalStatus)

	completedAt := time.Now().UTC()
	duration := session.Duration().Seconds()
	_ = e.store.UpdateSummary(ctx, session.executionID, model.ExecutionSummary{
		OverallStatus:  string(finalStatus),
		StartedAt:      session.startedAt,
		CompletedAt:    &completedAt,
		TotalDuration:  &duration,
		TeamsExecuted:  teamsExecuted,
		AgentsInvolved: len(agentsInvolved),
	})

	e.bus.EmitExecutionCompleted(ctx, session.executionID, finalStatus)
}

func (e *Engine) waitWhilePaused(session *Session) {
	for {
		select {
		case paused := <-session.pauseSignal:
			if !paused {
				return
			}
			session.setStatus(model.StatusPaused)
			for {
				resumed := <-session.pauseSignal
				if !resumed {
					session.setStatus(model.StatusRunning)
					return
				}
			}
		default:
			return
		}
	}
}

// blockedByFailedDependency reports whether teamID transitively depends
// (directly or through intermediate sub-teams) on any sub-team already in
// failedTeams, per spec.md's "only dependents of the failed team are
// skipped" rule — sibling branches with no such dependency still run.
func blockedByFailedDependency(session *Session, teamID string, failedTeams map[string]bool) bool {
	if len(failedTeams) == 0 {
		return false
	}
	visited := map[string]bool{}
	var dependsOnFailure func(id string) bool
	dependsOnFailure = func(id string) bool {
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, dep := range session.team.Dependencies(id) {
			if failedTeams[dep] || dependsOnFailure(dep) {
				return true
			}
		}
		return false
	}
	return dependsOnFailure(teamID)
}

func (e *Engine) recordTeamSkipped(ctx context.Context, session *Session, teamID string) {
	_ = e.store.UpdateTeamState(ctx, session.executionID, model.TeamState{
		TeamID:          teamID,
		DependenciesMet: false,
		ExecutionStatus: model.TeamSkipped,
	})
	_ = e.store.UpdateTeamResult(ctx, session.executionID, teamID, model.TeamResult{Status: model.TeamSkipped})
	e.bus.EmitTeamCompleted(ctx, session.executionID, teamID, model.TeamSkipped)
}

// runSubTeam drives one sub-team's supervisor routing + worker execution
// loop for up to the supervisor's configured MaxIterations.
func (e *Engine) runSubTeam(ctx context.Context, session *Session, subTeam model.SubTeam) (model.TeamResult, error) {
	start := time.Now()
	e.bus.EmitTeamStarted(ctx, session.executionID, subTeam.TeamID)
	_ = e.store.UpdateTeamState(ctx, session.executionID, model.TeamState{
		TeamID:          subTeam.TeamID,
		DependenciesMet: true,
		ExecutionStatus: model.TeamRunning,
	})

	byID := make(map[string]model.WorkerConfig, len(subTeam.Agents))
	byName := make(map[string]model.WorkerConfig, len(subTeam.Agents))
	candidates := make([]collaborators.AgentDescriptor, 0, len(subTeam.Agents))
	agentNames := make([]string, 0, len(subTeam.Agents))
	for _, w := range subTeam.Agents {
		byID[w.AgentID] = w
		byName[w.AgentName] = w
		candidates = append(candidates, collaborators.AgentDescriptor{ID: w.AgentID, Name: w.AgentName, Description: w.SystemPrompt})
		agentNames = append(agentNames, w.AgentName)
	}

	agentResults := make(map[string]model.WorkerResult, len(subTeam.Agents))
	maxIterations := subTeam.Supervisor.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 1
	}

	for iter := 0; iter < maxIterations; iter++ {
		if ctx.Err() != nil {
			return finalizeTeamResult(agentResults, model.TeamFailed, start),
				errs.Wrap(errs.KindBudgetExhausted, "time budget exceeded", ctx.Err())
		}
		if session.cancelRequested() && !session.isGraceful() {
			return finalizeTeamResult(agentResults, model.TeamFailed, start), errs.New(errs.KindCancellation, "execution cancelled")
		}

		decision, err := e.router.Route(ctx, collaborators.RouteRequest{
			ExecutionID: session.executionID,
			TeamID:      subTeam.TeamID,
			Task:        subTeam.Supervisor.UserPrompt,
			Candidates:  candidates,
		})
		if err != nil {
			return finalizeTeamResult(agentResults, model.TeamFailed, start), err
		}
		e.bus.EmitSupervisorRouting(ctx, session.executionID, subTeam.TeamID, decision.SelectedAgent, decision.Reasoning)
		if decision.Done {
			return finalizeTeamResult(agentResults, model.TeamCompleted, start), nil
		}

		worker, ok := byName[decision.SelectedAgent]
		if !ok {
			worker, ok = byID[decision.SelectedAgent]
		}
		if !ok {
			// The router returned a name the registry doesn't recognize:
			// fall back to the closest lexical match among this team's
			// agent names, or the first agent if nothing is close.
			fallbackName := collaborators.ClosestMatch(decision.SelectedAgent, agentNames)
			worker, ok = byName[fallbackName]
			if !ok {
				e.bus.EmitWarning(ctx, session.executionID, subTeam.TeamID, "routed to unknown agent "+decision.SelectedAgent+" and no worker available to fall back to")
				continue
			}
			e.bus.EmitWarning(ctx, session.executionID, subTeam.TeamID, "routed to unknown agent "+decision.SelectedAgent+", falling back to "+worker.AgentID)
		}

		e.bus.EmitAgentStarted(ctx, session.executionID, subTeam.TeamID, worker.AgentID, worker.AgentName)
		runResult, err := e.runner.Run(ctx, collaborators.RunRequest{
			ExecutionID:  session.executionID,
			TeamID:       subTeam.TeamID,
			AgentID:      worker.AgentID,
			SystemPrompt: worker.SystemPrompt,
			UserPrompt:   worker.UserPrompt,
			Task:         decision.Reasoning,
			Tools:        worker.Tools,
			Iteration:    iter,
		})
		if err != nil {
			// A worker error is recorded but does not by itself abort the
			// team: the supervisor gets to route to an alternate worker
			// (or the same one again) on its next iteration.
			e.bus.EmitAgentError(ctx, session.executionID, subTeam.TeamID, worker.AgentID, err.Error())
			agentResults[worker.AgentID] = model.WorkerResult{Status: model.TeamFailed, Output: err.Error()}
			_ = e.store.AddError(ctx, session.executionID, model.ErrorInfo{
				Code:      string(errs.KindOf(err)),
				Message:   err.Error(),
				Timestamp: time.Now().UTC(),
				Context:   map[string]any{"team_id": subTeam.TeamID, "agent_id": worker.AgentID},
			})
			continue
		}
		e.bus.EmitAgentCompleted(ctx, session.executionID, subTeam.TeamID, worker.AgentID, runResult.Output)
		agentResults[worker.AgentID] = model.WorkerResult{
			Status:   model.TeamCompleted,
			Output:   runResult.Output,
			Tools:    runResult.ToolsRun,
			Usage:    model.Usage{Tokens: runResult.Usage.Tokens, APICalls: runResult.Usage.APICalls},
		}

		if session.cancelRequested() && !session.isGraceful() {
			return finalizeTeamResult(agentResults, model.TeamFailed, start), errs.New(errs.KindCancellation, "execution cancelled")
		}

		if runResult.Done {
			return finalizeTeamResult(agentResults, model.TeamCompleted, start), nil
		}
	}

	// Every iteration ran without the supervisor declaring the team done or
	// a worker declaring its work complete: the team exhausted its
	// iteration budget without reaching completion.
	return finalizeTeamResult(agentResults, model.TeamFailed, start),
		errs.New(errs.KindBudgetExhausted, "max iterations exhausted without completion")
}

func finalizeTeamResult(agents map[string]model.WorkerResult, status model.TeamRunStatus, start time.Time) model.TeamResult {
	output := ""
	for _, r := range agents {
		if r.Output != "" {
			output = r.Output
		}
	}
	return model.TeamResult{
		Status:          status,
		DurationSeconds: time.Since(start).Seconds(),
		Agents:          agents,
		Output:          output,
	}
}
