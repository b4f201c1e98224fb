package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"goa.design/hierarchical-agents/internal/ids"
	"goa.design/hierarchical-agents/internal/model"
)

// getExecution handles GET /api/v1/executions/{execution_id}.
func (s *Server) getExecution(c *gin.Context) {
	executionID := c.Param("execution_id")
	if !ids.ValidExecutionID(executionID) {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "malformed execution id")
		return
	}

	state, err := s.store.Get(c.Request.Context(), executionID)
	if err != nil {
		failFromError(c, err)
		return
	}
	if state == nil {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "unknown execution id")
		return
	}

	totalTeams := len(state.TeamStates)
	if built, found, _ := s.teams.Get(c.Request.Context(), state.TeamID); found {
		totalTeams = len(built.Order)
	}

	teamsCompleted := 0
	currentTeam := ""
	for teamID, ts := range state.TeamStates {
		switch ts.ExecutionStatus {
		case model.TeamCompleted, model.TeamFailed, model.TeamSkipped:
			teamsCompleted++
		case model.TeamRunning:
			currentTeam = teamID
		}
	}

	progress := 0
	if totalTeams > 0 {
		progress = (teamsCompleted * 100) / totalTeams
	}

	resp := gin.H{
		"execution_id":     state.ExecutionID,
		"team_id":          state.TeamID,
		"status":           state.Status,
		"started_at":       state.Context.StartedAt.UTC().Format(time.RFC3339),
		"progress":         progress,
		"current_team":     currentTeam,
		"teams_completed":  teamsCompleted,
		"total_teams":      totalTeams,
	}
	if !state.Status.IsTerminal() && s.defaultMaxTotalExecutionSeconds > 0 {
		resp["estimated_completion"] = state.Context.StartedAt.Add(time.Duration(s.defaultMaxTotalExecutionSeconds) * time.Second).UTC().Format(time.RFC3339)
	}
	if state.Summary != nil && state.Summary.CompletedAt != nil {
		resp["completed_at"] = state.Summary.CompletedAt.UTC().Format(time.RFC3339)
		if state.Summary.TotalDuration != nil {
			resp["duration"] = *state.Summary.TotalDuration
		}
	}

	ok(c, http.StatusOK, "OK", resp)
}

// stopExecution handles DELETE /api/v1/executions/{execution_id}?graceful=bool.
func (s *Server) stopExecution(c *gin.Context) {
	executionID := c.Param("execution_id")
	if !ids.ValidExecutionID(executionID) {
		fail(c, http.StatusNotFound, "EXECUTION_NOT_FOUND", "malformed execution id")
		return
	}

	graceful, _ := strconv.ParseBool(c.Query("graceful"))
	if err := s.engine.Stop(executionID, graceful); err != nil {
		status, code := errorStatus(err)
		if status == http.StatusNotFound || status == http.StatusInternalServerError {
			status, code = http.StatusNotFound, "EXECUTION_NOT_FOUND"
		}
		fail(c, status, code, err.Error())
		return
	}

	ok(c, http.StatusOK, "EXECUTION_STOPPED", gin.H{"execution_id": executionID, "graceful": graceful})
}

// listExecutions handles
// GET /api/v1/executions?team_id=&execution_status=&page=&page_size=.
func (s *Server) listExecutions(c *gin.Context) {
	teamID := c.Query("team_id")

	var status model.ExecutionStatus
	if raw := c.Query("execution_status"); raw != "" {
		status = model.ExecutionStatus(raw)
		switch status {
		case model.StatusPending, model.StatusRunning, model.StatusPaused, model.StatusCompleted, model.StatusFailed:
		default:
			fail(c, http.StatusBadRequest, "INVALID_STATUS", "unknown execution_status "+raw)
			return
		}
	}

	page := clampInt(atoiOr(c.Query("page"), 1), 1, int(^uint(0)>>1))
	pageSize := clampInt(atoiOr(c.Query("page_size"), 10), 1, 100)

	// Unbounded (limit 0) so total_count reflects every match, not just the
	// requested page window; List itself is cheap enough for this to fetch
	// the full matching set before slicing.
	execIDs, err := s.store.List(c.Request.Context(), teamID, status, 0)
	if err != nil {
		failFromError(c, err)
		return
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(execIDs) {
		start = len(execIDs)
	}
	if end > len(execIDs) {
		end = len(execIDs)
	}
	pageIDs := execIDs[start:end]

	ok(c, http.StatusOK, "OK", gin.H{
		"execution_ids": pageIDs,
		"total_count":   len(execIDs),
		"page":          page,
		"page_size":     pageSize,
	})
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
