package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goa.design/hierarchical-agents/internal/ids"
	"goa.design/hierarchical-agents/internal/model"
)

// createTeam handles POST /api/v1/hierarchical-teams.
func (s *Server) createTeam(c *gin.Context) {
	var spec model.HierarchicalTeam
	if err := c.ShouldBindJSON(&spec); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	built, err := s.teams.Create(c.Request.Context(), spec)
	if err != nil {
		status, code := errorStatus(err)
		if status == http.StatusBadRequest || status == http.StatusInternalServerError {
			status, code = http.StatusBadRequest, "TEAM_BUILD_ERROR"
		}
		fail(c, status, code, err.Error())
		return
	}

	ok(c, http.StatusOK, "TEAM_CREATED", gin.H{"team_id": built.ID})
}

// executeRequest is the body of POST /hierarchical-teams/{team_id}/execute.
type executeRequest struct {
	ExecutionConfig model.ExecutionConfig `json:"execution_config"`
}

// executeTeam handles POST /api/v1/hierarchical-teams/{team_id}/execute.
func (s *Server) executeTeam(c *gin.Context) {
	teamID := c.Param("team_id")
	if !ids.ValidTeamID(teamID) {
		fail(c, http.StatusNotFound, "TEAM_NOT_FOUND", "unknown team id")
		return
	}

	built, found, err := s.teams.Get(c.Request.Context(), teamID)
	if err != nil {
		failFromError(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "TEAM_NOT_FOUND", "unknown team id")
		return
	}

	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_EXECUTION_CONFIG", err.Error())
		return
	}
	if req.ExecutionConfig.MaxParallelTeams <= 0 {
		req.ExecutionConfig.MaxParallelTeams = 1
	}
	if built.Spec.Global.MaxTotalExecutionSeconds <= 0 {
		built.Spec.Global.MaxTotalExecutionSeconds = s.defaultMaxTotalExecutionSeconds
	}

	session, err := s.engine.Start(c.Request.Context(), built, req.ExecutionConfig)
	if err != nil {
		fail(c, http.StatusInternalServerError, "EXECUTION_SPAWN_FAILED", err.Error())
		return
	}

	estimatedSeconds := built.Spec.Global.MaxTotalExecutionSeconds
	if estimatedSeconds <= 0 {
		estimatedSeconds = s.defaultMaxTotalExecutionSeconds
	}

	okWithMessage(c, http.StatusAccepted, "EXECUTION_STARTED", "", gin.H{
		"execution_id":       session.ExecutionID(),
		"team_id":            teamID,
		"status":             "started",
		"started_at":         time.Now().UTC().Format(time.RFC3339),
		"stream_url":         "/api/v1/executions/" + session.ExecutionID() + "/stream",
		"estimated_duration": estimatedSeconds,
	})
}
