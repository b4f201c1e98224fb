package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goa.design/hierarchical-agents/internal/engine"
	"goa.design/hierarchical-agents/internal/eventbus"
	"goa.design/hierarchical-agents/internal/statestore"
	"goa.design/hierarchical-agents/internal/teambuilder"
	"goa.design/hierarchical-agents/internal/telemetry"
)

// Server wires the orchestration core packages behind the HTTP contract
// named in spec.md §6.
type Server struct {
	teams  teambuilder.Store
	engine *engine.Engine
	bus    *eventbus.Bus
	store  statestore.Store
	logger telemetry.Logger

	defaultMaxTotalExecutionSeconds int
}

// New constructs a Server and registers its routes on a fresh gin.Engine.
func New(teams teambuilder.Store, eng *engine.Engine, bus *eventbus.Bus, store statestore.Store, logger telemetry.Logger, defaultMaxTotalExecutionSeconds int) *gin.Engine {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	s := &Server{
		teams:                           teams,
		engine:                          eng,
		bus:                             bus,
		store:                           store,
		logger:                          logger,
		defaultMaxTotalExecutionSeconds: defaultMaxTotalExecutionSeconds,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	api.Use(s.withTimeout())
	api.GET("/executions/health", s.health)
	api.POST("/hierarchical-teams", s.createTeam)
	api.POST("/hierarchical-teams/:team_id/execute", s.executeTeam)
	api.GET("/executions", s.listExecutions)
	api.GET("/executions/:execution_id", s.getExecution)
	api.DELETE("/executions/:execution_id", s.stopExecution)
	api.GET("/executions/:execution_id/stream", s.streamExecution)
	api.GET("/executions/:execution_id/results", s.getResults)
	api.POST("/executions/:execution_id/results/format", s.formatResults)

	return r
}

func (s *Server) health(c *gin.Context) {
	ok(c, http.StatusOK, "OK", gin.H{"status": "ok"})
}

// withTimeout bounds every request's context (including the SSE stream) by
// the server's default per-execution budget, or five minutes when that is
// unset. A team whose own budget is longer keeps running after its stream
// is cut off, since the engine runs on a context detached from the request.
func (s *Server) withTimeout() gin.HandlerFunc {
	d := time.Duration(s.defaultMaxTotalExecutionSeconds) * time.Second
	if d <= 0 {
		d = 5 * time.Minute
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
