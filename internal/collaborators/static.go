package collaborators

import (
	"context"
	"fmt"
)

// StaticRouter always routes to the first candidate that has not yet
// appeared in seen, or reports Done when every candidate has run once.
// It exists as a minimal reference SupervisorRouter for tests and
// single-iteration teams; production deployments supply an LLM-backed
// SupervisorRouter instead. Grounded on the Noop* pattern in
// runtime/agent/telemetry/noop.go.
type StaticRouter struct {
	seen map[string]bool
}

// NewStaticRouter constructs an empty StaticRouter.
func NewStaticRouter() *StaticRouter {
	return &StaticRouter{seen: map[string]bool{}}
}

// Route implements SupervisorRouter.
func (r *StaticRouter) Route(_ context.Context, req RouteRequest) (RouteDecision, error) {
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	for _, c := range req.Candidates {
		if !r.seen[c.ID] {
			r.seen[c.ID] = true
			return RouteDecision{SelectedAgent: c.Name, Reasoning: "next unvisited worker"}, nil
		}
	}
	return RouteDecision{Done: true, Reasoning: "all workers have run"}, nil
}

// EchoRunner is a minimal AgentRunner that echoes the task back as its
// output without calling any LLM backend, useful for exercising the
// engine's orchestration loop in tests.
type EchoRunner struct{}

// Run implements AgentRunner.
func (EchoRunner) Run(_ context.Context, req RunRequest) (RunResult, error) {
	return RunResult{
		Output: fmt.Sprintf("agent %s handled: %s", req.AgentID, req.Task),
		Done:   true,
	}, nil
}
