// Package collaborators defines the interfaces the engine uses to reach
// LLM-backed agents and tools. Concrete LLM/tool clients are out of scope
// per spec.md §1 ("pluggable LLM backend, specified only at the interface");
// this package carries the interfaces plus the supervisor's routing-parse
// and fallback-match logic, grounded on
// original_source/.../agents.py's SupervisorAgent.
package collaborators

import "context"

type (
	// AgentDescriptor is the minimal identity/description a supervisor needs
	// to route a task to one of its workers.
	AgentDescriptor struct {
		ID          string
		Name        string
		Description string
	}

	// RunRequest carries everything a WorkerAgent needs to execute one
	// iteration against its configured LLM and tools.
	RunRequest struct {
		ExecutionID  string
		TeamID       string
		AgentID      string
		SystemPrompt string
		UserPrompt   string
		Task         string
		Tools        []string
		Iteration    int
	}

	// RunResult is what a worker produced for one invocation, including
	// exact usage counters when the backend reports them (preferred over
	// the formatter's heuristic estimate).
	RunResult struct {
		Output   string
		ToolsRun []string
		Usage    Usage
		Done     bool
	}

	// Usage mirrors model.Usage; kept separate so this package does not
	// import internal/model for a two-field value.
	Usage struct {
		Tokens   int
		APICalls int
	}

	// AgentRunner executes one worker iteration. Implementations wrap a
	// concrete LLM client and the team's ToolRegistry; this package only
	// specifies the contract the engine drives.
	AgentRunner interface {
		Run(ctx context.Context, req RunRequest) (RunResult, error)
	}

	// RouteRequest carries a routing decision's inputs: the task the
	// supervisor must assign, and the workers it may choose among.
	RouteRequest struct {
		ExecutionID string
		TeamID      string
		Task        string
		Candidates  []AgentDescriptor
	}

	// RouteDecision is a supervisor's chosen worker plus its stated
	// reasoning, and whether the team's work is already complete (no
	// further routing needed this iteration).
	RouteDecision struct {
		SelectedAgent string
		Reasoning     string
		Done          bool
	}

	// SupervisorRouter selects the next worker (or declares the team's work
	// done) for one orchestration-loop iteration.
	SupervisorRouter interface {
		Route(ctx context.Context, req RouteRequest) (RouteDecision, error)
	}

	// ToolRunner executes a single named tool call and returns its raw
	// output, mirroring runtime/toolregistry/executor.Client's
	// CallTool boundary but synchronous and in-process.
	ToolRunner interface {
		CallTool(ctx context.Context, tool string, payload []byte) ([]byte, error)
	}

	// ToolRegistry resolves which tools a worker may call and dispatches
	// calls to a ToolRunner.
	ToolRegistry interface {
		ToolRunner
		Tools() []string
		HasTool(name string) bool
	}
)
