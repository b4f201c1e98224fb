// Package model defines the persisted and wire-level data types of the
// orchestration domain: team/agent configuration, execution state, events,
// and the standardized output shape. Types here carry no behavior beyond
// validation; the engine and formatter own the semantics that mutate them.
package model

import "time"

// Provider enumerates the closed set of LLM providers a LLMConfig may name.
// The core never talks to these providers directly; the value is only
// forwarded to the AgentRunner/SupervisorRouter collaborators.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderAWSBedrock Provider = "aws_bedrock"
)

// LLMConfig describes how a collaborator should reach an LLM backend.
type LLMConfig struct {
	Provider       Provider `json:"provider"`
	Model          string   `json:"model"`
	BaseURL        string   `json:"base_url,omitempty"`
	Region         string   `json:"region,omitempty"`
	Temperature    float64  `json:"temperature"`
	MaxTokens      int      `json:"max_tokens,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

// SupervisorConfig configures a sub-team's (or the top-level) supervisor.
type SupervisorConfig struct {
	LLM           LLMConfig `json:"llm_config"`
	SystemPrompt  string    `json:"system_prompt"`
	UserPrompt    string    `json:"user_prompt"`
	MaxIterations int       `json:"max_iterations"`
}

// WorkerConfig configures a single worker within a sub-team.
type WorkerConfig struct {
	AgentID       string    `json:"agent_id"`
	AgentName     string    `json:"agent_name"`
	LLM           LLMConfig `json:"llm_config"`
	SystemPrompt  string    `json:"system_prompt"`
	UserPrompt    string    `json:"user_prompt"`
	Tools         []string  `json:"tools,omitempty"`
	MaxIterations int       `json:"max_iterations"`
}

// SubTeam is one node of the hierarchical team's DAG: a supervisor and its
// roster of workers.
type SubTeam struct {
	TeamID      string           `json:"team_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Supervisor  SupervisorConfig `json:"supervisor_config"`
	Agents      []WorkerConfig   `json:"agents"`
}

// GlobalConfig carries execution-wide knobs that apply across all sub-teams.
type GlobalConfig struct {
	MaxTotalExecutionSeconds int    `json:"max_total_execution_seconds"`
	StreamEvents             bool   `json:"stream_events"`
	OutputVerbosity          string `json:"output_verbosity,omitempty"`
}

// HierarchicalTeam is the client-submitted team specification.
type HierarchicalTeam struct {
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	Supervisor   SupervisorConfig    `json:"supervisor_config"`
	SubTeams     []SubTeam           `json:"sub_teams"`
	Dependencies map[string][]string `json:"dependencies,omitempty"`
	Global       GlobalConfig        `json:"global_config"`
}

// ExecutionStatus is the closed set of states an execution session passes
// through.
type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusRunning   ExecutionStatus = "running"
	StatusPaused    ExecutionStatus = "paused"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// IsTerminal reports whether the status will never transition again.
func (s ExecutionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TeamRunStatus is the per-sub-team status tracked in TeamState/TeamResult,
// a superset of ExecutionStatus that also distinguishes "skipped" (broken
// prerequisite chain).
type TeamRunStatus string

const (
	TeamPending   TeamRunStatus = "pending"
	TeamRunning   TeamRunStatus = "running"
	TeamCompleted TeamRunStatus = "completed"
	TeamFailed    TeamRunStatus = "failed"
	TeamSkipped   TeamRunStatus = "skipped"
)

// ExecutionConfig is the per-execute-call configuration named in §6.
type ExecutionConfig struct {
	StreamEvents            bool `json:"stream_events"`
	SaveIntermediateResults bool `json:"save_intermediate_results"`
	MaxParallelTeams        int  `json:"max_parallel_teams"`
}

// ExecutionContext identifies one run and carries its starting parameters.
type ExecutionContext struct {
	ExecutionID   string          `json:"execution_id"`
	TeamID        string          `json:"team_id"`
	Config        ExecutionConfig `json:"execution_config"`
	StartedAt     time.Time       `json:"started_at"`
	CurrentTeamID string          `json:"current_team_id,omitempty"`
}

// SourceType is the closed set of ExecutionEvent originators.
type SourceType string

const (
	SourceSystem     SourceType = "system"
	SourceSupervisor SourceType = "supervisor"
	SourceAgent      SourceType = "agent"
)

// ExecutionEvent is one immutable lifecycle notification. Optional fields
// are populated only when meaningful for EventType; json tags omit zero
// values so the SSE wire format matches §6 ("JSON excludes null fields").
type ExecutionEvent struct {
	Timestamp       time.Time  `json:"timestamp"`
	EventType       string     `json:"event_type"`
	SourceType      SourceType `json:"source_type"`
	ExecutionID     string     `json:"execution_id"`
	TeamID          string     `json:"team_id,omitempty"`
	SupervisorID    string     `json:"supervisor_id,omitempty"`
	SupervisorName  string     `json:"supervisor_name,omitempty"`
	WorkerID        string     `json:"worker_id,omitempty"`
	WorkerName      string     `json:"worker_name,omitempty"`
	Content         string     `json:"content,omitempty"`
	Action          string     `json:"action,omitempty"`
	Status          string     `json:"status,omitempty"`
	Progress        *int       `json:"progress,omitempty"`
	Result          string     `json:"result,omitempty"`
	SelectedTeam    string     `json:"selected_team,omitempty"`
	SelectedAgent   string     `json:"selected_agent,omitempty"`
}

// TeamState is the per-sub-team runtime slot tracked inside ExecutionState.
type TeamState struct {
	Next              string          `json:"next,omitempty"`
	TeamID            string          `json:"team_id"`
	DependenciesMet   bool            `json:"dependencies_met"`
	ExecutionStatus   TeamRunStatus   `json:"execution_status"`
	CurrentAgent      string          `json:"current_agent,omitempty"`
}

// WorkerResult is one worker's contribution to a TeamResult.
type WorkerResult struct {
	Status   TeamRunStatus  `json:"status"`
	Output   string         `json:"output"`
	Tools    []string       `json:"tools_used,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Usage    Usage          `json:"usage,omitempty"`
}

// Usage carries exact token/API-call counters when the AgentRunner
// collaborator can supply them (Resolved Open Question #2, SPEC_FULL.md §13).
type Usage struct {
	Tokens   int `json:"tokens,omitempty"`
	APICalls int `json:"api_calls,omitempty"`
}

// IsZero reports whether no exact usage was supplied, signalling the
// formatter to fall back to the heuristic estimate.
func (u Usage) IsZero() bool { return u.Tokens == 0 && u.APICalls == 0 }

// TeamResult is one sub-team's outcome.
type TeamResult struct {
	Status         TeamRunStatus           `json:"status"`
	DurationSeconds float64                `json:"duration_seconds"`
	Agents         map[string]WorkerResult `json:"agents"`
	Output         string                  `json:"output"`
}

// ErrorInfo is one recorded failure, recoverable or terminal.
type ErrorInfo struct {
	Code      string         `json:"error_code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
}

// ExecutionMetrics is the computed metrics block.
type ExecutionMetrics struct {
	TotalTokensUsed     int     `json:"total_tokens_used"`
	APICallsMade        int     `json:"api_calls_made"`
	SuccessRate         float64 `json:"success_rate"`
	AverageResponseTime float64 `json:"average_response_time_seconds"`
}

// ExecutionSummary is the derived top-level summary of a run.
type ExecutionSummary struct {
	OverallStatus   string     `json:"overall_status"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	TotalDuration   *float64   `json:"total_duration_seconds,omitempty"`
	TeamsExecuted   int        `json:"teams_executed"`
	AgentsInvolved  int        `json:"agents_involved"`
}

// StandardizedOutput is the final, user-facing shape of one execution.
type StandardizedOutput struct {
	ExecutionID string                `json:"execution_id"`
	Summary     ExecutionSummary      `json:"summary"`
	TeamResults map[string]TeamResult `json:"team_results"`
	Errors      []ErrorInfo           `json:"errors"`
	Metrics     ExecutionMetrics      `json:"metrics"`
}

// ExecutionState is the complete persisted record for one execution,
// exactly the shape the state store reads and writes.
type ExecutionState struct {
	ExecutionID string                 `json:"execution_id"`
	TeamID      string                 `json:"team_id"`
	Status      ExecutionStatus        `json:"status"`
	Context     ExecutionContext       `json:"context"`
	Events      []ExecutionEvent       `json:"events"`
	TeamStates  map[string]TeamState   `json:"team_states"`
	TeamResults map[string]TeamResult  `json:"team_results"`
	Summary     *ExecutionSummary      `json:"summary,omitempty"`
	Errors      []ErrorInfo            `json:"errors"`
	Metrics     ExecutionMetrics       `json:"metrics"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Clone copies the state: the Events and Errors slices, the TeamStates and
// TeamResults maps and the Summary get fresh storage, so adding, replacing or
// removing entries in a snapshot leaves the store's copy alone. Values nested
// inside entries (TeamResult.Agents, ErrorInfo.Context, event Metadata and
// Progress) are shared with the original.
func (s *ExecutionState) Clone() *ExecutionState {
	if s == nil {
		return nil
	}
	c := *s
	c.Events = append([]ExecutionEvent(nil), s.Events...)
	c.Errors = append([]ErrorInfo(nil), s.Errors...)
	c.TeamStates = make(map[string]TeamState, len(s.TeamStates))
	for k, v := range s.TeamStates {
		c.TeamStates[k] = v
	}
	c.TeamResults = make(map[string]TeamResult, len(s.TeamResults))
	for k, v := range s.TeamResults {
		c.TeamResults[k] = v
	}
	if s.Summary != nil {
		summary := *s.Summary
		c.Summary = &summary
	}
	return &c
}
