package model

import (
	"fmt"

	"goa.design/hierarchical-agents/internal/errs"
)

// Validate checks LLMConfig invariants: temperature in [0,2], positive
// max-tokens/timeout when set, and the AWS-region requirement.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderOpenRouter, ProviderAWSBedrock:
	default:
		return errs.Errorf(errs.KindValidation, "unknown llm provider %q", c.Provider)
	}
	if c.Model == "" {
		return errs.New(errs.KindValidation, "llm model name is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errs.Errorf(errs.KindValidation, "temperature %v out of range [0,2]", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return errs.New(errs.KindValidation, "max_tokens must be > 0 when set")
	}
	if c.TimeoutSeconds <= 0 {
		return errs.New(errs.KindValidation, "timeout_seconds must be > 0")
	}
	if c.Provider == ProviderAWSBedrock && c.Region == "" {
		return errs.New(errs.KindValidation, "aws_bedrock provider requires a region")
	}
	return nil
}

// Validate checks SupervisorConfig invariants.
func (c SupervisorConfig) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.SystemPrompt == "" {
		return errs.New(errs.KindValidation, "supervisor system_prompt is required")
	}
	if c.UserPrompt == "" {
		return errs.New(errs.KindValidation, "supervisor user_prompt is required")
	}
	if c.MaxIterations <= 0 {
		return errs.New(errs.KindValidation, "supervisor max_iterations must be > 0")
	}
	return nil
}

// Validate checks WorkerConfig invariants (uniqueness of AgentID is checked
// by the enclosing SubTeam, not here).
func (c WorkerConfig) Validate() error {
	if c.AgentID == "" {
		return errs.New(errs.KindValidation, "agent_id is required")
	}
	if c.AgentName == "" {
		return errs.New(errs.KindValidation, "agent_name is required")
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if c.SystemPrompt == "" {
		return errs.New(errs.KindValidation, "agent system_prompt is required")
	}
	if c.UserPrompt == "" {
		return errs.New(errs.KindValidation, "agent user_prompt is required")
	}
	if c.MaxIterations <= 0 {
		return errs.New(errs.KindValidation, "agent max_iterations must be > 0")
	}
	return nil
}

// Validate checks SubTeam invariants: non-empty id/name, ≥1 agent, unique
// agent ids, and a valid supervisor.
func (t SubTeam) Validate() error {
	if t.TeamID == "" {
		return errs.New(errs.KindValidation, "sub_team id is required")
	}
	if t.Name == "" {
		return errs.New(errs.KindValidation, "sub_team name is required")
	}
	if err := t.Supervisor.Validate(); err != nil {
		return fmt.Errorf("sub_team %s: %w", t.TeamID, err)
	}
	if len(t.Agents) == 0 {
		return errs.Errorf(errs.KindValidation, "sub_team %s must have at least one agent", t.TeamID)
	}
	seen := make(map[string]struct{}, len(t.Agents))
	for _, a := range t.Agents {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("sub_team %s: %w", t.TeamID, err)
		}
		if _, dup := seen[a.AgentID]; dup {
			return errs.Errorf(errs.KindValidation, "sub_team %s: duplicate agent_id %q", t.TeamID, a.AgentID)
		}
		seen[a.AgentID] = struct{}{}
	}
	return nil
}

// Validate checks HierarchicalTeam top-level invariants: name, ≥1 sub-team,
// unique sub-team ids, each sub-team valid, and dependency keys/values refer
// to known sub-team ids with no self-loop. Cycle detection is the
// depgraph package's job, invoked by the team builder, not here.
func (team HierarchicalTeam) Validate() error {
	if team.Name == "" {
		return errs.New(errs.KindValidation, "team name is required")
	}
	if err := team.Supervisor.Validate(); err != nil {
		return fmt.Errorf("top supervisor: %w", err)
	}
	if len(team.SubTeams) == 0 {
		return errs.New(errs.KindValidation, "team must have at least one sub_team")
	}
	ids := make(map[string]struct{}, len(team.SubTeams))
	for _, st := range team.SubTeams {
		if err := st.Validate(); err != nil {
			return err
		}
		if _, dup := ids[st.TeamID]; dup {
			return errs.Errorf(errs.KindValidation, "duplicate sub_team id %q", st.TeamID)
		}
		ids[st.TeamID] = struct{}{}
	}
	for key, prereqs := range team.Dependencies {
		if _, ok := ids[key]; !ok {
			return errs.Errorf(errs.KindDependencyError, "dependency key %q is not a known sub_team id", key)
		}
		for _, p := range prereqs {
			if _, ok := ids[p]; !ok {
				return errs.Errorf(errs.KindDependencyError, "dependency value %q for %q is not a known sub_team id", p, key)
			}
			if p == key {
				return errs.Errorf(errs.KindDependencyError, "sub_team %q cannot depend on itself", key)
			}
		}
	}
	return nil
}

// SubTeamIDs returns the ids of every sub-team, in declared order.
func (team HierarchicalTeam) SubTeamIDs() []string {
	ids := make([]string, len(team.SubTeams))
	for i, st := range team.SubTeams {
		ids[i] = st.TeamID
	}
	return ids
}
