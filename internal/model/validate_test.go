package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
)

func validSupervisor() model.SupervisorConfig {
	return model.SupervisorConfig{
		LLM: model.LLMConfig{
			Provider:       model.ProviderOpenAI,
			Model:          "gpt-4",
			Temperature:    0.7,
			TimeoutSeconds: 30,
		},
		SystemPrompt:  "you are a supervisor",
		UserPrompt:    "route the task",
		MaxIterations: 3,
	}
}

func validWorker(id string) model.WorkerConfig {
	return model.WorkerConfig{
		AgentID:       id,
		AgentName:     "Worker " + id,
		LLM:           validSupervisor().LLM,
		SystemPrompt:  "you are a worker",
		UserPrompt:    "do the task",
		MaxIterations: 3,
	}
}

func TestLLMConfig_Validate_AWSRequiresRegion(t *testing.T) {
	cfg := model.LLMConfig{
		Provider:       model.ProviderAWSBedrock,
		Model:          "anthropic.claude",
		TimeoutSeconds: 10,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	cfg.Region = "us-east-1"
	assert.NoError(t, cfg.Validate())
}

func TestLLMConfig_Validate_TemperatureRange(t *testing.T) {
	cfg := model.LLMConfig{Provider: model.ProviderOpenAI, Model: "gpt-4", TimeoutSeconds: 10, Temperature: 2.5}
	assert.Error(t, cfg.Validate())
}

func TestHierarchicalTeam_Validate_DuplicateSubTeamID(t *testing.T) {
	team := model.HierarchicalTeam{
		Name:       "demo",
		Supervisor: validSupervisor(),
		SubTeams: []model.SubTeam{
			{TeamID: "a", Name: "A", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("w1")}},
			{TeamID: "a", Name: "A again", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("w1")}},
		},
	}
	err := team.Validate()
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestHierarchicalTeam_Validate_UnknownDependency(t *testing.T) {
	team := model.HierarchicalTeam{
		Name:       "demo",
		Supervisor: validSupervisor(),
		SubTeams: []model.SubTeam{
			{TeamID: "a", Name: "A", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("w1")}},
		},
		Dependencies: map[string][]string{"a": {"nope"}},
	}
	err := team.Validate()
	require.Error(t, err)
	assert.Equal(t, errs.KindDependencyError, errs.KindOf(err))
}

func TestHierarchicalTeam_Validate_SelfDependency(t *testing.T) {
	team := model.HierarchicalTeam{
		Name:       "demo",
		Supervisor: validSupervisor(),
		SubTeams: []model.SubTeam{
			{TeamID: "a", Name: "A", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("w1")}},
		},
		Dependencies: map[string][]string{"a": {"a"}},
	}
	err := team.Validate()
	require.Error(t, err)
	assert.Equal(t, errs.KindDependencyError, errs.KindOf(err))
}

func TestSubTeam_Validate_DuplicateAgentID(t *testing.T) {
	st := model.SubTeam{
		TeamID:     "a",
		Name:       "A",
		Supervisor: validSupervisor(),
		Agents:     []model.WorkerConfig{validWorker("w1"), validWorker("w1")},
	}
	assert.Error(t, st.Validate())
}

func TestHierarchicalTeam_Validate_Valid(t *testing.T) {
	team := model.HierarchicalTeam{
		Name:       "demo",
		Supervisor: validSupervisor(),
		SubTeams: []model.SubTeam{
			{TeamID: "a", Name: "A", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("w1")}},
			{TeamID: "b", Name: "B", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("w2")}},
		},
		Dependencies: map[string][]string{"b": {"a"}},
	}
	assert.NoError(t, team.Validate())
	assert.ElementsMatch(t, []string{"a", "b"}, team.SubTeamIDs())
}
