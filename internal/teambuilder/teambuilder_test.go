package teambuilder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/ids"
	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/teambuilder"
)

func validLLM() model.LLMConfig {
	return model.LLMConfig{Provider: model.ProviderOpenAI, Model: "gpt-4o", Temperature: 0.2, TimeoutSeconds: 30}
}

func validSupervisor() model.SupervisorConfig {
	return model.SupervisorConfig{LLM: validLLM(), SystemPrompt: "route", UserPrompt: "go", MaxIterations: 3}
}

func validWorker(id string) model.WorkerConfig {
	return model.WorkerConfig{AgentID: id, AgentName: id, LLM: validLLM(), SystemPrompt: "work", UserPrompt: "go", MaxIterations: 3}
}

func twoTeamSpec() model.HierarchicalTeam {
	return model.HierarchicalTeam{
		Name:       "research-team",
		Supervisor: validSupervisor(),
		SubTeams: []model.SubTeam{
			{TeamID: "research", Name: "Research", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("r1")}},
			{TeamID: "writing", Name: "Writing", Supervisor: validSupervisor(), Agents: []model.WorkerConfig{validWorker("w1")}},
		},
		Dependencies: map[string][]string{"writing": {"research"}},
	}
}

func TestBuild_ValidSpec_ComputesOrder(t *testing.T) {
	built, err := teambuilder.Build(twoTeamSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"research", "writing"}, built.Order)
}

func TestBuild_InvalidSpec_PropagatesValidationError(t *testing.T) {
	spec := twoTeamSpec()
	spec.Name = ""
	_, err := teambuilder.Build(spec)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestBuild_CyclicDependencies_Fails(t *testing.T) {
	spec := twoTeamSpec()
	spec.Dependencies = map[string][]string{"writing": {"research"}, "research": {"writing"}}
	_, err := teambuilder.Build(spec)
	require.Error(t, err)
	assert.Equal(t, errs.KindDependencyError, errs.KindOf(err))
}

func TestInMemStore_Create_AssignsValidTeamID(t *testing.T) {
	store := teambuilder.NewInMemStore()
	built, err := store.Create(context.Background(), twoTeamSpec())
	require.NoError(t, err)
	assert.True(t, ids.ValidTeamID(built.ID))
}

func TestInMemStore_GetAndList(t *testing.T) {
	store := teambuilder.NewInMemStore()
	created, err := store.Create(context.Background(), twoTeamSpec())
	require.NoError(t, err)

	got, ok, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, created.ID, got.ID)

	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInMemStore_Delete(t *testing.T) {
	store := teambuilder.NewInMemStore()
	created, err := store.Create(context.Background(), twoTeamSpec())
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), created.ID))
	_, ok, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = store.Delete(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestBuiltTeam_SubTeamAndDependencies(t *testing.T) {
	built, err := teambuilder.Build(twoTeamSpec())
	require.NoError(t, err)

	st, ok := built.SubTeam("writing")
	require.True(t, ok)
	assert.Equal(t, "Writing", st.Name)
	assert.Equal(t, []string{"research"}, built.Dependencies("writing"))

	_, ok = built.SubTeam("missing")
	assert.False(t, ok)
}
