package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goa.design/hierarchical-agents/internal/collaborators"
	"goa.design/hierarchical-agents/internal/engine"
	"goa.design/hierarchical-agents/internal/eventbus"
	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/statestore"
	"goa.design/hierarchical-agents/internal/teambuilder"
	"goa.design/hierarchical-agents/internal/telemetry"
)

// blockingRunner never returns until release is closed, letting tests
// observe a session mid-flight before triggering cancellation.
type blockingRunner struct {
	release chan struct{}
}

func (r blockingRunner) Run(ctx context.Context, req collaborators.RunRequest) (collaborators.RunResult, error) {
	select {
	case <-r.release:
		return collaborators.RunResult{Output: "done", Done: true}, nil
	case <-ctx.Done():
		return collaborators.RunResult{}, ctx.Err()
	}
}

func validLLM() model.LLMConfig {
	return model.LLMConfig{Provider: model.ProviderOpenAI, Model: "gpt-4o", Temperature: 0.2, TimeoutSeconds: 30}
}

func oneTeamSpec() model.HierarchicalTeam {
	supervisor := model.SupervisorConfig{LLM: validLLM(), SystemPrompt: "route", UserPrompt: "do the task", MaxIterations: 3}
	worker := model.WorkerConfig{AgentID: "w1", AgentName: "Researcher", LLM: validLLM(), SystemPrompt: "work", UserPrompt: "go", MaxIterations: 2}
	return model.HierarchicalTeam{
		Name:       "demo-team",
		Supervisor: supervisor,
		SubTeams: []model.SubTeam{
			{TeamID: "research", Name: "Research", Supervisor: supervisor, Agents: []model.WorkerConfig{worker}},
		},
	}
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	bus := eventbus.New(eventbus.DefaultConfig(), telemetry.NoopLogger{}, telemetry.NoopMetrics{})
	t.Cleanup(bus.Shutdown)
	return engine.New(store, bus, collaborators.EchoRunner{}, collaborators.NewStaticRouter(), telemetry.NoopLogger{}, telemetry.NoopTracer{})
}

func waitTerminal(t *testing.T, session *engine.Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if session.Status().IsTerminal() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session %s did not reach a terminal status in time, last status %s", session.ExecutionID(), session.Status())
}

func TestEngine_Start_RunsToCompletion(t *testing.T) {
	eng := newTestEngine(t)
	built, err := teambuilder.Build(oneTeamSpec())
	require.NoError(t, err)
	built.ID = "ht_000000000"

	session, err := eng.Start(context.Background(), built, model.ExecutionConfig{})
	require.NoError(t, err)

	waitTerminal(t, session)
	assert.Equal(t, model.StatusCompleted, session.Status())
}

func TestEngine_Stop_Immediate_MarksFailed(t *testing.T) {
	store := statestore.NewInMemStore(statestore.DefaultConfig())
	bus := eventbus.New(eventbus.DefaultConfig(), telemetry.NoopLogger{}, telemetry.NoopMetrics{})
	t.Cleanup(bus.Shutdown)
	release := make(chan struct{})
	eng := engine.New(store, bus, blockingRunner{release: release}, collaborators.NewStaticRouter(), telemetry.NoopLogger{}, telemetry.NoopTracer{})

	built, err := teambuilder.Build(oneTeamSpec())
	require.NoError(t, err)
	built.ID = "ht_000000001"

	session, err := eng.Start(context.Background(), built, model.ExecutionConfig{})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return session.Status() == model.StatusRunning }, time.Second, 5*time.Millisecond)
	require.NoError(t, eng.Stop(session.ExecutionID(), false))
	close(release)

	waitTerminal(t, session)
	assert.Equal(t, model.StatusFailed, session.Status())
}

func TestEngine_Stop_UnknownExecution_NotFound(t *testing.T) {
	eng := newTestEngine(t)
	err := eng.Stop("exec_unknown0001", true)
	require.Error(t, err)
}

func TestEngine_ListActive_ExcludesTerminal(t *testing.T) {
	eng := newTestEngine(t)
	built, err := teambuilder.Build(oneTeamSpec())
	require.NoError(t, err)
	built.ID = "ht_000000002"

	session, err := eng.Start(context.Background(), built, model.ExecutionConfig{})
	require.NoError(t, err)
	waitTerminal(t, session)

	assert.Empty(t, eng.ListActive())
}

func TestEngine_CleanupCompleted_RemovesTerminalSessions(t *testing.T) {
	eng := newTestEngine(t)
	built, err := teambuilder.Build(oneTeamSpec())
	require.NoError(t, err)
	built.ID = "ht_000000003"

	session, err := eng.Start(context.Background(), built, model.ExecutionConfig{})
	require.NoError(t, err)
	waitTerminal(t, session)

	removed := eng.CleanupCompleted()
	assert.Equal(t, 1, removed)
	_, ok := eng.Get(session.ExecutionID())
	assert.False(t, ok)
}
