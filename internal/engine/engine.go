// Package engine implements the execution engine: the session registry,
// per-team orchestration loop (routing phase + worker phase, iterated up
// to max-iterations), cancellation, and budget-exhaustion handling.
// Grounded on original_source/.../execution_engine_demo.py's
// ExecutionEngine surface (start_execution/get_execution_session/
// list_active_executions/cleanup_completed_sessions/shutdown) and on
// runtime/agent/engine/inmem/engine.go's goroutine-per-run status-map
// idiom.
package engine

import (
	"context"
	"sync"
	"time"

	"goa.design/hierarchical-agents/internal/collaborators"
	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/eventbus"
	"goa.design/hierarchical-agents/internal/ids"
	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/statestore"
	"goa.design/hierarchical-agents/internal/teambuilder"
	"goa.design/hierarchical-agents/internal/telemetry"
)

// Engine owns the registry of in-flight and recently completed sessions
// and drives their orchestration loops.
type Engine struct {
	store  statestore.Store
	bus    *eventbus.Bus
	runner collaborators.AgentRunner
	router collaborators.SupervisorRouter
	logger telemetry.Logger
	tracer telemetry.Tracer

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// New constructs an Engine. runner/router are the pluggable LLM-backed
// collaborators described at spec.md §1; a caller without a real LLM
// backend may pass collaborators.EchoRunner{} / collaborators.NewStaticRouter().
func New(store statestore.Store, bus *eventbus.Bus, runner collaborators.AgentRunner, router collaborators.SupervisorRouter, logger telemetry.Logger, tracer telemetry.Tracer) *Engine {
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	if tracer == nil {
		tracer = telemetry.NoopTracer{}
	}
	return &Engine{
		store:    store,
		bus:      bus,
		runner:   runner,
		router:   router,
		logger:   logger,
		tracer:   tracer,
		sessions: make(map[string]*Session),
	}
}

// Start begins a new execution of team under cfg and returns its session
// immediately; the orchestration loop runs in a background goroutine.
func (e *Engine) Start(ctx context.Context, team teambuilder.BuiltTeam, cfg model.ExecutionConfig) (*Session, error) {
	executionID := ids.NewExecutionID()
	execCtx := model.ExecutionContext{
		ExecutionID: executionID,
		TeamID:      team.ID,
		Config:      cfg,
		StartedAt:   time.Now().UTC(),
	}
	if err := e.store.Create(ctx, executionID, team.ID, execCtx); err != nil {
		return nil, err
	}

	session := newSession(executionID, team, cfg)

	e.mu.Lock()
	e.sessions[executionID] = session
	e.mu.Unlock()

	e.bus.EmitExecutionStarted(ctx, executionID, team.ID)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(context.WithoutCancel(ctx), session)
	}()

	return session, nil
}

// Get returns the session for executionID, if still tracked.
func (e *Engine) Get(executionID string) (*Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[executionID]
	return s, ok
}

// ListActive returns every session whose status is not yet terminal.
func (e *Engine) ListActive() []*Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*Session
	for _, s := range e.sessions {
		if !s.Status().IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}

// Stop requests cancellation of a session's orchestration loop. graceful
// lets the current sub-team finish before stopping; otherwise the loop
// stops before its next worker call.
func (e *Engine) Stop(executionID string, graceful bool) error {
	session, ok := e.Get(executionID)
	if !ok {
		return errs.Errorf(errs.KindNotFound, "execution %s not found", executionID)
	}
	if session.Status().IsTerminal() {
		return errs.Errorf(errs.KindInvalidState, "execution %s already %s", executionID, session.Status())
	}
	session.requestCancel(graceful)
	return nil
}

// CleanupCompleted removes terminal sessions from the registry (their
// state remains in the Store) and returns how many were removed.
func (e *Engine) CleanupCompleted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for id, s := range e.sessions {
		if s.Status().IsTerminal() {
			delete(e.sessions, id)
			removed++
		}
	}
	return removed
}

// Shutdown requests cancellation of every active session and waits for
// their orchestration loops to return.
func (e *Engine) Shutdown() {
	for _, s := range e.ListActive() {
		s.requestCancel(false)
	}
	e.wg.Wait()
}

// Stats reports the current registry composition by status, grounded on
// original_source's ExecutionEngine.get_execution_count.
func (e *Engine) Stats() map[model.ExecutionStatus]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	counts := make(map[model.ExecutionStatus]int)
	for _, s := range e.sessions {
		counts[s.Status()]++
	}
	return counts
}
