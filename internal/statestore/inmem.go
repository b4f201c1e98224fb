package statestore

import (
	"context"
	"sync"
	"time"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
)

// InMemStore is a process-local Store backed by a plain map, used for tests
// and single-process deployments without Redis. Grounded on
// itsneelabh-gomind/orchestration/workflow_state.go's InMemoryStateStore.
type InMemStore struct {
	mu      sync.Mutex
	states  map[string]*model.ExecutionState
	ttl     time.Duration
	expires map[string]time.Time
}

// NewInMemStore constructs an in-memory Store.
func NewInMemStore(cfg Config) *InMemStore {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	return &InMemStore{
		states:  make(map[string]*model.ExecutionState),
		expires: make(map[string]time.Time),
		ttl:     cfg.DefaultTTL,
	}
}

func (s *InMemStore) touch(executionID string, state *model.ExecutionState) {
	state.UpdatedAt = time.Now().UTC()
	s.states[executionID] = state
	s.expires[executionID] = time.Now().Add(s.ttl)
}

func (s *InMemStore) lookup(executionID string) (*model.ExecutionState, bool) {
	if exp, ok := s.expires[executionID]; ok && time.Now().After(exp) {
		delete(s.states, executionID)
		delete(s.expires, executionID)
		return nil, false
	}
	st, ok := s.states[executionID]
	return st, ok
}

// Create implements Store.
func (s *InMemStore) Create(_ context.Context, executionID, teamID string, execCtx model.ExecutionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(executionID); ok {
		return errs.Errorf(errs.KindAlreadyExists, "execution %s already exists", executionID)
	}
	s.touch(executionID, newState(executionID, teamID, execCtx))
	return nil
}

func (s *InMemStore) mutate(executionID string, fn func(*model.ExecutionState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.lookup(executionID)
	if !ok {
		return errs.Errorf(errs.KindNotFound, "execution %s not found", executionID)
	}
	fn(state)
	s.touch(executionID, state)
	return nil
}

func (s *InMemStore) UpdateStatus(_ context.Context, executionID string, status model.ExecutionStatus) error {
	return s.mutate(executionID, func(st *model.ExecutionState) { st.Status = status })
}

func (s *InMemStore) AddEvent(_ context.Context, executionID string, event model.ExecutionEvent) error {
	return s.mutate(executionID, func(st *model.ExecutionState) { st.Events = append(st.Events, event) })
}

func (s *InMemStore) UpdateTeamState(_ context.Context, executionID string, state model.TeamState) error {
	return s.mutate(executionID, func(st *model.ExecutionState) { st.TeamStates[state.TeamID] = state })
}

func (s *InMemStore) UpdateTeamResult(_ context.Context, executionID, teamID string, result model.TeamResult) error {
	return s.mutate(executionID, func(st *model.ExecutionState) { st.TeamResults[teamID] = result })
}

func (s *InMemStore) UpdateSummary(_ context.Context, executionID string, summary model.ExecutionSummary) error {
	return s.mutate(executionID, func(st *model.ExecutionState) { st.Summary = &summary })
}

func (s *InMemStore) AddError(_ context.Context, executionID string, errInfo model.ErrorInfo) error {
	return s.mutate(executionID, func(st *model.ExecutionState) { st.Errors = append(st.Errors, errInfo) })
}

func (s *InMemStore) UpdateMetrics(_ context.Context, executionID string, metrics model.ExecutionMetrics) error {
	return s.mutate(executionID, func(st *model.ExecutionState) { st.Metrics = metrics })
}

// Get implements Store.
func (s *InMemStore) Get(_ context.Context, executionID string) (*model.ExecutionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.lookup(executionID)
	if !ok {
		return nil, nil
	}
	return st.Clone(), nil
}

// List implements Store.
func (s *InMemStore) List(_ context.Context, teamID string, status model.ExecutionStatus, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, st := range s.states {
		if _, found := s.lookup(id); !found {
			continue
		}
		if teamID != "" && st.TeamID != teamID {
			continue
		}
		if status != "" && st.Status != status {
			continue
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// Delete implements Store.
func (s *InMemStore) Delete(_ context.Context, executionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, executionID)
	delete(s.expires, executionID)
	return nil
}

// Stats implements Store.
func (s *InMemStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Stats{ByStatus: make(map[model.ExecutionStatus]int)}
	for id, st := range s.states {
		if _, ok := s.lookup(id); !ok {
			continue
		}
		out.TotalExecutions++
		out.ByStatus[st.Status]++
	}
	return out, nil
}
