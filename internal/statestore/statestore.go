// Package statestore implements the durable, concurrency-safe key-value
// store of ExecutionState keyed by execution id. The Redis-backed
// implementation uses a SET-NX-EX distributed lock with a token-checked
// compare-and-delete release, grounded on
// original_source/.../state_manager.py's StateManager; an in-memory
// implementation backs tests and environments without Redis.
package statestore

import (
	"context"
	"time"

	"goa.design/hierarchical-agents/internal/model"
)

// Config carries the store's namespacing/TTL/retry knobs.
type Config struct {
	KeyPrefix  string
	DefaultTTL time.Duration
	MaxRetries int
	RetryDelay time.Duration
	LockTTL    time.Duration
}

// DefaultConfig matches original_source's StateManagerConfig defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:  "hierarchical_agents",
		DefaultTTL: time.Hour,
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		LockTTL:    10 * time.Second,
	}
}

// Store is the durable per-execution state persistence contract described
// in spec.md §4.1. All mutating operations serialize under a distributed
// lock scoped to the execution id and bump UpdatedAt; Get is unlocked and
// may observe a slightly stale snapshot.
type Store interface {
	// Create establishes initial state for executionID. Fails with
	// errs.KindAlreadyExists if the key already exists.
	Create(ctx context.Context, executionID, teamID string, execCtx model.ExecutionContext) error

	UpdateStatus(ctx context.Context, executionID string, status model.ExecutionStatus) error
	AddEvent(ctx context.Context, executionID string, event model.ExecutionEvent) error
	UpdateTeamState(ctx context.Context, executionID string, state model.TeamState) error
	UpdateTeamResult(ctx context.Context, executionID, teamID string, result model.TeamResult) error
	UpdateSummary(ctx context.Context, executionID string, summary model.ExecutionSummary) error
	AddError(ctx context.Context, executionID string, errInfo model.ErrorInfo) error
	UpdateMetrics(ctx context.Context, executionID string, metrics model.ExecutionMetrics) error

	// Get reads the entire state, or nil if absent.
	Get(ctx context.Context, executionID string) (*model.ExecutionState, error)

	// List enumerates matching execution ids. teamID/status filters are
	// optional (empty string/""). Bounded by limit; not required to be
	// consistent across concurrent inserts.
	List(ctx context.Context, teamID string, status model.ExecutionStatus, limit int) ([]string, error)

	// Delete removes the key for executionID.
	Delete(ctx context.Context, executionID string) error

	// Stats reports aggregate counts, grounded on
	// original_source/.../state_manager.py get_stats and kept as a store
	// capability per SPEC_FULL.md §12.
	Stats(ctx context.Context) (Stats, error)
}

// Stats is the aggregate view returned by Store.Stats.
type Stats struct {
	TotalExecutions int
	ByStatus        map[model.ExecutionStatus]int
}

func nowUTC() time.Time { return time.Now().UTC() }

func newState(executionID, teamID string, execCtx model.ExecutionContext) *model.ExecutionState {
	now := nowUTC()
	return &model.ExecutionState{
		ExecutionID: executionID,
		TeamID:      teamID,
		Status:      model.StatusPending,
		Context:     execCtx,
		Events:      []model.ExecutionEvent{},
		TeamStates:  map[string]model.TeamState{},
		TeamResults: map[string]model.TeamResult{},
		Errors:      []model.ErrorInfo{},
		Metrics:     model.ExecutionMetrics{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
