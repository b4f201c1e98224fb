package statestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
)

// RedisStore is the durable Store implementation backed by Redis, grounded
// on original_source/.../state_manager.py's StateManager (key layout,
// TTL-on-every-write, distributed-lock-guarded mutation) and on
// itsneelabh-gomind/orchestration/workflow_state.go's Go usage of
// github.com/redis/go-redis.
type RedisStore struct {
	client *redis.Client
	cfg    Config
}

// NewRedisStore constructs a RedisStore against an already-configured
// client.
func NewRedisStore(client *redis.Client, cfg Config) *RedisStore {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultConfig().RetryDelay
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultConfig().LockTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &RedisStore{client: client, cfg: cfg}
}

func (s *RedisStore) execKey(executionID string) string {
	return fmt.Sprintf("%s:execution:%s", s.cfg.KeyPrefix, executionID)
}

func (s *RedisStore) lockKey(executionID string) string {
	return fmt.Sprintf("%s:lock:%s", s.cfg.KeyPrefix, executionID)
}

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, executionID, teamID string, execCtx model.ExecutionContext) error {
	key := s.execKey(executionID)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return errs.Wrap(errs.KindBackendUnavailable, "check existence", err)
	}
	if exists > 0 {
		return errs.Errorf(errs.KindAlreadyExists, "execution %s already exists", executionID)
	}
	state := newState(executionID, teamID, execCtx)
	return s.write(ctx, key, state)
}

func (s *RedisStore) write(ctx context.Context, key string, state *model.ExecutionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "serialize execution state", err)
	}
	if err := s.client.Set(ctx, key, payload, s.cfg.DefaultTTL).Err(); err != nil {
		return errs.Wrap(errs.KindBackendUnavailable, "write execution state", err)
	}
	return nil
}

func (s *RedisStore) read(ctx context.Context, key string) (*model.ExecutionState, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindBackendUnavailable, "read execution state", err)
	}
	var state model.ExecutionState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "deserialize execution state", err)
	}
	return &state, nil
}

// mutate performs a lock-guarded read-modify-write of one execution's
// state, per spec.md §4.1's distributed-lock protocol.
func (s *RedisStore) mutate(ctx context.Context, executionID string, fn func(*model.ExecutionState)) error {
	release, err := acquireLock(ctx, s.client, s.lockKey(executionID), s.cfg)
	if err != nil {
		return err
	}
	defer release(context.WithoutCancel(ctx))

	key := s.execKey(executionID)
	state, err := s.read(ctx, key)
	if err != nil {
		return err
	}
	if state == nil {
		return errs.Errorf(errs.KindNotFound, "execution %s not found", executionID)
	}
	fn(state)
	state.UpdatedAt = nowUTC()
	return s.write(ctx, key, state)
}

func (s *RedisStore) UpdateStatus(ctx context.Context, executionID string, status model.ExecutionStatus) error {
	return s.mutate(ctx, executionID, func(st *model.ExecutionState) { st.Status = status })
}

func (s *RedisStore) AddEvent(ctx context.Context, executionID string, event model.ExecutionEvent) error {
	return s.mutate(ctx, executionID, func(st *model.ExecutionState) { st.Events = append(st.Events, event) })
}

func (s *RedisStore) UpdateTeamState(ctx context.Context, executionID string, state model.TeamState) error {
	return s.mutate(ctx, executionID, func(st *model.ExecutionState) {
		if st.TeamStates == nil {
			st.TeamStates = map[string]model.TeamState{}
		}
		st.TeamStates[state.TeamID] = state
	})
}

func (s *RedisStore) UpdateTeamResult(ctx context.Context, executionID, teamID string, result model.TeamResult) error {
	return s.mutate(ctx, executionID, func(st *model.ExecutionState) {
		if st.TeamResults == nil {
			st.TeamResults = map[string]model.TeamResult{}
		}
		st.TeamResults[teamID] = result
	})
}

func (s *RedisStore) UpdateSummary(ctx context.Context, executionID string, summary model.ExecutionSummary) error {
	return s.mutate(ctx, executionID, func(st *model.ExecutionState) { st.Summary = &summary })
}

func (s *RedisStore) AddError(ctx context.Context, executionID string, errInfo model.ErrorInfo) error {
	return s.mutate(ctx, executionID, func(st *model.ExecutionState) { st.Errors = append(st.Errors, errInfo) })
}

func (s *RedisStore) UpdateMetrics(ctx context.Context, executionID string, metrics model.ExecutionMetrics) error {
	return s.mutate(ctx, executionID, func(st *model.ExecutionState) { st.Metrics = metrics })
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, executionID string) (*model.ExecutionState, error) {
	return s.read(ctx, s.execKey(executionID))
}

// List implements Store. Redis KEYS-pattern scanning mirrors
// original_source's list_executions; SCAN is used instead of KEYS to avoid
// blocking the server on large keyspaces.
func (s *RedisStore) List(ctx context.Context, teamID string, status model.ExecutionStatus, limit int) ([]string, error) {
	pattern := fmt.Sprintf("%s:execution:*", s.cfg.KeyPrefix)
	var ids []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		executionID := key[len(s.cfg.KeyPrefix)+len(":execution:"):]
		if teamID != "" || status != "" {
			state, err := s.read(ctx, key)
			if err != nil || state == nil {
				continue
			}
			if teamID != "" && state.TeamID != teamID {
				continue
			}
			if status != "" && state.Status != status {
				continue
			}
		}
		ids = append(ids, executionID)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errs.Wrap(errs.KindBackendUnavailable, "list executions", err)
	}
	return ids, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, executionID string) error {
	if err := s.client.Del(ctx, s.execKey(executionID)).Err(); err != nil {
		return errs.Wrap(errs.KindBackendUnavailable, "delete execution state", err)
	}
	return nil
}

// Stats implements Store.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	ids, err := s.List(ctx, "", "", 0)
	if err != nil {
		return Stats{}, err
	}
	out := Stats{ByStatus: make(map[model.ExecutionStatus]int)}
	for _, id := range ids {
		state, err := s.read(ctx, s.execKey(id))
		if err != nil || state == nil {
			continue
		}
		out.TotalExecutions++
		out.ByStatus[state.Status]++
	}
	return out, nil
}
