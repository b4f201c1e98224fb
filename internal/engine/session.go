package engine

import (
	"sync"
	"time"

	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/teambuilder"
)

// Session is one in-flight or completed execution, tracked in the
// registry for status/cancel/list operations. Grounded on
// original_source/.../execution_engine_demo.py's Session
// (execution_id/status/started_at/completed_at/get_duration/pause/resume)
// and on runtime/agent/session/session.go's lifecycle-state idiom.
type Session struct {
	mu sync.Mutex

	executionID string
	team        teambuilder.BuiltTeam
	config      model.ExecutionConfig
	status      model.ExecutionStatus
	startedAt   time.Time
	completedAt *time.Time

	cancel      chan struct{}
	cancelOnce  sync.Once
	graceful    bool
	pauseSignal chan bool // true = pause, false = resume
}

func newSession(executionID string, team teambuilder.BuiltTeam, cfg model.ExecutionConfig) *Session {
	return &Session{
		executionID: executionID,
		team:        team,
		config:      cfg,
		status:      model.StatusPending,
		startedAt:   time.Now().UTC(),
		cancel:      make(chan struct{}),
		pauseSignal: make(chan bool, 1),
	}
}

// ExecutionID returns the session's execution id.
func (s *Session) ExecutionID() string { return s.executionID }

// Status returns the session's current lifecycle status.
func (s *Session) Status() model.ExecutionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(status model.ExecutionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	if status.IsTerminal() {
		now := time.Now().UTC()
		s.completedAt = &now
	}
}

// Duration reports the elapsed time since start, or the total run time
// once completed.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completedAt != nil {
		return s.completedAt.Sub(s.startedAt)
	}
	return time.Since(s.startedAt)
}

// Pause requests that the orchestration loop suspend after its current
// step. Idempotent.
func (s *Session) Pause() {
	select {
	case s.pauseSignal <- true:
	default:
	}
}

// Resume requests that a paused orchestration loop continue.
func (s *Session) Resume() {
	select {
	case s.pauseSignal <- false:
	default:
	}
}

// requestCancel signals the orchestration loop to stop. graceful=true lets
// the current team finish before stopping; graceful=false stops before the
// next worker call.
func (s *Session) requestCancel(graceful bool) {
	s.cancelOnce.Do(func() {
		s.mu.Lock()
		s.graceful = graceful
		s.mu.Unlock()
		close(s.cancel)
	})
}

func (s *Session) cancelRequested() bool {
	select {
	case <-s.cancel:
		return true
	default:
		return false
	}
}

func (s *Session) isGraceful() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graceful
}
