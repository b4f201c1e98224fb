package eventbus

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"goa.design/hierarchical-agents/internal/model"
)

// Subscription is one subscriber's bounded delivery queue. Overflow drops
// the oldest queued event for this subscriber (local overflow policy); the
// bus never blocks a publisher because of a slow subscriber.
type Subscription struct {
	id       string
	filter   string
	capacity int

	mu      sync.Mutex
	queue   []model.ExecutionEvent
	closed  bool
	dropped int
	notify  chan struct{}
}

func newSubscription(filter string, capacity int) *Subscription {
	if capacity <= 0 {
		capacity = 64
	}
	return &Subscription{
		id:       uuid.NewString(),
		filter:   filter,
		capacity: capacity,
		notify:   make(chan struct{}, 1),
	}
}

// ID is the subscription's unique identifier.
func (s *Subscription) ID() string { return s.id }

func (s *Subscription) matches(executionID string) bool {
	return s.filter == "" || s.filter == executionID
}

// enqueue appends event to the queue, dropping the oldest entry first if at
// capacity. Returns true if a drop occurred. No-op once closed.
func (s *Subscription) enqueue(event model.ExecutionEvent) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	dropped := false
	if len(s.queue) >= s.capacity {
		s.queue = s.queue[1:]
		s.dropped++
		dropped = true
	}
	s.queue = append(s.queue, event)
	s.mu.Unlock()
	s.signal()
	return dropped
}

func (s *Subscription) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, the subscription is closed, or
// ctx is cancelled. ok is false when the subscription has been closed and
// drained (end-of-stream); err is non-nil only when ctx was the reason for
// returning.
func (s *Subscription) Next(ctx context.Context) (event model.ExecutionEvent, ok bool, err error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			event = s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return event, true, nil
		}
		if s.closed {
			s.mu.Unlock()
			return model.ExecutionEvent{}, false, nil
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
			continue
		case <-ctx.Done():
			return model.ExecutionEvent{}, false, ctx.Err()
		}
	}
}

// Dropped reports how many events were discarded for this subscriber due to
// local queue overflow.
func (s *Subscription) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// close marks the subscription inactive, drains its queue, and wakes any
// blocked reader. Idempotent.
func (s *Subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()
	s.signal()
}
