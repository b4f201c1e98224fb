// Package eventbus implements the buffered publish-subscribe hub for
// ExecutionEvents: a per-execution ring buffer with eviction, bounded
// per-subscriber queues with a local drop-oldest overflow policy, and
// replay-then-live delivery to new subscribers. Adapted from the shape of
// the teacher's Sink/Event/Base stream package, simplified to one concrete
// event type per SPEC_FULL.md's single-process scope.
package eventbus

import (
	"context"
	"sync"
	"time"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/model"
	"goa.design/hierarchical-agents/internal/telemetry"
)

// Config bounds the bus's resource usage.
type Config struct {
	// MaxSubscribers caps the number of simultaneously active subscribers.
	MaxSubscribers int
	// PerExecutionBufferSize is the ring-buffer capacity per execution id.
	PerExecutionBufferSize int
	// PerSubscriberQueueSize is the bounded delivery queue capacity per
	// subscriber.
	PerSubscriberQueueSize int
	// MaxEventAge is the ceiling past which buffered events are evicted by
	// the periodic cleanup task.
	MaxEventAge time.Duration
	// CleanupInterval is how often the age-based eviction task runs.
	CleanupInterval time.Duration
}

// DefaultConfig returns sane bounds matching spec.md §4.2's defaults.
func DefaultConfig() Config {
	return Config{
		MaxSubscribers:         1000,
		PerExecutionBufferSize: 500,
		PerSubscriberQueueSize: 256,
		MaxEventAge:            30 * time.Minute,
		CleanupInterval:        time.Minute,
	}
}

// Bus is the publish-subscribe hub for ExecutionEvents.
type Bus struct {
	cfg     Config
	logger  telemetry.Logger
	metrics telemetry.Metrics

	mu          sync.Mutex
	buffers     map[string][]model.ExecutionEvent
	subscribers map[string]*Subscription

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// New constructs a Bus and starts its background cleanup task.
func New(cfg Config, logger telemetry.Logger, metrics telemetry.Metrics) *Bus {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	b := &Bus{
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
		buffers:     make(map[string][]model.ExecutionEvent),
		subscribers: make(map[string]*Subscription),
		stopCleanup: make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go b.cleanupLoop()
	}
	return b
}

// Shutdown stops the background cleanup task and closes every active
// subscription.
func (b *Bus) Shutdown() {
	b.cleanupOnce.Do(func() { close(b.stopCleanup) })
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	b.subscribers = make(map[string]*Subscription)
	b.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}

// Publish appends event to the execution's ring buffer (evicting the oldest
// entry if full) and fans it out to every matching active subscriber.
// Publish never blocks on a slow subscriber.
func (b *Bus) Publish(_ context.Context, event model.ExecutionEvent) {
	b.mu.Lock()
	buf := b.buffers[event.ExecutionID]
	buf = append(buf, event)
	if cap := b.cfg.PerExecutionBufferSize; cap > 0 && len(buf) > cap {
		buf = buf[len(buf)-cap:]
	}
	b.buffers[event.ExecutionID] = buf

	matching := make([]*Subscription, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		if s.matches(event.ExecutionID) {
			matching = append(matching, s)
		}
	}
	b.mu.Unlock()

	b.metrics.IncCounter("eventbus.published", 1, "event_type", event.EventType)
	for _, s := range matching {
		if dropped := s.enqueue(event); dropped {
			b.metrics.IncCounter("eventbus.subscriber_drops", 1)
		}
	}
}

// Subscribe creates a new subscription filtered to executionID ("" means
// global: match every execution). The buffered events currently held for
// that filter are replayed, in publish order, before Subscribe returns, so
// the caller's first Next() calls see that replay before any live event.
func (b *Bus) Subscribe(executionID string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.MaxSubscribers > 0 && len(b.subscribers) >= b.cfg.MaxSubscribers {
		return nil, errs.New(errs.KindBackendUnavailable, "too-many-subscribers")
	}

	sub := newSubscription(executionID, b.cfg.PerSubscriberQueueSize)
	b.subscribers[sub.id] = sub

	if executionID == "" {
		// Global subscribers replay every buffered execution's events, each
		// execution's events in their own publish order; no cross-execution
		// order is promised (spec.md §4.2 ordering guarantee).
		for _, buf := range b.buffers {
			for _, e := range buf {
				sub.enqueue(e)
			}
		}
	} else if buf, ok := b.buffers[executionID]; ok {
		for _, e := range buf {
			sub.enqueue(e)
		}
	}
	return sub, nil
}

// Unsubscribe marks the subscription inactive and drains/closes its queue.
// Idempotent.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
	if ok {
		sub.close()
	}
}

// Buffered returns a copy of the currently buffered events for executionID,
// in publish order. Used by tests asserting buffer contents; the SSE
// handler gets its replay from Subscribe instead.
func (b *Bus) Buffered(executionID string) []model.ExecutionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf := b.buffers[executionID]
	out := make([]model.ExecutionEvent, len(buf))
	copy(out, buf)
	return out
}

// SubscriberCount reports the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

func (b *Bus) cleanupLoop() {
	ticker := time.NewTicker(b.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopCleanup:
			return
		case <-ticker.C:
			b.evictAged()
		}
	}
}

func (b *Bus) evictAged() {
	if b.cfg.MaxEventAge <= 0 {
		return
	}
	cutoff := time.Now().Add(-b.cfg.MaxEventAge)
	b.mu.Lock()
	defer b.mu.Unlock()
	for execID, buf := range b.buffers {
		i := 0
		for i < len(buf) && buf[i].Timestamp.Before(cutoff) {
			i++
		}
		if i > 0 {
			b.buffers[execID] = append([]model.ExecutionEvent(nil), buf[i:]...)
		}
	}
}
