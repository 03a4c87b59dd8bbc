package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent carries the envelope shared by every domain event.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// Publisher is what services depend on to emit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventBus is an in-process fan-out of domain events to subscribed handlers.
// A handler that fails or panics is logged and does not affect the others.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	inflight sync.WaitGroup
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	n := len(eb.handlers[eventType])
	eb.mu.Unlock()

	eb.logger.Debug("event handler registered", "event_type", eventType, "total_handlers", n)
}

// HandlerCount reports how many handlers are subscribed to eventType.
func (eb *EventBus) HandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

func (eb *EventBus) handlersFor(event Event) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	hs := eb.handlers[event.EventType()]
	if len(hs) == 0 {
		return nil
	}
	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

// Publish runs every handler on its own goroutine with a context detached
// from the caller's cancellation. Use Wait to drain them.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.handlersFor(event)
	if len(handlers) == 0 {
		eb.logger.DebugContext(ctx, "no handlers for event type", "event_type", event.EventType())
		return nil
	}

	eb.logger.DebugContext(ctx, "publishing event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"handlers_count", len(handlers))

	detached := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		eb.inflight.Add(1)
		go func(h Handler) {
			defer eb.inflight.Done()
			if err := eb.dispatch(detached, h, event); err != nil {
				eb.logger.ErrorContext(detached, "event handler failed",
					"event_type", event.EventType(),
					"event_id", event.EventID(),
					"error", err)
			}
		}(handler)
	}

	return nil
}

// Wait blocks until every handler started by Publish has returned.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}

// PublishSync runs the handlers in subscription order and stops at the
// first failure.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	handlers := eb.handlersFor(event)
	if len(handlers) == 0 {
		eb.logger.DebugContext(ctx, "no handlers for event type", "event_type", event.EventType())
		return nil
	}

	eb.logger.InfoContext(ctx, "publishing event synchronously",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"handlers_count", len(handlers))

	for _, handler := range handlers {
		if err := eb.dispatch(ctx, handler, event); err != nil {
			eb.logger.ErrorContext(ctx, "event handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"error", err)
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}

	return nil
}

func (eb *EventBus) dispatch(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panicked: %v", rec)
		}
	}()
	return h(ctx, event)
}
