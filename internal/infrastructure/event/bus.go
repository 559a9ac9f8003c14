// Package event dispatches domain events to in-process handlers.
package event

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/stockroom/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// subscription is one handler and the event types it listens to.
// An empty type list matches every event.
type subscription struct {
	handler    shared.EventHandler
	eventTypes []string
}

func (s subscription) matches(eventType string) bool {
	return len(s.eventTypes) == 0 || slices.Contains(s.eventTypes, eventType)
}

// InMemoryEventBus implements EventBus with synchronous in-process dispatch.
// Handlers run in subscription order. Handler failures are logged and never
// returned to the publisher.
type InMemoryEventBus struct {
	mu            sync.RWMutex
	subscriptions []subscription
	logger        *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{logger: logger}
}

// Publish delivers events to every matching handler
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit event types the handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, subscription{handler: handler, eventTypes: slices.Clone(eventTypes)})
	b.mu.Unlock()
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var handlers []shared.EventHandler
	for _, s := range b.subscriptions {
		if s.matches(eventType) {
			handlers = append(handlers, s.handler)
		}
	}
	return handlers
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
