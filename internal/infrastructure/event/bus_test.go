package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/inventory"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	event := newTestEvent("TestEvent")
	require.NoError(t, bus.Publish(context.Background(), event, newTestEvent("OtherEvent")))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, event, handled[0])
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	specific := newTestHandler("A")
	wildcard := newTestHandler()
	bus.Subscribe(specific)
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))

	assert.Len(t, specific.getHandled(), 1)
	assert.Len(t, wildcard.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("A")
	bus.Subscribe(handler, "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, "B", handled[0].EventType())
}

func TestInMemoryEventBus_Publish_HandlerFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("A")
	failing.err = errors.New("boom")
	panicking := newTestHandler("A")
	panicking.panicWith = "kaput"
	healthy := newTestHandler("A")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))

	assert.Len(t, healthy.getHandled(), 1)
	entries := logs.FilterMessage("Event handler failed").All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[1].ContextMap()["error"], "kaput")
}

func TestInMemoryEventBus_Publish_SubscriptionOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	var order []string
	record := func(name string) shared.EventHandler {
		return handlerFunc{types: []string{"A"}, fn: func(context.Context, shared.DomainEvent) error {
			order = append(order, name)
			return nil
		}}
	}
	bus.Subscribe(record("audit"))
	bus.Subscribe(record("metrics"))
	bus.Subscribe(handlerFunc{fn: func(context.Context, shared.DomainEvent) error {
		order = append(order, "wildcard")
		return nil
	}})

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, []string{"audit", "metrics", "wildcard", "wildcard"}, order)
}

type handlerFunc struct {
	types []string
	fn    func(context.Context, shared.DomainEvent) error
}

func (h handlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error { return h.fn(ctx, event) }
func (h handlerFunc) EventTypes() []string                                       { return h.types }

func TestStockAuditHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewStockAuditHandler(zap.New(core)))

	stock, err := inventory.NewStock(uuid.New())
	require.NoError(t, err)
	stock.Received(3)
	productID := uuid.New()

	events := append(stock.GetDomainEvents(), inventory.NewStockItemsRemovedEvent(stock.ID, []uuid.UUID{productID}))
	require.NoError(t, bus.Publish(context.Background(), events...))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("Unrelated")))

	entries := logs.FilterMessage("Stock ledger changed").All()
	require.Len(t, entries, 2)

	received := entries[0].ContextMap()
	assert.Equal(t, inventory.EventTypeStockReceived, received["event_type"])
	assert.Equal(t, stock.ID.String(), received["stock_id"])
	assert.Equal(t, int64(3), received["item_count"])
	assert.Equal(t, "audit", entries[0].LoggerName)

	removed := entries[1].ContextMap()
	assert.Equal(t, []any{productID.String()}, removed["product_ids"])
}
