package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("order.status_changed")
	bus.Subscribe(handler)

	event := newTestEvent("order.status_changed")
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_OnlyMatchingTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	orders := newTestHandler("order.status_changed")
	other := newTestHandler("seller.approved")
	all := newTestHandler()
	bus.Subscribe(orders)
	bus.Subscribe(other)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("order.status_changed"),
		newTestEvent("order.status_changed"),
	))

	assert.Len(t, orders.getHandled(), 2)
	assert.Empty(t, other.getHandled())
	assert.Len(t, all.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_ErrorsAndPanicsAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("x")
	failing.err = errors.New("boom")
	panicking := NewFuncHandler(func(context.Context, shared.DomainEvent) error {
		panic("handler bug")
	}, "x")
	healthy := newTestHandler("x")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	})
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("x", "y")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x"), newTestEvent("y")))
	assert.Empty(t, handler.getHandled())
	assert.Empty(t, bus.registry.GetHandlers("x"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.False(t, bus.IsRunning())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.IsRunning())
}

type recordingAggregate struct {
	shared.AggregateRoot
}

func TestPublishPending(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler()
	bus.Subscribe(handler)

	agg := &recordingAggregate{AggregateRoot: shared.NewAggregateRoot()}
	agg.AddDomainEvent(newTestEvent("a"))
	agg.AddDomainEvent(newTestEvent("b"))

	require.NoError(t, PublishPending(context.Background(), bus, agg))
	assert.Len(t, handler.getHandled(), 2)
	assert.Empty(t, agg.GetDomainEvents())

	require.NoError(t, PublishPending(context.Background(), bus, agg))
	assert.Len(t, handler.getHandled(), 2)
}
