package event

import (
	"context"

	"github.com/keyvault/backend/internal/domain/shared"
)

// FuncHandler adapts a function to shared.EventHandler
type FuncHandler struct {
	fn    func(ctx context.Context, event shared.DomainEvent) error
	types []string
}

// NewFuncHandler creates a handler for the given event types
func NewFuncHandler(fn func(ctx context.Context, event shared.DomainEvent) error, eventTypes ...string) *FuncHandler {
	return &FuncHandler{fn: fn, types: eventTypes}
}

// Handle calls the wrapped function
func (h *FuncHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	return h.fn(ctx, event)
}

// EventTypes returns the event types passed to NewFuncHandler
func (h *FuncHandler) EventTypes() []string {
	return h.types
}

// PublishPending publishes the events an aggregate recorded and clears them.
// Events are cleared even if publishing fails.
func PublishPending(ctx context.Context, publisher shared.EventPublisher, aggregate interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}) error {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	defer aggregate.ClearDomainEvents()
	return publisher.Publish(ctx, events...)
}
