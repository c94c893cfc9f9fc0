package order

import (
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// AggregateTypeOrder is the aggregate type of order events
	AggregateTypeOrder = "Order"
	// EventTypeStatusChanged is raised whenever the gateway status of an order changes
	EventTypeStatusChanged = "order.status_changed"
)

// StatusChangedEvent is raised when the gateway reports a new status for an order
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	PaymentID      string          `json:"payment_id"`
	PreviousStatus string          `json:"previous_status"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	CustomerEmail  string          `json:"customer_email"`
}

// NewStatusChangedEvent creates a StatusChangedEvent for the order's current status
func NewStatusChangedEvent(o *Order, previous string) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ProductID:       o.ProductID,
		PaymentID:       o.PaymentID,
		PreviousStatus:  previous,
		Status:          o.Status,
		Amount:          o.Amount,
		CustomerEmail:   o.CustomerEmail,
	}
}
