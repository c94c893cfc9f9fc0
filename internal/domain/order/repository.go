package order

import "context"

// Repository persists orders
type Repository interface {
	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// FindByPaymentID finds the order linked to a gateway payment id.
	// Returns shared.ErrNotFound if no order matches.
	FindByPaymentID(ctx context.Context, paymentID string) (*Order, error)

	// UpdateStatus writes the status columns of an existing order
	UpdateStatus(ctx context.Context, o *Order) error
}
