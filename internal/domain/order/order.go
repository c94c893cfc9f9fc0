package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/payment"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Order is a buyer's purchase of one product, paid through the gateway.
// Status holds the gateway's status string verbatim.
type Order struct {
	shared.AggregateRoot
	ProductID        uuid.UUID
	SellerID         *uuid.UUID
	BuyerID          *uuid.UUID
	CustomerName     string
	CustomerEmail    string
	CustomerDocument string
	Quantity         int
	Amount           decimal.Decimal
	PaymentMethod    payment.Method
	PaymentID        string
	Status           string
	StatusDetail     string
	PixQRCode        string
	PixQRCodeBase64  string
	TicketURL        string
}

// NewOrder creates a pending order for a product
func NewOrder(productID uuid.UUID, amount decimal.Decimal, method payment.Method, email string) (*Order, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unsupported payment method")
	}
	if strings.TrimSpace(email) == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Customer email is required")
	}
	return &Order{
		AggregateRoot: shared.NewAggregateRoot(),
		ProductID:     productID,
		CustomerEmail: strings.TrimSpace(email),
		Quantity:      1,
		Amount:        amount,
		PaymentMethod: method,
		Status:        payment.StatusPending,
	}, nil
}

// AttachPayment links the order to the gateway payment created for it
func (o *Order) AttachPayment(p *payment.Payment) {
	o.PaymentID = p.ID
	o.Status = p.Status
	o.StatusDetail = p.StatusDetail
	o.PixQRCode = p.PixQRCode
	o.PixQRCodeBase64 = p.PixQRCodeBase64
	o.TicketURL = p.TicketURL
	o.UpdatedAt = time.Now()
}

// ApplyGatewayStatus writes the gateway's status onto the order.
// Returns false when nothing changed.
func (o *Order) ApplyGatewayStatus(status, detail string) bool {
	if o.Status == status && o.StatusDetail == detail {
		return false
	}
	previous := o.Status
	o.Status = status
	o.StatusDetail = detail
	o.UpdatedAt = time.Now()
	if previous != status {
		o.AddDomainEvent(NewStatusChangedEvent(o, previous))
	}
	return true
}

// IsPaid reports whether the gateway approved the payment
func (o *Order) IsPaid() bool {
	return payment.IsApproved(o.Status)
}
