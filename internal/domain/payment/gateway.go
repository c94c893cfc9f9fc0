package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	// Payment creation errors
	ErrPaymentInvalidOrderID  = errors.New("payment: invalid order ID")
	ErrPaymentInvalidAmount   = errors.New("payment: invalid payment amount")
	ErrPaymentInvalidMethod   = errors.New("payment: invalid payment method")
	ErrPaymentInvalidPayer    = errors.New("payment: payer email is required")
	ErrPaymentMissingToken    = errors.New("payment: card token is required for credit card payments")
	ErrPaymentMissingDocument = errors.New("payment: payer document is required for boleto payments")

	// Payment query errors
	ErrPaymentInvalidID = errors.New("payment: invalid payment ID")
	ErrPaymentNotFound  = errors.New("payment: payment not found")

	// Gateway errors
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
	ErrGatewayInvalidCallback = errors.New("payment: invalid callback signature")
)

// Method is the way a buyer pays
type Method string

const (
	MethodPix        Method = "pix"
	MethodBoleto     Method = "boleto"
	MethodCreditCard Method = "credit_card"
)

// IsValid returns true if the method is supported
func (m Method) IsValid() bool {
	switch m {
	case MethodPix, MethodBoleto, MethodCreditCard:
		return true
	default:
		return false
	}
}

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// Gateway status values as reported by the payment processor.
// Statuses are stored verbatim, so unknown values are passed through untouched.
const (
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusAuthorized  = "authorized"
	StatusInProcess   = "in_process"
	StatusInMediation = "in_mediation"
	StatusRejected    = "rejected"
	StatusCancelled   = "cancelled"
	StatusRefunded    = "refunded"
	StatusChargedBack = "charged_back"
)

// IsApproved reports whether a gateway status means the buyer has paid
func IsApproved(status string) bool {
	return strings.EqualFold(status, StatusApproved)
}

// IsFinal reports whether a gateway status will not change without a refund or dispute
func IsFinal(status string) bool {
	switch strings.ToLower(status) {
	case StatusApproved, StatusRejected, StatusCancelled, StatusRefunded, StatusChargedBack:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Payment Request/Response DTOs
// ---------------------------------------------------------------------------

// Payer identifies the buyer towards the gateway
type Payer struct {
	Email     string
	FirstName string
	LastName  string
	// Document is the CPF/CNPJ number, digits only
	Document string
}

// CreatePaymentRequest represents a request to create a payment
type CreatePaymentRequest struct {
	// OrderID is our internal order id, sent as the external reference
	OrderID     uuid.UUID
	Amount      decimal.Decimal
	Description string
	Method      Method
	Payer       Payer
	// CardToken is the tokenized card for credit card payments
	CardToken string
	// PaymentMethodID is the card brand for credit card payments (e.g. "visa")
	PaymentMethodID string
	Installments    int
	// NotificationURL is where the gateway sends webhooks for this payment
	NotificationURL string
	Metadata        map[string]string
}

// Validate validates the create payment request
func (r *CreatePaymentRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return ErrPaymentInvalidOrderID
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPaymentInvalidAmount
	}
	if !r.Method.IsValid() {
		return ErrPaymentInvalidMethod
	}
	if r.Payer.Email == "" {
		return ErrPaymentInvalidPayer
	}
	if r.Method == MethodCreditCard && r.CardToken == "" {
		return ErrPaymentMissingToken
	}
	if r.Method == MethodBoleto && r.Payer.Document == "" {
		return ErrPaymentMissingDocument
	}
	return nil
}

// Payment is the gateway's view of a payment
type Payment struct {
	// ID is the gateway payment id
	ID           string
	Status       string
	StatusDetail string
	// ExternalReference is the order id sent on creation
	ExternalReference string
	Amount            decimal.Decimal
	Method            string
	// PixQRCode is the copy-and-paste PIX code
	PixQRCode string
	// PixQRCodeBase64 is the PIX QR code image
	PixQRCodeBase64 string
	// TicketURL is the boleto or PIX checkout page
	TicketURL string
}

// IsApproved reports whether the payment has been approved
func (p *Payment) IsApproved() bool {
	return IsApproved(p.Status)
}

// Gateway is the payment processor boundary
type Gateway interface {
	// CreatePayment creates a payment at the gateway
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error)

	// GetPayment resolves the current state of a payment.
	// Returns ErrPaymentNotFound if the gateway does not know the id.
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// WebhookVerifier validates the signature of an inbound gateway notification
type WebhookVerifier interface {
	VerifyWebhook(signature, requestID, dataID string) error
}
