package payment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/payment"
)

// CreatePaymentInput is a buyer's checkout request for one product
type CreatePaymentInput struct {
	ProductID        uuid.UUID
	Quantity         int
	BuyerID          *uuid.UUID
	CustomerName     string
	CustomerEmail    string
	CustomerDocument string
	Method           payment.Method
	// CardToken and CardBrand are required for credit card payments
	CardToken    string
	CardBrand    string
	Installments int
}

// CreatePaymentResult is returned to the buyer after the gateway accepted the payment
type CreatePaymentResult struct {
	Success         bool   `json:"success"`
	OrderID         string `json:"orderId"`
	PaymentID       string `json:"paymentId"`
	Status          string `json:"status"`
	PixQRCode       string `json:"pixQrCode,omitempty"`
	PixQRCodeBase64 string `json:"pixQrCodeBase64,omitempty"`
	TicketURL       string `json:"ticketUrl,omitempty"`
}

// StatusResult is the gateway's current view of a payment
type StatusResult struct {
	Status       string `json:"status"`
	StatusDetail string `json:"statusDetail"`
	Approved     bool   `json:"approved"`
}

// WebhookInput is a gateway notification after envelope parsing
type WebhookInput struct {
	Type   string
	Action string
	DataID string
	// Signature and RequestID come from the x-signature and x-request-id headers
	Signature string
	RequestID string
}

// IsPaymentEvent reports whether the notification concerns a payment
func (in WebhookInput) IsPaymentEvent() bool {
	if in.Type != "" {
		return in.Type == "payment"
	}
	return strings.HasPrefix(in.Action, "payment.")
}

// WebhookResult is the acknowledgment body sent back to the gateway
type WebhookResult struct {
	Received bool   `json:"received"`
	OrderID  string `json:"orderId,omitempty"`
	Status   string `json:"status,omitempty"`
	Note     string `json:"note,omitempty"`
}
