package payment

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Mercado Pago payment_method_id values
const (
	mpMethodPix    = "pix"
	mpMethodBoleto = "bolbradesco"
)

type mpIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type mpPayer struct {
	Email          string            `json:"email"`
	FirstName      string            `json:"first_name,omitempty"`
	LastName       string            `json:"last_name,omitempty"`
	Identification *mpIdentification `json:"identification,omitempty"`
}

type mpCreatePaymentBody struct {
	TransactionAmount json.Number       `json:"transaction_amount"`
	Description       string            `json:"description,omitempty"`
	PaymentMethodID   string            `json:"payment_method_id"`
	Token             string            `json:"token,omitempty"`
	Installments      int               `json:"installments,omitempty"`
	ExternalReference string            `json:"external_reference"`
	NotificationURL   string            `json:"notification_url,omitempty"`
	Payer             mpPayer           `json:"payer"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type mpTransactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	TicketURL    string `json:"ticket_url"`
}

type mpPaymentResponse struct {
	ID                 json.Number     `json:"id"`
	Status             string          `json:"status"`
	StatusDetail       string          `json:"status_detail"`
	ExternalReference  string          `json:"external_reference"`
	TransactionAmount  decimal.Decimal `json:"transaction_amount"`
	PaymentMethodID    string          `json:"payment_method_id"`
	PaymentTypeID      string          `json:"payment_type_id"`
	PointOfInteraction *struct {
		TransactionData *mpTransactionData `json:"transaction_data"`
	} `json:"point_of_interaction,omitempty"`
	TransactionDetails *struct {
		ExternalResourceURL string `json:"external_resource_url"`
	} `json:"transaction_details,omitempty"`
}

type mpErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Cause   []struct {
		Code        json.Number `json:"code"`
		Description string      `json:"description"`
	} `json:"cause"`
}
