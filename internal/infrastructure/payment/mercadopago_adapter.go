package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/keyvault/backend/internal/domain/payment"
)

// MercadoPagoAdapter implements payment.Gateway against the Mercado Pago v1 payments API
type MercadoPagoAdapter struct {
	config     *MercadoPagoConfig
	httpClient *http.Client
}

// NewMercadoPagoAdapter creates a new Mercado Pago adapter
func NewMercadoPagoAdapter(config *MercadoPagoConfig) (*MercadoPagoAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MercadoPagoAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.timeout()},
	}, nil
}

// WithHTTPClient replaces the HTTP client, e.g. to add tracing transport
func (a *MercadoPagoAdapter) WithHTTPClient(c *http.Client) *MercadoPagoAdapter {
	a.httpClient = c
	return a
}

// CreatePayment creates a payment. The order id doubles as idempotency key so
// a retried request cannot charge twice.
func (a *MercadoPagoAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(a.buildCreatePaymentBody(req))
	if err != nil {
		return nil, fmt.Errorf("mercadopago: failed to marshal request: %w", err)
	}

	headers := http.Header{}
	headers.Set("X-Idempotency-Key", req.OrderID.String())

	respBody, status, err := a.doRequest(ctx, http.MethodPost, "/v1/payments", body, headers)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, mapErrorResponse(status, respBody)
	}
	return parsePayment(respBody)
}

// GetPayment fetches the current state of a payment
func (a *MercadoPagoAdapter) GetPayment(ctx context.Context, paymentID string) (*payment.Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, payment.ErrPaymentInvalidID
	}

	respBody, status, err := a.doRequest(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", payment.ErrPaymentNotFound, paymentID)
	}
	if status >= 400 {
		return nil, mapErrorResponse(status, respBody)
	}
	return parsePayment(respBody)
}

// VerifyWebhook checks the x-signature header of a webhook delivery.
// The header has the form "ts=<unix>,v1=<hex hmac>" and the HMAC-SHA256
// covers "id:<data.id>;request-id:<x-request-id>;ts:<ts>;".
func (a *MercadoPagoAdapter) VerifyWebhook(signature, requestID, dataID string) error {
	if a.config.WebhookSecret == "" {
		return nil
	}

	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return fmt.Errorf("%w: malformed x-signature", payment.ErrGatewayInvalidCallback)
	}

	var manifest strings.Builder
	if dataID != "" {
		manifest.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		manifest.WriteString("request-id:" + requestID + ";")
	}
	manifest.WriteString("ts:" + ts + ";")

	mac := hmac.New(sha256.New, []byte(a.config.WebhookSecret))
	mac.Write([]byte(manifest.String()))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return payment.ErrGatewayInvalidCallback
	}
	return nil
}

func (a *MercadoPagoAdapter) buildCreatePaymentBody(req *payment.CreatePaymentRequest) mpCreatePaymentBody {
	body := mpCreatePaymentBody{
		TransactionAmount: json.Number(req.Amount.StringFixed(2)),
		Description:       req.Description,
		ExternalReference: req.OrderID.String(),
		NotificationURL:   req.NotificationURL,
		Metadata:          req.Metadata,
		Payer: mpPayer{
			Email:     req.Payer.Email,
			FirstName: req.Payer.FirstName,
			LastName:  req.Payer.LastName,
		},
	}
	if body.NotificationURL == "" {
		body.NotificationURL = a.config.NotificationURL
	}
	if doc := digitsOnly(req.Payer.Document); doc != "" {
		docType := "CPF"
		if len(doc) == 14 {
			docType = "CNPJ"
		}
		body.Payer.Identification = &mpIdentification{Type: docType, Number: doc}
	}

	switch req.Method {
	case payment.MethodPix:
		body.PaymentMethodID = mpMethodPix
	case payment.MethodBoleto:
		body.PaymentMethodID = mpMethodBoleto
	case payment.MethodCreditCard:
		body.PaymentMethodID = req.PaymentMethodID
		body.Token = req.CardToken
		body.Installments = req.Installments
		if body.Installments < 1 {
			body.Installments = 1
		}
	}
	return body
}

// doRequest performs an authenticated request. Transport failures and 5xx
// answers map to ErrGatewayUnavailable.
func (a *MercadoPagoAdapter) doRequest(ctx context.Context, method, path string, body []byte, headers http.Header) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.baseURL()+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("mercadopago: failed to create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Authorization", "Bearer "+a.config.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("mercadopago: failed to read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, resp.StatusCode, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayUnavailable, resp.StatusCode)
	}
	return respBody, resp.StatusCode, nil
}

func mapErrorResponse(status int, body []byte) error {
	var errResp mpErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("%w: HTTP %d - %s", payment.ErrGatewayRequestFailed, status, errResp.Message)
	}
	return fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, status)
}

func parsePayment(body []byte) (*payment.Payment, error) {
	var resp mpPaymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	if resp.ID.String() == "" || resp.Status == "" {
		return nil, fmt.Errorf("%w: missing id or status", payment.ErrGatewayInvalidResponse)
	}

	p := &payment.Payment{
		ID:                resp.ID.String(),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		Amount:            resp.TransactionAmount,
		Method:            resp.PaymentMethodID,
	}
	if resp.PointOfInteraction != nil && resp.PointOfInteraction.TransactionData != nil {
		td := resp.PointOfInteraction.TransactionData
		p.PixQRCode = td.QRCode
		p.PixQRCodeBase64 = td.QRCodeBase64
		p.TicketURL = td.TicketURL
	}
	if p.TicketURL == "" && resp.TransactionDetails != nil {
		p.TicketURL = resp.TransactionDetails.ExternalResourceURL
	}
	return p, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	_ payment.Gateway         = (*MercadoPagoAdapter)(nil)
	_ payment.WebhookVerifier = (*MercadoPagoAdapter)(nil)
)
