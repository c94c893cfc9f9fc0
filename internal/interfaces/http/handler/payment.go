package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	paymentapp "github.com/keyvault/backend/internal/application/payment"
	"github.com/keyvault/backend/internal/domain/payment"
	"github.com/keyvault/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaymentService is the payment status synchronization use case
type PaymentService interface {
	CreatePayment(ctx context.Context, in paymentapp.CreatePaymentInput) (*paymentapp.CreatePaymentResult, error)
	CheckPaymentStatus(ctx context.Context, paymentID string) (*paymentapp.StatusResult, error)
	HandleWebhook(ctx context.Context, in paymentapp.WebhookInput) (*paymentapp.WebhookResult, error)
}

// CreatePaymentRequest is the body of POST /create-payment
type CreatePaymentRequest struct {
	ProductID        string `json:"productId" binding:"required,uuid"`
	Quantity         int    `json:"quantity" binding:"omitempty,gte=1"`
	BuyerID          string `json:"buyerId" binding:"omitempty,uuid"`
	CustomerName     string `json:"customerName" binding:"required,max=200"`
	CustomerEmail    string `json:"customerEmail" binding:"required,email"`
	CustomerDocument string `json:"customerDocument" binding:"omitempty,cpf_cnpj"`
	PaymentMethod    string `json:"paymentMethod" binding:"required,payment_method"`
	CardToken        string `json:"cardToken"`
	// PaymentMethodID is the card brand, e.g. "visa"
	PaymentMethodID string `json:"paymentMethodId"`
	Installments    int    `json:"installments" binding:"omitempty,gte=1,lte=12"`
}

// CheckPaymentStatusRequest is the body of POST /check-payment-status
type CheckPaymentStatusRequest struct {
	PaymentID string `json:"paymentId"`
}

// CreatePaymentFailure is the { success: false, error } body
type CreatePaymentFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// webhookEnvelope accepts both the v1 ("type") and legacy IPN ("topic")
// notification shapes. data.id may be a string or a number.
type webhookEnvelope struct {
	Type   string `json:"type"`
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Data   struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// PaymentHandler serves create-payment, check-payment-status and the
// Mercado Pago webhook
type PaymentHandler struct {
	payments PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreatePayment handles POST /create-payment
// @Summary      Create a payment
// @Description  Records an order for the product and opens a Mercado Pago payment by Pix, boleto or credit card
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CreatePaymentRequest true "Checkout request"
// @Success      200 {object} paymentapp.CreatePaymentResult
// @Failure      400 {object} CreatePaymentFailure
// @Failure      500 {object} CreatePaymentFailure
// @Router       /create-payment [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CreatePaymentFailure{Error: bindingMessage(err)})
		return
	}

	in := paymentapp.CreatePaymentInput{
		ProductID:        uuid.MustParse(req.ProductID),
		Quantity:         req.Quantity,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerDocument: req.CustomerDocument,
		Method:           payment.Method(req.PaymentMethod),
		CardToken:        req.CardToken,
		CardBrand:        req.PaymentMethodID,
		Installments:     req.Installments,
	}
	if req.BuyerID != "" {
		buyerID := uuid.MustParse(req.BuyerID)
		in.BuyerID = &buyerID
	}

	result, err := h.payments.CreatePayment(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, paymentapp.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, CreatePaymentFailure{Error: publicMessage(err)})
			return
		}
		logger.L(c.Request.Context()).Error("Create payment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, CreatePaymentFailure{Error: "Failed to create payment"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckPaymentStatus handles POST /check-payment-status
// @Summary      Check payment status
// @Description  Fetches the gateway status of a payment and syncs the order
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body CheckPaymentStatusRequest true "Payment id"
// @Success      200 {object} paymentapp.StatusResult
// @Failure      400 {object} FunctionError
// @Failure      404 {object} FunctionError
// @Failure      500 {object} FunctionError
// @Router       /check-payment-status [post]
func (h *PaymentHandler) CheckPaymentStatus(c *gin.Context) {
	var req CheckPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFunctionError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		respondFunctionError(c, http.StatusBadRequest, "paymentId is required")
		return
	}

	result, err := h.payments.CheckPaymentStatus(c.Request.Context(), req.PaymentID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, paymentapp.ErrInvalidRequest):
		respondFunctionError(c, http.StatusBadRequest, publicMessage(err))
	case errors.Is(err, payment.ErrPaymentNotFound):
		respondFunctionError(c, http.StatusNotFound, "Payment not found")
	default:
		logger.L(c.Request.Context()).Error("Check payment status failed",
			zap.String("payment_id", req.PaymentID),
			zap.Error(err))
		respondFunctionError(c, http.StatusInternalServerError, "Failed to check payment status")
	}
}

// MercadoPagoWebhook handles POST /mercadopago-webhook. The JSON body takes
// precedence; ?type=payment&data.id= and ?topic=payment&id= are accepted when
// the body does not carry the notification.
// @Summary      Mercado Pago webhook
// @Description  Receives payment notifications, verifies the x-signature header and syncs the order status
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        x-signature  header string false "ts=<unix>,v1=<hmac>"
// @Param        x-request-id header string false "Delivery id"
// @Param        type         query  string false "Notification type"
// @Param        data.id      query  string false "Payment id"
// @Success      200 {object} paymentapp.WebhookResult
// @Failure      400 {object} FunctionError
// @Failure      401 {object} FunctionError
// @Failure      500 {object} FunctionError
// @Router       /mercadopago-webhook [post]
func (h *PaymentHandler) MercadoPagoWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondFunctionError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	in, ok := parseWebhook(body, c)
	if !ok {
		respondFunctionError(c, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	in.Signature = c.GetHeader("x-signature")
	in.RequestID = c.GetHeader("x-request-id")

	result, err := h.payments.HandleWebhook(ctx, in)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, paymentapp.ErrMissingDataID):
		respondFunctionError(c, http.StatusBadRequest, "Missing data.id")
	case errors.Is(err, paymentapp.ErrInvalidSignature):
		respondFunctionError(c, http.StatusUnauthorized, "Invalid signature")
	default:
		logger.L(ctx).Error("Webhook processing failed",
			zap.String("data_id", in.DataID),
			zap.Error(err))
		respondFunctionError(c, http.StatusInternalServerError, "Internal error")
	}
}

// parseWebhook builds the webhook input from the body and query string. It
// fails only when the body is malformed and the query string is empty.
func parseWebhook(body []byte, c *gin.Context) (paymentapp.WebhookInput, bool) {
	var in paymentapp.WebhookInput
	bodyOK := true
	if len(bytes.TrimSpace(body)) > 0 {
		var env webhookEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			bodyOK = false
		} else {
			in.Type = firstNonEmpty(env.Type, env.Topic)
			in.Action = env.Action
			in.DataID = rawID(env.Data.ID)
		}
	}

	if in.Type == "" {
		in.Type = firstNonEmpty(c.Query("type"), c.Query("topic"))
	}
	if in.DataID == "" {
		in.DataID = firstNonEmpty(c.Query("data.id"), c.Query("id"))
	}
	if !bodyOK && in.Type == "" && in.DataID == "" {
		return in, false
	}
	return in, true
}

// rawID renders a JSON string or number id as text.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// publicMessage strips the package prefix from service errors.
func publicMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), "payment: ")
	return strings.TrimPrefix(msg, "invalid request: ")
}

// bindingMessage renders the first validation failure as "field: reason".
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "payment_method":
			return "paymentMethod must be one of: pix, boleto, credit_card"
		case "cpf_cnpj":
			return "customerDocument must be a valid CPF or CNPJ"
		default:
			return fe.Field() + " is invalid"
		}
	}
	return "Invalid request body"
}
