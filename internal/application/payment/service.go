package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keyvault/backend/internal/domain/catalog"
	"github.com/keyvault/backend/internal/domain/order"
	"github.com/keyvault/backend/internal/domain/payment"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/keyvault/backend/internal/infrastructure/event"
	"github.com/keyvault/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrInvalidRequest wraps every caller-side validation failure
	ErrInvalidRequest = errors.New("payment: invalid request")
	// ErrMissingDataID is returned when a webhook carries no payment id
	ErrMissingDataID = errors.New("payment: webhook data.id is required")
	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
)

// Webhook acknowledgment notes
const (
	NotePaymentNotFound  = "Payment not found"
	NoteOrderNotFound    = "Order not found"
	NoteAlreadyProcessed = "Already processed"
	NoteIgnored          = "Ignored"
)

// ServiceConfig holds the dependencies of Service
type ServiceConfig struct {
	Gateway  payment.Gateway
	Verifier payment.WebhookVerifier
	Products catalog.ProductFinder
	Orders   order.Repository
	Events   shared.EventPublisher
	// Idempotency remembers applied webhook deliveries. Optional.
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	// NotificationURL is handed to the gateway so it knows where to send webhooks
	NotificationURL string
	Logger          *zap.Logger
}

// Service keeps local orders in sync with the gateway's payment status.
// Create, webhook and manual poll all resolve the status from the gateway by
// payment id and write it verbatim onto the order keyed by that id.
type Service struct {
	gateway         payment.Gateway
	verifier        payment.WebhookVerifier
	products        catalog.ProductFinder
	orders          order.Repository
	events          shared.EventPublisher
	idempotency     shared.IdempotencyStore
	idempotencyTTL  time.Duration
	notificationURL string
	logger          *zap.Logger
	metrics         *telemetry.MarketMetrics
}

// NewService creates a payment Service
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		gateway:         cfg.Gateway,
		verifier:        cfg.Verifier,
		products:        cfg.Products,
		orders:          cfg.Orders,
		events:          cfg.Events,
		idempotency:     cfg.Idempotency,
		idempotencyTTL:  cfg.IdempotencyTTL,
		notificationURL: cfg.NotificationURL,
		logger:          cfg.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.idempotencyTTL <= 0 {
		s.idempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	return s
}

// SetMarketMetrics sets the business metrics collector
func (s *Service) SetMarketMetrics(m *telemetry.MarketMetrics) {
	s.metrics = m
}

// CreatePayment prices the product, creates the payment at the gateway and
// stores the order with the returned payment id and status.
func (s *Service) CreatePayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "payment", "create",
		telemetry.WithAttribute("product_id", in.ProductID.String()),
		telemetry.WithAttribute("payment_method", string(in.Method)),
	)
	defer span.End()

	if in.Quantity <= 0 {
		in.Quantity = 1
	}

	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: product not found", ErrInvalidRequest)
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load product: %w", err)
	}
	if !product.IsActive() {
		return nil, fmt.Errorf("%w: product is not available", ErrInvalidRequest)
	}

	amount := product.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
	o, err := order.NewOrder(product.ID, amount, in.Method, in.CustomerEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	sellerID := product.SellerID
	o.SellerID = &sellerID
	o.BuyerID = in.BuyerID
	o.Quantity = in.Quantity
	o.CustomerName = strings.TrimSpace(in.CustomerName)
	o.CustomerDocument = strings.TrimSpace(in.CustomerDocument)

	first, last := splitName(o.CustomerName)
	req := &payment.CreatePaymentRequest{
		OrderID:     o.ID,
		Amount:      amount,
		Description: product.Name,
		Method:      in.Method,
		Payer: payment.Payer{
			Email:     o.CustomerEmail,
			FirstName: first,
			LastName:  last,
			Document:  o.CustomerDocument,
		},
		CardToken:       in.CardToken,
		PaymentMethodID: in.CardBrand,
		Installments:    in.Installments,
		NotificationURL: s.notificationURL,
		Metadata:        map[string]string{"product_id": product.ID.String()},
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	// The order id doubles as the gateway idempotency key, so the row exists
	// before any payment can reference it.
	if err := s.orders.Save(ctx, o); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("store pending order: %w", err)
	}

	p, err := s.gateway.CreatePayment(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Gateway rejected payment",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		o.ApplyGatewayStatus(o.Status, "gateway_error")
		if uerr := s.orders.UpdateStatus(ctx, o); uerr != nil {
			s.logger.Warn("Failed to mark pending order",
				zap.String("order_id", o.ID.String()),
				zap.Error(uerr))
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	o.AttachPayment(p)
	if p.IsApproved() {
		o.AddDomainEvent(order.NewStatusChangedEvent(o, payment.StatusPending))
	}
	if err := s.orders.Save(ctx, o); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to link order to created payment",
			zap.String("order_id", o.ID.String()),
			zap.String("payment_id", p.ID),
			zap.Error(err))
		return nil, fmt.Errorf("link payment to order: %w", err)
	}
	s.publish(ctx, o)

	s.metrics.RecordPaymentCreated(ctx, string(in.Method), p.Status)
	s.logger.Info("Payment created",
		zap.String("order_id", o.ID.String()),
		zap.String("payment_id", p.ID),
		zap.String("status", p.Status),
		zap.String("amount", amount.String()))

	return &CreatePaymentResult{
		Success:         true,
		OrderID:         o.ID.String(),
		PaymentID:       p.ID,
		Status:          p.Status,
		PixQRCode:       p.PixQRCode,
		PixQRCodeBase64: p.PixQRCodeBase64,
		TicketURL:       p.TicketURL,
	}, nil
}

// CheckPaymentStatus polls the gateway and writes the status onto the order.
// A missing local order is logged and does not fail the call.
func (s *Service) CheckPaymentStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, fmt.Errorf("%w: paymentId is required", ErrInvalidRequest)
	}

	ctx, span := telemetry.StartSpan(ctx, "payment", "check_status",
		telemetry.WithAttribute("payment_id", paymentID))
	defer span.End()

	p, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("get payment %s: %w", paymentID, err)
	}

	if _, err := s.syncOrder(ctx, p); err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordStatusSync(ctx, p.Status)

	return &StatusResult{
		Status:       p.Status,
		StatusDetail: p.StatusDetail,
		Approved:     p.IsApproved(),
	}, nil
}

// HandleWebhook processes a gateway notification. Conditions that are not
// the gateway's fault are acknowledged with a note instead of an error.
func (s *Service) HandleWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error) {
	if !in.IsPaymentEvent() {
		s.logger.Debug("Ignoring non-payment webhook",
			zap.String("type", in.Type),
			zap.String("action", in.Action))
		s.metrics.RecordWebhook(ctx, "ignored")
		return &WebhookResult{Received: true}, nil
	}

	dataID := strings.TrimSpace(in.DataID)
	if dataID == "" {
		s.metrics.RecordWebhook(ctx, "invalid")
		return nil, ErrMissingDataID
	}

	if s.verifier != nil {
		if err := s.verifier.VerifyWebhook(in.Signature, in.RequestID, dataID); err != nil {
			s.logger.Warn("Webhook signature rejected",
				zap.String("payment_id", dataID),
				zap.String("request_id", in.RequestID),
				zap.Error(err))
			s.metrics.RecordWebhook(ctx, "rejected")
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	ctx, span := telemetry.StartSpan(ctx, "payment", "webhook",
		telemetry.WithAttribute("payment_id", dataID))
	defer span.End()

	p, err := s.gateway.GetPayment(ctx, dataID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			s.logger.Warn("Webhook for unknown payment", zap.String("payment_id", dataID))
			s.metrics.RecordWebhook(ctx, "payment_not_found")
			return &WebhookResult{Received: true, Note: NotePaymentNotFound}, nil
		}
		telemetry.RecordError(span, err)
		s.metrics.RecordWebhook(ctx, "error")
		return nil, fmt.Errorf("get payment %s: %w", dataID, err)
	}

	key := deliveryKey(p)
	if s.idempotency != nil {
		done, err := s.idempotency.IsProcessed(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency check failed, processing anyway", zap.String("key", key), zap.Error(err))
		} else if done {
			s.metrics.RecordWebhook(ctx, "duplicate")
			return &WebhookResult{Received: true, Status: p.Status, Note: NoteAlreadyProcessed}, nil
		}
	}

	o, err := s.syncOrder(ctx, p)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.metrics.RecordWebhook(ctx, "order_not_found")
			return &WebhookResult{Received: true, Note: NoteOrderNotFound}, nil
		}
		telemetry.RecordError(span, err)
		s.metrics.RecordWebhook(ctx, "error")
		return nil, err
	}

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to mark webhook processed", zap.String("key", key), zap.Error(err))
		}
	}
	s.metrics.RecordWebhook(ctx, "updated")

	return &WebhookResult{Received: true, OrderID: o.ID.String(), Status: o.Status}, nil
}

// syncOrder writes the gateway status onto the order linked to p.
// Returns shared.ErrNotFound, after logging, when no order matches.
func (s *Service) syncOrder(ctx context.Context, p *payment.Payment) (*order.Order, error) {
	o, err := s.orders.FindByPaymentID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("No local order for payment",
				zap.String("payment_id", p.ID),
				zap.String("status", p.Status))
			return nil, err
		}
		return nil, fmt.Errorf("find order for payment %s: %w", p.ID, err)
	}

	if !o.ApplyGatewayStatus(p.Status, p.StatusDetail) {
		return o, nil
	}
	if err := s.orders.UpdateStatus(ctx, o); err != nil {
		return nil, fmt.Errorf("update order %s: %w", o.ID, err)
	}
	s.logger.Info("Order status synchronized",
		zap.String("order_id", o.ID.String()),
		zap.String("payment_id", p.ID),
		zap.String("status", o.Status))
	s.publish(ctx, o)
	return o, nil
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	if s.events == nil {
		o.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, s.events, o); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
}

// deliveryKey identifies one (payment, status) pair so a redelivered
// notification for an unchanged status is skipped
func deliveryKey(p *payment.Payment) string {
	return "mp:" + p.ID + ":" + p.Status
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
