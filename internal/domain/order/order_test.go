package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), decimal.NewFromInt(50), payment.MethodPix, "buyer@example.com")
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending order", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Equal(t, payment.StatusPending, o.Status)
		assert.Equal(t, 1, o.Quantity)
		assert.NotEqual(t, uuid.Nil, o.ID)
		assert.Empty(t, o.GetDomainEvents())
	})

	tests := []struct {
		name      string
		productID uuid.UUID
		amount    decimal.Decimal
		method    payment.Method
		email     string
		errSubstr string
	}{
		{"missing product", uuid.Nil, decimal.NewFromInt(1), payment.MethodPix, "a@b.c", "Product is required"},
		{"zero amount", uuid.New(), decimal.Zero, payment.MethodPix, "a@b.c", "Amount must be positive"},
		{"bad method", uuid.New(), decimal.NewFromInt(1), payment.Method("cash"), "a@b.c", "Unsupported payment method"},
		{"blank email", uuid.New(), decimal.NewFromInt(1), payment.MethodPix, "  ", "email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.productID, tt.amount, tt.method, tt.email)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestOrder_AttachPayment(t *testing.T) {
	o := newTestOrder(t)
	o.AttachPayment(&payment.Payment{
		ID:        "123",
		Status:    payment.StatusPending,
		PixQRCode: "000201...",
		TicketURL: "https://pay.example/ticket",
	})

	assert.Equal(t, "123", o.PaymentID)
	assert.Equal(t, "000201...", o.PixQRCode)
	assert.Equal(t, "https://pay.example/ticket", o.TicketURL)
	assert.Empty(t, o.GetDomainEvents())
}

func TestOrder_ApplyGatewayStatus(t *testing.T) {
	t.Run("approved writes status and raises event", func(t *testing.T) {
		o := newTestOrder(t)
		o.PaymentID = "123"

		changed := o.ApplyGatewayStatus("approved", "accredited")
		assert.True(t, changed)
		assert.Equal(t, "approved", o.Status)
		assert.True(t, o.IsPaid())

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*StatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeStatusChanged, evt.EventType())
		assert.Equal(t, "pending", evt.PreviousStatus)
		assert.Equal(t, "approved", evt.Status)
		assert.Equal(t, "123", evt.PaymentID)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		o := newTestOrder(t)
		assert.False(t, o.ApplyGatewayStatus(payment.StatusPending, ""))
		assert.Empty(t, o.GetDomainEvents())
	})

	t.Run("detail only change updates without event", func(t *testing.T) {
		o := newTestOrder(t)
		assert.True(t, o.ApplyGatewayStatus(payment.StatusPending, "pending_waiting_transfer"))
		assert.Equal(t, "pending_waiting_transfer", o.StatusDetail)
		assert.Empty(t, o.GetDomainEvents())
	})

	t.Run("unknown status is stored verbatim", func(t *testing.T) {
		o := newTestOrder(t)
		o.ApplyGatewayStatus("some_future_status", "")
		assert.Equal(t, "some_future_status", o.Status)
		assert.False(t, o.IsPaid())
	})
}
