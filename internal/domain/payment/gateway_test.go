package payment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMethod_IsValid(t *testing.T) {
	assert.True(t, MethodPix.IsValid())
	assert.True(t, MethodBoleto.IsValid())
	assert.True(t, MethodCreditCard.IsValid())
	assert.False(t, Method("bitcoin").IsValid())
	assert.False(t, Method("").IsValid())
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, IsApproved("approved"))
	assert.True(t, IsApproved("APPROVED"))
	assert.False(t, IsApproved("pending"))

	assert.True(t, IsFinal(StatusRejected))
	assert.True(t, IsFinal(StatusRefunded))
	assert.False(t, IsFinal(StatusInProcess))
	assert.False(t, IsFinal("something_new"))
}

func TestCreatePaymentRequest_Validate(t *testing.T) {
	valid := func() *CreatePaymentRequest {
		return &CreatePaymentRequest{
			OrderID: uuid.New(),
			Amount:  decimal.NewFromInt(50),
			Method:  MethodPix,
			Payer:   Payer{Email: "buyer@example.com"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreatePaymentRequest)
		wantErr error
	}{
		{"valid pix", func(r *CreatePaymentRequest) {}, nil},
		{"missing order", func(r *CreatePaymentRequest) { r.OrderID = uuid.Nil }, ErrPaymentInvalidOrderID},
		{"zero amount", func(r *CreatePaymentRequest) { r.Amount = decimal.Zero }, ErrPaymentInvalidAmount},
		{"bad method", func(r *CreatePaymentRequest) { r.Method = "cash" }, ErrPaymentInvalidMethod},
		{"missing email", func(r *CreatePaymentRequest) { r.Payer.Email = "" }, ErrPaymentInvalidPayer},
		{"card without token", func(r *CreatePaymentRequest) { r.Method = MethodCreditCard }, ErrPaymentMissingToken},
		{"boleto without document", func(r *CreatePaymentRequest) { r.Method = MethodBoleto }, ErrPaymentMissingDocument},
		{"card with token", func(r *CreatePaymentRequest) {
			r.Method = MethodCreditCard
			r.CardToken = "tok"
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
