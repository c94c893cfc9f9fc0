package models

import (
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/order"
	"github.com/keyvault/backend/internal/domain/payment"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for an order
type OrderModel struct {
	BaseModel
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID         *uuid.UUID      `gorm:"type:uuid;index"`
	BuyerID          *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName     string          `gorm:"type:varchar(200)"`
	CustomerEmail    string          `gorm:"type:varchar(254);not null"`
	CustomerDocument string          `gorm:"type:varchar(20)"`
	Quantity         int             `gorm:"not null;default:1"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod    string          `gorm:"type:varchar(20);not null"`
	PaymentID        string          `gorm:"type:varchar(64);uniqueIndex:idx_orders_payment_id,where:payment_id <> ''"`
	Status           string          `gorm:"type:varchar(40);not null;default:'pending';index"`
	StatusDetail     string          `gorm:"type:varchar(120)"`
	PixQRCode        string          `gorm:"type:text"`
	PixQRCodeBase64  string          `gorm:"type:text"`
	TicketURL        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		AggregateRoot:    shared.AggregateRoot{BaseEntity: m.BaseModel.ToDomain()},
		ProductID:        m.ProductID,
		SellerID:         m.SellerID,
		BuyerID:          m.BuyerID,
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		CustomerDocument: m.CustomerDocument,
		Quantity:         m.Quantity,
		Amount:           m.Amount,
		PaymentMethod:    payment.Method(m.PaymentMethod),
		PaymentID:        m.PaymentID,
		Status:           m.Status,
		StatusDetail:     m.StatusDetail,
		PixQRCode:        m.PixQRCode,
		PixQRCodeBase64:  m.PixQRCodeBase64,
		TicketURL:        m.TicketURL,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		ProductID:        o.ProductID,
		SellerID:         o.SellerID,
		BuyerID:          o.BuyerID,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		CustomerDocument: o.CustomerDocument,
		Quantity:         o.Quantity,
		Amount:           o.Amount,
		PaymentMethod:    string(o.PaymentMethod),
		PaymentID:        o.PaymentID,
		Status:           o.Status,
		StatusDetail:     o.StatusDetail,
		PixQRCode:        o.PixQRCode,
		PixQRCodeBase64:  o.PixQRCodeBase64,
		TicketURL:        o.TicketURL,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}
