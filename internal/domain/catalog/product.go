package catalog

import (
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the listing status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusSoldOut  ProductStatus = "sold_out"
)

// IsValid reports whether the status is one of the known values
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusSoldOut:
		return true
	}
	return false
}

// Product is a digital good listed by a seller
type Product struct {
	shared.BaseEntity
	SellerID    uuid.UUID
	Name        string
	Description string
	// Category is empty when the product is uncategorised
	Category string
	Price    decimal.Decimal
	ImageURL string
	Likes    int
	Status   ProductStatus
}

// IsActive reports whether the product can be shown to buyers
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// NewProduct creates an active product with a generated id
func NewProduct(sellerID uuid.UUID, name string, price decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SellerID:   sellerID,
		Name:       name,
		Price:      price,
		Status:     ProductStatusActive,
	}, nil
}
