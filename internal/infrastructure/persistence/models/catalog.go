package models

import (
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for a listed product
type ProductModel struct {
	BaseModel
	SellerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Category    *string         `gorm:"type:varchar(100);index"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ImageURL    string          `gorm:"type:text"`
	Likes       int             `gorm:"not null;default:0"`
	Status      string          `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		SellerID:    m.SellerID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		Likes:       m.Likes,
		Status:      catalog.ProductStatus(m.Status),
	}
	if m.Category != nil {
		p.Category = *m.Category
	}
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SellerID = p.SellerID
	m.Name = p.Name
	m.Description = p.Description
	m.Category = nil
	if p.Category != "" {
		category := p.Category
		m.Category = &category
	}
	m.Price = p.Price
	m.ImageURL = p.ImageURL
	m.Likes = p.Likes
	m.Status = string(p.Status)
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// SellerProfileModel is the persistence model for a seller's public profile
type SellerProfileModel struct {
	BaseModel
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DisplayName   string    `gorm:"type:varchar(120);not null"`
	Bio           string    `gorm:"type:text"`
	AvatarURL     string    `gorm:"type:text"`
	AverageRating float64   `gorm:"not null;default:0"`
	TotalSales    int       `gorm:"not null;default:0"`
	IsApproved    bool      `gorm:"not null;default:false;index"`
	IsSuspended   bool      `gorm:"not null;default:false"`
	IsOnline      bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SellerProfileModel) TableName() string {
	return "seller_profiles"
}

// ToDomain converts the persistence model to a domain Seller
func (m *SellerProfileModel) ToDomain() *catalog.Seller {
	return &catalog.Seller{
		BaseEntity:    m.BaseModel.ToDomain(),
		UserID:        m.UserID,
		DisplayName:   m.DisplayName,
		Bio:           m.Bio,
		AvatarURL:     m.AvatarURL,
		AverageRating: m.AverageRating,
		TotalSales:    m.TotalSales,
		Approved:      m.IsApproved,
		Suspended:     m.IsSuspended,
		Online:        m.IsOnline,
	}
}

// SellerProfileModelFromDomain creates a persistence model from a domain Seller
func SellerProfileModelFromDomain(s *catalog.Seller) *SellerProfileModel {
	m := &SellerProfileModel{
		UserID:        s.UserID,
		DisplayName:   s.DisplayName,
		Bio:           s.Bio,
		AvatarURL:     s.AvatarURL,
		AverageRating: s.AverageRating,
		TotalSales:    s.TotalSales,
		IsApproved:    s.Approved,
		IsSuspended:   s.Suspended,
		IsOnline:      s.Online,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
