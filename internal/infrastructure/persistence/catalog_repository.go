package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/catalog"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/keyvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductReader using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindActive returns up to limit active products, newest first
func (r *GormProductRepository) FindActive(ctx context.Context, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(catalog.ProductStatusActive)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].ToDomain())
	}
	return products, nil
}

// DistinctCategories returns the distinct non-empty categories of active products
func (r *GormProductRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("status = ? AND category IS NOT NULL AND category <> ''", string(catalog.ProductStatusActive)).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindByID loads a product regardless of its status
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(p)).Error
}

// GormSellerRepository implements catalog.SellerReader using GORM
type GormSellerRepository struct {
	db *gorm.DB
}

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// FindListable returns up to limit approved, non-suspended sellers
func (r *GormSellerRepository) FindListable(ctx context.Context, limit int) ([]catalog.Seller, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("is_approved = ? AND is_suspended = ?", true, false).
		Order("total_sales DESC").
		Limit(limit))
}

// FindAwaitingApproval returns sellers an admin still has to review, newest first
func (r *GormSellerRepository) FindAwaitingApproval(ctx context.Context, limit int) ([]catalog.Seller, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("is_approved = ? AND is_suspended = ?", false, false).
		Order("created_at DESC").
		Limit(limit))
}

// Save creates or updates a seller profile
func (r *GormSellerRepository) Save(ctx context.Context, s *catalog.Seller) error {
	return r.db.WithContext(ctx).Save(models.SellerProfileModelFromDomain(s)).Error
}

func (r *GormSellerRepository) find(_ context.Context, q *gorm.DB) ([]catalog.Seller, error) {
	var rows []models.SellerProfileModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	sellers := make([]catalog.Seller, 0, len(rows))
	for i := range rows {
		sellers = append(sellers, *rows[i].ToDomain())
	}
	return sellers, nil
}

var (
	_ catalog.ProductReader = (*GormProductRepository)(nil)
	_ catalog.ProductFinder = (*GormProductRepository)(nil)
	_ catalog.SellerReader  = (*GormSellerRepository)(nil)
)
