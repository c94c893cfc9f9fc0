package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/keyvault/backend/internal/domain/order"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/keyvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Save(models.OrderModelFromDomain(o)).Error
}

// FindByPaymentID finds the order linked to a gateway payment id
func (r *GormOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*order.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// UpdateStatus writes the status columns of an existing order
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	updatedAt := o.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":        o.Status,
			"status_detail": o.StatusDetail,
			"updated_at":    updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ order.Repository = (*GormOrderRepository)(nil)
