package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/notification"
	"github.com/keyvault/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBacklogRepository loads pending moderation work for the admin live view
type GormBacklogRepository struct {
	db *gorm.DB
}

// NewGormBacklogRepository creates a new GormBacklogRepository
func NewGormBacklogRepository(db *gorm.DB) *GormBacklogRepository {
	return &GormBacklogRepository{db: db}
}

// Backlog returns pending seller applications, open tickets and pending
// product reports, newest first, capped at limit.
func (r *GormBacklogRepository) Backlog(ctx context.Context, limit int) ([]notification.Notification, error) {
	db := r.db.WithContext(ctx)
	items := make([]notification.Notification, 0)

	var sellers []models.SellerProfileModel
	if err := db.Where("is_approved = ? AND is_suspended = ?", false, false).
		Order("created_at DESC").Limit(limit).Find(&sellers).Error; err != nil {
		return nil, err
	}
	for _, s := range sellers {
		items = append(items, notification.NewSellerApplication(s.ID.String(), s.DisplayName, s.CreatedAt))
	}

	var tickets []models.SupportTicketModel
	if err := db.Where("status = ?", "open").
		Order("created_at DESC").Limit(limit).Find(&tickets).Error; err != nil {
		return nil, err
	}
	for _, tk := range tickets {
		items = append(items, notification.NewSupportTicket(tk.ID.String(), tk.Subject, tk.CreatedAt))
	}

	var reports []models.ProductReportModel
	if err := db.Where("status = ?", "pending").
		Order("created_at DESC").Limit(limit).Find(&reports).Error; err != nil {
		return nil, err
	}
	for _, rp := range reports {
		items = append(items, notification.NewProductReport(rp.ID.String(), rp.Reason, rp.CreatedAt))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// GormDismissalRepository implements notification.DismissalStore using GORM
type GormDismissalRepository struct {
	db *gorm.DB
}

// NewGormDismissalRepository creates a new GormDismissalRepository
func NewGormDismissalRepository(db *gorm.DB) *GormDismissalRepository {
	return &GormDismissalRepository{db: db}
}

// List returns the notification ids the admin dismissed
func (r *GormDismissalRepository) List(ctx context.Context, adminID uuid.UUID) ([]string, error) {
	ids := make([]string, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationDismissalModel{}).
		Where("admin_id = ?", adminID).
		Order("dismissed_at").
		Pluck("notification_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Dismiss records dismissals; already dismissed ids are left untouched
func (r *GormDismissalRepository) Dismiss(ctx context.Context, adminID uuid.UUID, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.NotificationDismissalModel, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.NotificationDismissalModel{AdminID: adminID, NotificationID: id, DismissedAt: now})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

var (
	_ notification.BacklogReader  = (*GormBacklogRepository)(nil)
	_ notification.DismissalStore = (*GormDismissalRepository)(nil)
)
