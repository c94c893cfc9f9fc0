package models

import (
	"time"

	"github.com/google/uuid"
)

// SupportTicketModel is a buyer or seller support request.
// Only the columns the admin live view reads are mapped.
type SupportTicketModel struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Subject string    `gorm:"type:varchar(200);not null"`
	Status  string    `gorm:"type:varchar(20);not null;default:'open';index"`
}

// TableName returns the table name for GORM
func (SupportTicketModel) TableName() string {
	return "support_tickets"
}

// ProductReportModel is a report filed against a listing
type ProductReportModel struct {
	BaseModel
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ReporterID uuid.UUID `gorm:"type:uuid;not null"`
	Reason     string    `gorm:"type:text;not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (ProductReportModel) TableName() string {
	return "product_reports"
}

// NotificationDismissalModel records that an admin dismissed a notification
type NotificationDismissalModel struct {
	AdminID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	NotificationID string    `gorm:"type:varchar(128);primaryKey"`
	DismissedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NotificationDismissalModel) TableName() string {
	return "admin_notification_dismissals"
}
