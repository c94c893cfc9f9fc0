package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies admin notifications
type Kind string

const (
	KindSellerApplication Kind = "seller_application"
	KindSupportTicket     Kind = "support_ticket"
	KindProductReport     Kind = "product_report"
	KindOrderPaid         Kind = "order_paid"
)

// Notification is one entry of the admin live view.
// IDs are derived from the source row, so the same fact always maps to the same id.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeOp is the kind of change applied to the live view
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// Change is one event applied to a Feed
type Change struct {
	Op           ChangeOp     `json:"op"`
	Notification Notification `json:"notification"`
}

// DismissalStore persists which notifications each admin dismissed
type DismissalStore interface {
	// List returns the notification ids the admin dismissed
	List(ctx context.Context, adminID uuid.UUID) ([]string, error)

	// Dismiss records dismissals for the admin; dismissing twice is not an error
	Dismiss(ctx context.Context, adminID uuid.UUID, ids ...string) error
}

// BacklogReader loads the notifications that are pending when the service starts
type BacklogReader interface {
	Backlog(ctx context.Context, limit int) ([]Notification, error)
}
