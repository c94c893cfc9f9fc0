package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/keyvault/backend/internal/domain/payment"
)

// Tables whose row changes feed the admin live view
const (
	TableSellerProfiles = "seller_profiles"
	TableSupportTickets = "support_tickets"
	TableProductReports = "product_reports"
	TableOrders         = "orders"
)

// RowChange is a row-level change reported by the database change feed
type RowChange struct {
	Table     string         `json:"table"`
	Op        ChangeOp       `json:"op"`
	Record    map[string]any `json:"record"`
	OldRecord map[string]any `json:"old_record"`
}

// FromRow maps a row change to a live view change.
// The second result is false when the row does not concern admins.
func FromRow(rc RowChange) (Change, bool) {
	switch rc.Table {
	case TableSellerProfiles:
		return sellerChange(rc)
	case TableSupportTickets:
		return ticketChange(rc)
	case TableProductReports:
		return reportChange(rc)
	case TableOrders:
		return orderChange(rc)
	default:
		return Change{}, false
	}
}

// SellerApplicationID is the notification id of a pending seller
func SellerApplicationID(sellerID string) string { return "seller:" + sellerID }

// SupportTicketID is the notification id of an open ticket
func SupportTicketID(ticketID string) string { return "ticket:" + ticketID }

// ProductReportID is the notification id of a pending report
func ProductReportID(reportID string) string { return "report:" + reportID }

// OrderPaidID is the notification id of an approved order
func OrderPaidID(orderID string) string { return "order:" + orderID + ":paid" }

// NewSellerApplication builds the notification for a seller awaiting approval
func NewSellerApplication(sellerID, displayName string, createdAt time.Time) Notification {
	return Notification{
		ID:        SellerApplicationID(sellerID),
		Kind:      KindSellerApplication,
		Title:     "Novo vendedor aguardando aprovação",
		Message:   displayName,
		Link:      "/admin/sellers/" + sellerID,
		CreatedAt: createdAt,
	}
}

// NewSupportTicket builds the notification for an open support ticket
func NewSupportTicket(ticketID, subject string, createdAt time.Time) Notification {
	return Notification{
		ID:        SupportTicketID(ticketID),
		Kind:      KindSupportTicket,
		Title:     "Novo ticket de suporte",
		Message:   subject,
		Link:      "/admin/tickets/" + ticketID,
		CreatedAt: createdAt,
	}
}

// NewProductReport builds the notification for a pending product report
func NewProductReport(reportID, reason string, createdAt time.Time) Notification {
	return Notification{
		ID:        ProductReportID(reportID),
		Kind:      KindProductReport,
		Title:     "Nova denúncia de produto",
		Message:   reason,
		Link:      "/admin/reports/" + reportID,
		CreatedAt: createdAt,
	}
}

// NewOrderPaid builds the notification for an approved order
func NewOrderPaid(orderID, amount string, createdAt time.Time) Notification {
	return Notification{
		ID:        OrderPaidID(orderID),
		Kind:      KindOrderPaid,
		Title:     "Pagamento aprovado",
		Message:   fmt.Sprintf("Pedido %s pago (R$ %s)", shortID(orderID), amount),
		Link:      "/admin/orders/" + orderID,
		CreatedAt: createdAt,
	}
}

func sellerChange(rc RowChange) (Change, bool) {
	id := str(rc.Record, "id")
	if id == "" {
		id = str(rc.OldRecord, "id")
	}
	if id == "" {
		return Change{}, false
	}
	n := NewSellerApplication(id, str(rc.Record, "display_name"), timestamp(rc.Record, "created_at"))

	if rc.Op == OpDelete {
		return Change{Op: OpDelete, Notification: n}, true
	}
	pending := !boolean(rc.Record, "is_approved") && !boolean(rc.Record, "is_suspended")
	switch {
	case pending && rc.Op == OpInsert:
		return Change{Op: OpInsert, Notification: n}, true
	case pending:
		return Change{Op: OpUpdate, Notification: n}, true
	default:
		return Change{Op: OpDelete, Notification: n}, true
	}
}

func ticketChange(rc RowChange) (Change, bool) {
	return statusDrivenChange(rc, "open", func(id string) Notification {
		return NewSupportTicket(id, str(rc.Record, "subject"), timestamp(rc.Record, "created_at"))
	})
}

func reportChange(rc RowChange) (Change, bool) {
	return statusDrivenChange(rc, "pending", func(id string) Notification {
		return NewProductReport(id, str(rc.Record, "reason"), timestamp(rc.Record, "created_at"))
	})
}

// statusDrivenChange shows a row while its status equals openStatus
func statusDrivenChange(rc RowChange, openStatus string, build func(id string) Notification) (Change, bool) {
	id := str(rc.Record, "id")
	if id == "" {
		id = str(rc.OldRecord, "id")
	}
	if id == "" {
		return Change{}, false
	}
	n := build(id)
	if rc.Op == OpDelete {
		return Change{Op: OpDelete, Notification: n}, true
	}

	status := str(rc.Record, "status")
	if status == "" || strings.EqualFold(status, openStatus) {
		op := OpUpdate
		if rc.Op == OpInsert {
			op = OpInsert
		}
		return Change{Op: op, Notification: n}, true
	}
	return Change{Op: OpDelete, Notification: n}, true
}

func orderChange(rc RowChange) (Change, bool) {
	if rc.Op == OpDelete || !payment.IsApproved(str(rc.Record, "status")) {
		return Change{}, false
	}
	id := str(rc.Record, "id")
	if id == "" {
		return Change{}, false
	}
	ts := timestamp(rc.Record, "updated_at")
	return Change{Op: OpInsert, Notification: NewOrderPaid(id, str(rc.Record, "amount"), ts)}, true
}

func str(record map[string]any, key string) string {
	if record == nil {
		return ""
	}
	switch v := record[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func boolean(record map[string]any, key string) bool {
	v, _ := record[key].(bool)
	return v
}

func timestamp(record map[string]any, key string) time.Time {
	raw := str(record, key)
	if raw != "" {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return time.Now()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
