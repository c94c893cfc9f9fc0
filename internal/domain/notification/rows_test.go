package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRow_Sellers(t *testing.T) {
	t.Run("pending seller insert", func(t *testing.T) {
		c, ok := FromRow(RowChange{
			Table: TableSellerProfiles,
			Op:    OpInsert,
			Record: map[string]any{
				"id": "s1", "display_name": "Key House", "is_approved": false,
				"created_at": "2024-05-01T10:00:00.123456+00:00",
			},
		})
		require.True(t, ok)
		assert.Equal(t, OpInsert, c.Op)
		assert.Equal(t, "seller:s1", c.Notification.ID)
		assert.Equal(t, KindSellerApplication, c.Notification.Kind)
		assert.Equal(t, "Key House", c.Notification.Message)
		assert.Equal(t, 2024, c.Notification.CreatedAt.Year())
	})

	t.Run("approval removes notification", func(t *testing.T) {
		c, ok := FromRow(RowChange{
			Table:  TableSellerProfiles,
			Op:     OpUpdate,
			Record: map[string]any{"id": "s1", "is_approved": true},
		})
		require.True(t, ok)
		assert.Equal(t, OpDelete, c.Op)
		assert.Equal(t, "seller:s1", c.Notification.ID)
	})

	t.Run("delete uses old record id", func(t *testing.T) {
		c, ok := FromRow(RowChange{Table: TableSellerProfiles, Op: OpDelete, OldRecord: map[string]any{"id": "s1"}})
		require.True(t, ok)
		assert.Equal(t, OpDelete, c.Op)
		assert.Equal(t, "seller:s1", c.Notification.ID)
	})
}

func TestFromRow_TicketsAndReports(t *testing.T) {
	c, ok := FromRow(RowChange{
		Table:  TableSupportTickets,
		Op:     OpInsert,
		Record: map[string]any{"id": "t1", "subject": "Key not working", "status": "open"},
	})
	require.True(t, ok)
	assert.Equal(t, OpInsert, c.Op)
	assert.Equal(t, "ticket:t1", c.Notification.ID)
	assert.Equal(t, "Key not working", c.Notification.Message)

	c, ok = FromRow(RowChange{
		Table:  TableSupportTickets,
		Op:     OpUpdate,
		Record: map[string]any{"id": "t1", "status": "closed"},
	})
	require.True(t, ok)
	assert.Equal(t, OpDelete, c.Op)

	c, ok = FromRow(RowChange{
		Table:  TableProductReports,
		Op:     OpInsert,
		Record: map[string]any{"id": "r1", "reason": "fraud", "status": "pending"},
	})
	require.True(t, ok)
	assert.Equal(t, "report:r1", c.Notification.ID)
	assert.Equal(t, KindProductReport, c.Notification.Kind)
}

func TestFromRow_Orders(t *testing.T) {
	t.Run("approved order", func(t *testing.T) {
		c, ok := FromRow(RowChange{
			Table:  TableOrders,
			Op:     OpUpdate,
			Record: map[string]any{"id": "0f8fad5b-d9cb-469f-a165-70867728950e", "status": "approved", "amount": 50.5},
		})
		require.True(t, ok)
		assert.Equal(t, OpInsert, c.Op)
		assert.Equal(t, "order:0f8fad5b-d9cb-469f-a165-70867728950e:paid", c.Notification.ID)
		assert.Contains(t, c.Notification.Message, "0f8fad5b")
		assert.Contains(t, c.Notification.Message, "50.5")
	})

	t.Run("pending order is ignored", func(t *testing.T) {
		_, ok := FromRow(RowChange{Table: TableOrders, Op: OpUpdate, Record: map[string]any{"id": "o1", "status": "pending"}})
		assert.False(t, ok)
	})
}

func TestFromRow_UnknownTableAndMissingID(t *testing.T) {
	_, ok := FromRow(RowChange{Table: "banners", Op: OpInsert, Record: map[string]any{"id": "b1"}})
	assert.False(t, ok)

	_, ok = FromRow(RowChange{Table: TableSupportTickets, Op: OpInsert, Record: map[string]any{}})
	assert.False(t, ok)
}

func TestTimestampFallback(t *testing.T) {
	before := time.Now()
	got := timestamp(map[string]any{"created_at": "not a time"}, "created_at")
	assert.False(t, got.Before(before))
}
