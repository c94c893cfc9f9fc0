package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/keyvault/backend/internal/application/notification"
	domain "github.com/keyvault/backend/internal/domain/notification"
	"github.com/keyvault/backend/internal/interfaces/http/dto"
	"github.com/keyvault/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AdminFeed is the admin notification live view
type AdminFeed interface {
	List(ctx context.Context, adminID uuid.UUID) ([]domain.Notification, error)
	Dismiss(ctx context.Context, adminID uuid.UUID, id string) error
	DismissAll(ctx context.Context, adminID uuid.UUID) (int, error)
	Subscribe(ctx context.Context, adminID uuid.UUID) (*notificationapp.Subscription, error)
	Unsubscribe(sub *notificationapp.Subscription)
	SubscriberCount() int
}

// SSEMessage is one server-sent event
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// DismissAllResponse reports how many notifications were hidden
type DismissAllResponse struct {
	Dismissed int `json:"dismissed"`
}

// AdminNotificationHandler serves the admin notification list, dismissals
// and the live SSE stream
type AdminNotificationHandler struct {
	BaseHandler
	feed       AdminFeed
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// AdminNotificationOption is a functional option for configuring the handler
type AdminNotificationOption func(*AdminNotificationHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) AdminNotificationOption {
	return func(h *AdminNotificationHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) AdminNotificationOption {
	return func(h *AdminNotificationHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithSSEMaxClients sets the maximum number of concurrent streams
func WithSSEMaxClients(max int) AdminNotificationOption {
	return func(h *AdminNotificationHandler) {
		h.maxClients = max
	}
}

// NewAdminNotificationHandler creates a new AdminNotificationHandler
func NewAdminNotificationHandler(feed AdminFeed, opts ...AdminNotificationOption) *AdminNotificationHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &AdminNotificationHandler{
		feed:       feed,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
		maxClients: 1000,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stop disconnects every open stream
func (h *AdminNotificationHandler) Stop() {
	h.once.Do(func() {
		h.cancel()
		h.logger.Info("Admin notification streams stopped")
	})
}

// List handles GET /api/v1/admin/notifications
// @Summary      List admin notifications
// @Description  Returns the notifications the calling admin has not dismissed, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=[]domain.Notification}
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Router       /api/v1/admin/notifications [get]
func (h *AdminNotificationHandler) List(c *gin.Context) {
	adminID, ok := h.adminID(c)
	if !ok {
		return
	}
	items, err := h.feed.List(c.Request.Context(), adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items))
}

// Dismiss handles POST /api/v1/admin/notifications/:id/dismiss
// @Summary      Dismiss a notification
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification id"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /api/v1/admin/notifications/{id}/dismiss [post]
func (h *AdminNotificationHandler) Dismiss(c *gin.Context) {
	adminID, ok := h.adminID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if id == "" {
		h.BadRequest(c, "Notification id is required")
		return
	}

	if err := h.feed.Dismiss(c.Request.Context(), adminID, id); err != nil {
		if errors.Is(err, notificationapp.ErrUnknownNotification) {
			h.NotFound(c, "Notification not found")
			return
		}
		h.logger.Error("Failed to dismiss notification",
			zap.String("admin_id", adminID.String()),
			zap.String("notification_id", id),
			zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id, "dismissed": true})
}

// DismissAll handles POST /api/v1/admin/notifications/dismiss-all
// @Summary      Dismiss all notifications
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=DismissAllResponse}
// @Failure      401 {object} dto.Response
// @Router       /api/v1/admin/notifications/dismiss-all [post]
func (h *AdminNotificationHandler) DismissAll(c *gin.Context) {
	adminID, ok := h.adminID(c)
	if !ok {
		return
	}
	n, err := h.feed.DismissAll(c.Request.Context(), adminID)
	if err != nil {
		h.logger.Error("Failed to dismiss notifications",
			zap.String("admin_id", adminID.String()),
			zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, DismissAllResponse{Dismissed: n})
}

// Stream handles GET /api/v1/admin/notifications/stream. It sends a
// "connected" event, a "snapshot" of the visible notifications, then one
// "notification" event per update with periodic heartbeats.
// @Summary      Stream admin notifications
// @Description  Server-sent events: connected, snapshot, notification, heartbeat. EventSource clients pass the token as access_token.
// @Tags         admin
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        access_token query string false "JWT for clients that cannot set headers"
// @Success      200 {string} string "event stream"
// @Failure      401 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /api/v1/admin/notifications/stream [get]
func (h *AdminNotificationHandler) Stream(c *gin.Context) {
	adminID, ok := h.adminID(c)
	if !ok {
		return
	}
	if h.maxClients > 0 && h.feed.SubscriberCount() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Maximum number of SSE connections reached")
		return
	}

	ctx := c.Request.Context()
	sub, err := h.feed.Subscribe(ctx, adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer h.feed.Unsubscribe(sub)

	snapshot, err := h.feed.List(ctx, adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	// Streams outlive the server write timeout.
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	h.logger.Info("SSE client connected",
		zap.String("subscription_id", sub.ID),
		zap.String("admin_id", adminID.String()))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":%q,"timestamp":%d}`, sub.ID, time.Now().Unix()),
	})
	h.sendJSON(c.Writer, "snapshot", "", snapshot)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected", zap.String("subscription_id", sub.ID))
			return
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.sendEvent(c.Writer, SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case u, open := <-sub.Updates:
			if !open {
				return
			}
			seq++
			h.sendJSON(c.Writer, "notification", strconv.FormatUint(seq, 10), u)
			c.Writer.Flush()
		}
	}
}

func (h *AdminNotificationHandler) adminID(c *gin.Context) (uuid.UUID, bool) {
	id, err := middleware.GetAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Admin identity not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminNotificationHandler) sendJSON(w io.Writer, event, id string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to marshal SSE event", zap.String("event", event), zap.Error(err))
		return
	}
	h.sendEvent(w, SSEMessage{Event: event, ID: id, Data: string(data)})
}

// sendEvent writes an SSE event to the response writer
func (h *AdminNotificationHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
