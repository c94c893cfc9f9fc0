package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	notificationapp "github.com/keyvault/backend/internal/application/notification"
	domain "github.com/keyvault/backend/internal/domain/notification"
	"github.com/keyvault/backend/internal/infrastructure/auth"
	"github.com/keyvault/backend/internal/infrastructure/config"
	"github.com/keyvault/backend/internal/interfaces/http/dto"
	"github.com/keyvault/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	router  *gin.Engine
	feed    *mockAdminFeed
	token   string
	adminID uuid.UUID
}

func newAdminFixture(t *testing.T, opts ...AdminNotificationOption) *adminFixture {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:    "test-secret-key-at-least-32-chars",
		Issuer:    "https://auth.keyvault.test/auth/v1",
		Audience:  "authenticated",
		AdminRole: "admin",
	})
	adminID := uuid.New()
	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID: adminID, Email: "ops@keyvault.test", Role: "admin", TTL: time.Hour,
	})
	require.NoError(t, err)

	feed := new(mockAdminFeed)
	h := NewAdminNotificationHandler(feed, opts...)
	t.Cleanup(h.Stop)

	router := gin.New()
	admin := router.Group("/api/v1/admin", middleware.RequestID(), middleware.AdminAuth(jwtService, nil))
	admin.GET("/notifications", h.List)
	admin.POST("/notifications/dismiss-all", h.DismissAll)
	admin.POST("/notifications/:id/dismiss", h.Dismiss)
	admin.GET("/notifications/stream", h.Stream)

	return &adminFixture{router: router, feed: feed, token: token, adminID: adminID}
}

func (f *adminFixture) do(ctx context.Context, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func sampleNotifications() []domain.Notification {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Notification{
		domain.NewOrderPaid("o-1", "49.90", now),
		domain.NewSupportTicket("t-1", "Key not working", now.Add(-time.Hour)),
	}
}

func TestAdminNotificationHandler_List(t *testing.T) {
	f := newAdminFixture(t)
	f.feed.On("List", mock.Anything, f.adminID).Return(sampleNotifications(), nil)

	w := f.do(context.Background(), http.MethodGet, "/api/v1/admin/notifications")

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	f.feed.AssertExpectations(t)
}

func TestAdminNotificationHandler_RequiresToken(t *testing.T) {
	f := newAdminFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/notifications", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.feed.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAdminNotificationHandler_Dismiss(t *testing.T) {
	t.Run("dismissed", func(t *testing.T) {
		f := newAdminFixture(t)
		f.feed.On("Dismiss", mock.Anything, f.adminID, "ticket:t-1").Return(nil)

		w := f.do(context.Background(), http.MethodPost, "/api/v1/admin/notifications/ticket:t-1/dismiss")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"dismissed":true`)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newAdminFixture(t)
		f.feed.On("Dismiss", mock.Anything, f.adminID, "nope").Return(notificationapp.ErrUnknownNotification)

		w := f.do(context.Background(), http.MethodPost, "/api/v1/admin/notifications/nope/dismiss")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAdminFixture(t)
		f.feed.On("Dismiss", mock.Anything, f.adminID, "x").Return(errors.New("redis down"))

		w := f.do(context.Background(), http.MethodPost, "/api/v1/admin/notifications/x/dismiss")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAdminNotificationHandler_DismissAll(t *testing.T) {
	f := newAdminFixture(t)
	f.feed.On("DismissAll", mock.Anything, f.adminID).Return(3, nil)

	w := f.do(context.Background(), http.MethodPost, "/api/v1/admin/notifications/dismiss-all")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dismissed":3`)
}

func TestAdminNotificationHandler_Stream(t *testing.T) {
	f := newAdminFixture(t, WithSSEHeartbeat(time.Hour))
	updates := make(chan notificationapp.Update)
	sub := &notificationapp.Subscription{ID: "sub-1", AdminID: f.adminID, Updates: updates}

	f.feed.On("SubscriberCount").Return(0)
	f.feed.On("Subscribe", mock.Anything, f.adminID).Return(sub, nil)
	f.feed.On("List", mock.Anything, f.adminID).Return(sampleNotifications(), nil)
	f.feed.On("Unsubscribe", sub).Return()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- f.do(ctx, http.MethodGet, "/api/v1/admin/notifications/stream")
	}()

	paid := domain.NewOrderPaid("o-2", "10.00", time.Now())
	updates <- notificationapp.Update{Op: domain.OpInsert, Notification: paid}
	cancel()

	var w *httptest.ResponseRecorder
	select {
	case w = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end after cancellation")
	}

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, `"client_id":"sub-1"`)
	assert.Contains(t, body, "event: snapshot\n")
	assert.Contains(t, body, "event: notification\nid: 1\n")
	assert.Contains(t, body, paid.ID)
	assert.Less(t, strings.Index(body, "event: snapshot"), strings.Index(body, "event: notification"))
	f.feed.AssertCalled(t, "Unsubscribe", sub)
}

func TestAdminNotificationHandler_StreamMaxClients(t *testing.T) {
	f := newAdminFixture(t, WithSSEMaxClients(1))
	f.feed.On("SubscriberCount").Return(1)

	w := f.do(context.Background(), http.MethodGet, "/api/v1/admin/notifications/stream")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeUnavailable)
	f.feed.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything)
}

func TestAdminNotificationHandler_StreamEndsOnStop(t *testing.T) {
	feed := new(mockAdminFeed)
	h := NewAdminNotificationHandler(feed)
	h.Stop()
	h.Stop()
	assert.Error(t, h.ctx.Err())
}
