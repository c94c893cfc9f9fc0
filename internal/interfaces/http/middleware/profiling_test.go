package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractControllerFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/smart-search", "smart-search"},
		{"/mercadopago-webhook", "mercadopago-webhook"},
		{"/api/v1/admin/notifications", "notifications"},
		{"/api/v1/admin/notifications/:id/dismiss", "notifications"},
		{"/api/V2/orders", "orders"},
		{"/api/v1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, extractControllerFromRoute(tt.route))
		})
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V10"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("admin"))
}

func TestExtractProfilingLabels(t *testing.T) {
	var labels []string
	router := gin.New()
	router.POST("/api/v1/admin/notifications/:id/dismiss", func(c *gin.Context) {
		labels = extractProfilingLabels(c)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/admin/notifications/abc/dismiss", nil))

	require.Len(t, labels, 6)
	assert.Equal(t, []string{
		ProfilingLabelMethod, http.MethodPost,
		ProfilingLabelRoute, "/api/v1/admin/notifications/:id/dismiss",
		ProfilingLabelController, "notifications",
	}, labels)
}

func TestProfiling_PassesThrough(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilingConfig
		path string
	}{
		{"enabled", DefaultProfilingConfig(), "/smart-search"},
		{"skipped path", DefaultProfilingConfig(), "/health"},
		{"disabled", ProfilingConfig{Enabled: false}, "/smart-search"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ProfilingWithConfig(tt.cfg))
			router.Any(tt.path, func(c *gin.Context) { c.Status(http.StatusNoContent) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusNoContent, w.Code)
		})
	}
}
