package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/infrastructure/auth"
	"github.com/keyvault/backend/internal/infrastructure/config"
	"github.com/keyvault/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:    "test-secret-key-at-least-32-chars",
		Issuer:    "https://auth.keyvault.test/auth/v1",
		Audience:  "authenticated",
		AdminRole: "admin",
	})
}

func newTestToken(t *testing.T, svc *auth.JWTService, role string, ttl time.Duration) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := svc.GenerateToken(auth.GenerateTokenInput{UserID: userID, Email: "ops@keyvault.test", Role: role, TTL: ttl})
	require.NoError(t, err)
	return token, userID
}

func newAdminRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AdminAuth(svc, nil))
	router.GET("/admin", func(c *gin.Context) {
		id, err := GetAdminID(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin_id": id.String(), "user_id": GetJWTUserID(c)})
	})
	return router
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error.RequestID)
	return resp.Error.Code
}

func TestAdminAuth(t *testing.T) {
	svc := newTestJWTService()
	router := newAdminRouter(svc)

	t.Run("admin bearer token", func(t *testing.T) {
		token, userID := newTestToken(t, svc, "admin", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), userID.String())
	})

	t.Run("query token for event streams", func(t *testing.T) {
		token, _ := newTestToken(t, svc, "admin", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/admin?access_token="+token, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, rec))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		token, _ := newTestToken(t, svc, "admin", -time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeTokenExpired, errorCode(t, rec))
	})

	t.Run("non-admin role", func(t *testing.T) {
		token, _ := newTestToken(t, svc, "seller", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, rec))
	})

	t.Run("token from another issuer", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "https://elsewhere", Audience: "authenticated", AdminRole: "admin"})
		token, _ := newTestToken(t, other, "admin", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestJWTAuth_HeaderOnlyByDefault(t *testing.T) {
	svc := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: svc}))
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	token, _ := newTestToken(t, svc, "buyer", time.Hour)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
