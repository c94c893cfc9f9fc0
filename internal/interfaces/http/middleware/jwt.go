package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/infrastructure/auth"
	"github.com/keyvault/backend/internal/infrastructure/logger"
	"github.com/keyvault/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	// QueryTokenParam carries the token for EventSource clients, which cannot set headers
	QueryTokenParam = "access_token"
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// RequireAdmin rejects valid tokens without the admin role with 403
	RequireAdmin bool
	// AllowQueryToken accepts ?access_token= when no Authorization header is sent
	AllowQueryToken bool
	Logger          *zap.Logger
}

// AdminAuth validates a bearer token and requires the admin role
func AdminAuth(jwtService *auth.JWTService, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService:      jwtService,
		RequireAdmin:    true,
		AllowQueryToken: true,
		Logger:          log,
	})
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		tokenString, err := extractToken(c, cfg.AllowQueryToken)
		if err != nil {
			abortAuth(c, cfg.Logger, err)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortAuth(c, cfg.Logger, err)
			return
		}
		if cfg.RequireAdmin && !cfg.JWTService.IsAdmin(claims) {
			abortAuth(c, cfg.Logger, auth.ErrNotAdmin)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.Subject)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.Subject))

		cfg.Logger.Debug("JWT authentication successful",
			zap.String("user_id", claims.Subject),
			zap.String("role", claims.EffectiveRole()))
		c.Next()
	}
}

var errMissingToken = errors.New("missing bearer token")

func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		if allowQuery {
			if token := c.Query(QueryTokenParam); token != "" {
				return token, nil
			}
		}
		return "", errMissingToken
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

func abortAuth(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path))

	status := http.StatusUnauthorized
	code := dto.ErrCodeUnauthorized
	message := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrNotAdmin):
		status = http.StatusForbidden
		code = dto.ErrCodeForbidden
		message = "Admin role required"
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code = dto.ErrCodeTokenInvalid
		message = "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingSubject):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the token subject
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetAdminID returns the authenticated admin's id
func GetAdminID(c *gin.Context) (uuid.UUID, error) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, errMissingToken
	}
	return claims.UserID()
}
