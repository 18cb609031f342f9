package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/infrastructure/logger"
	"github.com/invoicing/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys and headers for tenant and actor identification
const (
	TenantIDKey     = "tenant_id"
	ActorKey        = "actor"
	TenantHeaderKey = "X-Tenant-ID"
	ActorHeaderKey  = "X-User-ID"
	RequestIDKey    = "request_id"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// Required determines if tenant context is mandatory
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths: []string{"/health", "/api/v1/health", "/api/v1/companies"},
		Required:  true,
	}
}

// TenantMiddleware extracts the tenant from the X-Tenant-ID header
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig returns tenant middleware with custom configuration.
// The tenant is the issuing company's ID and must be a UUID. An optional
// X-User-ID header names the actor recorded in snapshot audit entries.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID := strings.TrimSpace(c.GetHeader(TenantHeaderKey))
		if tenantID == "" {
			if cfg.Required {
				respondTenantError(c, "Tenant identification required")
				return
			}
			c.Next()
			return
		}
		parsed, err := uuid.Parse(tenantID)
		if err != nil {
			respondTenantError(c, "Invalid tenant ID format")
			return
		}

		c.Set(TenantIDKey, parsed)
		ctx := c.Request.Context()
		ctx, reqLogger := logger.WithTenantID(ctx, logger.FromContext(ctx), parsed.String())

		if actor := strings.TrimSpace(c.GetHeader(ActorHeaderKey)); actor != "" {
			c.Set(ActorKey, actor)
			ctx, _ = logger.WithActor(ctx, reqLogger, actor)
		}
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Tenant identified", zap.String("tenant_id", parsed.String()))
		}
		c.Next()
	}
}

func respondTenantError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeTenantRequired, message, c.GetString(RequestIDKey)))
}

// GetTenantUUID retrieves the tenant ID set by the tenant middleware
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(TenantIDKey); exists {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetActor returns the X-User-ID of the request, or "api" when none was sent
func GetActor(c *gin.Context) string {
	if actor := c.GetString(ActorKey); actor != "" {
		return actor
	}
	return "api"
}
