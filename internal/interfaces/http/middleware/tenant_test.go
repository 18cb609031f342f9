package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/infrastructure/logger"
	"github.com/invoicing/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTenantMiddleware_HeaderExtraction(t *testing.T) {
	validID := uuid.New()

	tests := []struct {
		name           string
		tenantID       string
		expectedStatus int
		expectedID     uuid.UUID
	}{
		{name: "valid tenant ID", tenantID: validID.String(), expectedStatus: http.StatusOK, expectedID: validID},
		{name: "padded tenant ID", tenantID: "  " + validID.String() + " ", expectedStatus: http.StatusOK, expectedID: validID},
		{name: "missing tenant ID", tenantID: "", expectedStatus: http.StatusBadRequest},
		{name: "invalid tenant ID format", tenantID: "acme", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(TenantMiddleware())

			var captured uuid.UUID
			var contextTenant string
			router.GET("/api/v1/invoices", func(c *gin.Context) {
				captured, _ = GetTenantUUID(c)
				contextTenant = logger.GetTenantID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
			if tt.tenantID != "" {
				req.Header.Set(TenantHeaderKey, tt.tenantID)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedID, captured)
				assert.Equal(t, tt.expectedID.String(), contextTenant)
				return
			}
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeTenantRequired, resp.Error.Code)
		})
	}
}

func TestTenantMiddleware_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(TenantMiddleware())
	router.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/v1/companies", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/companies", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTenantMiddleware_Optional(t *testing.T) {
	cfg := DefaultTenantConfig()
	cfg.Required = false

	router := gin.New()
	router.Use(TenantMiddlewareWithConfig(cfg))

	var found bool
	router.GET("/api/v1/invoices", func(c *gin.Context) {
		_, found = GetTenantUUID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, found)
}

func TestTenantMiddleware_Actor(t *testing.T) {
	router := gin.New()
	router.Use(TenantMiddleware())

	var actor, contextActor string
	router.PUT("/api/v1/customers/:id", func(c *gin.Context) {
		actor = GetActor(c)
		contextActor = logger.GetActor(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("header present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/customers/1", nil)
		req.Header.Set(TenantHeaderKey, uuid.NewString())
		req.Header.Set(ActorHeaderKey, "jane@acme.test")
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "jane@acme.test", actor)
		assert.Equal(t, "jane@acme.test", contextActor)
	})

	t.Run("header missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/customers/1", nil)
		req.Header.Set(TenantHeaderKey, uuid.NewString())
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "api", actor)
		assert.Empty(t, contextActor)
	})
}
