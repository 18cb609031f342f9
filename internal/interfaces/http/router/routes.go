package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/infrastructure/logger"
	"github.com/invoicing/backend/internal/interfaces/http/dto"
	"github.com/invoicing/backend/internal/interfaces/http/handler"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds every HTTP handler the API serves
type Handlers struct {
	Health     *handler.HealthHandler
	Company    *handler.CompanyHandler
	Customer   *handler.CustomerHandler
	Quotation  *handler.QuotationHandler
	Invoice    *handler.InvoiceHandler
	CreditNote *handler.NoteHandler
	DebitNote  *handler.NoteHandler
	Document   *handler.DocumentHandler
}

// EngineConfig configures the middleware stack
type EngineConfig struct {
	Logger   *zap.Logger
	Tracing  middleware.TracingConfig
	Metrics  middleware.HTTPMetricsConfig
	CORS     middleware.CORSConfig
	Security middleware.SecurityConfig
	// MaxBodySize caps request bodies; zero uses middleware.DefaultBodyLimit
	MaxBodySize int64
}

// NewEngine builds the gin engine with the middleware stack and all routes.
// Tenant resolution runs only under /api/v1 so /health and unknown paths
// answer without an X-Tenant-ID header.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	bodyLimit := cfg.MaxBodySize
	if bodyLimit <= 0 {
		bodyLimit = middleware.DefaultBodyLimit
	}
	if cfg.Security == (middleware.SecurityConfig{}) {
		cfg.Security = middleware.DefaultSecurityConfig()
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(bodyLimit),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Metrics),
	)

	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Logger = log

	r := NewRouter(engine, WithMiddleware(
		middleware.TenantMiddlewareWithConfig(tenantCfg),
		middleware.TracingAttributeInjector(),
	))
	r.Register(APIGroups(h)...)
	r.Setup()

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound,
			"No route for "+c.Request.Method+" "+c.Request.URL.Path,
			c.GetString(middleware.RequestIDKey),
		))
	})

	return engine
}

// APIGroups returns the resource groups mounted under /api/v1.
// Groups whose handler is nil are left out.
func APIGroups(h Handlers) []RouteRegistrar {
	var groups []RouteRegistrar

	if h.Health != nil {
		groups = append(groups, NewDomainGroup("health", "/health").GET("", h.Health.Check))
	}

	if h.Company != nil {
		groups = append(groups, NewDomainGroup("companies", "/companies").
			POST("", h.Company.Create).
			GET("/:id", h.Company.Get))
	}

	if h.Customer != nil {
		groups = append(groups, NewDomainGroup("customers", "/customers").
			POST("", h.Customer.Create).
			GET("", h.Customer.List).
			GET("/:id", h.Customer.Get).
			PUT("/:id", h.Customer.Update).
			POST("/:id/archive", h.Customer.Archive))
	}

	if h.Quotation != nil {
		quotations := NewDomainGroup("quotations", "/quotations").
			POST("", h.Quotation.Create).
			GET("/:id", h.Quotation.Get).
			POST("/:id/status", h.Quotation.Transition).
			POST("/:id/convert", h.Quotation.Convert)
		groups = append(groups, withDocumentRoutes(quotations, h.Document, invoicing.DocumentTypeQuotation))
	}

	if h.Invoice != nil {
		invoices := NewDomainGroup("invoices", "/invoices").
			POST("", h.Invoice.Create).
			GET("", h.Invoice.List).
			GET("/:id", h.Invoice.Get).
			POST("/:id/send", h.Invoice.Send).
			POST("/:id/cancel", h.Invoice.Cancel).
			POST("/:id/payments", h.Invoice.RecordPayment).
			DELETE("/:id/payments/:index", h.Invoice.VoidPayment)
		groups = append(groups, withDocumentRoutes(invoices, h.Document, invoicing.DocumentTypeInvoice))
	}

	for _, notes := range []struct {
		name    string
		handler *handler.NoteHandler
	}{
		{"credit-notes", h.CreditNote},
		{"debit-notes", h.DebitNote},
	} {
		if notes.handler == nil {
			continue
		}
		group := NewDomainGroup(notes.name, "/"+notes.name).
			POST("", notes.handler.Create).
			GET("/:id", notes.handler.Get).
			POST("/:id/issue", notes.handler.Issue).
			POST("/:id/cancel", notes.handler.Cancel).
			POST("/:id/apply", notes.handler.Apply)
		groups = append(groups, withDocumentRoutes(group, h.Document, notes.handler.DocumentType()))
	}

	return groups
}

// withDocumentRoutes adds the item and snapshot routes every document type shares
func withDocumentRoutes(group *DomainGroup, h *handler.DocumentHandler, docType invoicing.DocumentType) *DomainGroup {
	if h == nil {
		return group
	}
	return group.
		PUT("/:id/items", h.UpdateItems(docType)).
		POST("/:id/snapshot/refresh", h.RefreshSnapshot(docType)).
		GET("/:id/snapshot/audits", h.ListSnapshotAudits(docType))
}
