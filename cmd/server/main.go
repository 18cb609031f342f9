package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	"github.com/invoicing/backend/internal/infrastructure/cache"
	"github.com/invoicing/backend/internal/infrastructure/config"
	"github.com/invoicing/backend/internal/infrastructure/event"
	"github.com/invoicing/backend/internal/infrastructure/logger"
	"github.com/invoicing/backend/internal/infrastructure/migration"
	"github.com/invoicing/backend/internal/infrastructure/persistence"
	"github.com/invoicing/backend/internal/infrastructure/taxid"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"github.com/invoicing/backend/internal/interfaces/http/handler"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
	"github.com/invoicing/backend/internal/interfaces/http/router"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting invoicing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	sqlLogger := logger.NewSQLLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithBoundValues(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, sqlLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if err := migrateSchema(db, cfg.Database.Driver, log); err != nil {
		log.Fatal("Failed to prepare schema", zap.Error(err))
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogQueryVariables = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	}
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBName = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	metrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:               meterProvider.Meter("invoicing"),
		Logger:              log,
		ReceivablesProvider: telemetry.NewGormReceivablesMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		metrics.StartPeriodicCollection(ctx, telemetry.NewGormTenantProvider(db.DB), cfg.Telemetry.MetricsInterval)
	}

	// Repositories
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	debitNoteRepo := persistence.NewGormDebitNoteRepository(db.DB)
	transactions := persistence.NewGormDocumentTransactions(db.DB)

	eventBus := event.NewInMemoryEventBus(log)

	// Services
	numbers := invoicingapp.NewNumberAllocator(
		persistence.NewGormCounterStore(db.DB), cfg.Invoicing.NumberPadWidth, metrics, log)

	snapshotService := invoicingapp.NewSnapshotSyncService(invoicingapp.SnapshotSyncServiceConfig{
		Customers:   customerRepo,
		Quotations:  quotationRepo,
		Invoices:    invoiceRepo,
		CreditNotes: creditNoteRepo,
		DebitNotes:  debitNoteRepo,
		Writer:      persistence.NewGormSnapshotWriter(db.DB),
		Audits:      persistence.NewGormSnapshotAuditRepository(db.DB),
		Validator:   taxid.NewValidator(nil),
		Metrics:     metrics,
		Logger:      log,
	})

	companyService := partnerapp.NewCompanyService(companyRepo, log)
	customerService := partnerapp.NewCustomerService(partnerapp.CustomerServiceConfig{
		Customers:          customerRepo,
		Syncer:             snapshotService,
		Publisher:          eventBus,
		DefaultPhoneRegion: cfg.Invoicing.DefaultPhoneRegion,
		Logger:             log,
	})

	documentService := invoicingapp.NewDocumentService(invoicingapp.DocumentServiceConfig{
		Companies:    companyRepo,
		Customers:    customerRepo,
		Quotations:   quotationRepo,
		Invoices:     invoiceRepo,
		CreditNotes:  creditNoteRepo,
		DebitNotes:   debitNoteRepo,
		Transactions: transactions,
		Numbers:      numbers,
		Publisher:    eventBus,
		Metrics:      metrics,
		Logger:       log,
	})

	paymentService := invoicingapp.NewPaymentService(invoicingapp.PaymentServiceConfig{
		Invoices:         invoiceRepo,
		Idempotency:      idempotency,
		IdempotencyTTL:   cfg.Invoicing.IdempotencyTTL,
		AllowOverpayment: cfg.Invoicing.AllowOverpayment,
		Publisher:        eventBus,
		Metrics:          metrics,
		Logger:           log,
	})

	noteService := invoicingapp.NewNoteService(invoicingapp.NoteServiceConfig{
		Invoices:     invoiceRepo,
		CreditNotes:  creditNoteRepo,
		DebitNotes:   debitNoteRepo,
		Transactions: transactions,
		Publisher:    eventBus,
		Metrics:      metrics,
		Logger:       log,
	})

	// Event handlers
	eventBus.Subscribe(invoicingapp.NewAuditLogHandler(log))
	eventBus.Subscribe(event.NewIdempotentHandler(
		invoicingapp.NewCustomerUpdatedHandler(snapshotService, log),
		idempotency,
		cfg.Invoicing.IdempotencyTTL,
		log,
	))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine := router.NewEngine(router.EngineConfig{
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Metrics: middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       meterProvider.IsEnabled(),
			Logger:        log,
		},
		CORS:        cors,
		Security:    middleware.DefaultSecurityConfig(),
		MaxBodySize: cfg.HTTP.MaxBodySize,
	}, router.Handlers{
		Health:     handler.NewHealthHandler(db, version),
		Company:    handler.NewCompanyHandler(companyService),
		Customer:   handler.NewCustomerHandler(customerService),
		Quotation:  handler.NewQuotationHandler(documentService),
		Invoice:    handler.NewInvoiceHandler(documentService, paymentService),
		CreditNote: handler.NewCreditNoteHandler(documentService, noteService),
		DebitNote:  handler.NewDebitNoteHandler(documentService, noteService),
		Document:   handler.NewDocumentHandler(documentService, snapshotService),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	metrics.Stop()
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stopped with error", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded SQL migrations on postgres and
// auto-migrates the models on sqlite.
func migrateSchema(db *persistence.Database, driver string, log *zap.Logger) error {
	if driver == "sqlite" {
		return db.AutoMigrate()
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migration.Embedded(), log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared connection pool.
	return m.Up()
}
