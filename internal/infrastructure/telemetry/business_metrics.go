// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks document issuance, payment activity, snapshot
// synchronization and the outstanding receivables of each company.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	documentCreatedTotal  *Counter
	documentAmountTotal   *Counter
	numberAllocatedTotal  *Counter
	paymentTotal          *Counter
	paymentAmountTotal    *Counter
	noteAppliedTotal      *Counter
	snapshotSyncTotal     *Counter
	snapshotDocumentTotal *Counter

	// Histogram metrics
	snapshotSyncDuration *Histogram

	// Gauge metrics (point-in-time values)
	outstandingInvoices *Gauge
	outstandingAmount   *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	receivablesProvider ReceivablesMetricsProvider
}

// OutstandingStat is the open receivable position in one currency
type OutstandingStat struct {
	Invoices    int64
	AmountMinor int64
}

// ReceivablesMetricsProvider provides receivable data for periodic metrics
// collection without the telemetry layer depending on the invoicing domain.
type ReceivablesMetricsProvider interface {
	// GetOutstandingByCurrency returns unpaid and partially paid invoice
	// counts and amounts due, keyed by currency code
	GetOutstandingByCurrency(ctx context.Context, tenantID uuid.UUID) (map[string]OutstandingStat, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter               metric.Meter
	Logger              *zap.Logger
	ReceivablesProvider ReceivablesMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:               cfg.Meter,
		logger:              logger,
		stopChan:            make(chan struct{}),
		receivablesProvider: cfg.ReceivablesProvider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.documentCreatedTotal, "invoicing_document_created_total", "Total number of documents created", "{documents}"},
		{&bm.documentAmountTotal, "invoicing_document_amount_total", "Total document amount in minor units", "{minor_units}"},
		{&bm.numberAllocatedTotal, "invoicing_number_allocated_total", "Total number of document numbers handed out", "{numbers}"},
		{&bm.paymentTotal, "invoicing_payment_total", "Total number of payment attempts", "{payments}"},
		{&bm.paymentAmountTotal, "invoicing_payment_amount_total", "Total recorded payment amount in minor units", "{minor_units}"},
		{&bm.noteAppliedTotal, "invoicing_note_applied_total", "Total number of credit and debit notes applied", "{notes}"},
		{&bm.snapshotSyncTotal, "invoicing_snapshot_sync_total", "Total number of snapshot sync runs", "{runs}"},
		{&bm.snapshotDocumentTotal, "invoicing_snapshot_document_total", "Total number of document snapshots rewritten", "{documents}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.snapshotSyncDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "invoicing_snapshot_sync_duration_seconds",
		Description: "Duration of snapshot sync runs",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.outstandingInvoices, err = NewGauge(
		cfg.Meter,
		"invoicing_outstanding_invoices",
		"Number of unpaid or partially paid invoices",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.outstandingAmount, err = NewGauge(
		cfg.Meter,
		"invoicing_outstanding_amount",
		"Amount still due on open invoices in minor units",
		"{minor_units}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Document Metrics
// =============================================================================

// RecordDocumentCreated records a new document and its total in minor units.
func (bm *BusinessMetrics) RecordDocumentCreated(ctx context.Context, tenantID uuid.UUID, documentType, currency string, totalMinor int64) {
	bm.documentCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(documentType),
	)
	if totalMinor > 0 {
		bm.documentAmountTotal.Add(ctx, totalMinor,
			AttrDocumentType.String(documentType),
			AttrCurrency.String(currency),
		)
	}
}

// RecordNumberAllocated records one counter increment.
func (bm *BusinessMetrics) RecordNumberAllocated(ctx context.Context, documentType string) {
	bm.numberAllocatedTotal.Inc(ctx, AttrDocumentType.String(documentType))
}

// RecordNoteApplied records a credit or debit note application.
func (bm *BusinessMetrics) RecordNoteApplied(ctx context.Context, tenantID uuid.UUID, documentType string) {
	bm.noteAppliedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(documentType),
	)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// Outcome labels the result of an operation for metrics.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRejected  Outcome = "rejected"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// RecordPayment records a payment attempt. The amount is only added on success.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, method, currency string, amountMinor int64, outcome Outcome) {
	bm.paymentTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
		AttrOutcome.String(string(outcome)),
	)
	if outcome == OutcomeSuccess && amountMinor > 0 {
		bm.paymentAmountTotal.Add(ctx, amountMinor,
			AttrPaymentMethod.String(method),
			AttrCurrency.String(currency),
		)
	}
}

// =============================================================================
// Snapshot Metrics
// =============================================================================

// RecordSnapshotSync records one sync run and how many documents it rewrote.
func (bm *BusinessMetrics) RecordSnapshotSync(ctx context.Context, reason string, documentsUpdated int, d time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	}
	bm.snapshotSyncTotal.Inc(ctx,
		AttrSyncReason.String(reason),
		AttrOutcome.String(string(outcome)),
	)
	if documentsUpdated > 0 {
		bm.snapshotDocumentTotal.Add(ctx, int64(documentsUpdated), AttrSyncReason.String(reason))
	}
	bm.snapshotSyncDuration.RecordDuration(ctx, d, AttrSyncReason.String(reason))
}

// =============================================================================
// Receivable Metrics
// =============================================================================

// RecordOutstanding records the open receivable position of a company in one currency.
func (bm *BusinessMetrics) RecordOutstanding(ctx context.Context, tenantID uuid.UUID, currency string, stat OutstandingStat) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	}
	bm.outstandingInvoices.Record(ctx, stat.Invoices, attrs...)
	bm.outstandingAmount.Record(ctx, stat.AmountMinor, attrs...)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics
// every interval (default: 5 minutes). It does not block; use Stop to end it.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.CollectOnce(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.CollectOnce(ctx, tenantProvider)
		}
	}
}

// CollectOnce collects receivable gauges for every active tenant.
func (bm *BusinessMetrics) CollectOnce(ctx context.Context, tenantProvider TenantProvider) {
	if bm.receivablesProvider == nil {
		bm.logger.Debug("No receivables provider configured, skipping receivable metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		byCurrency, err := bm.receivablesProvider.GetOutstandingByCurrency(ctx, tenantID)
		if err != nil {
			bm.logger.Warn("Failed to get outstanding receivables for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		for currency, stat := range byCurrency {
			bm.RecordOutstanding(ctx, tenantID, currency, stat)
		}
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
