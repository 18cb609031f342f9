package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SnapshotSyncServiceConfig holds the collaborators of SnapshotSyncService
type SnapshotSyncServiceConfig struct {
	Customers   partner.CustomerRepository
	Quotations  invoicing.QuotationRepository
	Invoices    invoicing.InvoiceRepository
	CreditNotes invoicing.CreditNoteRepository
	DebitNotes  invoicing.DebitNoteRepository
	Writer      invoicing.SnapshotWriter
	Audits      invoicing.SnapshotAuditRepository
	Validator   invoicing.TaxIDValidator
	Metrics     MetricsRecorder
	Logger      *zap.Logger
}

// SnapshotSyncService keeps the customer snapshots of draft documents in
// line with the customer record. Each rewritten snapshot is saved together
// with one audit entry; documents whose snapshot already matches are left
// alone, so running a sync twice writes nothing the second time.
type SnapshotSyncService struct {
	customers   partner.CustomerRepository
	quotations  invoicing.QuotationRepository
	invoices    invoicing.InvoiceRepository
	creditNotes invoicing.CreditNoteRepository
	debitNotes  invoicing.DebitNoteRepository
	writer      invoicing.SnapshotWriter
	audits      invoicing.SnapshotAuditRepository
	validator   invoicing.TaxIDValidator
	metrics     MetricsRecorder
	logger      *zap.Logger
}

// NewSnapshotSyncService creates a new SnapshotSyncService
func NewSnapshotSyncService(cfg SnapshotSyncServiceConfig) *SnapshotSyncService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotSyncService{
		customers:   cfg.Customers,
		quotations:  cfg.Quotations,
		invoices:    cfg.Invoices,
		creditNotes: cfg.CreditNotes,
		debitNotes:  cfg.DebitNotes,
		writer:      cfg.Writer,
		audits:      cfg.Audits,
		validator:   cfg.Validator,
		metrics:     metricsOrNoop(cfg.Metrics),
		logger:      logger,
	}
}

// SyncCustomer pushes snapshot into every draft invoice and draft quotation
// of the customer, then cascades to the draft credit and debit notes of
// each invoice it changed. Every document is attempted; the returned count
// covers the documents actually rewritten and the error joins the failures.
func (s *SnapshotSyncService) SyncCustomer(ctx context.Context, tenantID, customerID uuid.UUID, snapshot partner.CustomerSnapshot, updatedBy string) (updated int, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "snapshot", "sync_customer",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, customerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSyncReason, string(invoicing.ReasonCustomerUpdate)),
	)
	start := time.Now()
	defer func() {
		telemetry.SetAttribute(span, telemetry.SpanAttrDocumentsUpdated, updated)
		if err != nil {
			telemetry.RecordError(span, err)
		}
		s.metrics.RecordSnapshotSync(ctx, string(invoicing.ReasonCustomerUpdate), updated, time.Since(start), err)
		span.End()
	}()

	var errs []error
	fail := func(docType invoicing.DocumentType, docID uuid.UUID, err error) {
		s.logger.Warn("snapshot sync failed for document",
			zap.String("customer_id", customerID.String()),
			zap.String("document_id", docID.String()),
			zap.String("document_type", docType.String()),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s %s: %w", docType, docID, err))
	}

	invoices, err := s.invoices.FindDraftsByCustomer(ctx, tenantID, customerID)
	if err != nil {
		errs = append(errs, fmt.Errorf("find draft invoices: %w", err))
	}
	for _, inv := range invoices {
		entry, err := s.syncDocument(ctx, &inv.Document, snapshot, invoicing.ReasonCustomerUpdate, updatedBy)
		if err != nil {
			fail(inv.Type, inv.ID, err)
			continue
		}
		if entry == nil {
			continue
		}
		updated++

		n, cascadeErrs := s.cascade(ctx, inv, snapshot, updatedBy, fail)
		updated += n
		errs = append(errs, cascadeErrs...)
	}

	quotations, err := s.quotations.FindDraftsByCustomer(ctx, tenantID, customerID)
	if err != nil {
		errs = append(errs, fmt.Errorf("find draft quotations: %w", err))
	}
	for _, q := range quotations {
		entry, err := s.syncDocument(ctx, &q.Document, snapshot, invoicing.ReasonCustomerUpdate, updatedBy)
		if err != nil {
			fail(q.Type, q.ID, err)
			continue
		}
		if entry != nil {
			updated++
		}
	}

	if updated > 0 {
		s.logger.Info("customer snapshot synced",
			zap.String("customer_id", customerID.String()),
			zap.Int("documents_updated", updated),
		)
	}
	return updated, errors.Join(errs...)
}

// cascade syncs the draft notes of an invoice whose snapshot just changed
func (s *SnapshotSyncService) cascade(
	ctx context.Context,
	inv *invoicing.Invoice,
	snapshot partner.CustomerSnapshot,
	updatedBy string,
	fail func(invoicing.DocumentType, uuid.UUID, error),
) (int, []error) {
	var (
		updated int
		errs    []error
	)

	var notes []*invoicing.Document
	credits, err := s.creditNotes.FindDraftsByInvoice(ctx, inv.TenantID, inv.ID)
	if err != nil {
		errs = append(errs, fmt.Errorf("find draft credit notes of %s: %w", inv.Number, err))
	}
	for _, cn := range credits {
		notes = append(notes, &cn.Document)
	}
	debits, err := s.debitNotes.FindDraftsByInvoice(ctx, inv.TenantID, inv.ID)
	if err != nil {
		errs = append(errs, fmt.Errorf("find draft debit notes of %s: %w", inv.Number, err))
	}
	for _, dn := range debits {
		notes = append(notes, &dn.Document)
	}

	for _, doc := range notes {
		entry, err := s.syncDocument(ctx, doc, snapshot, invoicing.ReasonCascadeUpdate, updatedBy)
		if err != nil {
			fail(doc.Type, doc.ID, err)
			continue
		}
		if entry != nil {
			updated++
		}
	}
	return updated, errs
}

// syncDocument rewrites one document's snapshot if it differs and
// persists it with its audit entry
func (s *SnapshotSyncService) syncDocument(
	ctx context.Context,
	doc *invoicing.Document,
	snapshot partner.CustomerSnapshot,
	reason invoicing.SnapshotChangeReason,
	updatedBy string,
) (*invoicing.SnapshotAuditLog, error) {
	entry, err := invoicing.SyncSnapshot(doc, snapshot, reason, updatedBy, s.validator)
	if err != nil || entry == nil {
		return nil, err
	}
	if err := s.writer.ApplySnapshot(ctx, doc, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// RefreshSnapshot resyncs one draft document with its customer's current
// data. Nothing is written when the snapshot already matches.
func (s *SnapshotSyncService) RefreshSnapshot(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, updatedBy string) (resp *RefreshSnapshotResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "snapshot", "refresh",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentType, docType.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, id.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSyncReason, string(invoicing.ReasonManualRefresh)),
	)
	start := time.Now()
	defer func() {
		updated := 0
		if resp != nil && resp.Updated {
			updated = 1
		}
		if err != nil {
			telemetry.RecordError(span, err)
		}
		s.metrics.RecordSnapshotSync(ctx, string(invoicing.ReasonManualRefresh), updated, time.Since(start), err)
		span.End()
	}()

	doc, err := s.loadDocument(ctx, tenantID, docType, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, doc.CustomerID)
	if err != nil {
		return nil, err
	}

	entry, err := s.syncDocument(ctx, doc, customer.Snapshot(), invoicing.ReasonManualRefresh, updatedBy)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &RefreshSnapshotResponse{Updated: false}, nil
	}
	audit := ToSnapshotAuditResponse(entry)
	return &RefreshSnapshotResponse{Updated: true, Audit: &audit}, nil
}

// ListSnapshotAudits returns the audit trail of a document, newest first
func (s *SnapshotSyncService) ListSnapshotAudits(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, filter shared.Filter) (shared.Paginated[SnapshotAuditResponse], error) {
	if !docType.IsValid() {
		return shared.Paginated[SnapshotAuditResponse]{}, invoicing.ErrInvalidDocumentType
	}
	entries, total, err := s.audits.FindByDocument(ctx, tenantID, docType, id, filter)
	if err != nil {
		return shared.Paginated[SnapshotAuditResponse]{}, err
	}
	items := make([]SnapshotAuditResponse, len(entries))
	for i := range entries {
		items[i] = ToSnapshotAuditResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *SnapshotSyncService) loadDocument(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*invoicing.Document, error) {
	switch docType {
	case invoicing.DocumentTypeQuotation:
		q, err := s.quotations.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		return &q.Document, nil
	case invoicing.DocumentTypeInvoice:
		inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		return &inv.Document, nil
	case invoicing.DocumentTypeCreditNote:
		cn, err := s.creditNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		return &cn.Document, nil
	case invoicing.DocumentTypeDebitNote:
		dn, err := s.debitNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		return &dn.Document, nil
	}
	return nil, invoicing.ErrInvalidDocumentType
}
