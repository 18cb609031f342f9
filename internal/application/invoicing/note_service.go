package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// NoteServiceConfig holds the collaborators of NoteService
type NoteServiceConfig struct {
	Invoices     invoicing.InvoiceRepository
	CreditNotes  invoicing.CreditNoteRepository
	DebitNotes   invoicing.DebitNoteRepository
	Transactions invoicing.DocumentTransactions
	Publisher    shared.EventPublisher
	Metrics      MetricsRecorder
	Logger       *zap.Logger
}

// NoteService applies credit and debit notes to their invoices.
// Credit notes post a credit_note payment through the invoice's payment
// ledger; debit notes raise the invoice total. The invoice and the note
// are saved together, each under its own version check.
type NoteService struct {
	invoices     invoicing.InvoiceRepository
	creditNotes  invoicing.CreditNoteRepository
	debitNotes   invoicing.DebitNoteRepository
	transactions invoicing.DocumentTransactions
	publisher    shared.EventPublisher
	metrics      MetricsRecorder
	logger       *zap.Logger
	now          func() time.Time
}

// NewNoteService creates a new NoteService
func NewNoteService(cfg NoteServiceConfig) *NoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{
		invoices:     cfg.Invoices,
		creditNotes:  cfg.CreditNotes,
		debitNotes:   cfg.DebitNotes,
		transactions: cfg.Transactions,
		publisher:    cfg.Publisher,
		metrics:      metricsOrNoop(cfg.Metrics),
		logger:       logger,
		now:          time.Now,
	}
}

// ApplyCreditNote posts the credit note to its invoice
func (s *NoteService) ApplyCreditNote(ctx context.Context, tenantID, noteID uuid.UUID) (*NoteApplicationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "note", "apply_credit",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, noteID.String()),
	)
	defer span.End()

	note, err := s.creditNotes.FindByIDForTenant(ctx, tenantID, noteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	inv, err := s.findInvoice(ctx, tenantID, note.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := invoicing.ApplyCreditNote(inv, note, s.now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.transactions.SaveCreditNoteApplication(ctx, inv, note); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.applied(ctx, &note.Note, inv)
	publishEvents(ctx, s.publisher, s.logger, inv)

	return &NoteApplicationResponse{
		Note:    ToNoteResponse(&note.Note),
		Invoice: ToInvoiceResponse(inv),
	}, nil
}

// ApplyDebitNote raises its invoice's total by the note total
func (s *NoteService) ApplyDebitNote(ctx context.Context, tenantID, noteID uuid.UUID) (*NoteApplicationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "note", "apply_debit",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, noteID.String()),
	)
	defer span.End()

	note, err := s.debitNotes.FindByIDForTenant(ctx, tenantID, noteID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	inv, err := s.findInvoice(ctx, tenantID, note.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := invoicing.ApplyDebitNote(inv, note, s.now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.transactions.SaveDebitNoteApplication(ctx, inv, note); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.applied(ctx, &note.Note, inv)
	publishEvents(ctx, s.publisher, s.logger, inv)

	return &NoteApplicationResponse{
		Note:    ToNoteResponse(&note.Note),
		Invoice: ToInvoiceResponse(inv),
	}, nil
}

// findInvoice maps a missing parent invoice to INVOICE_NOT_FOUND
func (s *NoteService) findInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*invoicing.Invoice, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, invoicing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *NoteService) applied(ctx context.Context, note *invoicing.Note, inv *invoicing.Invoice) {
	s.metrics.RecordNoteApplied(ctx, note.TenantID, note.Type.String())
	s.logger.Info("note applied",
		zap.String("document_type", note.Type.String()),
		zap.String("note_number", note.Number),
		zap.String("invoice_number", inv.Number),
		zap.String("payment_status", string(inv.PaymentStatus)),
		zap.String("amount_due", inv.AmountDue.String()),
	)
}
