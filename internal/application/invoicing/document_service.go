package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DocumentServiceConfig holds the collaborators of DocumentService
type DocumentServiceConfig struct {
	Companies    company.CompanyRepository
	Customers    partner.CustomerRepository
	Quotations   invoicing.QuotationRepository
	Invoices     invoicing.InvoiceRepository
	CreditNotes  invoicing.CreditNoteRepository
	DebitNotes   invoicing.DebitNoteRepository
	Transactions invoicing.DocumentTransactions
	Numbers      *NumberAllocator
	Publisher    shared.EventPublisher
	Metrics      MetricsRecorder
	Logger       *zap.Logger
}

// DocumentService creates documents and drives their lifecycle
type DocumentService struct {
	companies    company.CompanyRepository
	customers    partner.CustomerRepository
	quotations   invoicing.QuotationRepository
	invoices     invoicing.InvoiceRepository
	creditNotes  invoicing.CreditNoteRepository
	debitNotes   invoicing.DebitNoteRepository
	transactions invoicing.DocumentTransactions
	numbers      *NumberAllocator
	publisher    shared.EventPublisher
	metrics      MetricsRecorder
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) *DocumentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		companies:    cfg.Companies,
		customers:    cfg.Customers,
		quotations:   cfg.Quotations,
		invoices:     cfg.Invoices,
		creditNotes:  cfg.CreditNotes,
		debitNotes:   cfg.DebitNotes,
		transactions: cfg.Transactions,
		numbers:      cfg.Numbers,
		publisher:    cfg.Publisher,
		metrics:      metricsOrNoop(cfg.Metrics),
		logger:       logger,
	}
}

// ==================== Creation ====================

// CreateQuotation creates a draft quotation with a fresh number
func (s *DocumentService) CreateQuotation(ctx context.Context, tenantID uuid.UUID, req CreateQuotationRequest) (*QuotationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_quotation",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, req.CustomerID.String()),
	)
	defer span.End()

	items := ToItemInputs(req.Items)
	header, err := s.prepareHeader(ctx, tenantID, invoicing.DocumentTypeQuotation, req.CustomerID, req.Currency, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	header.IssueDate = dateOrNow(req.IssueDate)
	header.Notes = req.Notes

	q, err := invoicing.NewQuotation(tenantID, header, items, req.ValidUntil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.quotations.Create(ctx, q); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.created(ctx, span, &q.Document)
	publishEvents(ctx, s.publisher, s.logger, q)

	resp := ToQuotationResponse(q)
	return &resp, nil
}

// CreateInvoice creates a draft invoice with a fresh number
func (s *DocumentService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_invoice",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, req.CustomerID.String()),
	)
	defer span.End()

	items := ToItemInputs(req.Items)
	header, err := s.prepareHeader(ctx, tenantID, invoicing.DocumentTypeInvoice, req.CustomerID, req.Currency, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	header.IssueDate = dateOrNow(req.IssueDate)
	header.DueDate = req.DueDate
	header.Notes = req.Notes

	inv, err := invoicing.NewInvoice(tenantID, header, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.created(ctx, span, &inv.Document)
	publishEvents(ctx, s.publisher, s.logger, inv)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// CreateCreditNote creates a draft credit note against an invoice
func (s *DocumentService) CreateCreditNote(ctx context.Context, tenantID uuid.UUID, req CreateNoteRequest) (*NoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_credit_note",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	inv, header, items, err := s.prepareNote(ctx, tenantID, invoicing.DocumentTypeCreditNote, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	note, err := invoicing.NewCreditNote(inv, header, items, req.Reason)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.creditNotes.Create(ctx, note); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.created(ctx, span, &note.Document)
	publishEvents(ctx, s.publisher, s.logger, note)

	resp := ToNoteResponse(&note.Note)
	return &resp, nil
}

// CreateDebitNote creates a draft debit note against an invoice
func (s *DocumentService) CreateDebitNote(ctx context.Context, tenantID uuid.UUID, req CreateNoteRequest) (*NoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "create_debit_note",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	inv, header, items, err := s.prepareNote(ctx, tenantID, invoicing.DocumentTypeDebitNote, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	note, err := invoicing.NewDebitNote(inv, header, items, req.Reason)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.debitNotes.Create(ctx, note); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.created(ctx, span, &note.Document)
	publishEvents(ctx, s.publisher, s.logger, note)

	resp := ToNoteResponse(&note.Note)
	return &resp, nil
}

// prepareHeader resolves the currency, validates the items and only then
// allocates a number, so rejected input does not consume one.
func (s *DocumentService) prepareHeader(
	ctx context.Context,
	tenantID uuid.UUID,
	docType invoicing.DocumentType,
	customerID uuid.UUID,
	currencyCode string,
	items []invoicing.ItemInput,
) (invoicing.DocumentHeader, error) {
	comp, err := s.companies.FindByID(ctx, tenantID)
	if err != nil {
		return invoicing.DocumentHeader{}, err
	}

	currency := comp.DefaultCurrency
	if currencyCode != "" {
		if currency, err = valueobject.ParseCurrency(currencyCode); err != nil {
			return invoicing.DocumentHeader{}, err
		}
	}

	customer, err := s.loadActiveCustomer(ctx, tenantID, customerID)
	if err != nil {
		return invoicing.DocumentHeader{}, err
	}

	if _, _, err := invoicing.PriceItems(items, currency); err != nil {
		return invoicing.DocumentHeader{}, err
	}

	number, err := s.numbers.GetNextNumber(ctx, tenantID, docType)
	if err != nil {
		return invoicing.DocumentHeader{}, err
	}

	return invoicing.DocumentHeader{
		Number:     number,
		CustomerID: customer.ID,
		Customer:   customer.Snapshot(),
		Currency:   currency,
	}, nil
}

// prepareNote loads the parent invoice and builds the note header. The note
// takes the current customer snapshot, like every newly created document.
func (s *DocumentService) prepareNote(
	ctx context.Context,
	tenantID uuid.UUID,
	docType invoicing.DocumentType,
	req CreateNoteRequest,
) (*invoicing.Invoice, invoicing.DocumentHeader, []invoicing.ItemInput, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, req.InvoiceID)
	if err != nil {
		return nil, invoicing.DocumentHeader{}, nil, err
	}
	if inv.Status == invoicing.DocumentStatusCancelled {
		return nil, invoicing.DocumentHeader{}, nil,
			shared.NewDomainError(invoicing.ErrInvalidTransition.Code, "cannot create a note for a cancelled invoice")
	}

	items := ToItemInputs(req.Items)
	header, err := s.prepareHeader(ctx, tenantID, docType, inv.CustomerID, inv.Currency.String(), items)
	if err != nil {
		return nil, invoicing.DocumentHeader{}, nil, err
	}
	header.IssueDate = dateOrNow(req.IssueDate)
	header.Notes = req.Notes

	return inv, header, items, nil
}

func (s *DocumentService) loadActiveCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Archived customers cannot be billed")
	}
	return customer, nil
}

func (s *DocumentService) created(ctx context.Context, span trace.Span, doc *invoicing.Document) {
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, doc.ID.String(),
		telemetry.SpanAttrDocumentNumber, doc.Number,
		telemetry.SpanAttrCurrency, doc.Currency.String(),
	)
	s.metrics.RecordDocumentCreated(ctx, doc.TenantID, doc.Type.String(), doc.Currency.String(), doc.Total().MinorUnits())
	s.logger.Info("document created",
		zap.String("tenant_id", doc.TenantID.String()),
		zap.String("document_type", doc.Type.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
	)
}

// ==================== Queries ====================

// GetInvoice returns an invoice with its payment status
func (s *DocumentService) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// ListInvoices returns a page of invoices
func (s *DocumentService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[InvoiceResponse], error) {
	invoices, total, err := s.invoices.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	items := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = ToInvoiceResponse(inv)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetQuotation returns a quotation
func (s *DocumentService) GetQuotation(ctx context.Context, tenantID, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.quotations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// GetNote returns a credit or debit note
func (s *DocumentService) GetNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*NoteResponse, error) {
	var note *invoicing.Note
	switch docType {
	case invoicing.DocumentTypeCreditNote:
		cn, err := s.creditNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		note = &cn.Note
	case invoicing.DocumentTypeDebitNote:
		dn, err := s.debitNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		note = &dn.Note
	default:
		return nil, invoicing.ErrInvalidDocumentType
	}
	resp := ToNoteResponse(note)
	return &resp, nil
}

// ==================== Lifecycle ====================

// UpdateItems replaces the items of a draft document and recomputes its
// totals. Only the authored item fields are taken from the request.
func (s *DocumentService) UpdateItems(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, req UpdateItemsRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "update_items",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentType, docType.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, id.String()),
	)
	defer span.End()

	items := ToItemInputs(req.Items)
	var doc *invoicing.Document

	switch docType {
	case invoicing.DocumentTypeQuotation:
		q, err := s.quotations.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := q.SetItems(items); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.quotations.SaveWithLock(ctx, q); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		doc = &q.Document
	case invoicing.DocumentTypeInvoice:
		inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := inv.SetItems(items); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		doc = &inv.Document
	case invoicing.DocumentTypeCreditNote:
		cn, err := s.creditNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := cn.SetItems(items); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.creditNotes.SaveWithLock(ctx, cn); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		doc = &cn.Document
	case invoicing.DocumentTypeDebitNote:
		dn, err := s.debitNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := dn.SetItems(items); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.debitNotes.SaveWithLock(ctx, dn); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		doc = &dn.Document
	default:
		telemetry.RecordError(span, invoicing.ErrInvalidDocumentType)
		return nil, invoicing.ErrInvalidDocumentType
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// TransitionQuotation moves a quotation through sent/accepted/rejected/expired
func (s *DocumentService) TransitionQuotation(ctx context.Context, tenantID, id uuid.UUID, req TransitionQuotationRequest) (*QuotationResponse, error) {
	q, err := s.quotations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := q.Transition(invoicing.DocumentStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.quotations.SaveWithLock(ctx, q); err != nil {
		return nil, err
	}
	resp := ToQuotationResponse(q)
	return &resp, nil
}

// SendInvoice finalizes a draft invoice
func (s *DocumentService) SendInvoice(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.changeInvoice(ctx, tenantID, id, (*invoicing.Invoice).Send)
}

// CancelInvoice cancels an invoice without payments
func (s *DocumentService) CancelInvoice(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.changeInvoice(ctx, tenantID, id, (*invoicing.Invoice).Cancel)
}

func (s *DocumentService) changeInvoice(ctx context.Context, tenantID, id uuid.UUID, change func(*invoicing.Invoice) error) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := change(inv); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// IssueNote finalizes a draft credit or debit note
func (s *DocumentService) IssueNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*NoteResponse, error) {
	return s.changeNote(ctx, tenantID, docType, id, (*invoicing.Note).Issue)
}

// CancelNote cancels a credit or debit note that has not been applied
func (s *DocumentService) CancelNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*NoteResponse, error) {
	return s.changeNote(ctx, tenantID, docType, id, (*invoicing.Note).Cancel)
}

func (s *DocumentService) changeNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, change func(*invoicing.Note) error) (*NoteResponse, error) {
	switch docType {
	case invoicing.DocumentTypeCreditNote:
		cn, err := s.creditNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if err := change(&cn.Note); err != nil {
			return nil, err
		}
		if err := s.creditNotes.SaveWithLock(ctx, cn); err != nil {
			return nil, err
		}
		resp := ToNoteResponse(&cn.Note)
		return &resp, nil
	case invoicing.DocumentTypeDebitNote:
		dn, err := s.debitNotes.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if err := change(&dn.Note); err != nil {
			return nil, err
		}
		if err := s.debitNotes.SaveWithLock(ctx, dn); err != nil {
			return nil, err
		}
		resp := ToNoteResponse(&dn.Note)
		return &resp, nil
	}
	return nil, invoicing.ErrInvalidDocumentType
}

// ConvertQuotation turns an accepted quotation into a new draft invoice.
// The invoice copies the quotation's items, takes the customer's current
// snapshot and gets its own invoice number. Both documents are saved in
// one transaction.
func (s *DocumentService) ConvertQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) (*ConversionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "convert_quotation",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, quotationID.String()),
	)
	defer span.End()

	q, err := s.quotations.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if q.Status != invoicing.DocumentStatusAccepted {
		err := shared.NewDomainError(invoicing.ErrInvalidTransition.Code, "only accepted quotations can be converted")
		telemetry.RecordError(span, err)
		return nil, err
	}

	items := invoicing.Inputs(q.Items)
	header, err := s.prepareHeader(ctx, tenantID, invoicing.DocumentTypeInvoice, q.CustomerID, q.Currency.String(), items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	header.IssueDate = time.Now()
	header.Notes = q.Notes

	inv, err := invoicing.NewInvoice(tenantID, header, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	inv.QuotationID = &q.ID

	if err := q.MarkConverted(inv.ID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.transactions.SaveQuotationConversion(ctx, q, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.created(ctx, span, &inv.Document)
	publishEvents(ctx, s.publisher, s.logger, inv)

	return &ConversionResponse{
		Quotation: ToQuotationResponse(q),
		Invoice:   ToInvoiceResponse(inv),
	}, nil
}

func dateOrNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return time.Now()
	}
	return *t
}
