package handler

import (
	"context"

	"github.com/google/uuid"
	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
)

// CompanyService is the part of partnerapp.CompanyService the handlers use
type CompanyService interface {
	CreateCompany(ctx context.Context, req partnerapp.CreateCompanyRequest) (*partnerapp.CompanyResponse, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*partnerapp.CompanyResponse, error)
}

// CustomerService is the part of partnerapp.CustomerService the handlers use
type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error)
	GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*partnerapp.CustomerResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter partnerapp.CustomerListFilter) (shared.Paginated[partnerapp.CustomerResponse], error)
	Update(ctx context.Context, tenantID, customerID uuid.UUID, req partnerapp.UpdateCustomerRequest) (*partnerapp.UpdateCustomerResponse, error)
	Archive(ctx context.Context, tenantID, customerID uuid.UUID) (*partnerapp.CustomerResponse, error)
}

// DocumentService is the part of invoicingapp.DocumentService the handlers use
type DocumentService interface {
	CreateQuotation(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateQuotationRequest) (*invoicingapp.QuotationResponse, error)
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateInvoiceRequest) (*invoicingapp.InvoiceResponse, error)
	CreateCreditNote(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateNoteRequest) (*invoicingapp.NoteResponse, error)
	CreateDebitNote(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateNoteRequest) (*invoicingapp.NoteResponse, error)

	GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.InvoiceResponse, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[invoicingapp.InvoiceResponse], error)
	GetQuotation(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.QuotationResponse, error)
	GetNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*invoicingapp.NoteResponse, error)

	UpdateItems(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, req invoicingapp.UpdateItemsRequest) (*invoicingapp.DocumentResponse, error)
	TransitionQuotation(ctx context.Context, tenantID, id uuid.UUID, req invoicingapp.TransitionQuotationRequest) (*invoicingapp.QuotationResponse, error)
	SendInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.InvoiceResponse, error)
	CancelInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.InvoiceResponse, error)
	IssueNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*invoicingapp.NoteResponse, error)
	CancelNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*invoicingapp.NoteResponse, error)
	ConvertQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) (*invoicingapp.ConversionResponse, error)
}

// PaymentService records and voids invoice payments
type PaymentService interface {
	RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req invoicingapp.RecordPaymentRequest) (*invoicingapp.InvoiceResponse, error)
	VoidPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, index int, req invoicingapp.VoidPaymentRequest) (*invoicingapp.InvoiceResponse, error)
}

// NoteService applies issued notes to their invoice
type NoteService interface {
	ApplyCreditNote(ctx context.Context, tenantID, noteID uuid.UUID) (*invoicingapp.NoteApplicationResponse, error)
	ApplyDebitNote(ctx context.Context, tenantID, noteID uuid.UUID) (*invoicingapp.NoteApplicationResponse, error)
}

// SnapshotService refreshes document snapshots and reads their audit trail
type SnapshotService interface {
	RefreshSnapshot(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, updatedBy string) (*invoicingapp.RefreshSnapshotResponse, error)
	ListSnapshotAudits(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, filter shared.Filter) (shared.Paginated[invoicingapp.SnapshotAuditResponse], error)
}

var (
	_ CompanyService  = (*partnerapp.CompanyService)(nil)
	_ CustomerService = (*partnerapp.CustomerService)(nil)
	_ DocumentService = (*invoicingapp.DocumentService)(nil)
	_ PaymentService  = (*invoicingapp.PaymentService)(nil)
	_ NoteService     = (*invoicingapp.NoteService)(nil)
	_ SnapshotService = (*invoicingapp.SnapshotSyncService)(nil)
)
