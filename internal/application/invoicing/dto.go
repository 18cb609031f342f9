package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// ItemRequest is an authored line item. Derived amounts sent by the
// client are not part of the request and are always recomputed.
type ItemRequest struct {
	ProductRef     string          `json:"product_ref" binding:"max=100"`
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Description    string          `json:"description" binding:"max=1000"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
}

// ToItemInputs converts request items to domain inputs
func ToItemInputs(items []ItemRequest) []invoicing.ItemInput {
	inputs := make([]invoicing.ItemInput, len(items))
	for i, it := range items {
		inputs[i] = invoicing.ItemInput{
			ProductRef:     it.ProductRef,
			Name:           it.Name,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			TaxRatePercent: it.TaxRatePercent,
		}
	}
	return inputs
}

// CreateInvoiceRequest represents a request to create a draft invoice
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"` // defaults to the company currency
	IssueDate  *time.Time    `json:"issue_date"`
	DueDate    *time.Time    `json:"due_date"`
	Notes      string        `json:"notes" binding:"max=2000"`
	Items      []ItemRequest `json:"items" binding:"dive"`
}

// CreateQuotationRequest represents a request to create a draft quotation
type CreateQuotationRequest struct {
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	IssueDate  *time.Time    `json:"issue_date"`
	ValidUntil *time.Time    `json:"valid_until"`
	Notes      string        `json:"notes" binding:"max=2000"`
	Items      []ItemRequest `json:"items" binding:"dive"`
}

// CreateNoteRequest represents a request to create a credit or debit note
// for an invoice. Customer and currency are taken from the invoice.
type CreateNoteRequest struct {
	InvoiceID uuid.UUID     `json:"invoice_id" binding:"required"`
	Reason    string        `json:"reason" binding:"max=500"`
	IssueDate *time.Time    `json:"issue_date"`
	Notes     string        `json:"notes" binding:"max=2000"`
	Items     []ItemRequest `json:"items" binding:"dive"`
}

// UpdateItemsRequest replaces the items of a draft document
type UpdateItemsRequest struct {
	Items []ItemRequest `json:"items" binding:"dive"`
}

// TransitionQuotationRequest moves a quotation to a new status
type TransitionQuotationRequest struct {
	Status string `json:"status" binding:"required,oneof=sent accepted rejected expired cancelled"`
}

// RecordPaymentRequest represents a request to record a payment on an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      *time.Time      `json:"date"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference" binding:"max=200"`

	// IdempotencyKey is taken from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// VoidPaymentRequest represents a request to void a payment
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ==================== Responses ====================

// AddressResponse represents an address in API responses
type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ToAddressResponse converts a domain address
func ToAddressResponse(a valueobject.Address) AddressResponse {
	return AddressResponse{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// CustomerSnapshotResponse represents the customer data frozen into a document
type CustomerSnapshotResponse struct {
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Phone   string            `json:"phone"`
	Address AddressResponse   `json:"address"`
	TaxIDs  map[string]string `json:"tax_ids"`
}

// ToCustomerSnapshotResponse converts a domain snapshot
func ToCustomerSnapshotResponse(s partner.CustomerSnapshot) CustomerSnapshotResponse {
	c := s.Clone()
	return CustomerSnapshotResponse{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: ToAddressResponse(c.Address),
		TaxIDs:  c.TaxIDs,
	}
}

// ItemResponse represents a priced line item
type ItemResponse struct {
	ProductRef     string            `json:"product_ref,omitempty"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Quantity       decimal.Decimal   `json:"quantity"`
	UnitPrice      valueobject.Money `json:"unit_price"`
	TaxRatePercent decimal.Decimal   `json:"tax_rate_percent"`
	Subtotal       valueobject.Money `json:"subtotal"`
	TaxAmount      valueobject.Money `json:"tax_amount"`
	Total          valueobject.Money `json:"total"`
}

// TaxBreakdownResponse is the tax collected at one rate
type TaxBreakdownResponse struct {
	Rate    decimal.Decimal   `json:"rate"`
	Taxable valueobject.Money `json:"taxable"`
	Amount  valueobject.Money `json:"amount"`
}

// TotalsResponse represents document totals
type TotalsResponse struct {
	Subtotal     valueobject.Money      `json:"subtotal"`
	TotalTax     valueobject.Money      `json:"total_tax"`
	Total        valueobject.Money      `json:"total"`
	TaxBreakdown []TaxBreakdownResponse `json:"tax_breakdown"`
}

// DocumentResponse holds the fields every document type returns
type DocumentResponse struct {
	ID         uuid.UUID                `json:"id"`
	TenantID   uuid.UUID                `json:"tenant_id"`
	Type       string                   `json:"type"`
	Number     string                   `json:"number"`
	Status     string                   `json:"status"`
	CustomerID uuid.UUID                `json:"customer_id"`
	Customer   CustomerSnapshotResponse `json:"customer"`
	Currency   string                   `json:"currency"`
	Items      []ItemResponse           `json:"items"`
	Totals     TotalsResponse           `json:"totals"`
	IssueDate  time.Time                `json:"issue_date"`
	DueDate    *time.Time               `json:"due_date,omitempty"`
	Notes      string                   `json:"notes,omitempty"`
	Version    int                      `json:"version"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// ToDocumentResponse converts the common part of a document
func ToDocumentResponse(d *invoicing.Document) DocumentResponse {
	items := make([]ItemResponse, len(d.Items))
	for i, it := range d.Items {
		items[i] = ItemResponse{
			ProductRef:     it.ProductRef,
			Name:           it.Name,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			TaxRatePercent: it.TaxRatePercent,
			Subtotal:       it.Subtotal,
			TaxAmount:      it.TaxAmount,
			Total:          it.Total,
		}
	}
	breakdown := make([]TaxBreakdownResponse, len(d.Totals.TaxBreakdown))
	for i, b := range d.Totals.TaxBreakdown {
		breakdown[i] = TaxBreakdownResponse{Rate: b.Rate, Taxable: b.Taxable, Amount: b.Amount}
	}

	return DocumentResponse{
		ID:         d.ID,
		TenantID:   d.TenantID,
		Type:       d.Type.String(),
		Number:     d.Number,
		Status:     string(d.Status),
		CustomerID: d.CustomerID,
		Customer:   ToCustomerSnapshotResponse(d.Customer),
		Currency:   d.Currency.String(),
		Items:      items,
		Totals: TotalsResponse{
			Subtotal:     d.Totals.Subtotal,
			TotalTax:     d.Totals.TotalTax,
			Total:        d.Totals.Total,
			TaxBreakdown: breakdown,
		},
		IssueDate: d.IssueDate,
		DueDate:   d.DueDate,
		Notes:     d.Notes,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// PaymentResponse represents one ledger entry; Index is what VoidPayment takes
type PaymentResponse struct {
	Index      int               `json:"index"`
	Amount     valueobject.Money `json:"amount"`
	Date       time.Time         `json:"date"`
	Method     string            `json:"method"`
	Reference  string            `json:"reference,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// AdjustmentResponse represents an applied debit note
type AdjustmentResponse struct {
	DebitNoteID uuid.UUID         `json:"debit_note_id"`
	Number      string            `json:"number"`
	Amount      valueobject.Money `json:"amount"`
	AppliedAt   time.Time         `json:"applied_at"`
}

// InvoiceResponse represents an invoice with its payment status.
// AmountDue is floored at zero; Overpayment carries the excess.
type InvoiceResponse struct {
	DocumentResponse
	InvoiceTotal  valueobject.Money    `json:"invoice_total"`
	PaymentStatus string               `json:"payment_status"`
	AmountPaid    valueobject.Money    `json:"amount_paid"`
	AmountDue     valueobject.Money    `json:"amount_due"`
	Overpayment   valueobject.Money    `json:"overpayment"`
	Payments      []PaymentResponse    `json:"payments"`
	Adjustments   []AdjustmentResponse `json:"adjustments"`
	QuotationID   *uuid.UUID           `json:"quotation_id,omitempty"`
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	payments := make([]PaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = PaymentResponse{
			Index:      i,
			Amount:     p.Amount,
			Date:       p.Date,
			Method:     string(p.Method),
			Reference:  p.Reference,
			RecordedAt: p.RecordedAt,
		}
	}
	adjustments := make([]AdjustmentResponse, len(inv.Adjustments))
	for i, a := range inv.Adjustments {
		adjustments[i] = AdjustmentResponse{
			DebitNoteID: a.DebitNoteID,
			Number:      a.Number,
			Amount:      a.Amount,
			AppliedAt:   a.AppliedAt,
		}
	}
	summary := invoicing.PaymentSummary{
		Status:     inv.PaymentStatus,
		AmountPaid: inv.AmountPaid,
		AmountDue:  inv.AmountDue,
	}

	return InvoiceResponse{
		DocumentResponse: ToDocumentResponse(&inv.Document),
		InvoiceTotal:     inv.Total(),
		PaymentStatus:    string(inv.PaymentStatus),
		AmountPaid:       inv.AmountPaid,
		AmountDue:        summary.DisplayAmountDue(),
		Overpayment:      summary.Overpayment(),
		Payments:         payments,
		Adjustments:      adjustments,
		QuotationID:      inv.QuotationID,
	}
}

// QuotationResponse represents a quotation
type QuotationResponse struct {
	DocumentResponse
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
	ConvertedInvoiceID *uuid.UUID `json:"converted_invoice_id,omitempty"`
}

// ToQuotationResponse converts a domain quotation
func ToQuotationResponse(q *invoicing.Quotation) QuotationResponse {
	return QuotationResponse{
		DocumentResponse:   ToDocumentResponse(&q.Document),
		ValidUntil:         q.ValidUntil,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
	}
}

// NoteResponse represents a credit or debit note
type NoteResponse struct {
	DocumentResponse
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
	Reason        string     `json:"reason,omitempty"`
	AppliedAt     *time.Time `json:"applied_at,omitempty"`
}

// ToNoteResponse converts a domain note
func ToNoteResponse(n *invoicing.Note) NoteResponse {
	return NoteResponse{
		DocumentResponse: ToDocumentResponse(&n.Document),
		InvoiceID:        n.InvoiceID,
		InvoiceNumber:    n.InvoiceNumber,
		Reason:           n.Reason,
		AppliedAt:        n.AppliedAt,
	}
}

// NoteApplicationResponse is returned after a note is applied
type NoteApplicationResponse struct {
	Note    NoteResponse    `json:"note"`
	Invoice InvoiceResponse `json:"invoice"`
}

// ConversionResponse is returned after a quotation is converted
type ConversionResponse struct {
	Quotation QuotationResponse `json:"quotation"`
	Invoice   InvoiceResponse   `json:"invoice"`
}

// SnapshotChangeResponse is one differing field
type SnapshotChangeResponse struct {
	Field       string `json:"field"`
	OldValue    string `json:"old_value"`
	NewValue    string `json:"new_value"`
	FormatValid *bool  `json:"format_valid,omitempty"`
}

// SnapshotAuditResponse represents one snapshot audit entry
type SnapshotAuditResponse struct {
	ID             uuid.UUID                `json:"id"`
	DocumentID     uuid.UUID                `json:"document_id"`
	DocumentType   string                   `json:"document_type"`
	DocumentNumber string                   `json:"document_number"`
	CustomerID     uuid.UUID                `json:"customer_id"`
	OldSnapshot    CustomerSnapshotResponse `json:"old_snapshot"`
	NewSnapshot    CustomerSnapshotResponse `json:"new_snapshot"`
	UpdatedBy      string                   `json:"updated_by"`
	UpdatedAt      time.Time                `json:"updated_at"`
	Reason         string                   `json:"reason"`
	Changes        []SnapshotChangeResponse `json:"changes"`
}

// ToSnapshotAuditResponse converts a domain audit entry
func ToSnapshotAuditResponse(e *invoicing.SnapshotAuditLog) SnapshotAuditResponse {
	changes := make([]SnapshotChangeResponse, len(e.Changes))
	for i, c := range e.Changes {
		changes[i] = SnapshotChangeResponse{
			Field:       c.Field,
			OldValue:    c.OldValue,
			NewValue:    c.NewValue,
			FormatValid: c.FormatValid,
		}
	}
	return SnapshotAuditResponse{
		ID:             e.ID,
		DocumentID:     e.DocumentID,
		DocumentType:   e.DocumentType.String(),
		DocumentNumber: e.DocumentNumber,
		CustomerID:     e.CustomerID,
		OldSnapshot:    ToCustomerSnapshotResponse(e.OldSnapshot),
		NewSnapshot:    ToCustomerSnapshotResponse(e.NewSnapshot),
		UpdatedBy:      e.UpdatedBy,
		UpdatedAt:      e.UpdatedAt,
		Reason:         string(e.Reason),
		Changes:        changes,
	}
}

// RefreshSnapshotResponse reports the outcome of a manual refresh
type RefreshSnapshotResponse struct {
	Updated bool                   `json:"updated"`
	Audit   *SnapshotAuditResponse `json:"audit,omitempty"`
}
