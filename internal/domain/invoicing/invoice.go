package invoicing

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// Adjustment is an applied debit note raising the invoice total
type Adjustment struct {
	DebitNoteID uuid.UUID         `json:"debitNoteId"`
	Number      string            `json:"number"`
	Amount      valueobject.Money `json:"amount"`
	AppliedAt   time.Time         `json:"appliedAt"`
}

// Invoice is a billable document with a payment ledger.
// PaymentStatus, AmountPaid and AmountDue are derived from Payments and
// Adjustments on every change and on restore.
type Invoice struct {
	Document
	Payments      []Payment
	Adjustments   []Adjustment
	QuotationID   *uuid.UUID
	PaymentStatus PaymentStatus
	AmountPaid    valueobject.Money
	AmountDue     valueobject.Money
}

// NewInvoice creates a draft invoice and prices its items
func NewInvoice(tenantID uuid.UUID, header DocumentHeader, items []ItemInput) (*Invoice, error) {
	doc, err := newDocument(tenantID, DocumentTypeInvoice, header, items)
	if err != nil {
		return nil, err
	}
	inv := &Invoice{
		Document:    doc,
		Payments:    []Payment{},
		Adjustments: []Adjustment{},
	}
	if err := inv.refreshPaymentStatus(); err != nil {
		return nil, err
	}

	inv.AddDomainEvent(NewDocumentCreatedEvent(&inv.Document))

	return inv, nil
}

// RestoreInvoice rebuilds a stored invoice and derives its payment state
// from the ledger.
func RestoreInvoice(doc Document, payments []Payment, adjustments []Adjustment, quotationID *uuid.UUID) (*Invoice, error) {
	if payments == nil {
		payments = []Payment{}
	}
	if adjustments == nil {
		adjustments = []Adjustment{}
	}
	inv := &Invoice{
		Document:    doc,
		Payments:    payments,
		Adjustments: adjustments,
		QuotationID: quotationID,
	}
	if err := inv.refreshPaymentStatus(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Total is the item total plus every applied debit note
func (i *Invoice) Total() valueobject.Money {
	total := i.Totals.Total
	for _, adj := range i.Adjustments {
		total = total.MustAdd(adj.Amount)
	}
	return total
}

// PaymentSummary recomputes the payment state from the ledger
func (i *Invoice) PaymentSummary() (PaymentSummary, error) {
	return CalculatePaymentStatus(i.Total(), i.Payments)
}

// SetItems reprices the items and refreshes the payment state
func (i *Invoice) SetItems(inputs []ItemInput) error {
	if err := i.Document.SetItems(inputs); err != nil {
		return err
	}
	return i.refreshPaymentStatus()
}

// RecordPayment validates and appends a client payment
func (i *Invoice) RecordPayment(payment Payment, allowOverpayment bool) error {
	if !payment.Method.IsClientRecordable() {
		return shared.NewDomainError(ErrInvalidPaymentMethod.Code, "payment method "+string(payment.Method)+" cannot be recorded directly")
	}
	return i.appendPayment(payment, allowOverpayment)
}

// VoidPayment removes the payment at index and recomputes the status.
// Credit-note payments are part of an irreversible application and cannot be voided.
func (i *Invoice) VoidPayment(index int, reason string) error {
	if index < 0 || index >= len(i.Payments) {
		return ErrPaymentNotFound
	}
	if i.Status == DocumentStatusCancelled {
		return shared.NewDomainError(ErrInvalidTransition.Code, "cannot void payments of a cancelled invoice")
	}
	voided := i.Payments[index]
	if voided.Method == PaymentMethodCreditNote {
		return shared.NewDomainError(ErrInvalidTransition.Code, "credit note payments cannot be voided")
	}

	i.Payments = slices.Delete(slices.Clone(i.Payments), index, index+1)
	if err := i.refreshPaymentStatus(); err != nil {
		return err
	}
	i.IncrementVersion()

	i.AddDomainEvent(NewPaymentVoidedEvent(i, voided, index, reason))

	return nil
}

// Send finalizes a draft invoice. The snapshot is frozen from here on.
func (i *Invoice) Send() error {
	if !i.IsDraft() {
		return shared.NewDomainError(ErrInvalidTransition.Code, "only draft invoices can be sent")
	}
	if len(i.Items) == 0 {
		return ErrEmptyDocument
	}
	i.Status = DocumentStatusSent
	i.IncrementVersion()
	return nil
}

// Cancel cancels an invoice that has no payments
func (i *Invoice) Cancel() error {
	if i.Status == DocumentStatusCancelled {
		return shared.NewDomainError(ErrInvalidTransition.Code, "invoice is already cancelled")
	}
	if len(i.Payments) > 0 {
		return shared.NewDomainError(ErrInvalidTransition.Code, "invoice with payments cannot be cancelled")
	}
	i.Status = DocumentStatusCancelled
	i.IncrementVersion()
	return nil
}

func (i *Invoice) appendPayment(payment Payment, allowOverpayment bool) error {
	if i.Status == DocumentStatusCancelled {
		return shared.NewDomainError(ErrInvalidTransition.Code, "cannot record payments on a cancelled invoice")
	}
	summary, err := i.PaymentSummary()
	if err != nil {
		return err
	}
	if err := ValidatePaymentAmount(payment.Amount, summary.AmountDue, allowOverpayment); err != nil {
		return err
	}

	i.Payments = append(slices.Clone(i.Payments), payment)
	if err := i.refreshPaymentStatus(); err != nil {
		return err
	}
	i.IncrementVersion()

	i.AddDomainEvent(NewPaymentRecordedEvent(i, payment))

	return nil
}

func (i *Invoice) applyDebit(adj Adjustment) error {
	if i.Status == DocumentStatusCancelled {
		return shared.NewDomainError(ErrInvalidTransition.Code, "cannot apply a debit note to a cancelled invoice")
	}
	if _, err := i.Total().Add(adj.Amount); err != nil {
		return err
	}
	i.Adjustments = append(slices.Clone(i.Adjustments), adj)
	if err := i.refreshPaymentStatus(); err != nil {
		return err
	}
	i.IncrementVersion()
	return nil
}

func (i *Invoice) refreshPaymentStatus() error {
	summary, err := i.PaymentSummary()
	if err != nil {
		return err
	}
	i.PaymentStatus = summary.Status
	i.AmountPaid = summary.AmountPaid
	i.AmountDue = summary.AmountDue
	return nil
}
