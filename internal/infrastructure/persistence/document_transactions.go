package persistence

import (
	"context"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentTransactions saves changes spanning two documents in one
// transaction. Either version check failing rolls back both writes.
type GormDocumentTransactions struct {
	db *gorm.DB
}

// NewGormDocumentTransactions creates a new GormDocumentTransactions
func NewGormDocumentTransactions(db *gorm.DB) *GormDocumentTransactions {
	return &GormDocumentTransactions{db: db}
}

// SaveCreditNoteApplication saves the credited invoice and the applied note
func (t *GormDocumentTransactions) SaveCreditNoteApplication(ctx context.Context, inv *invoicing.Invoice, note *invoicing.CreditNote) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveInvoice(tx, inv); err != nil {
			return err
		}
		return saveCreditNote(tx, note)
	})
	if err != nil {
		return err
	}
	inv.MarkStored()
	note.MarkStored()
	return nil
}

// SaveDebitNoteApplication saves the adjusted invoice and the applied note
func (t *GormDocumentTransactions) SaveDebitNoteApplication(ctx context.Context, inv *invoicing.Invoice, note *invoicing.DebitNote) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveInvoice(tx, inv); err != nil {
			return err
		}
		return saveDebitNote(tx, note)
	})
	if err != nil {
		return err
	}
	inv.MarkStored()
	note.MarkStored()
	return nil
}

// SaveQuotationConversion inserts the new invoice and saves the converted quotation
func (t *GormDocumentTransactions) SaveQuotationConversion(ctx context.Context, q *invoicing.Quotation, inv *invoicing.Invoice) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.InvoiceModelFromDomain(inv)).Error; err != nil {
			return err
		}
		return saveWithLock(tx, models.QuotationModelFromDomain(q), q.TenantID, q.ID, q.StoredVersion())
	})
	if err != nil {
		return err
	}
	inv.MarkStored()
	q.MarkStored()
	return nil
}

var _ invoicing.DocumentTransactions = (*GormDocumentTransactions)(nil)
