package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCreditNoteRepository implements CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByIDForTenant finds a credit note by ID within a tenant
func (r *GormCreditNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, invoicing.ErrDocumentNotFound)
	}
	return model.ToDomain()
}

// FindDraftsByInvoice returns the draft credit notes linked to an invoice
func (r *GormCreditNoteRepository) FindDraftsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*invoicing.CreditNote, error) {
	var noteModels []models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("invoice_id = ? AND status = ?", invoiceID, invoicing.DocumentStatusDraft).
		Order("created_at ASC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}

	notes := make([]*invoicing.CreditNote, 0, len(noteModels))
	for i := range noteModels {
		n, err := noteModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Create inserts a new credit note
func (r *GormCreditNoteRepository) Create(ctx context.Context, note *invoicing.CreditNote) error {
	if err := r.db.WithContext(ctx).Create(models.CreditNoteModelFromDomain(note)).Error; err != nil {
		return err
	}
	note.MarkStored()
	return nil
}

// SaveWithLock saves a credit note if the stored row is still at the
// version it was loaded with
func (r *GormCreditNoteRepository) SaveWithLock(ctx context.Context, note *invoicing.CreditNote) error {
	if err := saveCreditNote(r.db.WithContext(ctx), note); err != nil {
		return err
	}
	note.MarkStored()
	return nil
}

func saveCreditNote(db *gorm.DB, note *invoicing.CreditNote) error {
	return saveWithLock(db, models.CreditNoteModelFromDomain(note), note.TenantID, note.ID, note.StoredVersion())
}

// GormDebitNoteRepository implements DebitNoteRepository using GORM
type GormDebitNoteRepository struct {
	db *gorm.DB
}

// NewGormDebitNoteRepository creates a new GormDebitNoteRepository
func NewGormDebitNoteRepository(db *gorm.DB) *GormDebitNoteRepository {
	return &GormDebitNoteRepository{db: db}
}

// FindByIDForTenant finds a debit note by ID within a tenant
func (r *GormDebitNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.DebitNote, error) {
	var model models.DebitNoteModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, invoicing.ErrDocumentNotFound)
	}
	return model.ToDomain()
}

// FindDraftsByInvoice returns the draft debit notes linked to an invoice
func (r *GormDebitNoteRepository) FindDraftsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*invoicing.DebitNote, error) {
	var noteModels []models.DebitNoteModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("invoice_id = ? AND status = ?", invoiceID, invoicing.DocumentStatusDraft).
		Order("created_at ASC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}

	notes := make([]*invoicing.DebitNote, 0, len(noteModels))
	for i := range noteModels {
		n, err := noteModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Create inserts a new debit note
func (r *GormDebitNoteRepository) Create(ctx context.Context, note *invoicing.DebitNote) error {
	if err := r.db.WithContext(ctx).Create(models.DebitNoteModelFromDomain(note)).Error; err != nil {
		return err
	}
	note.MarkStored()
	return nil
}

// SaveWithLock saves a debit note if the stored row is still at the
// version it was loaded with
func (r *GormDebitNoteRepository) SaveWithLock(ctx context.Context, note *invoicing.DebitNote) error {
	if err := saveDebitNote(r.db.WithContext(ctx), note); err != nil {
		return err
	}
	note.MarkStored()
	return nil
}

func saveDebitNote(db *gorm.DB, note *invoicing.DebitNote) error {
	return saveWithLock(db, models.DebitNoteModelFromDomain(note), note.TenantID, note.ID, note.StoredVersion())
}

var (
	_ invoicing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
	_ invoicing.DebitNoteRepository  = (*GormDebitNoteRepository)(nil)
)
