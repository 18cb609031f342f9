package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSnapshotWriter implements invoicing.SnapshotWriter. The snapshot
// column is only rewritten while the document is still a draft at the
// expected version, and the audit row is inserted in the same transaction.
type GormSnapshotWriter struct {
	db *gorm.DB
}

// NewGormSnapshotWriter creates a new GormSnapshotWriter
func NewGormSnapshotWriter(db *gorm.DB) *GormSnapshotWriter {
	return &GormSnapshotWriter{db: db}
}

// ApplySnapshot persists doc's snapshot and appends entry
func (w *GormSnapshotWriter) ApplySnapshot(ctx context.Context, doc *invoicing.Document, entry *invoicing.SnapshotAuditLog) error {
	table, ok := models.DocumentTable(doc.Type)
	if !ok {
		return invoicing.ErrInvalidDocumentType
	}

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Table(table).
			Where("tenant_id = ? AND id = ? AND version = ? AND status = ?",
				doc.TenantID, doc.ID, doc.StoredVersion(), invoicing.DocumentStatusDraft).
			Updates(map[string]any{
				"customer_snapshot": models.NewJSONColumn(doc.Customer),
				"version":           doc.Version,
				"updated_at":        doc.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return tx.Create(models.SnapshotAuditLogModelFromDomain(entry)).Error
	})
	if err != nil {
		return err
	}
	doc.MarkStored()
	return nil
}

var _ invoicing.SnapshotWriter = (*GormSnapshotWriter)(nil)

// GormSnapshotAuditRepository implements invoicing.SnapshotAuditRepository
type GormSnapshotAuditRepository struct {
	db *gorm.DB
}

// NewGormSnapshotAuditRepository creates a new GormSnapshotAuditRepository
func NewGormSnapshotAuditRepository(db *gorm.DB) *GormSnapshotAuditRepository {
	return &GormSnapshotAuditRepository{db: db}
}

// FindByDocument returns the audit entries of a document, newest first
func (r *GormSnapshotAuditRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, documentID uuid.UUID, filter shared.Filter) ([]invoicing.SnapshotAuditLog, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SnapshotAuditLogModel{}).
		Scopes(tenantScope(tenantID)).
		Where("document_type = ? AND document_id = ?", docType, documentID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var auditModels []models.SnapshotAuditLogModel
	if err := query.
		Order("updated_at DESC").
		Order("id DESC").
		Scopes(paginate(filter)).
		Find(&auditModels).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]invoicing.SnapshotAuditLog, len(auditModels))
	for i := range auditModels {
		entries[i] = auditModels[i].ToDomain()
	}
	return entries, total, nil
}

var _ invoicing.SnapshotAuditRepository = (*GormSnapshotAuditRepository)(nil)
