package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormQuotationRepository implements QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByIDForTenant finds a quotation by ID within a tenant
func (r *GormQuotationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Quotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, invoicing.ErrDocumentNotFound)
	}
	return model.ToDomain()
}

// FindDraftsByCustomer returns the draft quotations of a customer
func (r *GormQuotationRepository) FindDraftsByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*invoicing.Quotation, error) {
	var quotationModels []models.QuotationModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("customer_id = ? AND status = ?", customerID, invoicing.DocumentStatusDraft).
		Order("created_at ASC").
		Find(&quotationModels).Error; err != nil {
		return nil, err
	}

	quotations := make([]*invoicing.Quotation, 0, len(quotationModels))
	for i := range quotationModels {
		q, err := quotationModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, q)
	}
	return quotations, nil
}

// Create inserts a new quotation
func (r *GormQuotationRepository) Create(ctx context.Context, q *invoicing.Quotation) error {
	if err := r.db.WithContext(ctx).Create(models.QuotationModelFromDomain(q)).Error; err != nil {
		return err
	}
	q.MarkStored()
	return nil
}

// SaveWithLock saves a quotation if the stored row is still at the
// version it was loaded with
func (r *GormQuotationRepository) SaveWithLock(ctx context.Context, q *invoicing.Quotation) error {
	if err := saveWithLock(r.db.WithContext(ctx), models.QuotationModelFromDomain(q), q.TenantID, q.ID, q.StoredVersion()); err != nil {
		return err
	}
	q.MarkStored()
	return nil
}

var _ invoicing.QuotationRepository = (*GormQuotationRepository)(nil)
