package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, invoicing.ErrInvoiceNotFound)
	}
	return model.ToDomain()
}

// FindDraftsByCustomer returns the draft invoices of a customer
func (r *GormInvoiceRepository) FindDraftsByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("customer_id = ? AND status = ?", customerID, invoicing.DocumentStatusDraft).
		Order("created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels)
}

// FindAllForTenant lists invoices of a tenant with the total match count
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*invoicing.Invoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(tenantScope(tenantID)), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Scopes(orderBy(filter, invoiceSortColumns, "created_at", "DESC"), paginate(filter)).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices, err := invoicesToDomain(invoiceModels)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// Create inserts a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	if err := r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error; err != nil {
		return err
	}
	inv.MarkStored()
	return nil
}

// SaveWithLock saves items, totals, status and the payment ledger if the
// stored row is still at the version inv was loaded with
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoicing.Invoice) error {
	if err := saveInvoice(r.db.WithContext(ctx), inv); err != nil {
		return err
	}
	inv.MarkStored()
	return nil
}

func saveInvoice(db *gorm.DB, inv *invoicing.Invoice) error {
	return saveWithLock(db, models.InvoiceModelFromDomain(inv), inv.TenantID, inv.ID, inv.StoredVersion())
}

// applyFilter applies search and field filters
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(number) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		}
	}

	return query
}

func invoicesToDomain(invoiceModels []models.InvoiceModel) ([]*invoicing.Invoice, error) {
	invoices := make([]*invoicing.Invoice, 0, len(invoiceModels))
	for i := range invoiceModels {
		inv, err := invoiceModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
