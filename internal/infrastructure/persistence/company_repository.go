package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, company.ErrCompanyNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a new company with its initial counters
func (r *GormCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	if err := r.db.WithContext(ctx).Create(models.CompanyModelFromDomain(c)).Error; err != nil {
		return err
	}
	c.MarkStored()
	return nil
}

var _ company.CompanyRepository = (*GormCompanyRepository)(nil)
