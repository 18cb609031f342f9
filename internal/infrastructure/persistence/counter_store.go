package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCounterStore implements invoicing.CounterStore on the company row.
// The increment is a single UPDATE so concurrent allocations serialize on
// the row lock; the read-back happens inside the same transaction.
type GormCounterStore struct {
	db *gorm.DB
}

// NewGormCounterStore creates a new GormCounterStore
func NewGormCounterStore(db *gorm.DB) *GormCounterStore {
	return &GormCounterStore{db: db}
}

// Increment advances the counter of docType by one and returns the value
// it held before the increment, which is the number to issue.
func (s *GormCounterStore) Increment(ctx context.Context, companyID uuid.UUID, docType invoicing.DocumentType) (int64, error) {
	column, ok := models.CounterColumn(docType)
	if !ok {
		return 0, invoicing.ErrInvalidDocumentType
	}

	var next int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CompanyModel{}).
			Where("id = ?", companyID).
			Update(column, gorm.Expr(column+" + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return company.ErrCompanyNotFound
		}

		return tx.Model(&models.CompanyModel{}).
			Where("id = ?", companyID).
			Select(column).
			Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

var _ invoicing.CounterStore = (*GormCounterStore)(nil)
