package persistence

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// tenantScope restricts a query to one tenant's rows
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// paginate applies the page window of filter
func paginate(filter shared.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.PageSize <= 0 {
			return db
		}
		return db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
}

// Columns a list may be ordered by. Anything else falls back to the
// repository's default order.
var (
	customerSortColumns = sortColumns{"created_at", "updated_at", "name", "email", "status"}
	invoiceSortColumns  = sortColumns{
		"created_at", "updated_at", "number", "issue_date", "due_date",
		"status", "payment_status", "total_minor", "amount_due_minor",
	}
)

type sortColumns []string

// column returns requested when whitelisted, otherwise fallback
func (s sortColumns) column(requested, fallback string) string {
	requested = strings.TrimSpace(requested)
	for _, c := range s {
		if c == requested {
			return c
		}
	}
	return fallback
}

// sortDirection maps any case of "asc" to ASC and everything else to DESC
func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// orderBy applies a whitelisted sort order, falling back to defaultField
func orderBy(filter shared.Filter, allowed sortColumns, defaultField, defaultDir string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := allowed.column(filter.OrderBy, defaultField)
		dir := defaultDir
		if filter.OrderDir != "" {
			dir = sortDirection(filter.OrderDir)
		}
		// id breaks ties so pages are stable
		return db.Order(field + " " + dir).Order("id " + dir)
	}
}

// notFound maps gorm's missing-record error to the given domain error
func notFound(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}

// saveWithLock writes every column of model except the immutable ones,
// only if the stored row is still at storedVersion. The caller marks the
// aggregate stored once the surrounding transaction commits.
func saveWithLock(db *gorm.DB, model any, tenantID, id uuid.UUID, storedVersion int) error {
	result := db.Model(model).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Where("tenant_id = ? AND id = ? AND version = ?", tenantID, id, storedVersion).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
