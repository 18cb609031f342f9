package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceivablesMetricsProvider implements ReceivablesMetricsProvider by
// aggregating the invoices table directly.
type GormReceivablesMetricsProvider struct {
	db *gorm.DB
}

// NewGormReceivablesMetricsProvider creates a new GormReceivablesMetricsProvider.
func NewGormReceivablesMetricsProvider(db *gorm.DB) *GormReceivablesMetricsProvider {
	return &GormReceivablesMetricsProvider{db: db}
}

// GetOutstandingByCurrency returns open invoice counts and amounts due per currency.
func (p *GormReceivablesMetricsProvider) GetOutstandingByCurrency(ctx context.Context, tenantID uuid.UUID) (map[string]OutstandingStat, error) {
	type result struct {
		Currency    string `gorm:"column:currency"`
		Invoices    int64  `gorm:"column:invoices"`
		AmountMinor int64  `gorm:"column:amount_minor"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("invoices").
		Select("currency, COUNT(*) AS invoices, COALESCE(SUM(amount_due_minor), 0) AS amount_minor").
		Where("tenant_id = ? AND status <> ?", tenantID, "cancelled").
		Where("payment_status IN ?", []string{"unpaid", "partial"}).
		Group("currency").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[string]OutstandingStat, len(results))
	for _, r := range results {
		m[r.Currency] = OutstandingStat{Invoices: r.Invoices, AmountMinor: r.AmountMinor}
	}
	return m, nil
}

// GormTenantProvider implements TenantProvider over the companies table.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns the IDs of all companies.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("companies").
		Select("id").
		Where("deleted_at IS NULL").
		Find(&ids).Error
	return ids, err
}
