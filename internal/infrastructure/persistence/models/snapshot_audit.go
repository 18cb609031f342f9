package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
)

// SnapshotAuditLogModel is the persistence model for snapshot audit entries.
// Rows are insert-only.
type SnapshotAuditLogModel struct {
	ID             uuid.UUID                              `gorm:"type:uuid;primary_key"`
	TenantID       uuid.UUID                              `gorm:"type:uuid;not null;index"`
	DocumentID     uuid.UUID                              `gorm:"type:uuid;not null;index:idx_snapshot_audit_document,priority:2"`
	DocumentType   invoicing.DocumentType                 `gorm:"type:varchar(20);not null;index:idx_snapshot_audit_document,priority:1"`
	DocumentNumber string                                 `gorm:"type:varchar(30);not null"`
	CustomerID     uuid.UUID                              `gorm:"type:uuid;not null;index"`
	OldSnapshot    JSONColumn[partner.CustomerSnapshot]   `gorm:"type:jsonb;not null"`
	NewSnapshot    JSONColumn[partner.CustomerSnapshot]   `gorm:"type:jsonb;not null"`
	Changes        JSONColumn[[]invoicing.SnapshotChange] `gorm:"type:jsonb;not null"`
	Reason         invoicing.SnapshotChangeReason         `gorm:"type:varchar(30);not null"`
	UpdatedBy      string                                 `gorm:"type:varchar(100)"`
	UpdatedAt      time.Time                              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SnapshotAuditLogModel) TableName() string {
	return "snapshot_audit_logs"
}

// SnapshotAuditLogModelFromDomain creates a new persistence model from a domain audit entry
func SnapshotAuditLogModelFromDomain(e *invoicing.SnapshotAuditLog) *SnapshotAuditLogModel {
	changes := e.Changes
	if changes == nil {
		changes = []invoicing.SnapshotChange{}
	}
	return &SnapshotAuditLogModel{
		ID:             e.ID,
		TenantID:       e.TenantID,
		DocumentID:     e.DocumentID,
		DocumentType:   e.DocumentType,
		DocumentNumber: e.DocumentNumber,
		CustomerID:     e.CustomerID,
		OldSnapshot:    NewJSONColumn(e.OldSnapshot),
		NewSnapshot:    NewJSONColumn(e.NewSnapshot),
		Changes:        NewJSONColumn(changes),
		Reason:         e.Reason,
		UpdatedBy:      e.UpdatedBy,
		UpdatedAt:      e.UpdatedAt,
	}
}

// ToDomain converts the persistence model to a domain audit entry
func (m *SnapshotAuditLogModel) ToDomain() invoicing.SnapshotAuditLog {
	changes := m.Changes.V
	if changes == nil {
		changes = []invoicing.SnapshotChange{}
	}
	return invoicing.SnapshotAuditLog{
		ID:             m.ID,
		TenantID:       m.TenantID,
		DocumentID:     m.DocumentID,
		DocumentType:   m.DocumentType,
		DocumentNumber: m.DocumentNumber,
		CustomerID:     m.CustomerID,
		OldSnapshot:    m.OldSnapshot.V.Clone(),
		NewSnapshot:    m.NewSnapshot.V.Clone(),
		UpdatedBy:      m.UpdatedBy,
		UpdatedAt:      m.UpdatedAt,
		Reason:         m.Reason,
		Changes:        changes,
	}
}

// AllModels lists every model owned by the schema, in dependency order
func AllModels() []any {
	return []any{
		&CompanyModel{},
		&CustomerModel{},
		&QuotationModel{},
		&InvoiceModel{},
		&CreditNoteModel{},
		&DebitNoteModel{},
		&SnapshotAuditLogModel{},
	}
}
