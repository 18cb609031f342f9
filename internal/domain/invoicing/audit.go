package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
)

// SnapshotChangeReason says why a document's snapshot was rewritten
type SnapshotChangeReason string

const (
	ReasonCustomerUpdate SnapshotChangeReason = "customer_update"
	ReasonCascadeUpdate  SnapshotChangeReason = "cascade_update"
	ReasonManualRefresh  SnapshotChangeReason = "manual_refresh"
)

// SnapshotAuditLog is an append-only record of one snapshot rewrite.
// Entries are created only alongside the rewrite they describe and are
// never updated or deleted.
type SnapshotAuditLog struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	DocumentID     uuid.UUID
	DocumentType   DocumentType
	DocumentNumber string
	CustomerID     uuid.UUID
	OldSnapshot    partner.CustomerSnapshot
	NewSnapshot    partner.CustomerSnapshot
	UpdatedBy      string
	UpdatedAt      time.Time
	Reason         SnapshotChangeReason
	Changes        []SnapshotChange
}

// NewSnapshotAuditLog records the rewrite of doc's snapshot from old to doc.Customer
func NewSnapshotAuditLog(doc *Document, old partner.CustomerSnapshot, changes []SnapshotChange, reason SnapshotChangeReason, updatedBy string) *SnapshotAuditLog {
	return &SnapshotAuditLog{
		ID:             uuid.New(),
		TenantID:       doc.TenantID,
		DocumentID:     doc.ID,
		DocumentType:   doc.Type,
		DocumentNumber: doc.Number,
		CustomerID:     doc.CustomerID,
		OldSnapshot:    old.Clone(),
		NewSnapshot:    doc.Customer.Clone(),
		UpdatedBy:      updatedBy,
		UpdatedAt:      time.Now(),
		Reason:         reason,
		Changes:        changes,
	}
}

// SyncSnapshot brings a draft document's snapshot in line with current.
// It returns nil when nothing differs; otherwise the snapshot is replaced
// and the audit entry to persist with it is returned.
func SyncSnapshot(doc *Document, current partner.CustomerSnapshot, reason SnapshotChangeReason, updatedBy string, validator TaxIDValidator) (*SnapshotAuditLog, error) {
	if !doc.IsDraft() {
		return nil, ErrDocumentNotDraft
	}
	changes := CompareSnapshots(doc.Customer, current)
	if len(changes) == 0 {
		return nil, nil
	}
	AnnotateTaxIDChanges(changes, current.Address.Country, validator)

	old := doc.Customer
	if err := doc.ReplaceSnapshot(current); err != nil {
		return nil, err
	}
	return NewSnapshotAuditLog(doc, old, changes, reason, updatedBy), nil
}
