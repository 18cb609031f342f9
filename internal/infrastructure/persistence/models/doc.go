// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: AggregateModel, TenantAggregateModel and flattened address columns
//   - json.go: JSONColumn, the jsonb column type for embedded value objects
//   - company.go: the issuing company and its number counters
//   - partner.go: customers
//   - invoicing.go: quotations, invoices, credit notes and debit notes
//   - snapshot_audit.go: the snapshot audit trail
//
// Money is stored as minor units next to the document currency; items,
// payments and snapshots are stored as jsonb.
package models
