package company

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
)

// ErrCompanyNotFound is returned when a company record does not exist
var ErrCompanyNotFound = shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")

// CompanyRepository defines the interface for company persistence.
// Counters are never written through Save; see the invoicing CounterStore.
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Create(ctx context.Context, company *Company) error
}
