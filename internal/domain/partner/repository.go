package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
)

// ErrCustomerNotFound is returned when a customer does not exist in the tenant
var ErrCustomerNotFound = shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByIDForTenant finds a customer by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindAllForTenant lists customers of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)

	// Create inserts a new customer
	Create(ctx context.Context, customer *Customer) error

	// SaveWithLock saves a customer with optimistic locking (version check).
	// Returns ErrConcurrencyConflict if the stored version moved.
	SaveWithLock(ctx context.Context, customer *Customer) error
}
