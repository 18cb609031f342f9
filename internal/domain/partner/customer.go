package partner

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusArchived CustomerStatus = "archived"
)

// Customer represents a billed party of a company.
// Its identity fields are copied into every document as a CustomerSnapshot.
type Customer struct {
	shared.TenantAggregateRoot
	Name    string
	Email   string
	Phone   string
	Address valueobject.Address
	TaxIDs  map[string]string
	Status  CustomerStatus
	Notes   string
}

// CustomerIdentity carries the fields that make up a customer's legal identity
type CustomerIdentity struct {
	Name    string
	Email   string
	Phone   string
	Address valueobject.Address
	TaxIDs  map[string]string
}

// NewCustomer creates a new active customer for the given company
func NewCustomer(tenantID uuid.UUID, identity CustomerIdentity, phoneRegion string) (*Customer, error) {
	normalized, err := normalizeIdentity(identity, phoneRegion)
	if err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              CustomerStatusActive,
	}
	customer.assign(normalized)

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update replaces the identity fields and the notes, bumping the version
// once when anything changed. It reports whether the identity changed;
// only an identity change raises CustomerUpdated.
func (c *Customer) Update(identity CustomerIdentity, notes, phoneRegion, updatedBy string) (bool, error) {
	normalized, err := normalizeIdentity(identity, phoneRegion)
	if err != nil {
		return false, err
	}
	identityChanged := !c.Snapshot().Equals(snapshotOf(normalized))
	if !identityChanged && c.Notes == notes {
		return false, nil
	}

	c.assign(normalized)
	c.Notes = notes
	c.IncrementVersion()

	if identityChanged {
		c.AddDomainEvent(NewCustomerUpdatedEvent(c, updatedBy))
	}

	return identityChanged, nil
}

// UpdateIdentity replaces the identity fields and keeps the notes.
// An unchanged customer keeps its version and raises no event.
func (c *Customer) UpdateIdentity(identity CustomerIdentity, phoneRegion string, updatedBy string) (bool, error) {
	return c.Update(identity, c.Notes, phoneRegion, updatedBy)
}

// Archive archives the customer. Existing documents keep their snapshots.
func (c *Customer) Archive() error {
	if c.Status == CustomerStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Customer is already archived")
	}
	c.Status = CustomerStatusArchived
	c.IncrementVersion()
	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Snapshot projects the customer's identity fields into a snapshot
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		TaxIDs:  maps.Clone(c.TaxIDs),
	}
}

func (c *Customer) assign(identity CustomerIdentity) {
	c.Name = identity.Name
	c.Email = identity.Email
	c.Phone = identity.Phone
	c.Address = identity.Address
	c.TaxIDs = identity.TaxIDs
}

func snapshotOf(identity CustomerIdentity) CustomerSnapshot {
	return CustomerSnapshot{
		Name:    identity.Name,
		Email:   identity.Email,
		Phone:   identity.Phone,
		Address: identity.Address,
		TaxIDs:  identity.TaxIDs,
	}
}

func normalizeIdentity(identity CustomerIdentity, phoneRegion string) (CustomerIdentity, error) {
	out := CustomerIdentity{
		Name:  strings.TrimSpace(identity.Name),
		Email: strings.ToLower(strings.TrimSpace(identity.Email)),
		Address: valueobject.NewAddress(
			identity.Address.Street,
			identity.Address.City,
			identity.Address.State,
			identity.Address.PostalCode,
			identity.Address.Country,
		),
	}

	if err := validateCustomerName(out.Name); err != nil {
		return CustomerIdentity{}, err
	}
	if out.Email != "" {
		if err := validateEmail(out.Email); err != nil {
			return CustomerIdentity{}, err
		}
	}

	region := phoneRegion
	if len(out.Address.Country) == 2 {
		region = out.Address.Country
	}
	out.Phone = NormalizePhone(identity.Phone, region)
	if len(out.Phone) > 50 {
		return CustomerIdentity{}, shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}

	taxIDs, err := normalizeTaxIDs(identity.TaxIDs)
	if err != nil {
		return CustomerIdentity{}, err
	}
	out.TaxIDs = taxIDs

	return out, nil
}

// normalizeTaxIDs trims keys and values and drops empty values.
// The result is never nil so stored snapshots compare equal.
func normalizeTaxIDs(in map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for _, key := range slices.Sorted(maps.Keys(in)) {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(in[key])
		if v == "" {
			continue
		}
		if k == "" || len(k) > 50 {
			return nil, shared.NewDomainError("INVALID_TAX_ID", "Tax ID type must be 1-50 characters")
		}
		if len(v) > 50 {
			return nil, shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
		}
		out[k] = v
	}
	return out, nil
}

// Validation functions

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
