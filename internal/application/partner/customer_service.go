package partner

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DocumentSyncer pushes a customer snapshot into the customer's draft documents
type DocumentSyncer interface {
	SyncCustomer(ctx context.Context, tenantID, customerID uuid.UUID, snapshot partner.CustomerSnapshot, updatedBy string) (int, error)
}

// CustomerServiceConfig holds the collaborators of CustomerService
type CustomerServiceConfig struct {
	Customers          partner.CustomerRepository
	Syncer             DocumentSyncer
	Publisher          shared.EventPublisher
	DefaultPhoneRegion string
	Logger             *zap.Logger
}

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo       partner.CustomerRepository
	syncer             DocumentSyncer
	publisher          shared.EventPublisher
	defaultPhoneRegion string
	logger             *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(cfg CustomerServiceConfig) *CustomerService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	region := cfg.DefaultPhoneRegion
	if region == "" {
		region = "US"
	}
	return &CustomerService{
		customerRepo:       cfg.Customers,
		syncer:             cfg.Syncer,
		publisher:          cfg.Publisher,
		defaultPhoneRegion: region,
		logger:             logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(tenantID, partner.CustomerIdentity{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address.ToAddress(),
		TaxIDs:  req.TaxIDs,
	}, s.defaultPhoneRegion)
	if err != nil {
		return nil, err
	}
	customer.Notes = req.Notes

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) (shared.Paginated[CustomerResponse], error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	customers, total, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}
	return shared.NewPaginated(ToCustomerResponses(customers), total, filter.Page, filter.PageSize), nil
}

// Update changes a customer and then pushes the new snapshot into the
// customer's draft documents. The customer update stands on its own: sync
// failures, including panics, are logged and only lower DocumentsUpdated.
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*UpdateCustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, customerID.String()),
	)
	defer span.End()

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	identity := partner.CustomerIdentity{
		Name:    customer.Name,
		Email:   customer.Email,
		Phone:   customer.Phone,
		Address: customer.Address,
		TaxIDs:  maps.Clone(customer.TaxIDs),
	}
	if req.Name != nil {
		identity.Name = *req.Name
	}
	if req.Email != nil {
		identity.Email = *req.Email
	}
	if req.Phone != nil {
		identity.Phone = *req.Phone
	}
	if req.Address != nil {
		identity.Address = req.Address.ToAddress()
	}
	if req.TaxIDs != nil {
		identity.TaxIDs = *req.TaxIDs
	}
	notes := customer.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	before := customer.Version
	identityChanged, err := customer.Update(identity, notes, s.defaultPhoneRegion, req.UpdatedBy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer.Version == before {
		return &UpdateCustomerResponse{Customer: ToCustomerResponse(customer)}, nil
	}

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	updated := 0
	if identityChanged {
		updated = s.syncDocuments(ctx, customer, req.UpdatedBy)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentsUpdated, updated)

	s.publish(ctx, customer)

	return &UpdateCustomerResponse{
		Customer:         ToCustomerResponse(customer),
		DocumentsUpdated: updated,
	}, nil
}

// Archive archives a customer. Its documents keep their snapshots.
func (s *CustomerService) Archive(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if err := customer.Archive(); err != nil {
		return nil, err
	}
	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// syncDocuments runs the snapshot sync without letting it fail the update
func (s *CustomerService) syncDocuments(ctx context.Context, customer *partner.Customer, updatedBy string) (updated int) {
	if s.syncer == nil {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("snapshot sync panicked",
				zap.String("customer_id", customer.ID.String()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	updated, err := s.syncer.SyncCustomer(ctx, customer.TenantID, customer.ID, customer.Snapshot(), updatedBy)
	if err != nil {
		s.logger.Warn("snapshot sync incomplete",
			zap.String("customer_id", customer.ID.String()),
			zap.Int("documents_updated", updated),
			zap.Error(err),
		)
	}
	return updated
}

func (s *CustomerService) publish(ctx context.Context, customer *partner.Customer) {
	events := customer.GetDomainEvents()
	customer.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish customer events",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err),
		)
	}
}
