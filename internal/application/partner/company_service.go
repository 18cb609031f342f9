package partner

import (
	"context"
	"maps"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CompanyService registers issuing companies. A company's ID is the tenant
// ID of every customer and document it owns.
type CompanyService struct {
	companyRepo company.CompanyRepository
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo company.CompanyRepository, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{companyRepo: companyRepo, logger: logger}
}

// CreateCompany creates a company whose counters all start at 1
func (s *CompanyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	currency, err := valueobject.ParseCurrency(req.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	c, err := company.NewCompany(req.Name, currency)
	if err != nil {
		return nil, err
	}
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.Address = req.Address.ToAddress()
	if req.TaxIDs != nil {
		c.TaxIDs = maps.Clone(req.TaxIDs)
	}

	if err := s.companyRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("company created",
		zap.String("company_id", c.ID.String()),
		zap.String("default_currency", c.DefaultCurrency.String()),
	)

	response := ToCompanyResponse(c)
	return &response, nil
}

// GetCompany retrieves a company by ID
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	c, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToCompanyResponse(c)
	return &response, nil
}
