package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
)

// CompanyHandler handles issuing company endpoints. These routes sit
// outside the tenant check since a company ID is the tenant ID.
type CompanyHandler struct {
	BaseHandler
	companyService CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create godoc
// @Summary      Register an issuing company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateCompanyRequest true "Company"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, company)
}

// Get godoc
// @Summary      Get a company with its next document numbers
// @Tags         companies
// @Produce      json
// @Param        id path string true "Company ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, company)
}
