package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create godoc
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        request body partnerapp.CreateCustomerRequest true "Customer"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// Get godoc
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        search query string false "Name or email fragment"
// @Param        status query string false "active or archived"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter partnerapp.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.customerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update a customer
// @Description  Changes to snapshot fields are copied into the customer's draft documents.
// @Description  A failed copy does not fail the update.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        X-User-ID header string false "Actor recorded in snapshot audits"
// @Param        id path string true "Customer ID"
// @Param        request body partnerapp.UpdateCustomerRequest true "Changed fields"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.UpdatedBy = middleware.GetActor(c)

	result, err := h.customerService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Archive godoc
// @Summary      Archive a customer
// @Tags         customers
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Customer ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /customers/{id}/archive [post]
func (h *CustomerHandler) Archive(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.Archive(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}
