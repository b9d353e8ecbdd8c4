package handler

import (
	"net/http"

	"github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	sales *trade.SalesService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(sales *trade.SalesService) *CustomerHandler {
	return &CustomerHandler{sales: sales}
}

type customerListQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetOrCreate returns the customer with the given name, creating it when
// missing. A new customer answers 201, an existing one 200.
func (h *CustomerHandler) GetOrCreate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd trade.CustomerCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	customer, created, err := h.sales.GetOrCreateCustomer(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewSuccessResponse(customer))
}

// Get returns a customer by id
func (h *CustomerHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.sales.GetCustomer(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update replaces the details of a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd trade.CustomerCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	customer, err := h.sales.UpdateCustomer(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete removes a customer without sales or payments
func (h *CustomerHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sales.DeleteCustomer(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List returns a page of customers
func (h *CustomerHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q customerListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.sales.ListCustomers(c.Request.Context(), tenantID, q.Search, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Spend returns the order count and total spend of a customer
func (h *CustomerHandler) Spend(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	spend, err := h.sales.CustomerSpend(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, spend)
}
