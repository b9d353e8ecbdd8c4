package handler

import (
	"github.com/erp/retail/internal/application/finance"
	"github.com/erp/retail/internal/application/trade"
	domain "github.com/erp/retail/internal/domain/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sale order endpoints, including the money side of a sale
type SaleHandler struct {
	BaseHandler
	sales   *trade.SalesService
	finance *finance.FinanceService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales *trade.SalesService, finance *finance.FinanceService) *SaleHandler {
	return &SaleHandler{sales: sales, finance: finance}
}

// shippingStatusRequest is the body of a shipping status change
type shippingStatusRequest struct {
	Status domain.ShippingStatus `json:"status" binding:"required"`
}

// Create places a sale order and takes its stock
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd trade.CreateSaleCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	sale, err := h.sales.Create(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Get returns a sale with its lines
func (h *SaleHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List returns a page of sales
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter trade.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.sales.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Update replaces the lines and charges of a sale. The version in the body
// must match the stored one.
func (h *SaleHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd trade.UpdateSaleCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	sale, err := h.sales.Update(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete removes a sale and returns its stock
func (h *SaleHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sales.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateShippingStatus moves a sale along its shipping lifecycle
func (h *SaleHandler) UpdateShippingStatus(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req shippingStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sale, err := h.sales.UpdateShippingStatus(c.Request.Context(), tenantID, id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// BulkCreate places many orders in one transaction. The Idempotency-Key
// header overrides batch_key.
func (h *SaleHandler) BulkCreate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd trade.BulkSaleCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		cmd.BatchKey = key
	}
	result, err := h.sales.BulkCreate(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRevenue books the revenue of a sale as a payment
func (h *SaleHandler) RegisterRevenue(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd finance.RegisterRevenueCommand
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &cmd) {
		return
	}
	payment, err := h.finance.RegisterSaleRevenue(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Refund books a refund expense against a sale
func (h *SaleHandler) Refund(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd finance.RefundCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	expense, err := h.finance.RefundSale(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}
