package handler

import (
	"github.com/erp/retail/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the batch key of a bulk request
const IdempotencyKeyHeader = "Idempotency-Key"

// PurchaseHandler handles purchase endpoints
type PurchaseHandler struct {
	BaseHandler
	purchases *trade.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchases *trade.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Create records a purchase, raising stock and booking its expense
func (h *PurchaseHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd trade.PurchaseCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	purchase, err := h.purchases.Create(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// Get returns a purchase by id
func (h *PurchaseHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	purchase, err := h.purchases.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// List returns a page of purchases, newest first
func (h *PurchaseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter trade.PurchaseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.purchases.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Update revises a purchase and its linked expense
func (h *PurchaseHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd trade.PurchaseCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	purchase, err := h.purchases.Update(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// Delete reverses a purchase
func (h *PurchaseHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.purchases.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BulkCreate applies many purchases in one transaction. Invalid items are
// skipped and reported. The Idempotency-Key header overrides batch_key.
func (h *PurchaseHandler) BulkCreate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd trade.BulkPurchaseCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		cmd.BatchKey = key
	}
	result, err := h.purchases.BulkCreate(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
