package handler

import (
	"strings"

	"github.com/erp/retail/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product and stock endpoints
type ProductHandler struct {
	BaseHandler
	ledger *inventory.LedgerService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(ledger *inventory.LedgerService) *ProductHandler {
	return &ProductHandler{ledger: ledger}
}

// adjustStockRequest is the body of a manual stock adjustment
type adjustStockRequest struct {
	Delta    int              `json:"delta"`
	Reason   string           `json:"reason"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

// openingStockRequest is the body of an opening stock entry
type openingStockRequest struct {
	Quantity int             `json:"quantity" binding:"gt=0"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// Create creates a product, with an opening stock event when initial_stock is set
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd inventory.CreateProductCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	product, err := h.ledger.CreateProduct(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get returns a product by id
func (h *ProductHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.ledger.GetProduct(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List returns a page of products
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter inventory.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.ledger.ListProducts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Update changes product details. Stock is never changed here.
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd inventory.UpdateProductCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	product, err := h.ledger.UpdateProduct(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product that has no stock history
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ledger.DeleteProduct(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SuggestCode returns the next free product code for ?name=
func (h *ProductHandler) SuggestCode(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		h.BadRequest(c, "name is required")
		return
	}
	code, err := h.ledger.GenerateCode(c.Request.Context(), tenantID, name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"code": code})
}

// AdjustStock applies a signed manual stock correction
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req adjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.ledger.AdjustStock(c.Request.Context(), tenantID, inventory.AdjustStockCommand{
		ProductID: id,
		Delta:     req.Delta,
		Reason:    req.Reason,
		UnitCost:  req.UnitCost,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RecordOpeningStock books opening stock for an existing product
func (h *ProductHandler) RecordOpeningStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req openingStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	event, err := h.ledger.RecordOpeningStock(c.Request.Context(), tenantID, id, req.Quantity, req.UnitCost)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, event)
}

// AverageCost returns the weighted average unit cost for ?ids=a,b,c
func (h *ProductHandler) AverageCost(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	raw := strings.Split(c.Query("ids"), ",")
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid product id: "+s)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		h.BadRequest(c, "ids is required")
		return
	}
	costs, err := h.ledger.AverageUnitCost(c.Request.Context(), tenantID, ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, costs)
}

// StockEvents returns the stock history of a product, newest first
func (h *ProductHandler) StockEvents(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	events, err := h.ledger.ListStockEvents(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}
