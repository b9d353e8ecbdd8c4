package handler

import (
	"github.com/erp/retail/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles product category endpoints
type CategoryHandler struct {
	BaseHandler
	ledger *inventory.LedgerService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(ledger *inventory.LedgerService) *CategoryHandler {
	return &CategoryHandler{ledger: ledger}
}

// Create adds a category
func (h *CategoryHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd inventory.CategoryCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	category, err := h.ledger.CreateCategory(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// List returns every category of the tenant
func (h *CategoryHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	categories, err := h.ledger.ListCategories(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Rename changes a category name
func (h *CategoryHandler) Rename(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd inventory.CategoryCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	category, err := h.ledger.RenameCategory(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete removes a category
func (h *CategoryHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ledger.DeleteCategory(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
