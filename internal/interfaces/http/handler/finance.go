package handler

import (
	"time"

	"github.com/erp/retail/internal/application/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// FinanceHandler handles expenses, payments and the transaction ledger
type FinanceHandler struct {
	BaseHandler
	finance *finance.FinanceService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(finance *finance.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

type summaryQuery struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// CreateExpense records an expense and its ledger row
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd finance.EntryCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	expense, err := h.finance.CreateExpense(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetExpense returns an expense by id
func (h *FinanceHandler) GetExpense(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	expense, err := h.finance.GetExpense(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// ListExpenses returns a page of expenses
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter finance.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.finance.ListExpenses(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// UpdateExpense changes an expense and its ledger row
func (h *FinanceHandler) UpdateExpense(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd finance.EntryCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	expense, err := h.finance.UpdateExpense(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// DeleteExpense removes an expense and its ledger row
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.finance.DeleteExpense(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreatePayment records received money and its ledger row
func (h *FinanceHandler) CreatePayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd finance.PaymentCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	payment, err := h.finance.CreatePayment(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// GetPayment returns a payment by id
func (h *FinanceHandler) GetPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.finance.GetPayment(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// ListPayments returns a page of payments
func (h *FinanceHandler) ListPayments(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter finance.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.finance.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// UpdatePayment changes a payment and its ledger row
func (h *FinanceHandler) UpdatePayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd finance.EntryCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	payment, err := h.finance.UpdatePayment(c.Request.Context(), tenantID, id, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// DeletePayment removes a payment and its ledger row
func (h *FinanceHandler) DeletePayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.finance.DeletePayment(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListTransactions returns a page of ledger rows
func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter finance.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.finance.ListTransactions(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Summary returns income, expense and net profit over an optional date range
func (h *FinanceHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q summaryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	stats, err := h.finance.SummaryStats(c.Request.Context(), tenantID, shared.DateRange{Start: q.StartDate, End: q.EndDate})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// AddManualIncome books income that has no sale behind it
func (h *FinanceHandler) AddManualIncome(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd finance.EntryCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	payment, err := h.finance.AddManualIncome(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// AddManualExpense books an expense outside the purchase flow
func (h *FinanceHandler) AddManualExpense(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var cmd finance.EntryCommand
	if !h.bindJSON(c, &cmd) {
		return
	}
	expense, err := h.finance.AddManualExpense(c.Request.Context(), tenantID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}
