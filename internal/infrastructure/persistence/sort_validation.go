package persistence

import (
	"strings"

	"github.com/erp/retail/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY expression. id is appended as a
// tie breaker so paging is stable.
func orderClause(filter shared.Filter, allowedFields map[string]bool, defaultField string) string {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return field + " " + dir + ", id " + dir
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"stock":      true,
	"price":      true,
	"cost_price": true,
}

// StockEventSortFields contains allowed sort fields for stock history
var StockEventSortFields = map[string]bool{
	"created_at":  true,
	"occurred_at": true,
	"quantity":    true,
	"total_cost":  true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
}

// SaleOrderSortFields contains allowed sort fields for sales
var SaleOrderSortFields = map[string]bool{
	"created_at":      true,
	"sale_date":       true,
	"order_code":      true,
	"total_amount":    true,
	"shipping_status": true,
}

// EntrySortFields contains allowed sort fields for expenses, payments and ledger rows
var EntrySortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"amount":     true,
	"category":   true,
}
