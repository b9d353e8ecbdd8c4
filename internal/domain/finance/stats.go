package finance

import "github.com/shopspring/decimal"

// SummaryStats aggregates the ledger over a date range
type SummaryStats struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}

// NewSummaryStats derives the net profit from the two totals
func NewSummaryStats(income, expense decimal.Decimal) SummaryStats {
	return SummaryStats{
		TotalIncome:  income,
		TotalExpense: expense,
		NetProfit:    income.Sub(expense),
	}
}
