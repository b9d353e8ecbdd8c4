package finance

// TransactionType tells whether a ledger line brings money in or takes it out
type TransactionType int

const (
	TransactionTypeIncome  TransactionType = 1
	TransactionTypeExpense TransactionType = 2
)

// IsValid checks if the type is known
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	switch t {
	case TransactionTypeIncome:
		return "INCOME"
	case TransactionTypeExpense:
		return "EXPENSE"
	default:
		return "UNKNOWN"
	}
}

// PaymentMethod is how money changed hands
type PaymentMethod int

const (
	PaymentMethodCreditCard   PaymentMethod = 1
	PaymentMethodBankTransfer PaymentMethod = 2
	PaymentMethodCash         PaymentMethod = 3
	PaymentMethodOther        PaymentMethod = 4
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	return m >= PaymentMethodCreditCard && m <= PaymentMethodOther
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	switch m {
	case PaymentMethodCreditCard:
		return "CREDIT_CARD"
	case PaymentMethodBankTransfer:
		return "BANK_TRANSFER"
	case PaymentMethodCash:
		return "CASH"
	case PaymentMethodOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// TransactionCategory classifies a ledger line.
// Values 10-12 are income categories, 50-99 are expense categories.
type TransactionCategory int

const (
	CategorySale        TransactionCategory = 10
	CategoryCapital     TransactionCategory = 11
	CategoryOtherIncome TransactionCategory = 12

	CategoryStockPurchase TransactionCategory = 50
	CategoryRent          TransactionCategory = 51
	CategorySalary        TransactionCategory = 52
	CategoryMarketing     TransactionCategory = 53
	CategoryTax           TransactionCategory = 54
	CategoryBills         TransactionCategory = 55
	CategoryRefund        TransactionCategory = 56
	CategoryOtherExpense  TransactionCategory = 99
)

// IsIncome reports whether c is one of the income categories
func (c TransactionCategory) IsIncome() bool {
	switch c {
	case CategorySale, CategoryCapital, CategoryOtherIncome:
		return true
	}
	return false
}

// IsExpense reports whether c is one of the expense categories
func (c TransactionCategory) IsExpense() bool {
	switch c {
	case CategoryStockPurchase, CategoryRent, CategorySalary, CategoryMarketing,
		CategoryTax, CategoryBills, CategoryRefund, CategoryOtherExpense:
		return true
	}
	return false
}

// IsValid checks if the category is known
func (c TransactionCategory) IsValid() bool {
	return c.IsIncome() || c.IsExpense()
}

// Matches reports whether the category belongs to the given transaction type
func (c TransactionCategory) Matches(t TransactionType) bool {
	switch t {
	case TransactionTypeIncome:
		return c.IsIncome()
	case TransactionTypeExpense:
		return c.IsExpense()
	}
	return false
}

// String returns the string representation of TransactionCategory
func (c TransactionCategory) String() string {
	switch c {
	case CategorySale:
		return "SALE"
	case CategoryCapital:
		return "CAPITAL"
	case CategoryOtherIncome:
		return "OTHER_INCOME"
	case CategoryStockPurchase:
		return "STOCK_PURCHASE"
	case CategoryRent:
		return "RENT"
	case CategorySalary:
		return "SALARY"
	case CategoryMarketing:
		return "MARKETING"
	case CategoryTax:
		return "TAX"
	case CategoryBills:
		return "BILLS"
	case CategoryRefund:
		return "REFUND"
	case CategoryOtherExpense:
		return "OTHER_EXPENSE"
	default:
		return "UNKNOWN"
	}
}
