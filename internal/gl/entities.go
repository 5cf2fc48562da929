package gl

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side represents the accounting position of a transaction entry.
type Side string

const (
	// SideDebit records a value on the debit side of an account.
	SideDebit Side = "DR"
	// SideCredit records a value on the credit side of an account.
	SideCredit Side = "CR"
)

// ParseSide normalizes a side indicator. The second return is false when the
// input is not DR or CR in any casing.
func ParseSide(s string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SideDebit):
		return SideDebit, true
	case string(SideCredit):
		return SideCredit, true
	default:
		return "", false
	}
}

// AccountType enumerates the classification vocabulary of the chart of accounts.
type AccountType string

const (
	AccountTypeAsset      AccountType = "Asset"
	AccountTypeLiability  AccountType = "Liability"
	AccountTypeEquity     AccountType = "Equity"
	AccountTypeSales      AccountType = "Sales"
	AccountTypeCostOfSale AccountType = "Cost of Sale"
	AccountTypeExpense    AccountType = "Expense"
	// AccountTypeProfitAndLoss carries prior-period profit brought forward.
	AccountTypeProfitAndLoss AccountType = "P&L"
)

// Valid reports whether t is part of the closed classification vocabulary.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeSales, AccountTypeCostOfSale, AccountTypeExpense,
		AccountTypeProfitAndLoss:
		return true
	default:
		return false
	}
}

// Company is a tenant. All accounts and transactions belong to exactly one.
type Company struct {
	ID   uuid.UUID
	Name string
}

// Account is a chart-of-accounts entry scoped to a company. Code is the
// durable business key: unique per company (case-insensitive) and immutable
// after creation.
type Account struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Code      string
	Name      string
	Type      AccountType
}

// Transaction is a posting event scoped to a company. TransactionNo is
// caller-supplied and unique per company; it is the business key callers and
// reports reference, not the surrogate ID.
type Transaction struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	TransactionNo int
	Date          time.Time
	Description   string
	Entries       []Entry
}

// Entry is one posting line. Exactly one of Debit/Credit is strictly positive
// and the other is zero. Entries reference their transaction and account via
// composite business keys (CompanyID+TransactionNo, CompanyID+AccountCode).
type Entry struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	TransactionNo int
	AccountCode   string
	Memo          string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// Side derives the entry's side from the stored debit/credit columns.
func (e Entry) Side() Side {
	if e.Debit.IsPositive() {
		return SideDebit
	}
	return SideCredit
}

// Amount returns the entry's single positive amount regardless of side.
func (e Entry) Amount() decimal.Decimal {
	if e.Debit.IsPositive() {
		return e.Debit
	}
	return e.Credit
}
