// Package report computes the aggregation reports: trial balance and
// profit & loss. Aggregation happens here, over plain entry and account
// listings, so both storage backends share one implementation.
package report

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oskarw/glbook/internal/gl"
)

// Repo defines the read operations needed by the reports.
type Repo interface {
	Accounts(ctx context.Context, companyID uuid.UUID) ([]gl.Account, error)
	Entries(ctx context.Context, companyID uuid.UUID) ([]gl.Entry, error)
}

// Row is one trial-balance line: total debit and credit for an account.
type Row struct {
	AccountCode string
	AccountName string
	AccountType gl.AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// TrialBalance is the full report with grand totals. For a company whose
// every transaction individually balances, TotalDebit equals TotalCredit.
type TrialBalance struct {
	Rows        []Row
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// StatementLine is one account's contribution to a P&L section.
type StatementLine struct {
	AccountCode string
	AccountName string
	Amount      decimal.Decimal
}

// Section groups statement lines under a titled heading with a total.
type Section struct {
	Title string
	Lines []StatementLine
	Total decimal.Decimal
}

// Statement is the profit & loss report. Sections appear in the fixed order
// Sales, Cost of Sales, Expenses, P&L B/F; empty sections are omitted.
type Statement struct {
	Sections  []Section
	NetProfit decimal.Decimal
}

// Service exposes the aggregation reports.
type Service interface {
	TrialBalance(ctx context.Context, companyID uuid.UUID) (TrialBalance, error)
	ProfitAndLoss(ctx context.Context, companyID uuid.UUID) (Statement, error)
}

type service struct {
	repo Repo
}

func New(repo Repo) Service { return &service{repo: repo} }

// aggregate sums debit and credit per account across all entries for the
// company, sorted ascending by account code.
func (s *service) aggregate(ctx context.Context, companyID uuid.UUID) ([]Row, error) {
	accounts, err := s.repo.Accounts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.Entries(ctx, companyID)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]gl.Account, len(accounts))
	for _, a := range accounts {
		byCode[strings.ToLower(a.Code)] = a
	}

	totals := make(map[string]*Row)
	for _, e := range entries {
		key := strings.ToLower(e.AccountCode)
		r, ok := totals[key]
		if !ok {
			acc := byCode[key]
			r = &Row{
				AccountCode: acc.Code,
				AccountName: acc.Name,
				AccountType: acc.Type,
				Debit:       decimal.Zero,
				Credit:      decimal.Zero,
			}
			totals[key] = r
		}
		r.Debit = r.Debit.Add(e.Debit)
		r.Credit = r.Credit.Add(e.Credit)
	}

	rows := make([]Row, 0, len(totals))
	for _, r := range totals {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountCode < rows[j].AccountCode })
	return rows, nil
}

func (s *service) TrialBalance(ctx context.Context, companyID uuid.UUID) (TrialBalance, error) {
	rows, err := s.aggregate(ctx, companyID)
	if err != nil {
		return TrialBalance{}, err
	}
	tb := TrialBalance{
		Rows:        rows,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, r := range rows {
		tb.TotalDebit = tb.TotalDebit.Add(r.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(r.Credit)
	}
	return tb, nil
}

// Fixed section titles, in output order.
const (
	TitleSales        = "Sales"
	TitleCostOfSales  = "Cost of Sales"
	TitleExpenses     = "Expenses"
	TitlePLBroughtFwd = "P&L B/F"
)

func (s *service) ProfitAndLoss(ctx context.Context, companyID uuid.UUID) (Statement, error) {
	rows, err := s.aggregate(ctx, companyID)
	if err != nil {
		return Statement{}, err
	}

	sales := Section{Title: TitleSales, Total: decimal.Zero}
	costOfSales := Section{Title: TitleCostOfSales, Total: decimal.Zero}
	expenses := Section{Title: TitleExpenses, Total: decimal.Zero}
	plBroughtFwd := Section{Title: TitlePLBroughtFwd, Total: decimal.Zero}

	for _, r := range rows {
		// Debit-normal balance; Sales is credit-normal so its line amount is
		// negated to show revenue as positive.
		balance := r.Debit.Sub(r.Credit)
		switch r.AccountType {
		case gl.AccountTypeSales:
			addLine(&sales, r, balance.Neg())
		case gl.AccountTypeCostOfSale:
			addLine(&costOfSales, r, balance)
		case gl.AccountTypeExpense:
			addLine(&expenses, r, balance)
		case gl.AccountTypeProfitAndLoss:
			addLine(&plBroughtFwd, r, balance)
		default:
			// Balance-sheet accounts are not part of this report.
		}
	}

	st := Statement{
		NetProfit: sales.Total.
			Sub(costOfSales.Total).
			Sub(expenses.Total).
			Add(plBroughtFwd.Total),
	}
	for _, sec := range []Section{sales, costOfSales, expenses, plBroughtFwd} {
		if len(sec.Lines) == 0 && sec.Total.IsZero() {
			continue
		}
		st.Sections = append(st.Sections, sec)
	}
	return st, nil
}

func addLine(sec *Section, r Row, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	sec.Lines = append(sec.Lines, StatementLine{
		AccountCode: r.AccountCode,
		AccountName: r.AccountName,
		Amount:      amount,
	})
	sec.Total = sec.Total.Add(amount)
}
