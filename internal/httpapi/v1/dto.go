package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oskarw/glbook/internal/gl"
	"github.com/oskarw/glbook/internal/service/posting"
	"github.com/oskarw/glbook/internal/service/report"
	"github.com/oskarw/glbook/internal/service/search"
)

// Companies

type companyRequest struct {
	Name string `json:"name"`
}

type companyResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toCompanyResponse(c gl.Company) companyResponse {
	return companyResponse{ID: c.ID, Name: c.Name}
}

// Accounts

type accountRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type accountResponse struct {
	ID        uuid.UUID      `json:"id"`
	CompanyID uuid.UUID      `json:"company_id"`
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Type      gl.AccountType `json:"type"`
}

func toAccountResponse(a gl.Account) accountResponse {
	return accountResponse{ID: a.ID, CompanyID: a.CompanyID, Code: a.Code, Name: a.Name, Type: a.Type}
}

// Transactions

type transactionRequest struct {
	TransactionNo int                     `json:"transaction_no"`
	Date          time.Time               `json:"date"`
	Description   string                  `json:"description"`
	Entries       []transactionEntryInput `json:"entries"`
}

type transactionEntryInput struct {
	AccountCode string          `json:"account_code"`
	Amount      decimal.Decimal `json:"amount"`
	Side        string          `json:"side"`
	Memo        string          `json:"memo,omitempty"`
}

type transactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	CompanyID     uuid.UUID       `json:"company_id"`
	TransactionNo int             `json:"transaction_no"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Entries       []entryResponse `json:"entries"`
}

type entryResponse struct {
	ID          uuid.UUID `json:"id"`
	AccountCode string    `json:"account_code"`
	Memo        string    `json:"memo,omitempty"`
	Side        gl.Side   `json:"side"`
	Amount      string    `json:"amount"`
	Debit       string    `json:"debit"`
	Credit      string    `json:"credit"`
}

func toTransactionResponse(tx gl.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            tx.ID,
		CompanyID:     tx.CompanyID,
		TransactionNo: tx.TransactionNo,
		Date:          tx.Date,
		Description:   tx.Description,
		Entries:       make([]entryResponse, 0, len(tx.Entries)),
	}
	for _, e := range tx.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			ID:          e.ID,
			AccountCode: e.AccountCode,
			Memo:        e.Memo,
			Side:        e.Side(),
			Amount:      e.Amount().StringFixed(2),
			Debit:       e.Debit.StringFixed(2),
			Credit:      e.Credit.StringFixed(2),
		})
	}
	return resp
}

func toPostingInput(companyID uuid.UUID, req transactionRequest) posting.Input {
	in := posting.Input{
		CompanyID:     companyID,
		TransactionNo: req.TransactionNo,
		Date:          req.Date,
		Description:   req.Description,
		Lines:         make([]posting.Line, 0, len(req.Entries)),
	}
	for _, e := range req.Entries {
		in.Lines = append(in.Lines, posting.Line{
			AccountCode: e.AccountCode,
			Amount:      e.Amount,
			Side:        e.Side,
			Memo:        e.Memo,
		})
	}
	return in
}

// listResponse wraps paginated collections.
type listResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Reports

type trialBalanceRow struct {
	AccountCode string         `json:"account_code"`
	AccountName string         `json:"account_name"`
	AccountType gl.AccountType `json:"account_type"`
	Debit       string         `json:"debit"`
	Credit      string         `json:"credit"`
}

type trialBalanceResponse struct {
	Rows        []trialBalanceRow `json:"rows"`
	TotalDebit  string            `json:"total_debit"`
	TotalCredit string            `json:"total_credit"`
}

func toTrialBalanceResponse(tb report.TrialBalance) trialBalanceResponse {
	resp := trialBalanceResponse{
		Rows:        make([]trialBalanceRow, 0, len(tb.Rows)),
		TotalDebit:  tb.TotalDebit.StringFixed(2),
		TotalCredit: tb.TotalCredit.StringFixed(2),
	}
	for _, r := range tb.Rows {
		resp.Rows = append(resp.Rows, trialBalanceRow{
			AccountCode: r.AccountCode,
			AccountName: r.AccountName,
			AccountType: r.AccountType,
			Debit:       r.Debit.StringFixed(2),
			Credit:      r.Credit.StringFixed(2),
		})
	}
	return resp
}

type statementLine struct {
	AccountCode string `json:"account_code"`
	AccountName string `json:"account_name"`
	Amount      string `json:"amount"`
}

type statementSection struct {
	Title string          `json:"title"`
	Lines []statementLine `json:"lines"`
	Total string          `json:"total"`
}

type profitAndLossResponse struct {
	Sections  []statementSection `json:"sections"`
	NetProfit string             `json:"net_profit"`
}

func toProfitAndLossResponse(st report.Statement) profitAndLossResponse {
	resp := profitAndLossResponse{
		Sections:  make([]statementSection, 0, len(st.Sections)),
		NetProfit: st.NetProfit.StringFixed(2),
	}
	for _, sec := range st.Sections {
		out := statementSection{
			Title: sec.Title,
			Lines: make([]statementLine, 0, len(sec.Lines)),
			Total: sec.Total.StringFixed(2),
		}
		for _, ln := range sec.Lines {
			out.Lines = append(out.Lines, statementLine{
				AccountCode: ln.AccountCode,
				AccountName: ln.AccountName,
				Amount:      ln.Amount.StringFixed(2),
			})
		}
		resp.Sections = append(resp.Sections, out)
	}
	return resp
}

// Ledger search

type ledgerRow struct {
	Date                   time.Time `json:"date"`
	TransactionNo          int       `json:"transaction_no"`
	TransactionDescription string    `json:"transaction_description"`
	AccountCode            string    `json:"account_code"`
	AccountName            string    `json:"account_name"`
	LineDescription        string    `json:"line_description,omitempty"`
	Debit                  string    `json:"debit"`
	Credit                 string    `json:"credit"`
}

func toLedgerRows(rows []search.Row) []ledgerRow {
	out := make([]ledgerRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ledgerRow{
			Date:                   r.Date,
			TransactionNo:          r.TransactionNo,
			TransactionDescription: r.TransactionDescription,
			AccountCode:            r.AccountCode,
			AccountName:            r.AccountName,
			LineDescription:        r.LineDescription,
			Debit:                  r.Debit.StringFixed(2),
			Credit:                 r.Credit.StringFixed(2),
		})
	}
	return out
}
