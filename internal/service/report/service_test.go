package report_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/gl"
	"github.com/oskarw/glbook/internal/service/posting"
	"github.com/oskarw/glbook/internal/service/report"
	"github.com/oskarw/glbook/internal/storage/memory"
)

// seedBooks posts a small, balanced set of transactions through the posting
// service so reports aggregate real normalized entries.
func seedBooks(t *testing.T) (report.Service, uuid.UUID) {
	t.Helper()
	store := memory.New()
	companyID := uuid.New()
	store.SeedCompany(gl.Company{ID: companyID, Name: "Acme Ltd"})
	for _, a := range []gl.Account{
		{ID: uuid.New(), CompanyID: companyID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset},
		{ID: uuid.New(), CompanyID: companyID, Code: "4000", Name: "Sales", Type: gl.AccountTypeSales},
		{ID: uuid.New(), CompanyID: companyID, Code: "5000", Name: "Cost of Goods", Type: gl.AccountTypeCostOfSale},
		{ID: uuid.New(), CompanyID: companyID, Code: "6000", Name: "Rent", Type: gl.AccountTypeExpense},
	} {
		store.SeedAccount(a)
	}

	aud := audit.NewStore(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	post := posting.New(store, store, aud)
	ctx := context.Background()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mk := func(no int, lines []posting.Line) {
		_, err := post.Create(ctx, posting.Input{
			CompanyID: companyID, TransactionNo: no, Date: date, Lines: lines,
		})
		require.NoError(t, err)
	}
	// Cash sale of 500.
	mk(1, []posting.Line{
		{AccountCode: "1000", Amount: dec("500.00"), Side: "DR"},
		{AccountCode: "4000", Amount: dec("500.00"), Side: "CR"},
	})
	// Rent of 200.
	mk(2, []posting.Line{
		{AccountCode: "6000", Amount: dec("200.00"), Side: "DR"},
		{AccountCode: "1000", Amount: dec("200.00"), Side: "CR"},
	})

	return report.New(store), companyID
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTrialBalanceCloses(t *testing.T) {
	svc, companyID := seedBooks(t)
	tb, err := svc.TrialBalance(context.Background(), companyID)
	require.NoError(t, err)

	require.True(t, tb.TotalDebit.Equal(tb.TotalCredit),
		"trial balance must close: DR=%s CR=%s", tb.TotalDebit, tb.TotalCredit)
	require.True(t, tb.TotalDebit.Equal(dec("700.00")))

	// Rows are sorted by account code; only posted-to accounts appear.
	codes := make([]string, 0, len(tb.Rows))
	for _, r := range tb.Rows {
		codes = append(codes, r.AccountCode)
	}
	require.Equal(t, []string{"1000", "4000", "6000"}, codes)

	cash := tb.Rows[0]
	require.True(t, cash.Debit.Equal(dec("500.00")))
	require.True(t, cash.Credit.Equal(dec("200.00")))
}

func TestTrialBalanceEmptyCompany(t *testing.T) {
	store := memory.New()
	companyID := uuid.New()
	store.SeedCompany(gl.Company{ID: companyID, Name: "Empty Ltd"})

	tb, err := report.New(store).TrialBalance(context.Background(), companyID)
	require.NoError(t, err)
	require.Empty(t, tb.Rows)
	require.True(t, tb.TotalDebit.IsZero())
	require.True(t, tb.TotalCredit.IsZero())
}

func TestProfitAndLossClassification(t *testing.T) {
	svc, companyID := seedBooks(t)
	st, err := svc.ProfitAndLoss(context.Background(), companyID)
	require.NoError(t, err)

	// Cost of Sales and P&L B/F have no postings, so only two sections remain.
	require.Len(t, st.Sections, 2)

	sales := st.Sections[0]
	require.Equal(t, report.TitleSales, sales.Title)
	require.Len(t, sales.Lines, 1)
	// Credit-normal: the 500 credit balance is shown as positive revenue.
	require.True(t, sales.Lines[0].Amount.Equal(dec("500.00")))
	require.True(t, sales.Total.Equal(dec("500.00")))

	expenses := st.Sections[1]
	require.Equal(t, report.TitleExpenses, expenses.Title)
	require.True(t, expenses.Total.Equal(dec("200.00")))

	require.True(t, st.NetProfit.Equal(dec("300.00")))
}

func TestProfitAndLossSkipsZeroBalances(t *testing.T) {
	store := memory.New()
	companyID := uuid.New()
	store.SeedCompany(gl.Company{ID: companyID, Name: "Acme Ltd"})
	store.SeedAccount(gl.Account{ID: uuid.New(), CompanyID: companyID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset})
	store.SeedAccount(gl.Account{ID: uuid.New(), CompanyID: companyID, Code: "6000", Name: "Rent", Type: gl.AccountTypeExpense})

	aud := audit.NewStore(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	post := posting.New(store, store, aud)
	ctx := context.Background()

	// Rent posted and then fully refunded nets to zero and must not appear.
	_, err := post.Create(ctx, posting.Input{
		CompanyID: companyID, TransactionNo: 1, Date: time.Now().UTC(),
		Lines: []posting.Line{
			{AccountCode: "6000", Amount: dec("150.00"), Side: "DR"},
			{AccountCode: "1000", Amount: dec("150.00"), Side: "CR"},
		},
	})
	require.NoError(t, err)
	_, err = post.Create(ctx, posting.Input{
		CompanyID: companyID, TransactionNo: 2, Date: time.Now().UTC(),
		Lines: []posting.Line{
			{AccountCode: "1000", Amount: dec("150.00"), Side: "DR"},
			{AccountCode: "6000", Amount: dec("150.00"), Side: "CR"},
		},
	})
	require.NoError(t, err)

	st, err := report.New(store).ProfitAndLoss(ctx, companyID)
	require.NoError(t, err)
	require.Empty(t, st.Sections)
	require.True(t, st.NetProfit.IsZero())
}
