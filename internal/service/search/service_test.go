package search_test

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
	"github.com/oskarw/glbook/internal/service/search"
	"github.com/oskarw/glbook/internal/storage/memory"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedLedger(t *testing.T) (search.Service, uuid.UUID) {
	t.Helper()
	store := memory.New()
	companyID := uuid.New()
	store.SeedCompany(gl.Company{ID: companyID, Name: "Acme Ltd"})
	for _, a := range []gl.Account{
		{ID: uuid.New(), CompanyID: companyID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset},
		{ID: uuid.New(), CompanyID: companyID, Code: "4000", Name: "Sales", Type: gl.AccountTypeSales},
		{ID: uuid.New(), CompanyID: companyID, Code: "6000", Name: "Rent", Type: gl.AccountTypeExpense},
	} {
		store.SeedAccount(a)
	}

	aud := audit.NewStore(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	post := posting.New(store, store, aud)
	ctx := context.Background()

	mk := func(no int, date time.Time, desc string, lines []posting.Line) {
		_, err := post.Create(ctx, posting.Input{
			CompanyID: companyID, TransactionNo: no, Date: date, Description: desc, Lines: lines,
		})
		require.NoError(t, err)
	}
	mk(1, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "opening sale", []posting.Line{
		{AccountCode: "1000", Amount: dec("500.00"), Side: "DR"},
		{AccountCode: "4000", Amount: dec("500.00"), Side: "CR", Memo: "invoice 17"},
	})
	mk(2, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), "january rent", []posting.Line{
		{AccountCode: "6000", Amount: dec("200.00"), Side: "DR"},
		{AccountCode: "1000", Amount: dec("200.00"), Side: "CR"},
	})
	mk(3, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), "february sale", []posting.Line{
		{AccountCode: "1000", Amount: dec("300.00"), Side: "DR"},
		{AccountCode: "4000", Amount: dec("300.00"), Side: "CR"},
	})

	return search.New(store), companyID
}

func TestSearchOrdering(t *testing.T) {
	svc, companyID := seedLedger(t)
	rows, err := svc.Search(context.Background(), search.Query{CompanyID: companyID})
	require.NoError(t, err)
	require.Len(t, rows, 6)

	// Date desc, then transaction number desc, then account code asc.
	require.Equal(t, 3, rows[0].TransactionNo)
	require.Equal(t, "1000", rows[0].AccountCode)
	require.Equal(t, 3, rows[1].TransactionNo)
	require.Equal(t, "4000", rows[1].AccountCode)
	require.Equal(t, 2, rows[2].TransactionNo)
	require.Equal(t, 1, rows[4].TransactionNo)
}

func TestSearchByAccountCode(t *testing.T) {
	svc, companyID := seedLedger(t)
	rows, err := svc.Search(context.Background(), search.Query{CompanyID: companyID, AccountCode: "1000"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		require.Equal(t, "1000", r.AccountCode)
	}
}

func TestSearchByTransactionNo(t *testing.T) {
	svc, companyID := seedLedger(t)
	no := 2
	rows, err := svc.Search(context.Background(), search.Query{CompanyID: companyID, TransactionNo: &no})
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestSearchDateWindow(t *testing.T) {
	svc, companyID := seedLedger(t)
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 5, 18, 30, 0, 0, time.UTC)
	rows, err := svc.Search(context.Background(), search.Query{CompanyID: companyID, From: &from, To: &to})
	require.NoError(t, err)
	// The To bound covers its whole calendar day.
	require.Len(t, rows, 4)
}

func TestSearchFreeText(t *testing.T) {
	svc, companyID := seedLedger(t)
	ctx := context.Background()

	// Matches the header description.
	rows, err := svc.Search(ctx, search.Query{CompanyID: companyID, Q: "rent"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Matches the entry memo.
	rows, err = svc.Search(ctx, search.Query{CompanyID: companyID, Q: "invoice 17"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "4000", rows[0].AccountCode)

	// A numeric query matches the transaction number exactly.
	rows, err = svc.Search(ctx, search.Query{CompanyID: companyID, Q: "3"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestSearchPaging(t *testing.T) {
	svc, companyID := seedLedger(t)
	ctx := context.Background()

	page1, err := svc.Search(ctx, search.Query{CompanyID: companyID, Page: 1, PageSize: 4})
	require.NoError(t, err)
	require.Len(t, page1, 4)

	page2, err := svc.Search(ctx, search.Query{CompanyID: companyID, Page: 2, PageSize: 4})
	require.NoError(t, err)
	require.Len(t, page2, 2)

	beyond, err := svc.Search(ctx, search.Query{CompanyID: companyID, Page: 9, PageSize: 4})
	require.NoError(t, err)
	require.Empty(t, beyond)
}
