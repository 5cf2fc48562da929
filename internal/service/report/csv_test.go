package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oskarw/glbook/internal/gl"
	"github.com/oskarw/glbook/internal/service/report"
)

func TestWriteTrialBalanceCSV(t *testing.T) {
	tb := report.TrialBalance{
		Rows: []report.Row{
			{AccountCode: "1000", AccountName: "Cash", AccountType: gl.AccountTypeAsset, Debit: dec("500.00"), Credit: dec("200.00")},
			{AccountCode: "4000", AccountName: "Sales, net", AccountType: gl.AccountTypeSales, Debit: dec("0"), Credit: dec("500.00")},
		},
		TotalDebit:  dec("500.00"),
		TotalCredit: dec("700.00"),
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteTrialBalanceCSV(&buf, tb))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, "Account Code,Account Name,Account Type,Debit,Credit", lines[0])
	require.Equal(t, "1000,Cash,Asset,500.00,200.00", lines[1])
	// A comma in the account name forces RFC 4180 quoting.
	require.Equal(t, `4000,"Sales, net",Sales,0.00,500.00`, lines[2])
	require.Equal(t, "", lines[3])
	require.Equal(t, "TOTAL,,,500.00,700.00", lines[4])
}

func TestWriteProfitAndLossCSV(t *testing.T) {
	st := report.Statement{
		Sections: []report.Section{
			{
				Title: report.TitleSales,
				Lines: []report.StatementLine{
					{AccountCode: "4000", AccountName: "Sales", Amount: dec("500.00")},
				},
				Total: dec("500.00"),
			},
			{
				Title: report.TitleExpenses,
				Lines: []report.StatementLine{
					{AccountCode: "6000", AccountName: "Rent", Amount: dec("200.00")},
				},
				Total: dec("200.00"),
			},
		},
		NetProfit: dec("300.00"),
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteProfitAndLossCSV(&buf, st))

	want := strings.Join([]string{
		"Category,Account Code,Account Name,Amount",
		"Sales",
		",4000,Sales,500.00",
		",,Total Sales,500.00",
		"",
		"Expenses",
		",6000,Rent,200.00",
		",,Total Expenses,200.00",
		"",
		"Net Profit,,,300.00",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}
