package report

import (
	"encoding/csv"
	"io"
)

// WriteTrialBalanceCSV renders the trial balance with a header row, one row
// per account, a blank separator and a trailing TOTAL row. Amounts carry
// exactly 2 decimal places; quoting follows RFC 4180.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Account Code", "Account Name", "Account Type", "Debit", "Credit"}); err != nil {
		return err
	}
	for _, r := range tb.Rows {
		rec := []string{
			r.AccountCode,
			r.AccountName,
			string(r.AccountType),
			r.Debit.StringFixed(2),
			r.Credit.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	if err := cw.Write(nil); err != nil {
		return err
	}
	if err := cw.Write([]string{"TOTAL", "", "", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteProfitAndLossCSV renders the P&L: a header row, then per section a
// title row, one row per line and a "Total <title>" row followed by a blank
// separator, ending with the Net Profit row.
func WriteProfitAndLossCSV(w io.Writer, st Statement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Account Code", "Account Name", "Amount"}); err != nil {
		return err
	}
	for _, sec := range st.Sections {
		if err := cw.Write([]string{sec.Title}); err != nil {
			return err
		}
		for _, ln := range sec.Lines {
			if err := cw.Write([]string{"", ln.AccountCode, ln.AccountName, ln.Amount.StringFixed(2)}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{"", "", "Total " + sec.Title, sec.Total.StringFixed(2)}); err != nil {
			return err
		}
		if err := cw.Write(nil); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"Net Profit", "", "", st.NetProfit.StringFixed(2)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
