package v1

import (
	"net/http"
	"strconv"

	"github.com/oskarw/glbook/internal/service/search"
)

func (s *Server) searchLedger(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	qp := r.URL.Query()
	query := search.Query{
		CompanyID:   companyID,
		Q:           qp.Get("q"),
		AccountCode: qp.Get("account_code"),
	}
	if raw := qp.Get("transaction_no"); raw != "" {
		no, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "invalid transaction_no")
			return
		}
		query.TransactionNo = &no
	}
	from, to, ok := dateRangeParams(r)
	if !ok {
		badRequest(w, "invalid from/to date")
		return
	}
	query.From, query.To = from, to
	query.Page, query.PageSize = pageParams(r)

	rows, err := s.ledger.Search(r.Context(), query)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, struct {
		Items    []ledgerRow `json:"items"`
		Page     int         `json:"page"`
		PageSize int         `json:"page_size"`
	}{Items: toLedgerRows(rows), Page: max(query.Page, 1), PageSize: clampPageSize(query.PageSize)})
}

func clampPageSize(n int) int {
	if n < 1 {
		return search.DefaultPageSize
	}
	if n > search.MaxPageSize {
		return search.MaxPageSize
	}
	return n
}
