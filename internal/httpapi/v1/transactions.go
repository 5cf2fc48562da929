package v1

import (
	"net/http"
	"time"

	"github.com/oskarw/glbook/internal/service/posting"
)

// parseDate accepts RFC3339 timestamps and bare dates for from/to filters.
func parseDate(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func dateRangeParams(r *http.Request) (from, to *time.Time, ok bool) {
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		t, valid := parseDate(raw)
		if !valid {
			return nil, nil, false
		}
		from = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, valid := parseDate(raw)
		if !valid {
			return nil, nil, false
		}
		to = &t
	}
	return from, to, true
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := r.Context().Value(ctxKeyPostTransaction).(posting.Input)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	tx, err := s.transactions.Create(r.Context(), in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	from, to, ok := dateRangeParams(r)
	if !ok {
		badRequest(w, "invalid from/to date")
		return
	}
	page, pageSize := pageParams(r)
	items, total, err := s.transactions.List(r.Context(), companyID, page, pageSize, from, to)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(items))
	for _, tx := range items {
		out = append(out, toTransactionResponse(tx))
	}
	toJSON(w, http.StatusOK, listResponse[transactionResponse]{Items: out, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	no, ok := transactionNoParam(r)
	if !ok {
		badRequest(w, "invalid transaction number")
		return
	}
	tx, err := s.transactions.Get(r.Context(), companyID, no)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) putTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := r.Context().Value(ctxKeyPutTransaction).(posting.Input)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	no, _ := transactionNoParam(r)
	tx, err := s.transactions.Update(r.Context(), in.CompanyID, no, in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	no, ok := transactionNoParam(r)
	if !ok {
		badRequest(w, "invalid transaction number")
		return
	}
	if err := s.transactions.Delete(r.Context(), companyID, no); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
