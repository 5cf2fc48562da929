package v1

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/oskarw/glbook/internal/gl"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	if !requireJSON(w, r) {
		return
	}
	var req accountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	a, err := s.accounts.Create(r.Context(), gl.Account{
		CompanyID: companyID,
		Code:      req.Code,
		Name:      req.Name,
		Type:      gl.AccountType(req.Type),
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	page, pageSize := pageParams(r)
	items, total, err := s.accounts.List(r.Context(), companyID, r.URL.Query().Get("q"), page, pageSize)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]accountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, listResponse[accountResponse]{Items: out, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	a, err := s.accounts.Get(r.Context(), companyID, chi.URLParam(r, "code"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) putAccount(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	if !requireJSON(w, r) {
		return
	}
	var req accountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	a, err := s.accounts.Update(r.Context(), companyID, chi.URLParam(r, "code"), req.Name, gl.AccountType(req.Type))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	if err := s.accounts.Delete(r.Context(), companyID, chi.URLParam(r, "code")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
