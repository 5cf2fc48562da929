package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pageParams reads page and page_size query params, leaving zero values for
// the service layer to clamp.
func pageParams(r *http.Request) (page, pageSize int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	pageSize, _ = strconv.Atoi(q.Get("page_size"))
	return page, pageSize
}

func (s *Server) postCompany(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req companyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	c, err := s.companies.Create(r.Context(), req.Name)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toCompanyResponse(c))
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	items, total, err := s.companies.List(r.Context(), r.URL.Query().Get("q"), page, pageSize)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]companyResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toCompanyResponse(c))
	}
	toJSON(w, http.StatusOK, listResponse[companyResponse]{Items: out, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		badRequest(w, "invalid company id")
		return
	}
	c, err := s.companies.Get(r.Context(), companyID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCompanyResponse(c))
}

func (s *Server) putCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		badRequest(w, "invalid company id")
		return
	}
	if !requireJSON(w, r) {
		return
	}
	var req companyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	c, err := s.companies.Update(r.Context(), companyID, req.Name)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCompanyResponse(c))
}

func (s *Server) deleteCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		badRequest(w, "invalid company id")
		return
	}
	if err := s.companies.Delete(r.Context(), companyID); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
