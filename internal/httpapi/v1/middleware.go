package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyPostTransaction ctxKey = "validatedPostTransaction"
const ctxKeyPutTransaction ctxKey = "validatedPutTransaction"

// companyIDParam parses the {companyID} route param.
func companyIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "companyID"))
	return id, err == nil
}

// transactionNoParam parses the {transactionNo} route param.
func transactionNoParam(r *http.Request) (int, bool) {
	no, err := strconv.Atoi(chi.URLParam(r, "transactionNo"))
	return no, err == nil
}

// validatePostTransaction decodes the POST body into posting input and stores
// it in the request context for the handler to use. Business validation stays
// in the posting service so both stores share one rule set.
func (s *Server) validatePostTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			companyID, ok := companyIDParam(r)
			if !ok {
				badRequest(w, "invalid company id")
				return
			}
			if !requireJSON(w, r) {
				return
			}
			var req transactionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostTransaction, toPostingInput(companyID, req))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePutTransaction decodes the PUT body. The transaction number in the
// path is authoritative; a mismatching body is rejected by the service.
func (s *Server) validatePutTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			companyID, ok := companyIDParam(r)
			if !ok {
				badRequest(w, "invalid company id")
				return
			}
			if _, ok := transactionNoParam(r); !ok {
				badRequest(w, "invalid transaction number")
				return
			}
			if !requireJSON(w, r) {
				return
			}
			var req transactionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPutTransaction, toPostingInput(companyID, req))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
