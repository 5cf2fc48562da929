package v1

import (
	"errors"
	"net/http"

	"github.com/oskarw/glbook/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not_found", "not_found")
}

// writeDomainErr maps service errors onto HTTP statuses and stable codes.
// Validation failures become 422 so clients can distinguish them from
// malformed requests (400) and uniqueness conflicts (409).
func writeDomainErr(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, errs.ErrTooFewEntries):
		writeErr(w, http.StatusUnprocessableEntity, msg, "too_few_entries")
	case errors.Is(err, errs.ErrInvalidAmount):
		writeErr(w, http.StatusUnprocessableEntity, msg, "invalid_amount")
	case errors.Is(err, errs.ErrInvalidSide):
		writeErr(w, http.StatusUnprocessableEntity, msg, "invalid_side")
	case errors.Is(err, errs.ErrUnbalanced):
		writeErr(w, http.StatusUnprocessableEntity, msg, "unbalanced")
	case errors.Is(err, errs.ErrUnknownAccounts):
		writeErr(w, http.StatusUnprocessableEntity, msg, "unknown_accounts")
	case errors.Is(err, errs.ErrIdentityMismatch):
		writeErr(w, http.StatusUnprocessableEntity, msg, "identity_mismatch")
	case errors.Is(err, errs.ErrDuplicateTransactionNo):
		writeErr(w, http.StatusConflict, msg, "duplicate_transaction_no")
	case errors.Is(err, errs.ErrDuplicateAccountCode):
		writeErr(w, http.StatusConflict, msg, "duplicate_account_code")
	case errors.Is(err, errs.ErrDuplicateCompanyName):
		writeErr(w, http.StatusConflict, msg, "duplicate_company_name")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, msg, "conflict")
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrInvalid):
		badRequest(w, msg)
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "")
	}
}
