package v1

import (
	"net/http"

	"github.com/oskarw/glbook/internal/service/report"
)

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	tb, err := s.reports.TrialBalance(r.Context(), companyID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTrialBalanceResponse(tb))
}

func (s *Server) trialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	tb, err := s.reports.TrialBalance(r.Context(), companyID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeCSV(w, "trial-balance.csv", func() error {
		return report.WriteTrialBalanceCSV(w, tb)
	})
}

func (s *Server) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	st, err := s.reports.ProfitAndLoss(r.Context(), companyID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toProfitAndLossResponse(st))
}

func (s *Server) profitAndLossCSV(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyIDParam(r)
	if !ok {
		badRequest(w, "invalid company id")
		return
	}
	st, err := s.reports.ProfitAndLoss(r.Context(), companyID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeCSV(w, "profit-and-loss.csv", func() error {
		return report.WriteProfitAndLossCSV(w, st)
	})
}

// writeCSV sets CSV headers before streaming the body. Encoding errors after
// the header is written can only be logged, not reported to the client.
func writeCSV(w http.ResponseWriter, filename string, write func() error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_ = write()
}
