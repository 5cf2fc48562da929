// Package v1 wires the HTTP surface of the bookkeeping service.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/service/account"
	"github.com/oskarw/glbook/internal/service/company"
	"github.com/oskarw/glbook/internal/service/posting"
	"github.com/oskarw/glbook/internal/service/report"
	"github.com/oskarw/glbook/internal/service/search"
)

// Server wires handlers and middleware using Chi.
// It composes read (repo) and write (writer) dependencies through services.
type Server struct {
	companies    company.Service
	accounts     account.Service
	transactions posting.Service
	reports      report.Service
	ledger       search.Service
	store        Store
	log          *slog.Logger
	rt           *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// The logger is used by basic request/response logging and panic recovery.
func New(store Store, aud audit.Logger, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	s := &Server{
		companies:    company.New(store, store, aud),
		accounts:     account.New(store, store, aud),
		transactions: posting.New(store, store, aud),
		reports:      report.New(store),
		ledger:       search.New(store),
		store:        store,
		log:          logger,
		rt:           r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Companies (v1)
	s.rt.Post("/v1/companies", s.postCompany)
	s.rt.Get("/v1/companies", s.listCompanies)
	s.rt.Get("/v1/companies/{companyID}", s.getCompany)
	s.rt.Put("/v1/companies/{companyID}", s.putCompany)
	s.rt.Delete("/v1/companies/{companyID}", s.deleteCompany)
	// Accounts (v1)
	s.rt.Post("/v1/companies/{companyID}/accounts", s.postAccount)
	s.rt.Get("/v1/companies/{companyID}/accounts", s.listAccounts)
	s.rt.Get("/v1/companies/{companyID}/accounts/{code}", s.getAccount)
	s.rt.Put("/v1/companies/{companyID}/accounts/{code}", s.putAccount)
	s.rt.Delete("/v1/companies/{companyID}/accounts/{code}", s.deleteAccount)
	// Transactions (v1)
	s.rt.With(s.validatePostTransaction()).Post("/v1/companies/{companyID}/transactions", s.postTransaction)
	s.rt.Get("/v1/companies/{companyID}/transactions", s.listTransactions)
	s.rt.Get("/v1/companies/{companyID}/transactions/{transactionNo}", s.getTransaction)
	s.rt.With(s.validatePutTransaction()).Put("/v1/companies/{companyID}/transactions/{transactionNo}", s.putTransaction)
	s.rt.Delete("/v1/companies/{companyID}/transactions/{transactionNo}", s.deleteTransaction)
	// Reports (v1)
	s.rt.Get("/v1/companies/{companyID}/reports/trial-balance", s.trialBalance)
	s.rt.Get("/v1/companies/{companyID}/reports/trial-balance.csv", s.trialBalanceCSV)
	s.rt.Get("/v1/companies/{companyID}/reports/profit-and-loss", s.profitAndLoss)
	s.rt.Get("/v1/companies/{companyID}/reports/profit-and-loss.csv", s.profitAndLossCSV)
	// Ledger search (v1)
	s.rt.Get("/v1/companies/{companyID}/ledger", s.searchLedger)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
