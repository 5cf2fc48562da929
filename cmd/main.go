package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/gl"
	httpapi "github.com/oskarw/glbook/internal/httpapi/v1"
	"github.com/oskarw/glbook/internal/storage/memory"
	pgstore "github.com/oskarw/glbook/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	var srvMux http.Handler
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		// Use Postgres store when DATABASE_URL is provided
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		// Optional dev seed for compose/local
		if devSeedEnabled() {
			co, accs, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", co, accs)
			}
		}
		aud := audit.NewStore(pg, logger)
		srvMux = httpapi.New(pg, aud, logger).Handler()
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store with a small dev seed
		store := memory.New()
		if devSeedEnabled() {
			co := gl.Company{ID: uuid.New(), Name: "Demo Ltd"}
			store.SeedCompany(co)
			accs := []gl.Account{
				{ID: uuid.New(), CompanyID: co.ID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset},
				{ID: uuid.New(), CompanyID: co.ID, Code: "4000", Name: "Sales", Type: gl.AccountTypeSales},
				{ID: uuid.New(), CompanyID: co.ID, Code: "5000", Name: "Cost of Goods", Type: gl.AccountTypeCostOfSale},
				{ID: uuid.New(), CompanyID: co.ID, Code: "6000", Name: "Rent", Type: gl.AccountTypeExpense},
			}
			for _, a := range accs {
				store.SeedAccount(a)
			}
			logDevSeed(logger, "memory", co, accs)
		}
		aud := audit.NewStore(store, logger)
		srvMux = httpapi.New(store, aud, logger).Handler()
		logger.Info("storage backend: memory")
	}

	srv := &http.Server{
		Addr:              listenAddr(),
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bookkeeping service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

func listenAddr() string {
	if addr := strings.TrimSpace(os.Getenv("ADDR")); addr != "" {
		return addr
	}
	return ":8080"
}

func devSeedEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED"))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// logDevSeed emits structured logs with useful IDs for copy/paste in dev.
func logDevSeed(l *slog.Logger, backend string, co gl.Company, accs []gl.Account) {
	codes := map[string]string{}
	for _, a := range accs {
		codes[a.Code] = a.Name
	}
	l.Info("DEV seed ("+backend+")", "company_id", co.ID.String(), "company", co.Name, "accounts", codes)
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
