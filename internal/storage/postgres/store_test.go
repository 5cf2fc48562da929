package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oskarw/glbook/internal/errs"
	"github.com/oskarw/glbook/internal/gl"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func applyInitSQL(t *testing.T, dsn string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open for init: %v", err)
	}
	defer s.Close()
	// Resolve init SQL path relative to this test file so CWD doesn't matter
	_, thisFile, _, _ := runtime.Caller(0)
	repoRoot := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "../../../"))
	path := filepath.Join(repoRoot, "db", "migrations", "0001_init.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read init sql: %v", err)
	}
	if _, err := s.pool.Exec(ctx, string(b)); err != nil {
		t.Fatalf("apply init sql: %v", err)
	}
}

func truncateAll(t *testing.T, dsn string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open for truncate: %v", err)
	}
	defer s.Close()
	_, _ = s.pool.Exec(ctx, `truncate table audit_logs, entries, transactions, accounts, companies cascade`)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func balancedTx(companyID uuid.UUID, no int, drCode, crCode string, amount decimal.Decimal) gl.Transaction {
	tx := gl.Transaction{
		ID:            uuid.New(),
		CompanyID:     companyID,
		TransactionNo: no,
		Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Description:   "test posting",
	}
	tx.Entries = []gl.Entry{
		{ID: uuid.New(), CompanyID: companyID, TransactionNo: no, AccountCode: drCode, Debit: amount, Credit: decimal.Zero},
		{ID: uuid.New(), CompanyID: companyID, TransactionNo: no, AccountCode: crCode, Debit: decimal.Zero, Credit: amount},
	}
	return tx
}

func TestStore_TransactionLifecycle(t *testing.T) {
	dsn := getTestDSN(t)
	applyInitSQL(t, dsn)
	truncateAll(t, dsn)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s := mustOpen(t, dsn)
	defer s.Close()

	if err := s.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}

	co, accs, err := s.SeedDev(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if co.ID == uuid.Nil || len(accs) < 4 {
		t.Fatalf("unexpected seed: %+v %d accounts", co, len(accs))
	}

	// Create, read back, assert decimal round-trip.
	tx := balancedTx(co.ID, 1, "1000", "4000", dec("123.45"))
	if _, err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.Transaction(ctx, co.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if !got.Entries[0].Debit.Equal(dec("123.45")) {
		t.Fatalf("debit round-trip: %s", got.Entries[0].Debit)
	}

	// The unique constraint is the backstop for duplicate numbers.
	dup := balancedTx(co.ID, 1, "1000", "4000", dec("5.00"))
	if _, err := s.CreateTransaction(ctx, dup); !errors.Is(err, errs.ErrDuplicateTransactionNo) {
		t.Fatalf("duplicate: got %v", err)
	}

	// Replace swaps the full entry set.
	repl := balancedTx(co.ID, 1, "6000", "1000", dec("80.00"))
	repl.ID = got.ID
	repl.Description = "rent paid"
	if _, err := s.ReplaceTransaction(ctx, repl); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = s.Transaction(ctx, co.ID, 1)
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if got.Description != "rent paid" || len(got.Entries) != 2 || got.Entries[0].AccountCode != "6000" {
		t.Fatalf("unexpected replaced tx: %+v", got)
	}

	// Replace of a missing transaction reports not found.
	missing := balancedTx(co.ID, 99, "1000", "4000", dec("1.00"))
	if _, err := s.ReplaceTransaction(ctx, missing); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("replace missing: got %v", err)
	}

	// Accounts referenced by entries cannot be deleted.
	if err := s.DeleteAccount(ctx, co.ID, "6000"); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("delete referenced account: got %v", err)
	}

	// Delete is entries-then-header and idempotent.
	if err := s.DeleteTransaction(ctx, co.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Transaction(ctx, co.ID, 1); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get after delete: got %v", err)
	}
	if err := s.DeleteTransaction(ctx, co.ID, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestStore_AccountsAndCompanies(t *testing.T) {
	dsn := getTestDSN(t)
	applyInitSQL(t, dsn)
	truncateAll(t, dsn)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s := mustOpen(t, dsn)
	defer s.Close()

	co, err := s.CreateCompany(ctx, gl.Company{ID: uuid.New(), Name: "Store Test Ltd"})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	if _, err := s.CreateCompany(ctx, gl.Company{ID: uuid.New(), Name: "store test ltd"}); !errors.Is(err, errs.ErrDuplicateCompanyName) {
		t.Fatalf("duplicate name: got %v", err)
	}

	acc := gl.Account{ID: uuid.New(), CompanyID: co.ID, Code: "N100", Name: "Cash", Type: gl.AccountTypeAsset}
	if _, err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("create account: %v", err)
	}
	// Code uniqueness is case-insensitive.
	clash := gl.Account{ID: uuid.New(), CompanyID: co.ID, Code: "n100", Name: "Other", Type: gl.AccountTypeAsset}
	if _, err := s.CreateAccount(ctx, clash); !errors.Is(err, errs.ErrDuplicateAccountCode) {
		t.Fatalf("duplicate code: got %v", err)
	}
	got, err := s.Account(ctx, co.ID, "n100")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Code != "N100" {
		t.Fatalf("expected canonical code N100, got %q", got.Code)
	}

	byCodes, err := s.AccountsByCodes(ctx, co.ID, []string{"N100", "missing"})
	if err != nil {
		t.Fatalf("accounts by codes: %v", err)
	}
	if len(byCodes) != 1 {
		t.Fatalf("expected 1 resolved account, got %d", len(byCodes))
	}

	// A company that owns accounts cannot be deleted until they go.
	owns, err := s.CompanyOwnsData(ctx, co.ID)
	if err != nil || !owns {
		t.Fatalf("owns data: %v %v", owns, err)
	}
	if err := s.DeleteAccount(ctx, co.ID, "N100"); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if err := s.DeleteCompany(ctx, co.ID); err != nil {
		t.Fatalf("delete company: %v", err)
	}
	if _, err := s.Company(ctx, co.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("get after delete: got %v", err)
	}
}
