// Package postgres provides a pgx-backed storage implementation that
// satisfies the repository and writer interfaces used by the services.
//
// It is intentionally small and explicit. Migrations that create the expected
// schema live under db/migrations. This package focuses on mapping between
// the domain entities and SQL rows and running the necessary
// statements/transactions. Amounts cross the wire as text and are cast to
// numeric in SQL, so no driver-level decimal codec is needed.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oskarw/glbook/internal/audit"
	"github.com/oskarw/glbook/internal/errs"
	"github.com/oskarw/glbook/internal/gl"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// mapWriteErr translates constraint violations into domain sentinels.
// Unique violations become the supplied sentinel; foreign-key restrict
// violations become errs.ErrConflict. Anything else passes through.
func mapWriteErr(err error, onUnique error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if onUnique != nil {
				return onUnique
			}
		case "23503":
			return errs.ErrConflict
		}
	}
	return err
}

// --- Companies ---

// Company implements company.Repo.
func (s *Store) Company(ctx context.Context, companyID uuid.UUID) (gl.Company, error) {
	var c gl.Company
	err := s.pool.QueryRow(ctx, `
        select id, name from companies where id = $1
    `, companyID).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return gl.Company{}, errs.ErrNotFound
	}
	if err != nil {
		return gl.Company{}, err
	}
	return c, nil
}

// Companies implements company.Repo.
func (s *Store) Companies(ctx context.Context, q string, page, pageSize int) ([]gl.Company, int, error) {
	pattern := "%" + q + "%"
	var total int
	if err := s.pool.QueryRow(ctx, `
        select count(*) from companies where ($1 = '%%' or name ilike $1)
    `, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, `
        select id, name
        from companies
        where ($1 = '%%' or name ilike $1)
        order by name
        offset $2 limit $3
    `, pattern, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]gl.Company, 0)
	for rows.Next() {
		var c gl.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// CompanyNameTaken implements company.Repo.
func (s *Store) CompanyNameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx, `
        select exists (
            select 1 from companies where lower(name) = lower($1) and id <> $2
        )
    `, name, excludeID).Scan(&taken)
	return taken, err
}

// CompanyOwnsData implements company.Repo.
func (s *Store) CompanyOwnsData(ctx context.Context, companyID uuid.UUID) (bool, error) {
	var owns bool
	err := s.pool.QueryRow(ctx, `
        select exists (select 1 from accounts where company_id = $1)
            or exists (select 1 from transactions where company_id = $1)
    `, companyID).Scan(&owns)
	return owns, err
}

// CreateCompany implements company.Writer.
func (s *Store) CreateCompany(ctx context.Context, c gl.Company) (gl.Company, error) {
	_, err := s.pool.Exec(ctx, `
        insert into companies (id, name) values ($1, $2)
    `, c.ID, c.Name)
	if err != nil {
		return gl.Company{}, mapWriteErr(err, errs.ErrDuplicateCompanyName)
	}
	return c, nil
}

// UpdateCompany implements company.Writer.
func (s *Store) UpdateCompany(ctx context.Context, c gl.Company) (gl.Company, error) {
	ct, err := s.pool.Exec(ctx, `
        update companies set name = $1 where id = $2
    `, c.Name, c.ID)
	if err != nil {
		return gl.Company{}, mapWriteErr(err, errs.ErrDuplicateCompanyName)
	}
	if ct.RowsAffected() == 0 {
		return gl.Company{}, errs.ErrNotFound
	}
	return c, nil
}

// DeleteCompany implements company.Writer. The FK restrict on accounts and
// transactions is the authoritative backstop behind the service-level check.
func (s *Store) DeleteCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `delete from companies where id = $1`, companyID)
	return mapWriteErr(err, nil)
}

// --- Accounts ---

// Account implements account.Repo.
func (s *Store) Account(ctx context.Context, companyID uuid.UUID, code string) (gl.Account, error) {
	var a gl.Account
	err := s.pool.QueryRow(ctx, `
        select id, company_id, code, name, type
        from accounts
        where company_id = $1 and lower(code) = lower($2)
    `, companyID, code).Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return gl.Account{}, errs.ErrNotFound
	}
	if err != nil {
		return gl.Account{}, err
	}
	return a, nil
}

// ListAccounts implements account.Repo.
func (s *Store) ListAccounts(ctx context.Context, companyID uuid.UUID, q string, page, pageSize int) ([]gl.Account, int, error) {
	pattern := "%" + q + "%"
	var total int
	if err := s.pool.QueryRow(ctx, `
        select count(*) from accounts
        where company_id = $1 and ($2 = '%%' or code ilike $2 or name ilike $2)
    `, companyID, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, `
        select id, company_id, code, name, type
        from accounts
        where company_id = $1 and ($2 = '%%' or code ilike $2 or name ilike $2)
        order by code
        offset $3 limit $4
    `, companyID, pattern, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]gl.Account, 0)
	for rows.Next() {
		var a gl.Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Accounts implements report.Repo and search.Repo.
func (s *Store) Accounts(ctx context.Context, companyID uuid.UUID) ([]gl.Account, error) {
	rows, err := s.pool.Query(ctx, `
        select id, company_id, code, name, type
        from accounts
        where company_id = $1
        order by code
    `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]gl.Account, 0)
	for rows.Next() {
		var a gl.Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AccountsByCodes implements posting.Repo. The returned map is keyed by
// lowercased code.
func (s *Store) AccountsByCodes(ctx context.Context, companyID uuid.UUID, codes []string) (map[string]gl.Account, error) {
	if len(codes) == 0 {
		return map[string]gl.Account{}, nil
	}
	lowered := make([]string, len(codes))
	for i, c := range codes {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}
	rows, err := s.pool.Query(ctx, `
        select id, company_id, code, name, type
        from accounts
        where company_id = $1 and lower(code) = any($2)
    `, companyID, lowered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]gl.Account)
	for rows.Next() {
		var a gl.Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		out[strings.ToLower(a.Code)] = a
	}
	return out, rows.Err()
}

// CreateAccount implements account.Writer.
func (s *Store) CreateAccount(ctx context.Context, a gl.Account) (gl.Account, error) {
	_, err := s.pool.Exec(ctx, `
        insert into accounts (id, company_id, code, name, type)
        values ($1, $2, $3, $4, $5)
    `, a.ID, a.CompanyID, a.Code, a.Name, string(a.Type))
	if err != nil {
		return gl.Account{}, mapWriteErr(err, errs.ErrDuplicateAccountCode)
	}
	return a, nil
}

// UpdateAccount implements account.Writer. Only name and type are mutable.
func (s *Store) UpdateAccount(ctx context.Context, a gl.Account) (gl.Account, error) {
	ct, err := s.pool.Exec(ctx, `
        update accounts set name = $1, type = $2 where id = $3 and company_id = $4
    `, a.Name, string(a.Type), a.ID, a.CompanyID)
	if err != nil {
		return gl.Account{}, err
	}
	if ct.RowsAffected() == 0 {
		return gl.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// DeleteAccount implements account.Writer. The entries FK restricts deletion
// of referenced accounts; that violation surfaces as errs.ErrConflict.
func (s *Store) DeleteAccount(ctx context.Context, companyID uuid.UUID, code string) error {
	_, err := s.pool.Exec(ctx, `
        delete from accounts where company_id = $1 and lower(code) = lower($2)
    `, companyID, code)
	return mapWriteErr(err, nil)
}

// --- Transactions ---

// Transaction implements posting.Repo.
func (s *Store) Transaction(ctx context.Context, companyID uuid.UUID, transactionNo int) (gl.Transaction, error) {
	var tx gl.Transaction
	err := s.pool.QueryRow(ctx, `
        select id, company_id, transaction_no, date, description
        from transactions
        where company_id = $1 and transaction_no = $2
    `, companyID, transactionNo).Scan(&tx.ID, &tx.CompanyID, &tx.TransactionNo, &tx.Date, &tx.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return gl.Transaction{}, errs.ErrNotFound
	}
	if err != nil {
		return gl.Transaction{}, err
	}
	entries, err := s.entriesFor(ctx, companyID, []int{transactionNo})
	if err != nil {
		return gl.Transaction{}, err
	}
	tx.Entries = entries[transactionNo]
	return tx, nil
}

// TransactionExists implements posting.Repo.
func (s *Store) TransactionExists(ctx context.Context, companyID uuid.UUID, transactionNo int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
        select exists (
            select 1 from transactions where company_id = $1 and transaction_no = $2
        )
    `, companyID, transactionNo).Scan(&exists)
	return exists, err
}

// Transactions implements posting.Repo: date desc then transaction number
// asc, optional calendar-day date range, with the unpaged total.
func (s *Store) Transactions(ctx context.Context, companyID uuid.UUID, page, pageSize int, from, to *time.Time) ([]gl.Transaction, int, error) {
	var fromTS, toTS *time.Time
	if from != nil {
		t := startOfDay(*from)
		fromTS = &t
	}
	if to != nil {
		t := startOfDay(*to).AddDate(0, 0, 1)
		toTS = &t
	}

	var total int
	if err := s.pool.QueryRow(ctx, `
        select count(*) from transactions
        where company_id = $1
          and ($2::timestamptz is null or date >= $2)
          and ($3::timestamptz is null or date < $3)
    `, companyID, fromTS, toTS).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
        select id, company_id, transaction_no, date, description
        from transactions
        where company_id = $1
          and ($2::timestamptz is null or date >= $2)
          and ($3::timestamptz is null or date < $3)
        order by date desc, transaction_no asc
        offset $4 limit $5
    `, companyID, fromTS, toTS, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]gl.Transaction, 0)
	nos := make([]int, 0)
	for rows.Next() {
		var tx gl.Transaction
		if err := rows.Scan(&tx.ID, &tx.CompanyID, &tx.TransactionNo, &tx.Date, &tx.Description); err != nil {
			return nil, 0, err
		}
		out = append(out, tx)
		nos = append(nos, tx.TransactionNo)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		return out, total, nil
	}

	byNo, err := s.entriesFor(ctx, companyID, nos)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Entries = byNo[out[i].TransactionNo]
	}
	return out, total, nil
}

// TransactionHeaders implements search.Repo.
func (s *Store) TransactionHeaders(ctx context.Context, companyID uuid.UUID) ([]gl.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
        select id, company_id, transaction_no, date, description
        from transactions
        where company_id = $1
    `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]gl.Transaction, 0)
	for rows.Next() {
		var tx gl.Transaction
		if err := rows.Scan(&tx.ID, &tx.CompanyID, &tx.TransactionNo, &tx.Date, &tx.Description); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Entries implements report.Repo and search.Repo.
func (s *Store) Entries(ctx context.Context, companyID uuid.UUID) ([]gl.Entry, error) {
	rows, err := s.pool.Query(ctx, `
        select id, company_id, transaction_no, account_code, memo, debit::text, credit::text
        from entries
        where company_id = $1
        order by transaction_no, seq
    `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]gl.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// entriesFor loads entries for the given transaction numbers grouped by
// transaction number, in insertion order.
func (s *Store) entriesFor(ctx context.Context, companyID uuid.UUID, nos []int) (map[int][]gl.Entry, error) {
	rows, err := s.pool.Query(ctx, `
        select id, company_id, transaction_no, account_code, memo, debit::text, credit::text
        from entries
        where company_id = $1 and transaction_no = any($2)
        order by transaction_no, seq
    `, companyID, nos)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int][]gl.Entry, len(nos))
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out[e.TransactionNo] = append(out[e.TransactionNo], e)
	}
	return out, rows.Err()
}

func scanEntry(rows pgx.Rows) (gl.Entry, error) {
	var e gl.Entry
	var debit, credit string
	if err := rows.Scan(&e.ID, &e.CompanyID, &e.TransactionNo, &e.AccountCode, &e.Memo, &debit, &credit); err != nil {
		return gl.Entry{}, err
	}
	var err error
	if e.Debit, err = decimal.NewFromString(debit); err != nil {
		return gl.Entry{}, fmt.Errorf("parse debit: %w", err)
	}
	if e.Credit, err = decimal.NewFromString(credit); err != nil {
		return gl.Entry{}, fmt.Errorf("parse credit: %w", err)
	}
	return e, nil
}

// CreateTransaction implements posting.Writer. Header and entries are
// inserted in one database transaction; the unique constraint on
// (company_id, transaction_no) is the authoritative duplicate backstop.
func (s *Store) CreateTransaction(ctx context.Context, txn gl.Transaction) (gl.Transaction, error) {
	dbtx, err := s.pool.Begin(ctx)
	if err != nil {
		return gl.Transaction{}, err
	}
	defer func() { _ = dbtx.Rollback(ctx) }()

	if _, err := dbtx.Exec(ctx, `
        insert into transactions (id, company_id, transaction_no, date, description)
        values ($1, $2, $3, $4, $5)
    `, txn.ID, txn.CompanyID, txn.TransactionNo, txn.Date, txn.Description); err != nil {
		return gl.Transaction{}, mapWriteErr(err, errs.ErrDuplicateTransactionNo)
	}
	if err := insertEntries(ctx, dbtx, txn.Entries); err != nil {
		return gl.Transaction{}, err
	}
	if err := dbtx.Commit(ctx); err != nil {
		return gl.Transaction{}, err
	}
	return txn, nil
}

// ReplaceTransaction implements posting.Writer: update header, delete all
// existing entries, insert the new set, one atomic unit.
func (s *Store) ReplaceTransaction(ctx context.Context, txn gl.Transaction) (gl.Transaction, error) {
	dbtx, err := s.pool.Begin(ctx)
	if err != nil {
		return gl.Transaction{}, err
	}
	defer func() { _ = dbtx.Rollback(ctx) }()

	ct, err := dbtx.Exec(ctx, `
        update transactions set date = $1, description = $2
        where company_id = $3 and transaction_no = $4
    `, txn.Date, txn.Description, txn.CompanyID, txn.TransactionNo)
	if err != nil {
		return gl.Transaction{}, err
	}
	if ct.RowsAffected() == 0 {
		return gl.Transaction{}, errs.ErrNotFound
	}
	if _, err := dbtx.Exec(ctx, `
        delete from entries where company_id = $1 and transaction_no = $2
    `, txn.CompanyID, txn.TransactionNo); err != nil {
		return gl.Transaction{}, err
	}
	if err := insertEntries(ctx, dbtx, txn.Entries); err != nil {
		return gl.Transaction{}, err
	}
	if err := dbtx.Commit(ctx); err != nil {
		return gl.Transaction{}, err
	}
	return txn, nil
}

// DeleteTransaction implements posting.Writer: entries then header, one
// atomic unit, no-op when the transaction does not exist.
func (s *Store) DeleteTransaction(ctx context.Context, companyID uuid.UUID, transactionNo int) error {
	dbtx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = dbtx.Rollback(ctx) }()

	if _, err := dbtx.Exec(ctx, `
        delete from entries where company_id = $1 and transaction_no = $2
    `, companyID, transactionNo); err != nil {
		return err
	}
	if _, err := dbtx.Exec(ctx, `
        delete from transactions where company_id = $1 and transaction_no = $2
    `, companyID, transactionNo); err != nil {
		return err
	}
	return dbtx.Commit(ctx)
}

// insertEntries inserts entry rows within the provided executor, preserving
// submission order via the seq column default.
func insertEntries(ctx context.Context, dbtx pgx.Tx, entries []gl.Entry) error {
	for _, e := range entries {
		if _, err := dbtx.Exec(ctx, `
            insert into entries (id, company_id, transaction_no, account_code, memo, debit, credit)
            values ($1, $2, $3, $4, $5, $6::numeric, $7::numeric)
        `, e.ID, e.CompanyID, e.TransactionNo, e.AccountCode, e.Memo,
			e.Debit.StringFixed(2), e.Credit.StringFixed(2)); err != nil {
			return fmt.Errorf("insert entry: %w", mapWriteErr(err, nil))
		}
	}
	return nil
}

// --- Audit sink ---

// AppendAuditEvent implements audit.Sink.
func (s *Store) AppendAuditEvent(ctx context.Context, ev audit.Event) error {
	var companyID *uuid.UUID
	if ev.CompanyID != uuid.Nil {
		companyID = &ev.CompanyID
	}
	_, err := s.pool.Exec(ctx, `
        insert into audit_logs (ts, company_id, event_type, level, code, message)
        values ($1, $2, $3, $4, $5, $6)
    `, ev.Time, companyID, ev.EventType, ev.Level, ev.Code, ev.Message)
	return err
}

// SeedDev inserts a demo company with a small chart of accounts for quick
// local testing. It is idempotent per run due to fresh UUIDs.
func (s *Store) SeedDev(ctx context.Context) (gl.Company, []gl.Account, error) {
	company := gl.Company{ID: uuid.New(), Name: fmt.Sprintf("Demo Company %s", company8(uuid.New()))}
	accounts := []gl.Account{
		{ID: uuid.New(), CompanyID: company.ID, Code: "1000", Name: "Cash", Type: gl.AccountTypeAsset},
		{ID: uuid.New(), CompanyID: company.ID, Code: "4000", Name: "Sales", Type: gl.AccountTypeSales},
		{ID: uuid.New(), CompanyID: company.ID, Code: "5000", Name: "Cost of Goods", Type: gl.AccountTypeCostOfSale},
		{ID: uuid.New(), CompanyID: company.ID, Code: "6000", Name: "Rent", Type: gl.AccountTypeExpense},
	}
	dbtx, err := s.pool.Begin(ctx)
	if err != nil {
		return gl.Company{}, nil, err
	}
	defer func() { _ = dbtx.Rollback(ctx) }()
	if _, err := dbtx.Exec(ctx, `
        insert into companies (id, name) values ($1, $2)
    `, company.ID, company.Name); err != nil {
		return gl.Company{}, nil, err
	}
	for _, a := range accounts {
		if _, err := dbtx.Exec(ctx, `
            insert into accounts (id, company_id, code, name, type)
            values ($1, $2, $3, $4, $5)
        `, a.ID, a.CompanyID, a.Code, a.Name, string(a.Type)); err != nil {
			return gl.Company{}, nil, err
		}
	}
	if err := dbtx.Commit(ctx); err != nil {
		return gl.Company{}, nil, err
	}
	return company, accounts, nil
}

func company8(id uuid.UUID) string { return id.String()[:8] }

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
